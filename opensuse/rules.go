package opensuse

import "strings"

// The catalogs have a couple of irregularities that are handled by name.
const (
	// Tumbleweed is a rolling release: only its first catalog entry is used,
	// and it's always active.
	familyTumbleweed = `Tumbleweed`
	// Leap Micro is keyed as "LeapMicro" in the release catalog but the alias
	// is "opensuse-leap-micro-all".
	familyLeapMicro  = `LeapMicro`
	displayLeapMicro = `Leap-Micro`
)

// DisplayFamily returns the form of a family identifier used in alias keys.
func displayFamily(id string) string {
	if id == familyLeapMicro {
		return displayLeapMicro
	}
	return id
}

// MatchProject returns the first origin project of a product belonging to the
// family whose name ends with the version, or the empty string.
//
// Products are matched on the catalog identifier of the family as well as its
// display form.
func matchProject(ps []product, fam, version string) string {
	disp := displayFamily(fam)
	for _, p := range ps {
		if p.Name != fam && p.Name != disp {
			continue
		}
		if p.OriginProject != "" && strings.HasSuffix(p.OriginProject, version) {
			return p.OriginProject
		}
	}
	return ""
}
