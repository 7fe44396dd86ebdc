// Package distroalias holds the data model for openSUSE distribution aliases:
// groups of related releases keyed by names like "opensuse-leap-all".
//
// Live tables are produced by the resolver in the
// [github.com/quay/distroalias/opensuse] package; a frozen snapshot of the
// active releases is available from [CachedActiveAliases].
package distroalias

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Well-known values for openSUSE Tumbleweed.
//
// Tumbleweed is a rolling release, so it is never keyed by version.
const (
	TumbleweedNameVer = `opensuse-tumbleweed`
	TumbleweedProject = `openSUSE:Factory`
)

// Distro is a single openSUSE distribution release.
//
// Distro is comparable: two values are equal when all their fields are equal,
// so they can be used directly as map keys.
type Distro struct {
	// Full name of the distribution, e.g. "openSUSE Leap".
	Name string `json:"name" yaml:"name"`
	// Version of the release. Empty means "rolling" and is only expected for
	// Tumbleweed in a cached table.
	Version string `json:"version" yaml:"version"`
	// Name and version in the form used for mock chroot names, e.g.
	// "opensuse-leap-15.6".
	NameVer string `json:"namever" yaml:"namever"`
	// Main project on build.opensuse.org the release is built from. Empty if
	// no project could be found.
	OBSProjectName string `json:"obs_project_name,omitempty" yaml:"obs_project_name,omitempty"`
	// Active reports whether the release is still maintained.
	Active bool `json:"active" yaml:"active"`
}

// NewDistro returns a Distro with the NameVer derived from the name and
// version.
func NewDistro(name, version, obsProject string, active bool) Distro {
	return Distro{
		Name:           name,
		Version:        version,
		NameVer:        MakeNameVer(name, version),
		OBSProjectName: obsProject,
		Active:         active,
	}
}

// MakeNameVer builds the "namever" identifier for a release: the lowercased
// name with spaces replaced by hyphens, a hyphen, and the version.
//
// This is compatible with mock chroot names.
func MakeNameVer(name, version string) string {
	// Casers are stateful, so one is constructed per call.
	n := cases.Lower(language.Und).String(name)
	return strings.ReplaceAll(n, " ", "-") + "-" + version
}

// IsTumbleweed reports whether the Distro describes openSUSE Tumbleweed.
func (d Distro) IsTumbleweed() bool {
	return d.NameVer == TumbleweedNameVer
}

// String implements [fmt.Stringer].
func (d Distro) String() string {
	return d.NameVer
}
