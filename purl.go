package distroalias

import "github.com/package-url/packageurl-go"

// PURLDistroKey is the package URL qualifier key naming the distribution an
// RPM was built for.
const PURLDistroKey = "distro"

// PURLQualifier returns the "distro" qualifier identifying this release in an
// RPM package URL, e.g. "distro=opensuse-leap-15.6".
func (d Distro) PURLQualifier() packageurl.Qualifier {
	return packageurl.Qualifier{
		Key:   PURLDistroKey,
		Value: d.NameVer,
	}
}

// FindPURL returns the Distro named by the "distro" qualifier of the provided
// package URL, if it's present in the table.
func (t AliasTable) FindPURL(p packageurl.PackageURL) (Distro, bool) {
	nv, ok := p.Qualifiers.Map()[PURLDistroKey]
	if !ok || nv == "" {
		return Distro{}, false
	}
	return t.Find(nv)
}
