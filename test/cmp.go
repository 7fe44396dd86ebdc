package test

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/quay/distroalias"
)

// IgnoreDistroOrder compares slices of [distroalias.Distro] as sets.
var IgnoreDistroOrder = cmp.Options{
	cmpopts.SortSlices(func(a, b distroalias.Distro) bool {
		if a.NameVer != b.NameVer {
			return a.NameVer < b.NameVer
		}
		return !a.Active && b.Active
	}),
	cmpopts.EquateEmpty(),
}

// DistroSet returns the provided releases as a set.
func DistroSet(ds []distroalias.Distro) map[distroalias.Distro]struct{} {
	s := make(map[distroalias.Distro]struct{}, len(ds))
	for _, d := range ds {
		s[d] = struct{}{}
	}
	return s
}

// IgnoreStringOrder compares slices of strings as sets.
var IgnoreStringOrder = cmpopts.SortSlices(func(a, b string) bool { return a < b })
