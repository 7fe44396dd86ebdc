package distroalias

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Masterminds/semver"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// AllAlias is the key of the synthetic alias containing every release in a
// table.
const AllAlias = `opensuse-all`

// AliasKey returns the alias key for a distribution family, e.g.
// "opensuse-leap-all" for "Leap".
//
// The family is expected to already be in its display form; see the opensuse
// package for the renaming rules.
func AliasKey(family string) string {
	return "opensuse-" + cases.Lower(language.Und).String(family) + "-all"
}

// Alias is a named group of releases.
type Alias struct {
	Key     string
	Distros []Distro
}

// AliasTable is an ordered mapping of alias keys to groups of releases.
//
// The order of the table is significant: the [AllAlias] group is the
// concatenation of all other groups in table order.
//
// AliasTable marshals to and from a JSON or YAML object, keeping the key order.
type AliasTable []Alias

var (
	_ json.Marshaler   = AliasTable(nil)
	_ json.Unmarshaler = (*AliasTable)(nil)
	_ yaml.Marshaler   = AliasTable(nil)
	_ yaml.Unmarshaler = (*AliasTable)(nil)
)

// Get returns the releases stored under "key".
func (t AliasTable) Get(key string) ([]Distro, bool) {
	i := slices.IndexFunc(t, func(a Alias) bool { return a.Key == key })
	if i == -1 {
		return nil, false
	}
	return t[i].Distros, true
}

// Keys returns the alias keys in table order.
func (t AliasTable) Keys() []string {
	ks := make([]string, len(t))
	for i, a := range t {
		ks[i] = a.Key
	}
	return ks
}

// Len reports the number of aliases in the table.
func (t AliasTable) Len() int { return len(t) }

// Aggregate returns the concatenation of every group other than [AllAlias],
// in table order.
func (t AliasTable) Aggregate() []Distro {
	var n int
	for _, a := range t {
		if a.Key != AllAlias {
			n += len(a.Distros)
		}
	}
	out := make([]Distro, 0, n)
	for _, a := range t {
		if a.Key != AllAlias {
			out = append(out, a.Distros...)
		}
	}
	return out
}

// Clone returns a deep copy of the table.
func (t AliasTable) Clone() AliasTable {
	if t == nil {
		return nil
	}
	out := make(AliasTable, len(t))
	for i, a := range t {
		out[i] = Alias{
			Key:     a.Key,
			Distros: slices.Clone(a.Distros),
		}
	}
	return out
}

// Equal reports whether the two tables have the same keys in the same order,
// with equal groups.
func (t AliasTable) Equal(o AliasTable) bool {
	return slices.EqualFunc(t, o, func(a, b Alias) bool {
		return a.Key == b.Key && slices.Equal(a.Distros, b.Distros)
	})
}

// WithoutTumbleweedVersion returns a copy of the table with the Version of
// every Tumbleweed release cleared.
//
// This is the form used for the cached table, as the Tumbleweed version
// changes with every snapshot.
func (t AliasTable) WithoutTumbleweedVersion() AliasTable {
	out := t.Clone()
	for _, a := range out {
		for i := range a.Distros {
			if a.Distros[i].IsTumbleweed() {
				a.Distros[i].Version = ""
			}
		}
	}
	return out
}

// Find returns the first release in table order with the provided NameVer.
func (t AliasTable) Find(namever string) (Distro, bool) {
	for _, a := range t {
		for _, d := range a.Distros {
			if d.NameVer == namever {
				return d, true
			}
		}
	}
	return Distro{}, false
}

// Latest returns the release with the highest version in the group stored
// under "key".
//
// Versions that can't be parsed sort below any parsable version; among equal
// versions the first in the group wins.
func (t AliasTable) Latest(key string) (Distro, bool) {
	ds, ok := t.Get(key)
	if !ok || len(ds) == 0 {
		return Distro{}, false
	}
	var (
		best  Distro
		bestV *semver.Version
		found bool
	)
	for _, d := range ds {
		v, err := semver.NewVersion(d.Version)
		if err != nil {
			v = nil
		}
		switch {
		case !found:
		case bestV == nil && v != nil:
		case v != nil && v.GreaterThan(bestV):
		default:
			continue
		}
		best, bestV, found = d, v, true
	}
	return best, found
}

// MarshalJSON implements [json.Marshaler].
func (t AliasTable) MarshalJSON() ([]byte, error) {
	m := orderedmap.New[string, []Distro](orderedmap.WithCapacity[string, []Distro](len(t)))
	for _, a := range t {
		ds := a.Distros
		if ds == nil {
			ds = []Distro{}
		}
		m.Set(a.Key, ds)
	}
	return json.Marshal(m)
}

// UnmarshalJSON implements [json.Unmarshaler].
func (t *AliasTable) UnmarshalJSON(b []byte) error {
	m := orderedmap.New[string, []Distro]()
	if err := json.Unmarshal(b, m); err != nil {
		return err
	}
	out := make(AliasTable, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		out = append(out, Alias{Key: p.Key, Distros: p.Value})
	}
	*t = out
	return nil
}

// MarshalYAML implements [yaml.Marshaler].
func (t AliasTable) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, a := range t {
		k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: a.Key}
		var v yaml.Node
		ds := a.Distros
		if ds == nil {
			ds = []Distro{}
		}
		if err := v.Encode(ds); err != nil {
			return nil, fmt.Errorf("distroalias: encoding %q: %w", a.Key, err)
		}
		n.Content = append(n.Content, k, &v)
	}
	return n, nil
}

// UnmarshalYAML implements [yaml.Unmarshaler].
func (t *AliasTable) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("distroalias: line %d: expected a mapping", n.Line)
	}
	out := make(AliasTable, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var a Alias
		if err := n.Content[i].Decode(&a.Key); err != nil {
			return err
		}
		if err := n.Content[i+1].Decode(&a.Distros); err != nil {
			return err
		}
		out = append(out, a)
	}
	*t = out
	return nil
}
