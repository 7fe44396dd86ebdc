package opensuse

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/quay/distroalias"
)

// Family is one distribution family from the release catalog, with its
// releases in catalog order.
type family struct {
	ID       string
	Releases []release
}

// Release is an entry in the release catalog.
type release struct {
	Name    string
	Version string
	// State is "Stable" or "EOL". Older entries don't carry it at all, in
	// which case the release is considered active.
	State string
}

// StateEOL marks a release as no longer maintained.
const stateEOL = `EOL`

func (r release) Active() bool {
	return r.State != stateEOL
}

// ReleaseEntry is the wire form of a release catalog entry.
//
// Pointers are used so that missing fields can be told apart from empty ones.
type releaseEntry struct {
	Name    *string `json:"name" validate:"required"`
	Version *string `json:"version" validate:"required"`
	State   *string `json:"state"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		n, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if n == "-" {
			return ""
		}
		return n
	})
	return v
}

// DecodeReleases reads a release catalog: a JSON object mapping family
// identifiers to arrays of releases. The object's key order is kept.
func decodeReleases(r io.Reader) ([]family, error) {
	const op = `opensuse.decodeReleases`
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &distroalias.Error{
			Op:      op,
			Kind:    distroalias.ErrTransport,
			Message: "unable to read release catalog",
			Inner:   err,
		}
	}
	m := orderedmap.New[string, []releaseEntry]()
	if err := json.Unmarshal(b, m); err != nil {
		kind := distroalias.ErrDecode
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			kind = distroalias.ErrSchema
		}
		return nil, &distroalias.Error{
			Op:      op,
			Kind:    kind,
			Message: "unable to decode release catalog",
			Inner:   err,
		}
	}

	out := make([]family, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		f := family{
			ID:       p.Key,
			Releases: make([]release, 0, len(p.Value)),
		}
		for i := range p.Value {
			e := &p.Value[i]
			if err := validate.Struct(e); err != nil {
				return nil, &distroalias.Error{
					Op:      op,
					Kind:    distroalias.ErrSchema,
					Message: fmt.Sprintf("release %s[%d]: %s", p.Key, i, describeValidation(err)),
					Inner:   err,
				}
			}
			rel := release{
				Name:    *e.Name,
				Version: *e.Version,
			}
			if e.State != nil {
				rel.State = *e.State
			}
			f.Releases = append(f.Releases, rel)
		}
		out = append(out, f)
	}
	return out, nil
}

func describeValidation(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	fs := make([]string, len(ve))
	for i, fe := range ve {
		fs[i] = fmt.Sprintf("%q is %s", fe.Field(), fe.Tag())
	}
	return strings.Join(fs, ", ")
}

// Product is a product element from the product list.
type product struct {
	Name          string `xml:"name,attr"`
	OriginProject string `xml:"originproject,attr"`
}

// ProductList is the product list document. The root element's name is not
// checked.
type productList struct {
	Products []product `xml:"product"`
}

// DecodeProducts reads a product list.
func decodeProducts(r io.Reader) ([]product, error) {
	var l productList
	if err := xml.NewDecoder(r).Decode(&l); err != nil {
		return nil, &distroalias.Error{
			Op:      "opensuse.decodeProducts",
			Kind:    distroalias.ErrDecode,
			Message: "unable to decode product list",
			Inner:   err,
		}
	}
	return l.Products, nil
}
