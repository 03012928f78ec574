// Package catalog declares the site's content collections: field lists,
// required flags, enums and first-run seed documents. This is configuration
// data consumed by the CLI, the health probe and the content API — the
// engine itself stays schema-less.
package catalog

import (
	"fmt"

	"github.com/avetrovs/vitrine/internal/common"
)

// UsersCollection is reserved for the authentication service and is not part
// of the public content catalog.
const UsersCollection = "users"

// Field describes one declared field of a collection.
type Field struct {
	Name     string
	Required bool
	Enum     []string // nil means any value
	Default  any      // applied when the field is absent
}

// Schema describes one content collection.
type Schema struct {
	Name   string
	Fields []Field
	Seed   []map[string]any
}

// Collections lists every content collection, in display order. The health
// check counts documents across exactly this set.
var Collections = []Schema{
	{
		Name: "services",
		Fields: []Field{
			{Name: "title", Required: true},
			{Name: "description", Required: true},
			{Name: "icon"},
			{Name: "isActive", Default: true},
		},
		Seed: []map[string]any{
			{"title": "Landscape Design", "description": "Custom garden and yard design.", "icon": "leaf", "isActive": true},
			{"title": "Lawn Care", "description": "Seasonal mowing and fertilizing.", "icon": "grass", "isActive": true},
		},
	},
	{
		Name: "testimonials",
		Fields: []Field{
			{Name: "author", Required: true},
			{Name: "text", Required: true},
			{Name: "rating", Required: true, Enum: []string{"1", "2", "3", "4", "5"}},
			{Name: "isActive", Default: true},
		},
		Seed: []map[string]any{
			{"author": "M. Ozols", "text": "Our backyard has never looked better.", "rating": "5", "isActive": true},
		},
	},
	{
		Name: "gallery",
		Fields: []Field{
			{Name: "title", Required: true},
			{Name: "imageUrl", Required: true},
			{Name: "category", Enum: []string{"garden", "lawn", "patio", "other"}, Default: "other"},
		},
	},
	{
		Name: "products",
		Fields: []Field{
			{Name: "name", Required: true},
			{Name: "description"},
			{Name: "price", Required: true},
			{Name: "availability", Enum: []string{"in-stock", "preorder", "discontinued"}, Default: "in-stock"},
		},
	},
	{
		Name: "awards",
		Fields: []Field{
			{Name: "name", Required: true},
			{Name: "year", Required: true},
			{Name: "issuer"},
		},
	},
	{
		Name: "contacts",
		Fields: []Field{
			{Name: "name", Required: true},
			{Name: "email", Required: true},
			{Name: "message", Required: true},
			{Name: "status", Enum: []string{"new", "read", "replied"}, Default: "new"},
		},
	},
	{
		Name: "settings",
		Fields: []Field{
			{Name: "siteName", Required: true},
			{Name: "tagline"},
			{Name: "contactEmail"},
			{Name: "phone"},
		},
		Seed: []map[string]any{
			{"siteName": "Vitrine", "tagline": "Crafted outdoor spaces"},
		},
	},
}

// Names returns the content collection names in catalog order.
func Names() []string {
	out := make([]string, len(Collections))
	for i, c := range Collections {
		out[i] = c.Name
	}
	return out
}

// Lookup returns the schema for a content collection name.
func Lookup(name string) (Schema, bool) {
	for _, c := range Collections {
		if c.Name == name {
			return c, true
		}
	}
	return Schema{}, false
}

// Validate checks a document's declared fields against the schema: required
// fields must be present and non-empty, enum fields must hold a listed
// value. Undeclared fields are allowed — the store is schema-less.
func (s Schema) Validate(doc map[string]any) error {
	for _, f := range s.Fields {
		v, ok := doc[f.Name]
		if !ok || v == nil || v == "" {
			if f.Required {
				return fmt.Errorf("%w: field %q is required", common.ErrValidation, f.Name)
			}
			continue
		}
		if len(f.Enum) > 0 {
			sv := fmt.Sprintf("%v", v)
			found := false
			for _, e := range f.Enum {
				if sv == e {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("%w: field %q must be one of %v", common.ErrValidation, f.Name, f.Enum)
			}
		}
	}
	return nil
}

// ApplyDefaults fills declared defaults into a copy of doc for fields that
// are absent.
func (s Schema) ApplyDefaults(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	for _, f := range s.Fields {
		if f.Default == nil {
			continue
		}
		if _, ok := out[f.Name]; !ok {
			out[f.Name] = f.Default
		}
	}
	return out
}
