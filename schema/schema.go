// Package schema defines the declarative model a schema document is
// parsed into. A Schema is a list of records, each record a list of
// attributes, exactly as written in the YAML source. The compiler/load
// package produces Schemas and resolves references between records;
// this package only carries the data.
package schema

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// AttributeKind enumerates the value domains an attribute can hold.
type AttributeKind string

// Attribute kinds as spelled in schema documents.
const (
	KindInteger   AttributeKind = "integer"
	KindString    AttributeKind = "string"
	KindReference AttributeKind = "reference"
)

// Valid reports whether k is one of the declared kinds.
func (k AttributeKind) Valid() bool {
	switch k {
	case KindInteger, KindString, KindReference:
		return true
	}
	return false
}

// Attribute describes a single column of a record.
type Attribute struct {
	// Name of the attribute. Must be unique within its record.
	Name string `yaml:"name"`
	// Kind of value the attribute holds.
	Kind AttributeKind `yaml:"type"`
	// Ref names the record a reference attribute points at.
	// It is set only when Kind is KindReference.
	Ref string `yaml:"ref,omitempty"`
	// Optional attributes admit the absent value.
	Optional bool `yaml:"optional,omitempty"`
	// Mutable attributes can be updated after creation.
	Mutable bool `yaml:"mutable,omitempty"`
	// Unique attributes get a unique index and a lookup accessor.
	Unique bool `yaml:"unique,omitempty"`
	// Secret attributes are stored but never exposed through the
	// reflection surface.
	Secret bool `yaml:"secret,omitempty"`
	// Comment is carried into generated code and documentation.
	Comment string `yaml:"comment,omitempty"`
}

// IsReference reports whether the attribute points at another record.
func (a Attribute) IsReference() bool { return a.Kind == KindReference }

// Record describes one record type of the schema.
type Record struct {
	// Name of the record type. Must be unique within the schema.
	Name string `yaml:"name"`
	// Table the record persists to. Defaults to the snake_case
	// plural of Name when empty.
	Table string `yaml:"table,omitempty"`
	// Attributes in declaration order.
	Attributes []Attribute `yaml:"attributes"`
	// Category groups records in generated documentation.
	Category string `yaml:"category,omitempty"`
	// Comment is carried into generated code and documentation.
	Comment string `yaml:"comment,omitempty"`
	// Validator is an optional expression evaluated against a
	// record before every create and mutation.
	Validator string `yaml:"validator,omitempty"`

	// ReferencedBy lists the (record, attribute) pairs that point
	// at this record. It is populated by the loader, not by the
	// document author.
	ReferencedBy []BackReference `yaml:"-"`
}

// BackReference identifies an inbound reference attribute.
type BackReference struct {
	// Record holding the reference attribute.
	Record string
	// Attribute is the name of the reference attribute.
	Attribute string
}

// Attribute returns the attribute with the given name, if any.
func (r *Record) Attribute(name string) (Attribute, bool) {
	for _, a := range r.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

var tableRules = inflect.NewDefaultRuleset()

// TableName returns the table the record persists to: the declared
// Table, or the snake_case plural of the record name.
func (r *Record) TableName() string {
	if r.Table != "" {
		return r.Table
	}
	return tableRules.Pluralize(snake(r.Name))
}

// snake converts a PascalCase record name to snake_case.
func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(rune(s[i-1])) || (i+1 < len(s) && unicode.IsLower(rune(s[i+1])))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// References returns the reference attributes in declaration order.
func (r *Record) References() []Attribute {
	var refs []Attribute
	for _, a := range r.Attributes {
		if a.IsReference() {
			refs = append(refs, a)
		}
	}
	return refs
}

// Schema is a parsed schema document.
type Schema struct {
	// Records in declaration order.
	Records []*Record `yaml:"records"`
}

// Record returns the record with the given name, if any.
func (s *Schema) Record(name string) (*Record, bool) {
	for _, r := range s.Records {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}
