package gen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"

	"github.com/recgen/recgen/schema"
)

var rules = ruleset()

func ruleset() *inflect.Ruleset {
	r := inflect.NewDefaultRuleset()
	for _, w := range []string{"ID", "SQL", "URL", "API", "HTTP", "JSON", "UID"} {
		r.AddAcronym(w)
	}
	return r
}

// Type is a record type of the graph, decorated with the naming
// helpers generation needs.
type Type struct {
	*schema.Record
	graph *Graph
	attrs []*Attribute
}

func newType(g *Graph, r *schema.Record) *Type {
	t := &Type{Record: r, graph: g}
	for i := range r.Attributes {
		t.attrs = append(t.attrs, &Attribute{Attribute: r.Attributes[i], typ: t})
	}
	return t
}

// StructName returns the Go struct name of the generated type.
func (t *Type) StructName() string { return pascal(t.Name) }

// IDName returns the name of the typed identifier of the type.
func (t *Type) IDName() string { return t.StructName() + "ID" }

// Receiver returns the receiver name of the generated type. It is
// fixed so it cannot collide with the locals generated bodies declare.
func (t *Type) Receiver() string {
	return "m"
}

// FileName returns the generated source file name for the type.
func (t *Type) FileName() string { return snake(t.Name) + ".go" }

// PluralName returns the plural of the struct name, used by batch
// operation names.
func (t *Type) PluralName() string { return rules.Pluralize(t.StructName()) }

// Attrs returns the attributes in declaration order.
func (t *Type) Attrs() []*Attribute { return t.attrs }

// VisibleAttrs returns the attributes exposed through introspection.
// Secret attributes are excluded entirely.
func (t *Type) VisibleAttrs() []*Attribute {
	var vs []*Attribute
	for _, a := range t.attrs {
		if !a.Secret {
			vs = append(vs, a)
		}
	}
	return vs
}

// Attr returns the attribute with the given schema name, if any.
func (t *Type) Attr(name string) (*Attribute, bool) {
	for _, a := range t.attrs {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// HasValidator reports whether the record declares a validator
// expression.
func (t *Type) HasValidator() bool { return t.Validator != "" }

// HasSecret reports whether any attribute is secret.
func (t *Type) HasSecret() bool {
	for _, a := range t.attrs {
		if a.Secret {
			return true
		}
	}
	return false
}

// Attribute is a schema attribute decorated for generation.
type Attribute struct {
	schema.Attribute
	typ *Type
}

// Type returns the record type owning the attribute.
func (a *Attribute) Type() *Type { return a.typ }

// RefType returns the target type of a reference attribute.
func (a *Attribute) RefType() *Type {
	if !a.IsReference() {
		return nil
	}
	return a.typ.graph.mustType(a.Ref)
}

// Column returns the database column name. Reference columns carry an
// _id suffix.
func (a *Attribute) Column() string {
	if a.IsReference() {
		return snake(a.Name) + "_id"
	}
	return snake(a.Name)
}

// StructField returns the Go struct field name of the attribute.
// Reference fields hold the target identifier.
func (a *Attribute) StructField() string {
	if a.IsReference() {
		return pascal(a.Name) + "ID"
	}
	return pascal(a.Name)
}

// Getter returns the getter method name. For references this is the
// identifier getter; the dereferencing getter is named by Deref.
func (a *Attribute) Getter() string { return a.StructField() }

// Deref returns the dereferencing getter name of a reference
// attribute.
func (a *Attribute) Deref() string { return pascal(a.Name) }

// Setter returns the setter method name of a mutable attribute.
func (a *Attribute) Setter() string { return "Set" + pascal(a.Name) }

// GoType returns the Go type generated structs hold the attribute in.
// Optional values are pointers so the absent value is representable.
func (a *Attribute) GoType() string {
	base := "int64"
	if a.Kind == schema.KindString {
		base = "string"
	}
	if a.Optional {
		return "*" + base
	}
	return base
}

// IsString reports whether the attribute holds text.
func (a *Attribute) IsString() bool { return a.Kind == schema.KindString }

// pascal converts a snake_case or lowerCamel name to PascalCase,
// applying the acronym rules.
func pascal(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	var b strings.Builder
	for _, w := range words {
		b.WriteString(rules.Capitalize(applyAcronym(w)))
	}
	return b.String()
}

func applyAcronym(w string) string {
	switch strings.ToLower(w) {
	case "id", "sql", "url", "api", "http", "json", "uid":
		return strings.ToUpper(w)
	}
	return w
}

// snake converts a name to snake_case.
func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(rune(s[i-1])) || (i+1 < len(s) && unicode.IsLower(rune(s[i+1])))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		if r == '-' || r == ' ' {
			r = '_'
		}
		b.WriteRune(r)
	}
	return b.String()
}
