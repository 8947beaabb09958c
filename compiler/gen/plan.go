package gen

// Getter is one read accessor of the capability plan. Reference
// attributes produce two entries: the identifier getter and the
// dereferencing getter.
type Getter struct {
	// Attribute read by the getter.
	Attribute *Attribute
	// Deref is set on the dereferencing variant of a reference
	// getter, which loads the target and can fail with NotFound.
	Deref bool
}

// Plan is the capability set generated for one record type. It is a
// pure function of the type and its graph; building a Plan never
// mutates either.
type Plan struct {
	// Type the plan was derived for.
	Type *Type

	// UniqueLoaders holds one load-by-attribute capability per
	// unique attribute. Each returns exactly one match or NotFound.
	UniqueLoaders []*Attribute
	// ContentLoader is set for join records only: a loader taking
	// the two endpoint identifiers and returning any number of
	// matches.
	ContentLoader *Join
	// Getters in declaration order. Secret attributes keep their
	// dedicated getter but never surface in generic access.
	Getters []Getter
	// Setters holds one compare-and-swap setter per mutable
	// attribute. Identifier and version never get one.
	Setters []*Attribute
	// Referencing holds one relation accessor per inbound
	// reference, fetching all referencing records in ascending
	// identifier order.
	Referencing []BackRef
	// Traversals holds one relation accessor per indirect relation
	// through a join record.
	Traversals []*Traversal
	// Validator names the expression checked before create and
	// every mutation, empty when the record declares none.
	Validator string
}

// NewPlan derives the capability set of a type. Create, mass-create,
// load-by-id and the generic factory are unconditional and carry no
// toggle here.
func NewPlan(t *Type) *Plan {
	p := &Plan{Type: t, Validator: t.Record.Validator}
	for _, a := range t.Attrs() {
		if a.Unique {
			p.UniqueLoaders = append(p.UniqueLoaders, a)
		}
		p.Getters = append(p.Getters, Getter{Attribute: a})
		if a.IsReference() {
			p.Getters = append(p.Getters, Getter{Attribute: a, Deref: true})
		}
		if a.Mutable {
			p.Setters = append(p.Setters, a)
		}
	}
	if join, ok := t.Join(); ok {
		p.ContentLoader = join
	}
	p.Referencing = t.BackRefs()
	p.Traversals = t.Traversals()
	return p
}
