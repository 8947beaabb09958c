package gen

// Endpoint is one side of a join record: the attribute on the join
// record and the type it points at.
type Endpoint struct {
	// Attribute on the join record.
	Attribute *Attribute
	// Type the attribute references.
	Type *Type
}

// Join describes an immutable many-to-many join record: exactly two
// mandatory immutable reference attributes and nothing else. Endpoints
// are kept in declaration order.
type Join struct {
	Left  Endpoint
	Right Endpoint
}

// Join reports whether the type is a join record and returns its two
// endpoints in declaration order.
func (t *Type) Join() (*Join, bool) {
	if len(t.attrs) != 2 {
		return nil, false
	}
	for _, a := range t.attrs {
		if !a.IsReference() || a.Optional || a.Mutable {
			return nil, false
		}
	}
	return &Join{
		Left:  Endpoint{Attribute: t.attrs[0], Type: t.attrs[0].RefType()},
		Right: Endpoint{Attribute: t.attrs[1], Type: t.attrs[1].RefType()},
	}, true
}

// IsJoin reports whether the type is a join record.
func (t *Type) IsJoin() bool {
	_, ok := t.Join()
	return ok
}

// BackRef is an inbound reference: a type whose attribute points at
// the receiver.
type BackRef struct {
	// Type holding the reference attribute.
	Type *Type
	// Attribute pointing at the receiver.
	Attribute *Attribute
}

// BackRefs returns the inbound references of the type, one entry per
// (referencing type, attribute) pair. Two attributes on the same
// source yield two entries.
func (t *Type) BackRefs() []BackRef {
	var refs []BackRef
	for _, br := range t.ReferencedBy {
		src := t.graph.mustType(br.Record)
		attr, ok := src.Attr(br.Attribute)
		if !ok {
			continue
		}
		refs = append(refs, BackRef{Type: src, Attribute: attr})
	}
	return refs
}

// Traversal is an indirect relation: the receiver A is referenced by
// join record Through via ThroughAttr, and Target is the join's other
// endpoint reached via TargetAttr.
type Traversal struct {
	// Through is the join record mediating the relation.
	Through *Type
	// ThroughAttr is the join attribute pointing at the owner.
	ThroughAttr *Attribute
	// Target is the other endpoint of the join.
	Target *Type
	// TargetAttr is the join attribute pointing at Target.
	TargetAttr *Attribute
}

// Traversals derives the indirect relations of the type: for every
// join record holding a reference to it, the path through that join
// to its other endpoint. Self-referential joins are rejected at
// validation, so the other endpoint is always unambiguous.
func (t *Type) Traversals() []*Traversal {
	var ts []*Traversal
	for _, br := range t.BackRefs() {
		join, ok := br.Type.Join()
		if !ok {
			continue
		}
		through, target := join.Left, join.Right
		if through.Attribute.Name != br.Attribute.Name {
			through, target = join.Right, join.Left
		}
		ts = append(ts, &Traversal{
			Through:     br.Type,
			ThroughAttr: through.Attribute,
			Target:      target.Type,
			TargetAttr:  target.Attribute,
		})
	}
	return ts
}
