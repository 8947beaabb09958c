// Package recgen provides the runtime contract shared by all generated
// record types: the reflection protocol that lets generic tooling
// enumerate, load, create and mutate record instances without static
// knowledge of their concrete type.
//
// The package is consumed from two sides. Generated code (produced by
// compiler/gen/sql) implements the Record, Introspection and Factory
// interfaces and registers its types in the package registry. Generic
// tooling looks types up by name and manipulates instances through
// textual attribute values only.
package recgen

import (
	"context"

	"github.com/recgen/recgen/dialect"
)

// Kind is the base type of an attribute.
type Kind int

const (
	// KindInt is a 64-bit integer attribute.
	KindInt Kind = iota
	// KindString is a text attribute.
	KindString
	// KindRef is a reference to another record type. The target type
	// name is carried next to the kind in Attribute.Ref.
	KindRef
)

// String returns the schema-document tag for the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindString:
		return "string"
	case KindRef:
		return "reference"
	default:
		return "unknown"
	}
}

// Attribute describes one visible attribute of a record type for
// generic introspection. Secret attributes are never represented as
// Attribute values; they are absent from the protocol entirely.
type Attribute struct {
	// Name of the attribute as declared in the schema.
	Name string
	// Kind is the base type.
	Kind Kind
	// Ref holds the target record type name when Kind is KindRef.
	Ref string
	// Optional reports whether the attribute may be absent.
	Optional bool
	// Mutable reports whether the attribute has a setter.
	Mutable bool
}

// BackReference identifies one attribute of another record type that
// points at the described type.
type BackReference struct {
	// Type is the referencing record type name.
	Type string
	// Attribute is the name of the reference attribute on Type.
	Attribute string
}

// Record is the dynamic handle to one persisted record instance.
// All generated record types implement it.
//
// A record moves through three states: unpersisted (only reachable
// inside create paths), persisted at version v, and deleted. Delete is
// terminal; a deleted handle fails every subsequent mutation with a
// NotFoundError.
type Record interface {
	// TypeName returns the record type name.
	TypeName() string
	// ID returns the store-assigned identifier.
	ID() int64
	// Version returns the optimistic-concurrency version counter.
	Version() int64
	// Get returns the textual value of a visible attribute. Optional
	// values use the parenthesized encoding (see ParseOptional).
	// Secret attributes are unknown to Get.
	Get(name string) (string, error)
	// Set parses value and persists it through the attribute's typed
	// setter. It fails with UnknownAttributeError for unknown names,
	// ImmutableAttributeError for id, version and non-mutable
	// attributes, and ParseError when the text does not convert.
	Set(ctx context.Context, conn dialect.ExecQuerier, name, value string) error
	// Delete removes the record from the store. The handle is unusable
	// afterwards.
	Delete(ctx context.Context, conn dialect.ExecQuerier) error
}

// Introspection describes one record type and provides the generic
// entry points into its persistence unit. One implementation per
// generated type is registered in the package registry by the
// generated runtime glue.
type Introspection interface {
	// Name returns the record type name.
	Name() string
	// Table returns the persisted-collection name.
	Table() string
	// Category returns the documentation category, or "".
	Category() string
	// AttributeNames returns the visible attribute names in
	// declaration order.
	AttributeNames() []string
	// Attributes returns the visible attribute descriptions in
	// declaration order.
	Attributes() []Attribute
	// BackReferences lists every (type, attribute) pair referencing
	// this type, one entry per referencing attribute.
	BackReferences() []BackReference
	// Load returns the instance with the given identifier.
	Load(ctx context.Context, conn dialect.ExecQuerier, id int64) (Record, error)
	// LoadMany returns up to limit instances in ascending identifier
	// order, skipping the first offset.
	LoadMany(ctx context.Context, conn dialect.ExecQuerier, offset, limit int64) ([]Record, error)
	// Count returns the number of persisted instances.
	Count(ctx context.Context, conn dialect.ExecQuerier) (int64, error)
	// NewFactory returns a fresh generic factory for this type.
	NewFactory() Factory
	// GetReferencing returns all instances of refType whose attribute
	// refAttr points at the instance with the given id, in ascending
	// identifier order. An unrecognized (refType, refAttr) pair is a
	// NotFoundError, never an empty list.
	GetReferencing(ctx context.Context, conn dialect.ExecQuerier, id int64, refType, refAttr string) ([]Record, error)
	// GetRelated resolves an indirect traversal through a join record:
	// the instances of related reachable from id through relation,
	// where refAttr is the join attribute pointing back at this type.
	// An unrecognized (related, relation, refAttr) triple is a
	// NotFoundError.
	GetRelated(ctx context.Context, conn dialect.ExecQuerier, id int64, related, relation, refAttr string) ([]Record, error)
	// Iterate returns a lazy iterator over the inclusive identifier
	// range [from, to]. The iterator takes exclusive use of conn for
	// its lifetime.
	Iterate(conn dialect.ExecQuerier, from, to int64) *Iterator
}

// Factory accumulates attribute values as text and finalizes them into
// a typed create. A failed Set leaves previously set attributes
// intact.
type Factory interface {
	// Set records the textual value for an attribute. Values for "id"
	// and "version" are ignored. Unknown names fail with
	// UnknownAttributeError; unconvertible text fails with ParseError.
	Set(name, value string) error
	// Create resolves reference attributes by loading their targets
	// from the recorded textual identifiers, then performs a typed
	// create. It fails with MissingMandatoryError naming the first
	// mandatory attribute (in declaration order) that was never set.
	Create(ctx context.Context, conn dialect.ExecQuerier) (Record, error)
}
