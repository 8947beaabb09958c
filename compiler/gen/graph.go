// Package gen turns a validated schema into the intermediate
// representation generation runs on: a Graph of Types carrying naming
// helpers, relation classification and per-type capability plans.
package gen

import (
	"fmt"

	"github.com/recgen/recgen/compiler/load"
	"github.com/recgen/recgen/schema"
)

// Config holds generation settings shared by all emitters.
type Config struct {
	// Package is the Go package name of the generated model.
	Package string
	// Target is the directory generated files are written to.
	Target string
	// Header is written verbatim at the top of every generated file.
	Header string
}

// Graph is the generation IR of a schema. It is built once from a
// validated schema and read-only afterwards.
type Graph struct {
	Config
	// Nodes in schema declaration order.
	Nodes []*Type

	byName map[string]*Type
}

// NewGraph builds the IR for a schema. The schema must have passed
// load.Validate; NewGraph re-runs it and refuses invalid input so no
// emitter ever sees a dangling reference.
func NewGraph(c Config, s *schema.Schema) (*Graph, error) {
	if err := load.Validate(s); err != nil {
		return nil, err
	}
	if c.Package == "" {
		c.Package = "model"
	}
	g := &Graph{Config: c, byName: make(map[string]*Type, len(s.Records))}
	for _, r := range s.Records {
		t := newType(g, r)
		g.Nodes = append(g.Nodes, t)
		g.byName[r.Name] = t
	}
	return g, nil
}

// Type returns the node with the given record name.
func (g *Graph) Type(name string) (*Type, bool) {
	t, ok := g.byName[name]
	return t, ok
}

// mustType is used after validation has certified the target exists.
func (g *Graph) mustType(name string) *Type {
	t, ok := g.byName[name]
	if !ok {
		panic(fmt.Sprintf("gen: unknown type %q after validation", name))
	}
	return t
}
