// Package doc renders the documentation artifacts of a graph: a
// markdown catalog partitioned by category and a dot diagram of the
// relations between record types.
package doc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/recgen/recgen/compiler/gen"
)

// Emitter produces the documentation artifacts.
type Emitter struct {
	// Title heads the markdown catalog.
	Title string
}

// NewEmitter returns a documentation emitter.
func NewEmitter(title string) *Emitter {
	if title == "" {
		title = "Schema catalog"
	}
	return &Emitter{Title: title}
}

// Emit implements gen.Emitter.
func (e *Emitter) Emit(g *gen.Graph) ([]gen.File, error) {
	return []gen.File{
		{Name: "catalog.md", Content: []byte(e.markdown(g))},
		{Name: "schema.dot", Content: []byte(e.dot(g))},
	}, nil
}

// markdown renders the catalog, one section per category in sorted
// order. Records without a category are grouped under "Uncategorized"
// at the end.
func (e *Emitter) markdown(g *gen.Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", e.Title)

	byCategory := make(map[string][]*gen.Type)
	var categories []string
	for _, t := range g.Nodes {
		c := t.Category
		if c == "" {
			c = "Uncategorized"
		}
		if _, ok := byCategory[c]; !ok && c != "Uncategorized" {
			categories = append(categories, c)
		}
		byCategory[c] = append(byCategory[c], t)
	}
	sort.Strings(categories)
	if _, ok := byCategory["Uncategorized"]; ok {
		categories = append(categories, "Uncategorized")
	}

	for _, c := range categories {
		fmt.Fprintf(&b, "\n## %s\n", c)
		for _, t := range byCategory[c] {
			e.record(&b, t)
		}
	}
	return b.String()
}

func (e *Emitter) record(b *strings.Builder, t *gen.Type) {
	fmt.Fprintf(b, "\n### %s\n\n", t.Name)
	if t.Comment != "" {
		fmt.Fprintf(b, "%s\n\n", t.Comment)
	}
	fmt.Fprintf(b, "Table: `%s`", t.TableName())
	if t.IsJoin() {
		b.WriteString(" (join record)")
	}
	b.WriteString("\n\n")

	b.WriteString("| Attribute | Type | Flags | Comment |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, a := range t.Attrs() {
		typ := string(a.Kind)
		if a.IsReference() {
			typ = "→ " + a.Ref
		}
		var flags []string
		if a.Optional {
			flags = append(flags, "optional")
		}
		if !a.Mutable {
			flags = append(flags, "immutable")
		}
		if a.Unique {
			flags = append(flags, "unique")
		}
		if a.Secret {
			flags = append(flags, "secret")
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", a.Name, typ, strings.Join(flags, ", "), a.Comment)
	}

	if refs := t.BackRefs(); len(refs) > 0 {
		b.WriteString("\nReferenced by:\n")
		for _, br := range refs {
			fmt.Fprintf(b, "- %s.%s\n", br.Type.Name, br.Attribute.Name)
		}
	}
}

// dot renders the relation diagram. Entities are nodes and references
// directed arcs, dashed when optional. A join record collapses into a
// single bidirectional arc between its endpoints unless it is itself
// referenced, in which case it stays a node.
func (e *Emitter) dot(g *gen.Graph) string {
	var b strings.Builder
	b.WriteString("digraph schema {\n")
	b.WriteString("    node [shape=box];\n")

	collapsed := make(map[string]bool)
	for _, t := range g.Nodes {
		if t.IsJoin() && len(t.BackRefs()) == 0 {
			collapsed[t.Name] = true
		}
	}

	for _, t := range g.Nodes {
		if collapsed[t.Name] {
			continue
		}
		fmt.Fprintf(&b, "    %q;\n", t.Name)
	}
	for _, t := range g.Nodes {
		if collapsed[t.Name] {
			join, _ := t.Join()
			fmt.Fprintf(&b, "    %q -> %q [dir=both, label=%q];\n",
				join.Left.Type.Name, join.Right.Type.Name, t.Name)
			continue
		}
		for _, a := range t.Attrs() {
			if !a.IsReference() {
				continue
			}
			attrs := fmt.Sprintf("label=%q", a.Name)
			if a.Optional {
				attrs += ", style=dashed"
			}
			fmt.Fprintf(&b, "    %q -> %q [%s];\n", t.Name, a.Ref, attrs)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
