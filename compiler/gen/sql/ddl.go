package sql

import (
	"fmt"
	"strings"

	"github.com/recgen/recgen/compiler/gen"
	"github.com/recgen/recgen/dialect"
)

// DDL emits the table creation script of a graph for one dialect.
// Every record type maps to one table: an integer id primary key, one
// column per attribute in declaration order (nullable iff optional,
// a foreign key iff reference) and an integer version column. Unique
// attributes get a unique index.
type DDL struct {
	Dialect string
}

// NewDDL returns a DDL emitter for the given dialect.
func NewDDL(d string) *DDL { return &DDL{Dialect: d} }

// Emit implements gen.Emitter.
func (d *DDL) Emit(g *gen.Graph) ([]gen.File, error) {
	if d.Dialect != dialect.SQLite && d.Dialect != dialect.Postgres {
		return nil, fmt.Errorf("sql: unsupported dialect %q", d.Dialect)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "-- Schema for dialect %s. Generated by recgen.\n", d.Dialect)
	for _, t := range g.Nodes {
		b.WriteString("\n")
		d.table(&b, t)
	}
	for _, t := range g.Nodes {
		d.indexes(&b, t)
	}
	return []gen.File{{Name: "schema.sql", Content: []byte(b.String())}}, nil
}

func (d *DDL) table(b *strings.Builder, t *gen.Type) {
	fmt.Fprintf(b, "CREATE TABLE IF NOT EXISTS %s (\n", t.TableName())
	fmt.Fprintf(b, "    id %s,\n", d.idColumn())
	for _, a := range t.Attrs() {
		fmt.Fprintf(b, "    %s %s", a.Column(), d.columnType(a))
		if !a.Optional {
			b.WriteString(" NOT NULL")
		}
		if a.IsReference() {
			fmt.Fprintf(b, " REFERENCES %s (id)", a.RefType().TableName())
		}
		b.WriteString(",\n")
	}
	b.WriteString("    version " + d.intType() + " NOT NULL\n);\n")
}

func (d *DDL) indexes(b *strings.Builder, t *gen.Type) {
	for _, a := range t.Attrs() {
		if !a.Unique {
			continue
		}
		fmt.Fprintf(b, "CREATE UNIQUE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s);\n",
			t.TableName(), a.Column(), t.TableName(), a.Column())
	}
}

func (d *DDL) idColumn() string {
	if d.Dialect == dialect.Postgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (d *DDL) intType() string {
	if d.Dialect == dialect.Postgres {
		return "BIGINT"
	}
	return "INTEGER"
}

func (d *DDL) columnType(a *gen.Attribute) string {
	if a.IsString() {
		return "TEXT"
	}
	return d.intType()
}
