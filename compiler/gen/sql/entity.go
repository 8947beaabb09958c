package sql

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/recgen/recgen/compiler/gen"
)

// genEntity generates the persistence unit of one record type.
func genEntity(g *gen.Graph, t *gen.Type, p *gen.Plan) *jen.File {
	f := newFile(g)
	genIDType(f, t)
	genStruct(f, t)
	genScan(f, t)
	genCreate(f, t, p)
	genMassCreate(f, t, p)
	genLoaders(f, t, p)
	genGetters(f, t, p)
	genSetters(f, t, p)
	genDelete(f, t)
	genGenericGet(f, t)
	genGenericSet(f, t)
	genIntrospection(f, g, t, p)
	genFactory(f, t)
	return f
}

func genIDType(f *jen.File, t *gen.Type) {
	f.Commentf("%s is the typed identifier of %s.", t.IDName(), t.StructName())
	f.Type().Id(t.IDName()).Int64()
}

func genStruct(f *jen.File, t *gen.Type) {
	if t.Comment != "" {
		f.Commentf("%s is a handle to one persisted %s record. %s", t.StructName(), t.Name, t.Comment)
	} else {
		f.Commentf("%s is a handle to one persisted %s record.", t.StructName(), t.Name)
	}
	f.Type().Id(t.StructName()).StructFunc(func(gr *jen.Group) {
		gr.Id("id").Int64()
		gr.Id("version").Int64()
		gr.Id("deleted").Bool()
		for _, a := range t.Attrs() {
			gr.Id(fieldName(a)).Add(goType(a))
		}
	})
}

// genScan generates the row scanner, query helper and the converter
// widening handles to the generic record interface.
func genScan(f *jen.File, t *gen.Type) {
	name := t.StructName()
	f.Commentf("scan%s reads full select rows into handles.", t.PluralName())
	f.Func().Id("scan"+t.PluralName()).
		Params(jen.Id("rows").Op("*").Qual("database/sql", "Rows")).
		Params(jen.Index().Op("*").Id(name), jen.Error()).
		BlockFunc(func(gr *jen.Group) {
			gr.Defer().Id("rows").Dot("Close").Call()
			gr.Var().Id("out").Index().Op("*").Id(name)
			gr.For(jen.Id("rows").Dot("Next").Call()).BlockFunc(func(lp *jen.Group) {
				lp.Var().Id("r").Id(name)
				scanArgs := []jen.Code{
					jen.Op("&").Id("r").Dot("id"),
					jen.Op("&").Id("r").Dot("version"),
				}
				var fixups []jen.Code
				for _, a := range t.Attrs() {
					if !a.Optional {
						scanArgs = append(scanArgs, jen.Op("&").Id("r").Dot(fieldName(a)))
						continue
					}
					local, inner := fieldName(a)+"Null", "Int64"
					null := "NullInt64"
					if a.IsString() {
						inner, null = "String", "NullString"
					}
					lp.Var().Id(local).Qual("database/sql", null)
					scanArgs = append(scanArgs, jen.Op("&").Id(local))
					fixups = append(fixups, jen.If(jen.Id(local).Dot("Valid")).Block(
						jen.Id("v").Op(":=").Id(local).Dot(inner),
						jen.Id("r").Dot(fieldName(a)).Op("=").Op("&").Id("v"),
					))
				}
				lp.If(
					jen.Err().Op(":=").Id("rows").Dot("Scan").Call(scanArgs...),
					jen.Err().Op("!=").Nil(),
				).Block(jen.Return(jen.Nil(), jen.Err()))
				for _, fx := range fixups {
					lp.Add(fx)
				}
				lp.Id("out").Op("=").Append(jen.Id("out"), jen.Op("&").Id("r"))
			})
			gr.Return(jen.Id("out"), jen.Id("rows").Dot("Err").Call())
		})

	f.Commentf("query%s runs query against conn and scans the result set.", t.PluralName())
	f.Func().Id("query"+t.PluralName()).
		Params(append(ctxConnParams(), jen.Id("query").String(), jen.Id("args").Op("...").Any())...).
		Params(jen.Index().Op("*").Id(name), jen.Error()).
		Block(
			jen.List(jen.Id("rows"), jen.Err()).Op(":=").Id("conn").Dot("QueryContext").Call(jen.Id("ctx"), jen.Id("query"), jen.Id("args").Op("...")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Id("scan"+t.PluralName()).Call(jen.Id("rows"))),
		)

	f.Commentf("%sRecords widens handles to the generic record interface.", unexport(name))
	f.Func().Id(unexport(name)+"Records").
		Params(jen.Id("rs").Index().Op("*").Id(name)).
		Index().Qual(recgenPkg, "Record").
		Block(
			jen.Id("out").Op(":=").Make(jen.Index().Qual(recgenPkg, "Record"), jen.Len(jen.Id("rs"))),
			jen.For(jen.Id("i").Op(":=").Range().Id("rs")).Block(
				jen.Id("out").Index(jen.Id("i")).Op("=").Id("rs").Index(jen.Id("i")),
			),
			jen.Return(jen.Id("out")),
		)
}

func genCreate(f *jen.File, t *gen.Type, p *gen.Plan) {
	name := t.StructName()
	params := ctxConnParams()
	fields := jen.Dict{}
	var args []jen.Code
	for _, a := range t.Attrs() {
		params = append(params, jen.Id(fieldName(a)).Add(goType(a)))
		fields[jen.Id(fieldName(a))] = jen.Id(fieldName(a))
		args = append(args, jen.Id(fieldName(a)))
	}
	insert := "INSERT INTO " + t.TableName() + " (" + strings.Join(columns(t), ", ") +
		", version) VALUES (" + placeholders(len(t.Attrs())) + ", 0)"

	f.Commentf("Create%s persists a new %s at version 0.", name, t.Name)
	f.Func().Id("Create"+name).
		Params(params...).
		Params(jen.Op("*").Id(name), jen.Error()).
		BlockFunc(func(gr *jen.Group) {
			gr.Id("r").Op(":=").Op("&").Id(name).Values(fields)
			if p.Validator != "" {
				gr.If(
					jen.Err().Op(":=").Qual(recgenPkg, "Validate").Call(jen.Lit(t.Name), jen.Id("r")),
					jen.Err().Op("!=").Nil(),
				).Block(jen.Return(jen.Nil(), jen.Err()))
			}
			gr.List(jen.Id("res"), jen.Err()).Op(":=").Id("conn").Dot("ExecContext").Call(
				append([]jen.Code{jen.Id("ctx"), jen.Lit(insert)}, args...)...,
			)
			gr.If(jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), mutationErr(t, "create")),
			)
			gr.List(jen.Id("id"), jen.Err()).Op(":=").Id("res").Dot("LastInsertId").Call()
			gr.If(jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), mutationErr(t, "create")),
			)
			gr.Id("r").Dot("id").Op("=").Id("id")
			gr.Return(jen.Id("r"), jen.Nil())
		})
}

func genMassCreate(f *jen.File, t *gen.Type, p *gen.Plan) {
	name := t.StructName()
	f.Commentf("%sInput carries the attribute values of one record in a batch create.", name)
	f.Type().Id(name + "Input").StructFunc(func(gr *jen.Group) {
		for _, a := range t.Attrs() {
			gr.Id(a.StructField()).Add(goType(a))
		}
	})

	insert := "INSERT INTO " + t.TableName() + " (" + strings.Join(columns(t), ", ") + ", version) VALUES "
	tuple := "(" + placeholders(len(t.Attrs())) + ", 0)"

	f.Commentf("Create%s persists all inputs in one atomic insert. Empty input is a no-op.", t.PluralName())
	f.Func().Id("Create"+t.PluralName()).
		Params(append(ctxConnParams(), jen.Id("inputs").Index().Id(name+"Input"))...).
		Error().
		BlockFunc(func(gr *jen.Group) {
			gr.If(jen.Len(jen.Id("inputs")).Op("==").Lit(0)).Block(jen.Return(jen.Nil()))
			if p.Validator != "" {
				fields := jen.Dict{}
				for _, a := range t.Attrs() {
					fields[jen.Id(fieldName(a))] = jen.Id("inputs").Index(jen.Id("i")).Dot(a.StructField())
				}
				gr.For(jen.Id("i").Op(":=").Range().Id("inputs")).Block(
					jen.Id("r").Op(":=").Op("&").Id(name).Values(fields),
					jen.If(
						jen.Err().Op(":=").Qual(recgenPkg, "Validate").Call(jen.Lit(t.Name), jen.Id("r")),
						jen.Err().Op("!=").Nil(),
					).Block(jen.Return(jen.Err())),
				)
			}
			gr.Var().Id("b").Qual("strings", "Builder")
			gr.Id("b").Dot("WriteString").Call(jen.Lit(insert))
			gr.Id("args").Op(":=").Make(jen.Index().Any(), jen.Lit(0), jen.Len(jen.Id("inputs")).Op("*").Lit(len(t.Attrs())))
			gr.For(jen.Id("i").Op(":=").Range().Id("inputs")).BlockFunc(func(lp *jen.Group) {
				lp.If(jen.Id("i").Op(">").Lit(0)).Block(jen.Id("b").Dot("WriteString").Call(jen.Lit(", ")))
				lp.Id("b").Dot("WriteString").Call(jen.Lit(tuple))
				appendArgs := []jen.Code{jen.Id("args")}
				for _, a := range t.Attrs() {
					appendArgs = append(appendArgs, jen.Id("inputs").Index(jen.Id("i")).Dot(a.StructField()))
				}
				lp.Id("args").Op("=").Append(appendArgs...)
			})
			gr.If(
				jen.List(jen.Id("_"), jen.Err()).Op(":=").Id("conn").Dot("ExecContext").Call(
					jen.Id("ctx"), jen.Id("b").Dot("String").Call(), jen.Id("args").Op("..."),
				),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(mutationErr(t, "mass-create")))
			gr.Return(jen.Nil())
		})
}

func genLoaders(f *jen.File, t *gen.Type, p *gen.Plan) {
	name := t.StructName()
	sel := "SELECT " + selectList(t, "") + " FROM " + t.TableName()

	f.Commentf("Load%s returns the %s with the given identifier.", name, t.Name)
	f.Func().Id("Load"+name).
		Params(append(ctxConnParams(), jen.Id("id").Int64())...).
		Params(jen.Op("*").Id(name), jen.Error()).
		Block(
			jen.List(jen.Id("rs"), jen.Err()).Op(":=").Id("query"+t.PluralName()).Call(
				jen.Id("ctx"), jen.Id("conn"), jen.Lit(sel+" WHERE id = ?"), jen.Id("id"),
			),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.If(jen.Len(jen.Id("rs")).Op("==").Lit(0)).Block(
				jen.Return(jen.Nil(), jen.Qual(recgenPkg, "NewNotFoundErrorWithID").Call(jen.Lit(t.Name), jen.Id("id"))),
			),
			jen.Return(jen.Id("rs").Index(jen.Lit(0)), jen.Nil()),
		)

	f.Commentf("Load%sByID is Load%s with the typed identifier.", name, name)
	f.Func().Id("Load"+name+"ByID").
		Params(append(ctxConnParams(), jen.Id("id").Id(t.IDName()))...).
		Params(jen.Op("*").Id(name), jen.Error()).
		Block(jen.Return(jen.Id("Load" + name).Call(jen.Id("ctx"), jen.Id("conn"), jen.Int64().Call(jen.Id("id")))))

	for _, a := range p.UniqueLoaders {
		f.Commentf("Load%sBy%s returns the single %s whose %s equals v, or a not found error.", name, a.StructField(), t.Name, a.Name)
		f.Func().Id("Load"+name+"By"+a.StructField()).
			Params(append(ctxConnParams(), jen.Id("v").Add(baseType(a)))...).
			Params(jen.Op("*").Id(name), jen.Error()).
			Block(
				jen.List(jen.Id("rs"), jen.Err()).Op(":=").Id("query"+t.PluralName()).Call(
					jen.Id("ctx"), jen.Id("conn"), jen.Lit(sel+" WHERE "+a.Column()+" = ?"), jen.Id("v"),
				),
				jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
				jen.If(jen.Len(jen.Id("rs")).Op("==").Lit(0)).Block(
					jen.Return(jen.Nil(), jen.Qual(recgenPkg, "NewNotFoundError").Call(jen.Lit(t.Name))),
				),
				jen.Return(jen.Id("rs").Index(jen.Lit(0)), jen.Nil()),
			)
	}

	if j := p.ContentLoader; j != nil {
		left, right := fieldName(j.Left.Attribute), fieldName(j.Right.Attribute)
		f.Commentf("Load%sByContent returns every %s connecting the two endpoints.", t.PluralName(), t.Name)
		f.Func().Id("Load"+t.PluralName()+"ByContent").
			Params(append(ctxConnParams(), jen.Id(left).Int64(), jen.Id(right).Int64())...).
			Params(jen.Index().Op("*").Id(name), jen.Error()).
			Block(
				jen.Return(jen.Id("query"+t.PluralName()).Call(
					jen.Id("ctx"), jen.Id("conn"),
					jen.Lit(sel+" WHERE "+j.Left.Attribute.Column()+" = ? AND "+j.Right.Attribute.Column()+" = ? ORDER BY id"),
					jen.Id(left), jen.Id(right),
				)),
			)
	}
}

func genGetters(f *jen.File, t *gen.Type, p *gen.Plan) {
	name := t.StructName()
	recv := jen.Id(t.Receiver()).Op("*").Id(name)
	self := jen.Id(t.Receiver())

	f.Comment("ID returns the store identifier.")
	f.Func().Params(recv.Clone()).Id("ID").Params().Int64().Block(jen.Return(self.Clone().Dot("id")))
	f.Comment("Key returns the typed identifier.")
	f.Func().Params(recv.Clone()).Id("Key").Params().Id(t.IDName()).Block(
		jen.Return(jen.Id(t.IDName()).Call(self.Clone().Dot("id"))),
	)
	f.Comment("Version returns the optimistic concurrency counter.")
	f.Func().Params(recv.Clone()).Id("Version").Params().Int64().Block(jen.Return(self.Clone().Dot("version")))
	f.Comment("TypeName returns the record type name.")
	f.Func().Params(recv.Clone()).Id("TypeName").Params().String().Block(jen.Return(jen.Lit(t.Name)))

	for _, g := range p.Getters {
		a := g.Attribute
		if !g.Deref {
			if a.Comment != "" {
				f.Commentf("%s returns the %s attribute. %s", a.Getter(), a.Name, a.Comment)
			} else {
				f.Commentf("%s returns the %s attribute.", a.Getter(), a.Name)
			}
			f.Func().Params(recv.Clone()).Id(a.Getter()).Params().Add(goType(a)).Block(
				jen.Return(self.Clone().Dot(fieldName(a))),
			)
			continue
		}
		target := a.RefType()
		if a.Optional {
			f.Commentf("%s loads the referenced %s. It returns nil without error when the reference is unset.", a.Deref(), target.Name)
			f.Func().Params(recv.Clone()).Id(a.Deref()).
				Params(ctxConnParams()...).
				Params(jen.Op("*").Id(target.StructName()), jen.Error()).
				Block(
					jen.If(self.Clone().Dot(fieldName(a)).Op("==").Nil()).Block(jen.Return(jen.Nil(), jen.Nil())),
					jen.Return(jen.Id("Load"+target.StructName()).Call(
						jen.Id("ctx"), jen.Id("conn"), jen.Op("*").Add(self.Clone().Dot(fieldName(a))),
					)),
				)
			continue
		}
		f.Commentf("%s loads the referenced %s.", a.Deref(), target.Name)
		f.Func().Params(recv.Clone()).Id(a.Deref()).
			Params(ctxConnParams()...).
			Params(jen.Op("*").Id(target.StructName()), jen.Error()).
			Block(
				jen.Return(jen.Id("Load" + target.StructName()).Call(
					jen.Id("ctx"), jen.Id("conn"), self.Clone().Dot(fieldName(a)),
				)),
			)
	}
}

func genSetters(f *jen.File, t *gen.Type, p *gen.Plan) {
	name := t.StructName()
	recv := jen.Id(t.Receiver()).Op("*").Id(name)
	self := jen.Id(t.Receiver())

	for _, a := range p.Setters {
		update := "UPDATE " + t.TableName() + " SET " + a.Column() + " = ?, version = version + 1 WHERE id = ? AND version = ?"
		f.Commentf("%s updates the %s attribute under optimistic concurrency. Setting the current value issues no update.", a.Setter(), a.Name)
		f.Func().Params(recv.Clone()).Id(a.Setter()).
			Params(append(ctxConnParams(), jen.Id("v").Add(goType(a)))...).
			Error().
			BlockFunc(func(gr *jen.Group) {
				gr.If(self.Clone().Dot("deleted")).Block(
					jen.Return(jen.Qual(recgenPkg, "NewNotFoundErrorWithID").Call(jen.Lit(t.Name), self.Clone().Dot("id"))),
				)
				if a.Optional {
					gr.If(jen.Id("v").Op("==").Nil().Op("&&").Add(self.Clone().Dot(fieldName(a))).Op("==").Nil()).Block(jen.Return(jen.Nil()))
					gr.If(jen.Id("v").Op("!=").Nil().Op("&&").Add(self.Clone().Dot(fieldName(a))).Op("!=").Nil().
						Op("&&").Op("*").Id("v").Op("==").Op("*").Add(self.Clone().Dot(fieldName(a)))).Block(jen.Return(jen.Nil()))
				} else {
					gr.If(jen.Id("v").Op("==").Add(self.Clone().Dot(fieldName(a)))).Block(jen.Return(jen.Nil()))
				}
				if p.Validator != "" {
					gr.Id("next").Op(":=").Op("*").Add(self.Clone())
					gr.Id("next").Dot(fieldName(a)).Op("=").Id("v")
					gr.If(
						jen.Err().Op(":=").Qual(recgenPkg, "Validate").Call(jen.Lit(t.Name), jen.Op("&").Id("next")),
						jen.Err().Op("!=").Nil(),
					).Block(jen.Return(jen.Err()))
				}
				gr.List(jen.Id("res"), jen.Err()).Op(":=").Id("conn").Dot("ExecContext").Call(
					jen.Id("ctx"), jen.Lit(update), jen.Id("v"), self.Clone().Dot("id"), self.Clone().Dot("version"),
				)
				gr.If(jen.Err().Op("!=").Nil()).Block(jen.Return(mutationErr(t, "update")))
				gr.List(jen.Id("n"), jen.Err()).Op(":=").Id("res").Dot("RowsAffected").Call()
				gr.If(jen.Err().Op("!=").Nil()).Block(jen.Return(mutationErr(t, "update")))
				gr.If(jen.Id("n").Op("==").Lit(0)).Block(
					jen.Return(jen.Qual(recgenPkg, "NewNotFoundErrorWithID").Call(jen.Lit(t.Name), self.Clone().Dot("id"))),
				)
				gr.Add(self.Clone().Dot(fieldName(a))).Op("=").Id("v")
				gr.Add(self.Clone().Dot("version")).Op("++")
				gr.Return(jen.Nil())
			})
	}
}

func genDelete(f *jen.File, t *gen.Type) {
	recv := jen.Id(t.Receiver()).Op("*").Id(t.StructName())
	self := jen.Id(t.Receiver())
	del := "DELETE FROM " + t.TableName() + " WHERE id = ?"

	f.Comment("Delete removes the record from the store. The handle fails every later mutation.")
	f.Func().Params(recv).Id("Delete").
		Params(ctxConnParams()...).
		Error().
		Block(
			jen.If(self.Clone().Dot("deleted")).Block(
				jen.Return(jen.Qual(recgenPkg, "NewNotFoundErrorWithID").Call(jen.Lit(t.Name), self.Clone().Dot("id"))),
			),
			jen.List(jen.Id("res"), jen.Err()).Op(":=").Id("conn").Dot("ExecContext").Call(
				jen.Id("ctx"), jen.Lit(del), self.Clone().Dot("id"),
			),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(mutationErr(t, "delete"))),
			jen.List(jen.Id("n"), jen.Err()).Op(":=").Id("res").Dot("RowsAffected").Call(),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(mutationErr(t, "delete"))),
			jen.If(jen.Id("n").Op("==").Lit(0)).Block(
				jen.Return(jen.Qual(recgenPkg, "NewNotFoundErrorWithID").Call(jen.Lit(t.Name), self.Clone().Dot("id"))),
			),
			self.Clone().Dot("deleted").Op("=").True(),
			jen.Return(jen.Nil()),
		)
}

func mutationErr(t *gen.Type, op string) jen.Code {
	return jen.Qual(recgenPkg, "NewMutationError").Call(jen.Lit(t.Name), jen.Lit(op), jen.Err())
}

// fieldName returns the unexported struct field of an attribute.
// Reference fields carry an ID suffix.
func fieldName(a *gen.Attribute) string {
	parts := strings.Split(a.Name, "_")
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, p := range parts[1:] {
		b.WriteString(capitalize(p))
	}
	if a.IsReference() {
		b.WriteString("ID")
	}
	return b.String()
}

func capitalize(s string) string {
	switch strings.ToLower(s) {
	case "id", "sql", "url", "api", "http", "json", "uid":
		return strings.ToUpper(s)
	}
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
