package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/recgen/recgen/compiler/gen"
	"github.com/recgen/recgen/schema"
)

// genGenericGet generates the textual attribute reader. Secret
// attributes are unknown to it.
func genGenericGet(f *jen.File, t *gen.Type) {
	recv := jen.Id(t.Receiver()).Op("*").Id(t.StructName())
	self := jen.Id(t.Receiver())

	f.Comment("Get returns the textual value of a visible attribute.")
	f.Func().Params(recv).Id("Get").
		Params(jen.Id("name").String()).
		Params(jen.String(), jen.Error()).
		Block(
			jen.Switch(jen.Id("name")).BlockFunc(func(sw *jen.Group) {
				for _, a := range t.VisibleAttrs() {
					field := self.Clone().Dot(fieldName(a))
					var expr jen.Code
					switch {
					case a.Optional && a.IsString():
						expr = jen.Qual(recgenPkg, "FormatOptionalString").Call(field)
					case a.Optional:
						expr = jen.Qual(recgenPkg, "FormatOptionalInt").Call(field)
					case a.IsString():
						expr = field
					default:
						expr = jen.Qual("strconv", "FormatInt").Call(field, jen.Lit(10))
					}
					sw.Case(jen.Lit(a.Name)).Block(jen.Return(expr, jen.Nil()))
				}
			}),
			jen.Return(jen.Lit(""), jen.Qual(recgenPkg, "NewUnknownAttributeError").Call(jen.Lit(t.Name), jen.Id("name"))),
		)
}

// genGenericSet generates the textual mutator dispatching to the typed
// setters.
func genGenericSet(f *jen.File, t *gen.Type) {
	recv := jen.Id(t.Receiver()).Op("*").Id(t.StructName())
	self := jen.Id(t.Receiver())

	f.Comment("Set parses value and persists it through the attribute's typed setter.")
	f.Func().Params(recv).Id("Set").
		Params(append(ctxConnParams(), jen.Id("name").String(), jen.Id("value").String())...).
		Error().
		Block(
			jen.Switch(jen.Id("name")).BlockFunc(func(sw *jen.Group) {
				sw.Case(jen.Lit("id"), jen.Lit("version")).Block(
					jen.Return(jen.Qual(recgenPkg, "NewImmutableAttributeError").Call(jen.Lit(t.Name), jen.Id("name"))),
				)
				for _, a := range t.VisibleAttrs() {
					if !a.Mutable {
						sw.Case(jen.Lit(a.Name)).Block(
							jen.Return(jen.Qual(recgenPkg, "NewImmutableAttributeError").Call(jen.Lit(t.Name), jen.Id("name"))),
						)
						continue
					}
					call := self.Clone().Dot(a.Setter())
					switch {
					case !a.Optional && a.IsString():
						sw.Case(jen.Lit(a.Name)).Block(
							jen.Return(call.Call(jen.Id("ctx"), jen.Id("conn"), jen.Id("value"))),
						)
					default:
						parse := "ParseInt"
						switch {
						case a.Optional && a.IsString():
							parse = "ParseOptionalString"
						case a.Optional:
							parse = "ParseOptionalInt"
						}
						sw.Case(jen.Lit(a.Name)).Block(
							jen.List(jen.Id("v"), jen.Err()).Op(":=").Qual(recgenPkg, parse).Call(jen.Id("value")),
							jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
							jen.Return(call.Call(jen.Id("ctx"), jen.Id("conn"), jen.Id("v"))),
						)
					}
				}
			}),
			jen.Return(jen.Qual(recgenPkg, "NewUnknownAttributeError").Call(jen.Lit(t.Name), jen.Id("name"))),
		)
}

// genIntrospection generates the Introspection implementation and its
// public accessor.
func genIntrospection(f *jen.File, g *gen.Graph, t *gen.Type, p *gen.Plan) {
	name := t.StructName()
	typ := unexport(name) + "Type"
	recv := jen.Id(typ)
	sel := "SELECT " + selectList(t, "") + " FROM " + t.TableName()

	f.Commentf("%s implements the generic introspection surface of %s.", typ, name)
	f.Type().Id(typ).Struct()

	f.Commentf("%sType returns the introspection of the %s record type.", name, t.Name)
	f.Func().Id(name+"Type").Params().Qual(recgenPkg, "Introspection").Block(
		jen.Return(jen.Id(typ).Values()),
	)

	f.Func().Params(recv.Clone()).Id("Name").Params().String().Block(jen.Return(jen.Lit(t.Name)))
	f.Func().Params(recv.Clone()).Id("Table").Params().String().Block(jen.Return(jen.Lit(t.TableName())))
	f.Func().Params(recv.Clone()).Id("Category").Params().String().Block(jen.Return(jen.Lit(t.Category)))

	f.Func().Params(recv.Clone()).Id("AttributeNames").Params().Index().String().Block(
		jen.Return(jen.Index().String().ValuesFunc(func(vs *jen.Group) {
			for _, a := range t.VisibleAttrs() {
				vs.Lit(a.Name)
			}
		})),
	)

	f.Func().Params(recv.Clone()).Id("Attributes").Params().Index().Qual(recgenPkg, "Attribute").Block(
		jen.Return(jen.Index().Qual(recgenPkg, "Attribute").ValuesFunc(func(vs *jen.Group) {
			for _, a := range t.VisibleAttrs() {
				d := jen.Dict{
					jen.Id("Name"): jen.Lit(a.Name),
					jen.Id("Kind"): jen.Qual(recgenPkg, kindConst(a)),
				}
				if a.IsReference() {
					d[jen.Id("Ref")] = jen.Lit(a.Ref)
				}
				if a.Optional {
					d[jen.Id("Optional")] = jen.True()
				}
				if a.Mutable {
					d[jen.Id("Mutable")] = jen.True()
				}
				vs.Values(d)
			}
		})),
	)

	f.Func().Params(recv.Clone()).Id("BackReferences").Params().Index().Qual(recgenPkg, "BackReference").Block(
		jen.Return(jen.Index().Qual(recgenPkg, "BackReference").ValuesFunc(func(vs *jen.Group) {
			for _, br := range t.BackRefs() {
				vs.Values(jen.Dict{
					jen.Id("Type"):      jen.Lit(br.Type.Name),
					jen.Id("Attribute"): jen.Lit(br.Attribute.Name),
				})
			}
		})),
	)

	f.Func().Params(recv.Clone()).Id("Load").
		Params(append(ctxConnParams(), jen.Id("id").Int64())...).
		Params(jen.Qual(recgenPkg, "Record"), jen.Error()).
		Block(
			jen.List(jen.Id("r"), jen.Err()).Op(":=").Id("Load"+name).Call(jen.Id("ctx"), jen.Id("conn"), jen.Id("id")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Id("r"), jen.Nil()),
		)

	f.Func().Params(recv.Clone()).Id("LoadMany").
		Params(append(ctxConnParams(), jen.Id("offset").Int64(), jen.Id("limit").Int64())...).
		Params(jen.Index().Qual(recgenPkg, "Record"), jen.Error()).
		Block(
			jen.List(jen.Id("rs"), jen.Err()).Op(":=").Id("query"+t.PluralName()).Call(
				jen.Id("ctx"), jen.Id("conn"), jen.Lit(sel+" ORDER BY id LIMIT ? OFFSET ?"), jen.Id("limit"), jen.Id("offset"),
			),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Id(unexport(name)+"Records").Call(jen.Id("rs")), jen.Nil()),
		)

	f.Func().Params(recv.Clone()).Id("Count").
		Params(ctxConnParams()...).
		Params(jen.Int64(), jen.Error()).
		Block(
			jen.List(jen.Id("rows"), jen.Err()).Op(":=").Id("conn").Dot("QueryContext").Call(
				jen.Id("ctx"), jen.Lit("SELECT COUNT(*) FROM "+t.TableName()),
			),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Lit(0), jen.Err())),
			jen.Defer().Id("rows").Dot("Close").Call(),
			jen.Var().Id("n").Int64(),
			jen.If(jen.Id("rows").Dot("Next").Call()).Block(
				jen.If(
					jen.Err().Op(":=").Id("rows").Dot("Scan").Call(jen.Op("&").Id("n")),
					jen.Err().Op("!=").Nil(),
				).Block(jen.Return(jen.Lit(0), jen.Err())),
			),
			jen.Return(jen.Id("n"), jen.Id("rows").Dot("Err").Call()),
		)

	genGetReferencing(f, t, recv.Clone())
	genGetRelated(f, t, recv.Clone())

	f.Func().Params(recv.Clone()).Id("NewFactory").Params().Qual(recgenPkg, "Factory").Block(
		jen.Return(jen.Op("&").Id(unexport(name) + "Factory").Values(jen.Dict{
			jen.Id("values"): jen.Make(jen.Map(jen.String()).String()),
		})),
	)

	f.Func().Params(recv.Clone()).Id("Iterate").
		Params(jen.Id("conn").Qual(dialectPkg, "ExecQuerier"), jen.Id("from").Int64(), jen.Id("to").Int64()).
		Op("*").Qual(recgenPkg, "Iterator").
		Block(
			jen.Return(jen.Qual(recgenPkg, "NewIterator").Call(
				jen.Id("conn"), jen.Id("from"), jen.Id("to"),
				jen.Id(typ).Values().Dot("Load"),
				jen.Func().
					Params(append(ctxConnParams(), jen.Id("after").Int64())...).
					Params(jen.Int64(), jen.Bool(), jen.Error()).
					Block(
						jen.List(jen.Id("rows"), jen.Err()).Op(":=").Id("conn").Dot("QueryContext").Call(
							jen.Id("ctx"),
							jen.Lit("SELECT id FROM "+t.TableName()+" WHERE id > ? ORDER BY id LIMIT 1"),
							jen.Id("after"),
						),
						jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Lit(0), jen.False(), jen.Err())),
						jen.Defer().Id("rows").Dot("Close").Call(),
						jen.If(jen.Op("!").Id("rows").Dot("Next").Call()).Block(
							jen.Return(jen.Lit(0), jen.False(), jen.Id("rows").Dot("Err").Call()),
						),
						jen.Var().Id("id").Int64(),
						jen.If(
							jen.Err().Op(":=").Id("rows").Dot("Scan").Call(jen.Op("&").Id("id")),
							jen.Err().Op("!=").Nil(),
						).Block(jen.Return(jen.Lit(0), jen.False(), jen.Err())),
						jen.Return(jen.Id("id"), jen.True(), jen.Nil()),
					),
			)),
		)
}

func genGetReferencing(f *jen.File, t *gen.Type, recv *jen.Statement) {
	f.Func().Params(recv).Id("GetReferencing").
		Params(append(ctxConnParams(), jen.Id("id").Int64(), jen.Id("refType").String(), jen.Id("refAttr").String())...).
		Params(jen.Index().Qual(recgenPkg, "Record"), jen.Error()).
		Block(
			jen.Switch().BlockFunc(func(sw *jen.Group) {
				for _, br := range t.BackRefs() {
					src := br.Type
					query := "SELECT " + selectList(src, "") + " FROM " + src.TableName() +
						" WHERE " + br.Attribute.Column() + " = ? ORDER BY id"
					sw.Case(jen.Id("refType").Op("==").Lit(src.Name).Op("&&").Id("refAttr").Op("==").Lit(br.Attribute.Name)).Block(
						jen.List(jen.Id("rs"), jen.Err()).Op(":=").Id("query"+src.PluralName()).Call(
							jen.Id("ctx"), jen.Id("conn"), jen.Lit(query), jen.Id("id"),
						),
						jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
						jen.Return(jen.Id(unexport(src.StructName())+"Records").Call(jen.Id("rs")), jen.Nil()),
					)
				}
			}),
			jen.Return(jen.Nil(), jen.Qual(recgenPkg, "NewNotFoundError").Call(
				jen.Lit("relation ").Op("+").Id("refType").Op("+").Lit(".").Op("+").Id("refAttr").Op("+").Lit(" on "+t.Name),
			)),
		)
}

func genGetRelated(f *jen.File, t *gen.Type, recv *jen.Statement) {
	f.Func().Params(recv).Id("GetRelated").
		Params(append(ctxConnParams(), jen.Id("id").Int64(), jen.Id("related").String(), jen.Id("relation").String(), jen.Id("refAttr").String())...).
		Params(jen.Index().Qual(recgenPkg, "Record"), jen.Error()).
		Block(
			jen.Switch().BlockFunc(func(sw *jen.Group) {
				for _, tr := range t.Traversals() {
					query := "SELECT " + selectList(tr.Target, "r") + " FROM " + tr.Target.TableName() +
						" r JOIN " + tr.Through.TableName() + " j ON j." + tr.TargetAttr.Column() +
						" = r.id WHERE j." + tr.ThroughAttr.Column() + " = ? ORDER BY r.id"
					sw.Case(
						jen.Id("related").Op("==").Lit(tr.Target.Name).
							Op("&&").Id("relation").Op("==").Lit(tr.Through.Name).
							Op("&&").Id("refAttr").Op("==").Lit(tr.ThroughAttr.Name),
					).Block(
						jen.List(jen.Id("rs"), jen.Err()).Op(":=").Id("query"+tr.Target.PluralName()).Call(
							jen.Id("ctx"), jen.Id("conn"), jen.Lit(query), jen.Id("id"),
						),
						jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
						jen.Return(jen.Id(unexport(tr.Target.StructName())+"Records").Call(jen.Id("rs")), jen.Nil()),
					)
				}
			}),
			jen.Return(jen.Nil(), jen.Qual(recgenPkg, "NewNotFoundError").Call(
				jen.Lit("relation ").Op("+").Id("relation").Op("+").Lit(".").Op("+").Id("refAttr").
					Op("+").Lit(" to ").Op("+").Id("related").Op("+").Lit(" on "+t.Name),
			)),
		)
}

// genFactory generates the generic text factory. Secret attributes are
// unknown to it: they are excluded from the mandatory check and zero
// valued on create.
func genFactory(f *jen.File, t *gen.Type) {
	name := t.StructName()
	fac := unexport(name) + "Factory"
	recv := jen.Id("f").Op("*").Id(fac)

	f.Commentf("%s accumulates textual attribute values for a generic %s create.", fac, t.Name)
	f.Type().Id(fac).Struct(jen.Id("values").Map(jen.String()).String())

	f.Comment("Set records the textual value of one attribute. A failed Set leaves earlier values intact.")
	f.Func().Params(recv.Clone()).Id("Set").
		Params(jen.Id("name").String(), jen.Id("value").String()).
		Error().
		Block(
			jen.Switch(jen.Id("name")).BlockFunc(func(sw *jen.Group) {
				sw.Case(jen.Lit("id"), jen.Lit("version")).Block(jen.Return(jen.Nil()))
				for _, a := range t.VisibleAttrs() {
					switch {
					case !a.Optional && a.IsString():
						sw.Case(jen.Lit(a.Name)).Block()
					default:
						parse := "ParseInt"
						switch {
						case a.Optional && a.IsString():
							parse = "ParseOptionalString"
						case a.Optional:
							parse = "ParseOptionalInt"
						}
						sw.Case(jen.Lit(a.Name)).Block(
							jen.If(
								jen.List(jen.Id("_"), jen.Err()).Op(":=").Qual(recgenPkg, parse).Call(jen.Id("value")),
								jen.Err().Op("!=").Nil(),
							).Block(jen.Return(jen.Err())),
						)
					}
				}
				sw.Default().Block(
					jen.Return(jen.Qual(recgenPkg, "NewUnknownAttributeError").Call(jen.Lit(t.Name), jen.Id("name"))),
				)
			}),
			jen.Id("f").Dot("values").Index(jen.Id("name")).Op("=").Id("value"),
			jen.Return(jen.Nil()),
		)

	f.Comment("Create resolves references and performs the typed create.")
	f.Func().Params(recv.Clone()).Id("Create").
		Params(ctxConnParams()...).
		Params(jen.Qual(recgenPkg, "Record"), jen.Error()).
		BlockFunc(func(gr *jen.Group) {
			for _, a := range t.VisibleAttrs() {
				if a.Optional {
					continue
				}
				gr.If(
					jen.List(jen.Id("_"), jen.Id("ok")).Op(":=").Id("f").Dot("values").Index(jen.Lit(a.Name)),
					jen.Op("!").Id("ok"),
				).Block(
					jen.Return(jen.Nil(), jen.Qual(recgenPkg, "NewMissingMandatoryError").Call(jen.Lit(t.Name), jen.Lit(a.Name))),
				)
			}
			var args []jen.Code
			for _, a := range t.Attrs() {
				local := fieldName(a)
				args = append(args, jen.Id(local))
				if a.Secret {
					gr.Var().Id(local).Add(goType(a))
					continue
				}
				switch {
				case !a.Optional && a.IsString():
					gr.Id(local).Op(":=").Id("f").Dot("values").Index(jen.Lit(a.Name))
				case !a.Optional && !a.IsReference():
					gr.List(jen.Id(local), jen.Err()).Op(":=").Qual(recgenPkg, "ParseInt").Call(
						jen.Id("f").Dot("values").Index(jen.Lit(a.Name)),
					)
					gr.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
				case !a.Optional && a.IsReference():
					target := a.RefType().StructName()
					gr.List(jen.Id(local+"Raw"), jen.Err()).Op(":=").Qual(recgenPkg, "ParseInt").Call(
						jen.Id("f").Dot("values").Index(jen.Lit(a.Name)),
					)
					gr.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
					gr.List(jen.Id(local+"Ref"), jen.Err()).Op(":=").Id("Load"+target).Call(
						jen.Id("ctx"), jen.Id("conn"), jen.Id(local+"Raw"),
					)
					gr.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
					gr.Id(local).Op(":=").Id(local + "Ref").Dot("ID").Call()
				default:
					gr.Var().Id(local).Add(goType(a))
					parse := "ParseOptionalInt"
					if a.IsString() {
						parse = "ParseOptionalString"
					}
					body := []jen.Code{
						jen.List(jen.Id("v"), jen.Err()).Op(":=").Qual(recgenPkg, parse).Call(jen.Id("raw")),
						jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
					}
					if a.IsReference() {
						target := a.RefType().StructName()
						body = append(body,
							jen.If(jen.Id("v").Op("!=").Nil()).Block(
								jen.List(jen.Id("ref"), jen.Err()).Op(":=").Id("Load"+target).Call(
									jen.Id("ctx"), jen.Id("conn"), jen.Op("*").Id("v"),
								),
								jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
								jen.Id("refID").Op(":=").Id("ref").Dot("ID").Call(),
								jen.Id(local).Op("=").Op("&").Id("refID"),
							),
						)
					} else {
						body = append(body, jen.Id(local).Op("=").Id("v"))
					}
					gr.If(
						jen.List(jen.Id("raw"), jen.Id("ok")).Op(":=").Id("f").Dot("values").Index(jen.Lit(a.Name)),
						jen.Id("ok"),
					).Block(body...)
				}
			}
			gr.List(jen.Id("r"), jen.Err()).Op(":=").Id("Create"+name).Call(
				append([]jen.Code{jen.Id("ctx"), jen.Id("conn")}, args...)...,
			)
			gr.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
			gr.Return(jen.Id("r"), jen.Nil())
		})
}

// genRuntime generates the registration glue binding the package into
// the recgen registry.
func genRuntime(g *gen.Graph) *jen.File {
	f := newFile(g)
	f.Func().Id("init").Params().BlockFunc(func(gr *jen.Group) {
		for _, t := range g.Nodes {
			gr.Qual(recgenPkg, "Register").Call(jen.Id(t.StructName() + "Type").Call())
		}
		for _, t := range g.Nodes {
			if t.Validator != "" {
				gr.Qual(recgenPkg, "RegisterValidator").Call(
					jen.Lit(t.Name),
					jen.Qual(recgenPkg, "MustExprValidator").Call(jen.Lit(t.Validator)),
				)
			}
		}
	})
	return f
}

func kindConst(a *gen.Attribute) string {
	switch a.Kind {
	case schema.KindString:
		return "KindString"
	case schema.KindReference:
		return "KindRef"
	default:
		return "KindInt"
	}
}
