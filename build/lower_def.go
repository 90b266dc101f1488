package build

import (
	"depyler/hir"
	"depyler/pyast"
	"depyler/report"
	"depyler/types"
)

// buildFunc lowers a function or method definition.
func (b *Builder) buildFunc(fd *pyast.FuncDef, isMethod bool) (*hir.Func, error) {
	fn := &hir.Func{
		ItemBase: hir.ItemBase{
			NodeBase:    hir.NewNodeBaseOn(fd.Span()),
			Docstring:   fd.Docstring,
			Annotations: make(map[string]string),
		},
		Name:    fd.Name,
		Returns: b.mapper.FromAnnotation(fd.Returns),
	}

	// Classify decorators.  Unknown decorators land in the annotation bag as
	// user-visible pragmas.
	for _, dec := range fd.Decorators {
		switch name := decoratorName(dec); name {
		case "staticmethod":
			fn.IsStatic = true
		case "classmethod":
			fn.IsClassm = true
		case "property":
			fn.IsProperty = true
		default:
			fn.Annotations[name] = ""
		}
	}

	// Lower the parameter list.
	b.pushScope()
	defer b.popScope()

	prevParams, prevName := b.params, b.funcName
	b.params, b.funcName = make(map[string]bool), fd.Name
	defer func() { b.params, b.funcName = prevParams, prevName }()

	for i, p := range fd.Params {
		typ := b.mapper.FromAnnotation(p.Annotation)

		// `self` carries the enclosing class type implicitly.
		if isMethod && i == 0 && (p.Name == "self" || p.Name == "cls") {
			typ = &types.PyCustom{Name: "Self"}
		}

		param := &hir.Param{
			NodeBase: hir.NewNodeBaseOn(p.Span()),
			Name:     p.Name,
			Type:     typ,
		}

		if p.Default != nil {
			param.Default = b.lowerExpr(p.Default)
		}

		fn.Params = append(fn.Params, param)
		b.params[p.Name] = true
		b.define(p.Name, typ)
	}

	if fd.IsAsync {
		b.asyncDepth++
		defer func() { b.asyncDepth-- }()
	}

	body := fd.Body
	if fd.Docstring != "" {
		_, body = splitDocstring(body)
	}

	fn.Body = b.lowerBlock(body)
	fn.Props = b.classifyProperties(fd, fn)

	// An unannotated function that never returns a value is a procedure; it
	// maps to unit instead of downgrading to boxed emission.
	if fd.Returns == nil && !returnsValue(fn.Body) {
		fn.Returns = types.PyPrim(types.PyNone)
	}

	return fn, nil
}

// returnsValue reports whether any return in the body carries a value.
func returnsValue(body []hir.Stmt) bool {
	for _, stmt := range body {
		switch v := stmt.(type) {
		case *hir.Return:
			if v.Value != nil {
				return true
			}
		case *hir.If:
			if returnsValue(v.Then) || returnsValue(v.Else) {
				return true
			}
		case *hir.While:
			if returnsValue(v.Body) || returnsValue(v.ElseBody) {
				return true
			}
		case *hir.For:
			if returnsValue(v.Body) || returnsValue(v.ElseBody) {
				return true
			}
		case *hir.With:
			if returnsValue(v.Body) {
				return true
			}
		case *hir.Try:
			if returnsValue(v.Body) || returnsValue(v.Final) {
				return true
			}
			for _, h := range v.Handlers {
				if returnsValue(h.Body) {
					return true
				}
			}
		}
	}

	return false
}

// decoratorName extracts the name of a decorator expression.
func decoratorName(dec pyast.Expr) string {
	switch v := dec.(type) {
	case *pyast.Name:
		return v.Name
	case *pyast.Attribute:
		return decoratorName(v.Value) + "." + v.Attr
	case *pyast.Call:
		return decoratorName(v.Func)
	default:
		return ""
	}
}

// -----------------------------------------------------------------------------

// buildClass lowers a class definition.  Classes whose bases include Protocol
// lower to structural interfaces instead.
func (b *Builder) buildClass(cd *pyast.ClassDef) (hir.Item, error) {
	base := hir.ItemBase{
		NodeBase:    hir.NewNodeBaseOn(cd.Span()),
		Docstring:   cd.Docstring,
		Annotations: make(map[string]string),
	}

	isProtocol := false
	var baseNames []string
	for _, be := range cd.Bases {
		name := decoratorName(be)
		if name == "Protocol" {
			isProtocol = true
		} else if name != "" {
			baseNames = append(baseNames, name)
		}
	}

	isDataclass := false
	for _, dec := range cd.Decorators {
		if name := decoratorName(dec); name == "dataclass" || name == "dataclasses.dataclass" {
			isDataclass = true
		} else {
			base.Annotations[name] = ""
		}
	}

	cls := &hir.Class{
		ItemBase:    base,
		Name:        cd.Name,
		Bases:       baseNames,
		IsDataclass: isDataclass,
	}

	body := cd.Body
	if cd.Docstring != "" {
		_, body = splitDocstring(body)
	}

	for _, stmt := range body {
		switch v := stmt.(type) {
		case *pyast.FuncDef:
			method, err := b.buildFunc(v, true)
			if err != nil {
				return nil, err
			}
			cls.Methods = append(cls.Methods, method)
		case *pyast.Assign:
			field := b.buildField(v)
			if field != nil {
				cls.Fields = append(cls.Fields, field)
			}
		case *pyast.Pass:
			// empty class body
		default:
			report.Raise(stmt.Span(), "statement in class body")
		}
	}

	// Instance fields assigned in __init__ but not declared at class level are
	// added to the field list so the struct translation is complete.
	b.collectInitFields(cls)

	if isProtocol {
		return &hir.Protocol{ItemBase: base, Name: cd.Name, Methods: cls.Methods}, nil
	}

	return cls, nil
}

// buildField lowers one class-level assignment into a field declaration.  An
// annotated assignment declares an instance field (the dataclass convention);
// a plain assignment declares a class-level field with a default.
func (b *Builder) buildField(as *pyast.Assign) *hir.Field {
	if len(as.Targets) != 1 {
		return nil
	}

	name, ok := as.Targets[0].(*pyast.Name)
	if !ok {
		return nil
	}

	field := &hir.Field{
		NodeBase:   hir.NewNodeBaseOn(as.Span()),
		Name:       name.Name,
		Type:       b.mapper.FromAnnotation(as.Annotation),
		ClassLevel: as.Annotation == nil,
	}

	if as.Value != nil {
		b.pushScope()
		field.Default = b.lowerExpr(as.Value)
		b.popScope()
	}

	return field
}

// collectInitFields scans __init__ for `self.x = ...` assignments and adds any
// fields not already declared.
func (b *Builder) collectInitFields(cls *hir.Class) {
	declared := make(map[string]bool)
	for _, field := range cls.Fields {
		declared[field.Name] = true
	}

	for _, method := range cls.Methods {
		if method.Name != "__init__" {
			continue
		}

		for _, stmt := range method.Body {
			as, ok := stmt.(*hir.Assign)
			if !ok {
				continue
			}

			attr, ok := as.Target.(*hir.AttrTarget)
			if !ok {
				continue
			}

			obj, ok := attr.Object.(*hir.Var)
			if !ok || obj.Name != "self" || declared[attr.Attr] {
				continue
			}

			typ := as.Type
			if typ == nil {
				typ = as.Value.Type()
			}

			cls.Fields = append(cls.Fields, &hir.Field{
				NodeBase: hir.NewNodeBaseOn(as.Span()),
				Name:     attr.Attr,
				Type:     typ,
			})
			declared[attr.Attr] = true
		}
	}
}

// -----------------------------------------------------------------------------

// buildImport lowers an import statement.
func (b *Builder) buildImport(im *pyast.Import) *hir.Import {
	item := &hir.Import{
		ItemBase: hir.ItemBase{NodeBase: hir.NewNodeBaseOn(im.Span())},
		Module:   im.Module,
	}

	for _, name := range im.Names {
		item.Names = append(item.Names, name.Name)
	}

	return item
}

// typingContainerNames is the set of subscripted annotation heads whose
// top-level assignment declares a type alias rather than a constant.
var typingContainerNames = map[string]bool{
	"List": true, "Dict": true, "Set": true, "FrozenSet": true,
	"Tuple": true, "Optional": true, "Union": true,
	"list": true, "dict": true, "set": true, "frozenset": true, "tuple": true,
}

// buildTopAssign lowers a top-level assignment into a type alias, a constant,
// or a free statement.
func (b *Builder) buildTopAssign(as *pyast.Assign) (hir.Item, error) {
	base := hir.ItemBase{NodeBase: hir.NewNodeBaseOn(as.Span())}

	name, isName := singleNameTarget(as)
	if !isName || as.Op != nil {
		b.pushScope()
		defer b.popScope()

		return &hir.TopStmt{ItemBase: base, Stmt: b.lowerStmt(as)}, nil
	}

	// `Alias = list[int]` style assignments declare type aliases.
	if sub, ok := as.Value.(*pyast.Subscript); ok {
		if head, ok := sub.Value.(*pyast.Name); ok && typingContainerNames[head.Name] {
			return &hir.TypeAlias{
				ItemBase: base,
				Name:     name,
				Type:     b.mapper.FromAnnotation(as.Value),
			}, nil
		}
	}

	b.pushScope()
	value := b.lowerExpr(as.Value)
	b.popScope()

	typ := b.mapper.FromAnnotation(as.Annotation)
	if _, unknown := typ.(types.PyUnknown); unknown {
		typ = value.Type()
	}

	return &hir.Constant{
		ItemBase: base,
		Name:     name,
		Type:     typ,
		Value:    value,
		Mutable:  b.topLevelWrites[name],
	}, nil
}

// singleNameTarget returns the name of a single plain-name assignment target.
func singleNameTarget(as *pyast.Assign) (string, bool) {
	if len(as.Targets) != 1 {
		return "", false
	}

	name, ok := as.Targets[0].(*pyast.Name)
	if !ok {
		return "", false
	}

	return name.Name, true
}
