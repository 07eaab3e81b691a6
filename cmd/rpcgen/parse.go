package main

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"
)

func typeName(expr ast.Expr) (string, error) {
	ident, ok := expr.(*ast.Ident)
	if !ok {
		return "", fmt.Errorf("unsupported type %T: only named types are allowed", expr)
	}
	return ident.Name, nil
}

func comments(group *ast.CommentGroup) []string {
	if group == nil {
		return nil
	}
	return Map(group.List, func(c *ast.Comment) string {
		return c.Text
	})
}

func valueGroupFromField(field *ast.Field) (vg ValueGroup, err error) {
	vg.Type, err = typeName(field.Type)
	if err != nil {
		return
	}
	vg.Names = Map(field.Names, func(name *ast.Ident) string {
		return name.Name
	})
	return
}

func parseFieldList(list *ast.FieldList) ([]ValueGroup, error) {
	if list == nil {
		return nil, nil
	}
	var groups []ValueGroup
	for _, field := range list.List {
		vg, err := valueGroupFromField(field)
		if err != nil {
			return nil, err
		}
		groups = append(groups, vg)
	}
	return groups, nil
}

func parseFuncType(f *ast.FuncType) (params, results []ValueGroup, err error) {
	params, err = parseFieldList(f.Params)
	if err != nil {
		return
	}
	results, err = parseFieldList(f.Results)
	return
}

func parseInterfaceMethod(field *ast.Field) (f Function, err error) {
	f.Name = field.Names[0].Name
	f.Comments = comments(field.Doc)
	funcType := field.Type.(*ast.FuncType)
	f.Params, f.Results, err = parseFuncType(funcType)
	if err != nil {
		err = fmt.Errorf("method %v: %w", f.Name, err)
	}
	return
}

func parseGenDecl(d *ast.GenDecl) (*Type, *Interface, error) {
	if d.Tok != token.TYPE {
		return nil, nil, nil
	}
	var decl Decl
	decl.Comments = comments(d.Doc)
	typeSpec := d.Specs[0].(*ast.TypeSpec)
	decl.Name = typeSpec.Name.Name
	interfaceType, ok := typeSpec.Type.(*ast.InterfaceType)
	if !ok {
		return &Type{Decl: decl}, nil, nil
	}
	i := &Interface{Decl: decl}
	if !decl.isService() || decl.isIgnored() {
		return nil, i, nil
	}
	for _, m := range interfaceType.Methods.List {
		if len(m.Names) == 0 {
			return nil, nil, fmt.Errorf("interface %v: embedded interfaces are not supported", decl.Name)
		}
		method, err := parseInterfaceMethod(m)
		if err != nil {
			return nil, nil, fmt.Errorf("interface %v: %w", decl.Name, err)
		}
		i.Methods = append(i.Methods, method)
	}
	return nil, i, nil
}

func parseFuncDecl(d *ast.FuncDecl) (m Method, err error) {
	if d.Recv != nil && len(d.Recv.List) > 0 {
		m.Receiver = &ValueGroup{Type: receiverName(d)}
		if m.Receiver.Type == "" {
			err = fmt.Errorf("func %v: unsupported receiver", d.Name.Name)
			return
		}
	}
	m.Name = d.Name.Name
	m.Comments = comments(d.Doc)
	m.Params, m.Results, err = parseFuncType(d.Type)
	if err != nil {
		err = fmt.Errorf("func %v: %w", m.Name, err)
	}
	return
}

// parseFile collects declarations. Functions whose signatures cannot be
// expressed on the wire are skipped unless they belong to a service type,
// which is decided later by createServiceMap.
func parseFile(f *ast.File) (file File, skipped map[string]error, err error) {
	file.Package = f.Name.Name
	skipped = make(map[string]error)
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			method, err := parseFuncDecl(d)
			if err != nil {
				if ast.IsExported(d.Name.Name) {
					skipped[receiverName(d)] = err
				}
				continue
			}
			file.Methods = append(file.Methods, method)
		case *ast.GenDecl:
			t, i, err := parseGenDecl(d)
			if err != nil {
				return file, nil, err
			}
			if t != nil {
				file.Types = append(file.Types, *t)
			}
			if i != nil {
				file.Interfaces = append(file.Interfaces, *i)
			}
		}
	}
	return file, skipped, nil
}

func receiverName(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return ""
	}
	expr := d.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

func hasTag(tag string, comments []string) bool {
	for _, c := range comments {
		if strings.TrimSpace(c) == tag {
			return true
		}
	}
	return false
}

func (d Decl) isIgnored() bool {
	return hasTag(ignoreTag, d.Comments)
}

func (d Decl) isService() bool {
	return hasTag(serviceTag, d.Comments)
}

func (f File) filter() File {
	var ts []Type
	for _, t := range f.Types {
		if t.isService() && !t.isIgnored() {
			ts = append(ts, t)
		}
	}
	var is []Interface
	for _, i := range f.Interfaces {
		if i.isService() && !i.isIgnored() {
			var ms []Function
			for _, m := range i.Methods {
				if !m.isIgnored() {
					ms = append(ms, m)
				}
			}
			i.Methods = ms
			is = append(is, i)
		}
	}
	var ms []Method
	for _, m := range f.Methods {
		if !m.isIgnored() {
			ms = append(ms, m)
		}
	}
	return File{
		Package:    f.Package,
		Types:      ts,
		Methods:    ms,
		Interfaces: is,
	}
}

func (m Method) isConstructor() bool {
	return m.Receiver == nil &&
		len(m.Params) == 1 &&
		len(m.Params[0].Names) == 1 &&
		m.Params[0].Type == "string" &&
		len(m.Results) == 2 &&
		len(m.Results[0].Names) <= 1 &&
		len(m.Results[1].Names) <= 1 &&
		m.Results[1].Type == "error"
}

// isExported keeps unexported helpers on a service type off the wire.
func (m Method) isExported() bool {
	return ast.IsExported(m.Name)
}

func createServiceMap(fs []File) (ServiceMap, error) {
	services := make(ServiceMap)
	for _, f := range fs {
		for _, t := range f.Types {
			services[serviceKey{pkg: f.Package, name: t.Name}] = &Service{
				Type: t,
			}
		}
	}
	for _, f := range fs {
		for _, m := range f.Methods {
			m := m
			if r := m.Receiver; r != nil {
				service, ok := services.lookup(f.Package, r.Type)
				if ok && m.isExported() {
					service.Methods = append(service.Methods, m)
				}
				continue
			}
			if !m.isConstructor() {
				continue
			}
			service, ok := services.lookup(f.Package, m.Results[0].Type)
			if !ok || service.Constructor != nil {
				continue
			}
			service.Constructor = &m
		}
	}
	for key, s := range services {
		if s.Constructor == nil {
			return nil, fmt.Errorf("service %v.%v: no constructor func(string) (%v, error)", key.pkg, key.name, key.name)
		}
		if len(s.Methods) == 0 {
			return nil, fmt.Errorf("service %v.%v: no exported methods", key.pkg, key.name)
		}
	}
	return services, nil
}

// checkSignature rejects methods gob cannot carry: an empty parameter or
// result struct has no exported fields to encode.
func checkSignature(owner string, f Function) error {
	if len(f.Params) == 0 {
		return fmt.Errorf("%v.%v: methods need at least one parameter", owner, f.Name)
	}
	if len(f.Results) == 0 {
		return fmt.Errorf("%v.%v: methods need at least one result", owner, f.Name)
	}
	return nil
}

func (f File) validate(sm ServiceMap) error {
	for _, i := range f.Interfaces {
		for _, m := range i.Methods {
			if err := checkSignature(i.Name, m); err != nil {
				return err
			}
		}
	}
	for _, t := range f.Types {
		s, _ := sm.lookup(f.Package, t.Name)
		for _, m := range s.Methods {
			if err := checkSignature(t.Name, m.Function); err != nil {
				return err
			}
		}
	}
	return nil
}
