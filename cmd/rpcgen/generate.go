package main

import (
	"strconv"

	j "github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var toTitle = cases.Title(language.English)

// nameSelector hands out identifiers that do not collide with ones already
// taken, appending 2, 3, ... to the base name.
type nameSelector map[string]bool

func (ns nameSelector) Add(name string) {
	ns[name] = true
}

func (ns nameSelector) New(base string) string {
	name := base
	for i := 2; ns[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	ns.Add(name)
	return name
}

func Map[T any, S any](s []T, fn func(T) S) []S {
	var result []S
	for _, item := range s {
		result = append(result, fn(item))
	}
	return result
}

// fieldSet is a parameter or result list turned into the exported fields of
// the anonymous struct that travels over the wire.
type fieldSet struct {
	groups []j.Code
	names  []string
}

func newFieldSet(groups []ValueGroup) fieldSet {
	ns := nameSelector{}
	var fs fieldSet
	for _, vg := range groups {
		names := Map(vg.Names, func(name string) j.Code {
			title := ns.New(toTitle.String(name))
			fs.names = append(fs.names, title)
			return j.Id(title)
		})
		if len(names) == 0 {
			title := ns.New("R")
			fs.names = append(fs.names, title)
			names = append(names, j.Id(title))
		}
		fs.groups = append(fs.groups, j.List(names...).Id(vg.Type))
	}
	return fs
}

func (fs fieldSet) selectors(owner string) []j.Code {
	return Map(fs.names, func(name string) j.Code {
		return j.Id(owner).Dot(name)
	})
}

// localNames names the proxy's own parameters and results. Unnamed
// parameters get a1, a2, ...; unnamed results stay unnamed.
func localNames(groups []ValueGroup, ns nameSelector, unnamed string) (codes []j.Code, names []string) {
	for _, vg := range groups {
		var ids []j.Code
		for _, name := range vg.Names {
			ns.Add(name)
			names = append(names, name)
			ids = append(ids, j.Id(name))
		}
		if len(ids) == 0 && unnamed != "" {
			name := ns.New(unnamed)
			names = append(names, name)
			ids = append(ids, j.Id(name))
		}
		if len(ids) == 0 {
			codes = append(codes, j.Id(vg.Type))
			continue
		}
		codes = append(codes, j.List(ids...).Id(vg.Type))
	}
	return
}

func generateProxyMethod(proxy string, method Function) j.Code {
	ns := nameSelector{}
	paramGroups, paramNames := localNames(method.Params, ns, "a")
	resultGroups, _ := localNames(method.Results, ns, "")
	params := newFieldSet(method.Params)
	results := newFieldSet(method.Results)
	lastIsError := method.Results[len(method.Results)-1].Type == "error"
	errorName := ns.New("err")
	return j.Func().Params(j.Id("p").Id(proxy+"Proxy")).Id(method.Name).Params(paramGroups...).Params(resultGroups...).BlockFunc(func(g *j.Group) {
		g.Id("params").Op(":=").Struct(params.groups...).Values(j.DictFunc(func(d j.Dict) {
			for i, name := range paramNames {
				d[j.Id(params.names[i])] = j.Id(name)
			}
		}))
		g.Var().Id("results").Struct(results.groups...)
		g.Id(errorName).Op(":=").Qual(remotePath, "Instance").Call(j.Id("p")).Dot("Call").Call(
			j.Lit(method.Name), j.Id("params"), j.Op("&").Id("results"))
		g.If(j.Id(errorName).Op("!=").Nil()).BlockFunc(func(g1 *j.Group) {
			if lastIsError {
				g1.Id("results").Dot(results.names[len(results.names)-1]).Op("=").Id(errorName)
			} else {
				g1.Panic(j.Id(errorName))
			}
		})
		g.Return(results.selectors("results")...)
	})
}

func generateRegisterProxy(name string) j.Code {
	return j.Qual(remotePath, "RegisterProxy").Types(j.Id(name)).
		Call(j.Func().Params(j.Id("i").Qual(remotePath, "Instance")).Any().Block(
			j.Return(j.Id(name + "Proxy").Call(j.Id("i")))))
}

func generateHandlerCase(m Method) j.Code {
	params := newFieldSet(m.Params)
	results := newFieldSet(m.Results)
	return j.Case(j.Lit(m.Name)).BlockFunc(func(g *j.Group) {
		g.Var().Id("params").Struct(params.groups...)
		g.Var().Id("results").Struct(results.groups...)
		g.Id("err").Op("=").Id("decode").Call(j.Op("&").Id("params"))
		g.If(j.Id("err").Op("!=").Nil()).Block(j.Return())
		g.List(results.selectors("results")...).Op("=").Id("instance").Dot(m.Name).Call(params.selectors("params")...)
		g.Return(j.Id("encode").Call(j.Id("results")))
	})
}

func generateTypeHandler(s *Service) j.Code {
	codec := func(name string) j.Code {
		return j.Id(name).Func().Params(j.Id("v").Id("any")).Params(j.Id("error"))
	}
	return j.Func().Id(s.Type.Name+"Handler").Params(
		j.Id("id").Id("string"),
		j.Id("method").Id("string"),
		codec("decode"),
		codec("encode"),
	).Params(j.Id("err").Id("error")).BlockFunc(func(g *j.Group) {
		g.List(j.Id("instance"), j.Id("err")).Op(":=").Id(s.Constructor.Name).Call(j.Id("id"))
		g.If(j.Id("err").Op("!=").Nil()).Block(j.Return())
		g.Switch(j.Id("method")).BlockFunc(func(g1 *j.Group) {
			for _, m := range s.Methods {
				g1.Add(generateHandlerCase(m))
			}
			g1.Default().Block(j.Return(j.Qual(remotePath, "ErrMethodNotFound")))
		})
	})
}

func generateFile(s File, sm ServiceMap) *j.File {
	f := j.NewFile(s.Package)
	f.HeaderComment("Code generated by rpcgen. DO NOT EDIT.")
	f.ImportName(remotePath, "remote")
	for _, i := range s.Interfaces {
		f.Type().Id(i.Name+"Proxy").Qual(remotePath, "Instance")
	}
	if len(s.Interfaces) != 0 {
		f.Func().Id("init").Params().BlockFunc(func(g *j.Group) {
			for _, i := range s.Interfaces {
				g.Add(generateRegisterProxy(i.Name))
			}
		})
	}
	for _, i := range s.Interfaces {
		for _, m := range i.Methods {
			f.Add(generateProxyMethod(i.Name, m))
		}
	}
	if len(s.Types) != 0 {
		f.Func().Id("init").Params().BlockFunc(func(g *j.Group) {
			for _, t := range s.Types {
				g.Qual(remotePath, "RegisterTypeHandler").Call(j.Lit(t.Name), j.Id(t.Name+"Handler"))
			}
		})
	}
	for _, t := range s.Types {
		service, _ := sm.lookup(s.Package, t.Name)
		f.Add(generateTypeHandler(service))
	}
	return f
}
