package main

const remotePath = "github.com/scraswell/calculator/pkg/remote"

const (
	serviceTag = "//rpc:service"
	ignoreTag  = "//rpc:ignore"
)

// File is what rpcgen keeps of one source file.
type File struct {
	Package    string
	Types      []Type
	Methods    []Method
	Interfaces []Interface
}

// Decl is a named declaration with its doc comment lines, tags included.
type Decl struct {
	Name     string
	Comments []string
}

// Type is a non-interface type declaration. Tagged ones are served.
type Type struct {
	Decl
}

// Interface is an interface declaration. Tagged ones get a proxy.
type Interface struct {
	Decl
	Methods []Function
}

// Method is a func declaration, with Receiver nil for plain functions.
type Method struct {
	Function
	Receiver *ValueGroup
}

type Function struct {
	Decl
	Params  []ValueGroup
	Results []ValueGroup
}

// ValueGroup is one field of a parameter or result list: `x, y int32`.
type ValueGroup struct {
	Names []string
	Type  string
}

type serviceKey struct {
	pkg, name string
}

// Service is a served type with its exported methods and the
// func(string) (T, error) that builds an instance from its ID.
type Service struct {
	Type        Type
	Methods     []Method
	Constructor *Method
}

type ServiceMap map[serviceKey]*Service

func (sm ServiceMap) lookup(pkg, name string) (*Service, bool) {
	s, ok := sm[serviceKey{pkg: pkg, name: name}]
	return s, ok
}
