// Package service serves calculator.Calculator implementations to remote
// clients. Implementations are bound to instance IDs with Register; the
// generated handler resolves the ID of every incoming call.
package service

//go:generate go run github.com/scraswell/calculator/cmd/rpcgen service.go

import (
	"github.com/scraswell/calculator/pkg/calculator"
	"github.com/scraswell/calculator/pkg/remote"
)

const DefaultInstance = "default"

var instances = remote.NewSyncMap[string, calculator.Calculator]()

func init() {
	Register(DefaultInstance, calculator.New())
}

// Register binds impl to id, replacing any earlier binding.
func Register(id string, impl calculator.Calculator) {
	instances.Put(id, impl)
}

func Unregister(id string) {
	instances.Delete(id)
}

//rpc:service
type Calculator struct {
	impl calculator.Calculator
}

// CalculatorFromString resolves an instance ID. The empty ID means
// DefaultInstance.
func CalculatorFromString(id string) (Calculator, error) {
	if id == "" {
		id = DefaultInstance
	}
	impl, ok := instances.Get(id)
	if !ok {
		return Calculator{}, remote.ErrInstanceNotFound
	}
	return Calculator{impl: impl}, nil
}

func (c Calculator) Add(x, y int32) int32 {
	return c.impl.Add(x, y)
}
