// Package calcproxy reaches calculators served by internal/service through
// the remote runtime. The proxy satisfies calculator.Calculator, so callers
// cannot tell it from a local one.
package calcproxy

//go:generate go run github.com/scraswell/calculator/cmd/rpcgen calcproxy.go

import (
	"github.com/scraswell/calculator/pkg/calculator"
	"github.com/scraswell/calculator/pkg/remote"
)

// Calculator mirrors calculator.Calculator. Add panics when the call cannot
// be completed, since the contract has no error result.
//
//rpc:service
type Calculator interface {
	Add(x, y int32) int32
}

var _ calculator.Calculator = CalculatorProxy{}

// Dial returns the remote calculator instance id, reached through client.
// No connection is made until the first call.
func Dial(client *remote.Client, id string) (calculator.Calculator, error) {
	return remote.Get[Calculator](id, client)
}
