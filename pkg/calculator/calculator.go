// Package calculator defines the Calculator capability and its local
// implementation.
package calculator

// Calculator adds integers.
type Calculator interface {
	// Add returns x + y. Overflow wraps around.
	Add(x, y int32) int32
}

// Basic is the local, stateless Calculator.
type Basic struct{}

var _ Calculator = Basic{}

func New() Basic {
	return Basic{}
}

func (Basic) Add(x, y int32) int32 {
	return x + y
}
