package service

import (
	"bytes"
	"encoding/gob"
	"testing"

	"go.llib.dev/testcase/assert"

	"github.com/scraswell/calculator/pkg/calculator"
	"github.com/scraswell/calculator/pkg/remote"
)

type doubler struct{}

func (doubler) Add(x, y int32) int32 {
	return 2 * (x + y)
}

func call(t *testing.T, id, method string, params, results any) error {
	t.Helper()
	var in bytes.Buffer
	assert.NoError(t, gob.NewEncoder(&in).Encode(params))
	decoder := gob.NewDecoder(&in)
	var out bytes.Buffer
	encoder := gob.NewEncoder(&out)
	err := CalculatorHandler(id, method, decoder.Decode, encoder.Encode)
	if err != nil {
		return err
	}
	return gob.NewDecoder(&out).Decode(results)
}

func TestCalculatorFromString(t *testing.T) {
	c, err := CalculatorFromString("")
	assert.NoError(t, err)
	assert.Equal(t, calculator.Calculator(calculator.New()), c.impl)

	_, err = CalculatorFromString("nope")
	assert.ErrorIs(t, remote.ErrInstanceNotFound, err)
}

func TestHandlerAdd(t *testing.T) {
	var results struct{ R int32 }
	err := call(t, DefaultInstance, "Add", struct{ X, Y int32 }{X: 3, Y: 4}, &results)
	assert.NoError(t, err)
	assert.Equal(t, int32(7), results.R)
}

func TestHandlerRegisteredInstance(t *testing.T) {
	Register("double", doubler{})
	defer Unregister("double")

	var results struct{ R int32 }
	err := call(t, "double", "Add", struct{ X, Y int32 }{X: 3, Y: 4}, &results)
	assert.NoError(t, err)
	assert.Equal(t, int32(14), results.R)
}

func TestHandlerErrors(t *testing.T) {
	var results struct{ R int32 }
	err := call(t, "nope", "Add", struct{ X, Y int32 }{X: 1, Y: 1}, &results)
	assert.ErrorIs(t, remote.ErrInstanceNotFound, err)

	err = call(t, DefaultInstance, "Subtract", struct{ X, Y int32 }{X: 1, Y: 1}, &results)
	assert.ErrorIs(t, remote.ErrMethodNotFound, err)
}

func TestServiceRegistered(t *testing.T) {
	assert.Contain(t, remote.Services(), "Calculator")
}
