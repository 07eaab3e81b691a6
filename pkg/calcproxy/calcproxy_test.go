package calcproxy_test

import (
	"testing"

	"go.llib.dev/testcase/assert"

	"github.com/scraswell/calculator/internal/service"
	"github.com/scraswell/calculator/pkg/calcproxy"
	"github.com/scraswell/calculator/pkg/calculator"
	"github.com/scraswell/calculator/pkg/calculator/calculatorcontract"
	"github.com/scraswell/calculator/pkg/remote"
	"github.com/scraswell/calculator/pkg/remote/remotetest"
)

func TestCalculatorProxy(t *testing.T) {
	cluster := remotetest.Start(t)
	calculatorcontract.Contract{
		MakeSubject: func(tb testing.TB) calculator.Calculator {
			calc, err := calcproxy.Dial(cluster.Client, service.DefaultInstance)
			assert.NoError(tb, err)
			return calc
		},
	}.Test(t)
}

type offset int32

func (o offset) Add(x, y int32) int32 {
	return x + y + int32(o)
}

func TestDialNamedInstance(t *testing.T) {
	service.Register("offset", offset(10))
	defer service.Unregister("offset")
	cluster := remotetest.Start(t)

	calc, err := calcproxy.Dial(cluster.Client, "offset")
	assert.NoError(t, err)
	assert.Equal(t, int32(17), calc.Add(3, 4))

	calc, err = calcproxy.Dial(cluster.Client, "")
	assert.NoError(t, err)
	assert.Equal(t, int32(7), calc.Add(3, 4))
}

func TestAddPanicsOnRemoteError(t *testing.T) {
	cluster := remotetest.Start(t)
	calc, err := calcproxy.Dial(cluster.Client, "missing")
	assert.NoError(t, err)

	recovered := func() (r any) {
		defer func() {
			r = recover()
		}()
		calc.Add(1, 2)
		return nil
	}()
	assert.Equal(t, any(remote.ErrInstanceNotFound), recovered)
}
