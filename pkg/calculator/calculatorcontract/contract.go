// Package calculatorcontract holds the behavior every calculator.Calculator
// must show, as a reusable testcase suite.
package calculatorcontract

import (
	"math"
	"testing"

	"go.llib.dev/testcase"

	"github.com/scraswell/calculator/pkg/calculator"
)

// Contract runs against the Calculator returned by MakeSubject.
type Contract struct {
	MakeSubject func(testing.TB) calculator.Calculator
}

func (c Contract) Test(t *testing.T) {
	c.Spec(testcase.NewSpec(t))
}

func (c Contract) Benchmark(b *testing.B) {
	c.Spec(testcase.NewSpec(b))
}

func (c Contract) Spec(s *testcase.Spec) {
	subject := testcase.Let(s, func(t *testcase.T) calculator.Calculator {
		return c.MakeSubject(t)
	})

	s.Describe(".Add", func(s *testcase.Spec) {
		x := testcase.Let(s, func(t *testcase.T) int32 {
			return int32(t.Random.Int())
		})
		y := testcase.Let(s, func(t *testcase.T) int32 {
			return int32(t.Random.Int())
		})
		act := func(t *testcase.T) int32 {
			return subject.Get(t).Add(x.Get(t), y.Get(t))
		}

		s.Then("it returns the sum", func(t *testcase.T) {
			t.Must.Equal(x.Get(t)+y.Get(t), act(t))
		})

		s.Then("swapping the operands gives the same sum", func(t *testcase.T) {
			t.Must.Equal(act(t), subject.Get(t).Add(y.Get(t), x.Get(t)))
		})

		s.When("y is zero", func(s *testcase.Spec) {
			y.LetValue(s, 0)

			s.Then("x is returned", func(t *testcase.T) {
				t.Must.Equal(x.Get(t), act(t))
			})
		})

		s.When("x is 3 and y is 4", func(s *testcase.Spec) {
			x.LetValue(s, 3)
			y.LetValue(s, 4)

			s.Then("it returns 7", func(t *testcase.T) {
				t.Must.Equal(int32(7), act(t))
			})
		})

		s.When("the operands cancel out", func(s *testcase.Spec) {
			x.LetValue(s, -5)
			y.LetValue(s, 5)

			s.Then("it returns 0", func(t *testcase.T) {
				t.Must.Equal(int32(0), act(t))
			})
		})

		s.When("both operands are zero", func(s *testcase.Spec) {
			x.LetValue(s, 0)
			y.LetValue(s, 0)

			s.Then("it returns 0", func(t *testcase.T) {
				t.Must.Equal(int32(0), act(t))
			})
		})

		s.When("the sum is above the int32 range", func(s *testcase.Spec) {
			x.LetValue(s, math.MaxInt32)
			y.LetValue(s, 1)

			s.Then("it wraps around to the minimum", func(t *testcase.T) {
				t.Must.Equal(int32(math.MinInt32), act(t))
			})
		})

		s.When("the sum is below the int32 range", func(s *testcase.Spec) {
			x.LetValue(s, math.MinInt32)
			y.LetValue(s, -1)

			s.Then("it wraps around to the maximum", func(t *testcase.T) {
				t.Must.Equal(int32(math.MaxInt32), act(t))
			})
		})
	})
}
