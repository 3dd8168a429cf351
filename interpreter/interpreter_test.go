package interpreter

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/nalgeon/be"

	"nervs/compiler"
	"nervs/object"
)

const oracle = `
realm Core {
	being Oracle {
		visits: int;
		mood: string;
		ratio: float;
		awake: bool;

		ritual factorial(n: int) -> int {
			let acc: int = 1;
			cycle n > 1 {
				acc = acc * n;
				n = n - 1;
			}
			return acc;
		}

		ritual fib(n: int) -> int {
			if n < 2 { return n; }
			return fib(n - 1) + fib(n - 2);
		}

		ritual half(n: int) -> float {
			return n / 2.0;
		}

		ritual idiv(a: int, b: int) -> int {
			return a / b;
		}

		ritual visit(who: string) -> int {
			visits = visits + 1;
			mood = who;
			return visits;
		}

		ritual grade(score: int) -> string {
			if score > 89 {
				return "A";
			} else if score > 69 {
				return "B";
			} else {
				return "C";
			}
		}

		ritual shadow(x: int) -> int {
			if true {
				let x: string = "inner";
			}
			return x;
		}

		ritual forever() {
			cycle { visits = visits + 1; }
		}

		ritual firstOver(limit: int) -> int {
			let i: int = 0;
			cycle {
				i = i + 1;
				if i > limit { return i; }
			}
		}

		ritual same(a: string, b: string) -> bool {
			return a == b;
		}

		ritual rest() { return; }

		ritual descend(n: int) -> int {
			return descend(n + 1);
		}
	}
}
`

func newInterpreter(t *testing.T, opts ...Option) *Interpreter {
	t.Helper()
	unit, err := compiler.New().Compile("oracle.nv", oracle)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	return New(unit.Program, opts...)
}

func TestExecute(t *testing.T) {
	tests := []struct {
		ritual   string
		args     []object.Object
		expected object.Object
	}{
		{"factorial", []object.Object{&object.Integer{Value: 5}}, &object.Integer{Value: 120}},
		{"factorial", []object.Object{&object.Integer{Value: 0}}, &object.Integer{Value: 1}},
		{"fib", []object.Object{&object.Integer{Value: 10}}, &object.Integer{Value: 55}},
		{"half", []object.Object{&object.Integer{Value: 5}}, &object.Float{Value: 2.5}},
		{"idiv", []object.Object{&object.Integer{Value: 7}, &object.Integer{Value: 2}}, &object.Integer{Value: 3}},
		{"grade", []object.Object{&object.Integer{Value: 95}}, &object.String{Value: "A"}},
		{"grade", []object.Object{&object.Integer{Value: 70}}, &object.String{Value: "B"}},
		{"grade", []object.Object{&object.Integer{Value: 12}}, &object.String{Value: "C"}},
		{"shadow", []object.Object{&object.Integer{Value: 9}}, &object.Integer{Value: 9}},
		{"firstOver", []object.Object{&object.Integer{Value: 3}}, &object.Integer{Value: 4}},
		{"same", []object.Object{&object.String{Value: "a"}, &object.String{Value: "a"}}, object.TRUE},
		{"rest", nil, object.VOID},
	}

	for _, tt := range tests {
		t.Run(tt.ritual, func(t *testing.T) {
			got, err := newInterpreter(t).Execute("Core", "Oracle", tt.ritual, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := deep.Equal(got, tt.expected); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestMemberStatePersists(t *testing.T) {
	interp := newInterpreter(t)

	mood, ok := interp.Member("Core", "Oracle", "mood")
	be.True(t, ok)
	be.Equal(t, mood.Inspect(), "")

	ratio, _ := interp.Member("Core", "Oracle", "ratio")
	be.Equal(t, ratio.Inspect(), "0")

	awake, _ := interp.Member("Core", "Oracle", "awake")
	be.Equal(t, awake, object.Object(object.FALSE))

	for _, who := range []string{"seer", "pilgrim"} {
		_, err := interp.Execute("Core", "Oracle", "visit", &object.String{Value: who})
		be.Err(t, err, nil)
	}

	visits, _ := interp.Member("Core", "Oracle", "visits")
	be.Equal(t, visits.Inspect(), "2")
	mood, _ = interp.Member("Core", "Oracle", "mood")
	be.Equal(t, mood.Inspect(), "pilgrim")
}

func TestRuntimeErrors(t *testing.T) {
	interp := newInterpreter(t, WithMaxCycleIterations(100), WithMaxCallDepth(50))

	_, err := interp.Execute("Core", "Oracle", "idiv", &object.Integer{Value: 1}, &object.Integer{Value: 0})
	var runtimeErr *object.Error
	if !errors.As(err, &runtimeErr) || runtimeErr.Message != "division by zero" {
		t.Errorf("expected division by zero, got %v", err)
	}

	_, err = interp.Execute("Core", "Oracle", "forever")
	if err == nil || !strings.Contains(err.Error(), "exceeded 100 iterations") {
		t.Errorf("expected the cycle limit to stop execution, got %v", err)
	}
	visits, _ := interp.Member("Core", "Oracle", "visits")
	be.Equal(t, visits.Inspect(), "100")

	_, err = interp.Execute("Core", "Oracle", "factorial")
	if err == nil || !strings.Contains(err.Error(), "wrong number of arguments") {
		t.Errorf("expected an arity error, got %v", err)
	}

	_, err = interp.Execute("Core", "Oracle", "factorial", &object.String{Value: "five"})
	if err == nil || !strings.Contains(err.Error(), "must be (int)") {
		t.Errorf("expected an argument type error, got %v", err)
	}

	_, err = interp.Execute("Core", "Oracle", "descend", &object.Integer{Value: 0})
	if err == nil || !strings.Contains(err.Error(), "ritual (descend) exceeded 50 nested calls") {
		t.Errorf("expected the call depth limit to stop recursion, got %v", err)
	}

	// the depth starts over with the next execution
	got, err := interp.Execute("Core", "Oracle", "factorial", &object.Integer{Value: 5})
	be.Err(t, err, nil)
	be.Equal(t, got.Inspect(), "120")

	_, err = interp.Execute("Core", "Ghost", "factorial")
	if err == nil {
		t.Error("expected an unknown being to fail")
	}

	_, err = interp.Execute("Core", "Oracle", "summon")
	if err == nil {
		t.Error("expected an unknown ritual to fail")
	}
}

func TestDefaultCallDepth(t *testing.T) {
	_, err := newInterpreter(t).Execute("Core", "Oracle", "descend", &object.Integer{Value: 0})
	be.Err(t, err, "exceeded 10000 nested calls")
}

func TestParseArguments(t *testing.T) {
	interp := newInterpreter(t)
	rt, err := interp.Ritual("Core", "Oracle", "same")
	be.Err(t, err, nil)

	args := []object.Object{}
	for idx, text := range []string{"x", "x"} {
		arg, err := object.Parse(rt.Parameters[idx].Type, text)
		be.Err(t, err, nil)
		args = append(args, arg)
	}

	got, err := interp.Execute("Core", "Oracle", "same", args...)
	be.Err(t, err, nil)
	be.Equal(t, got.Inspect(), "true")
}
