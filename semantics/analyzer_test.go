package semantics

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/go-test/deep"
	"github.com/kr/pretty"

	"nervs/ast"
	"nervs/lexer"
	"nervs/parser"
	"nervs/types"
)

func mustParse(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, err := parser.NewParser(lexer.NewLexer("", input), "").Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return program
}

func analyze(t *testing.T, input string) (*Info, error) {
	t.Helper()
	return NewAnalyzer().Analyze(mustParse(t, input))
}

// wraps a ritual body into a minimal program
func ritual(signature, body string) string {
	return fmt.Sprintf(`realm R { being B {
		count: int;
		ritual add(a: int, b: int) -> int { return a + b; }
		ritual %s { %s }
	} }`, signature, body)
}

func TestDuplicateDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected DuplicateDefinitionError
	}{
		{
			name:     "realm",
			input:    `realm A {} realm A {}`,
			expected: DuplicateDefinitionError{Kind: KindRealm, Name: "A", Path: ""},
		},
		{
			name:     "being",
			input:    `realm A { being B {} being B {} }`,
			expected: DuplicateDefinitionError{Kind: KindBeing, Name: "B", Path: "A"},
		},
		{
			name:     "member variable",
			input:    `realm A { being B { x: int; x: string; } }`,
			expected: DuplicateDefinitionError{Kind: KindVariable, Name: "x", Path: "A.B"},
		},
		{
			name:     "ritual",
			input:    `realm A { being B { ritual f() {} ritual f() {} } }`,
			expected: DuplicateDefinitionError{Kind: KindRitual, Name: "f", Path: "A.B"},
		},
		{
			name:     "parameter",
			input:    `realm A { being B { ritual f(p: int, p: float) {} } }`,
			expected: DuplicateDefinitionError{Kind: KindParameter, Name: "p", Path: "A.B.f"},
		},
		{
			name:     "local",
			input:    `realm A { being B { ritual f() { let n: int = 1; } ritual g() { let n: int = 1; let n: int = 2; } } }`,
			expected: DuplicateDefinitionError{Kind: KindVariable, Name: "n", Path: "A.B.g"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyze(t, tt.input)

			var dup *DuplicateDefinitionError
			if !errors.As(err, &dup) {
				t.Fatalf("expected a duplicate definition error, got %v", err)
			}
			got := DuplicateDefinitionError{Kind: dup.Kind, Name: dup.Name, Path: dup.Path}
			if diff := deep.Equal(got, tt.expected); diff != nil {
				t.Error(diff)
			}
			if !dup.Token.IsValid() {
				t.Errorf("expected the error to carry a position: %# v", pretty.Formatter(dup))
			}
		})
	}
}

func TestShadowing(t *testing.T) {
	input := ritual("f(x: int) -> int", `
		if true {
			let x: string = "inner";
			x = "still inner";
		}
		x = 2;
		return x;
	`)
	if _, err := analyze(t, input); err != nil {
		t.Fatalf("shadowing should be accepted, got %v", err)
	}

	input = ritual("f(x: int)", `
		if true {
			let y: string = "a";
			let y: string = "b";
		}
	`)
	_, err := analyze(t, input)
	var dup *DuplicateDefinitionError
	if !errors.As(err, &dup) || dup.Name != "y" || dup.Kind != KindVariable {
		t.Fatalf("expected a duplicate of y, got %v", err)
	}

	// a member is shadowed by a local of the same name
	input = ritual("f()", `let count: string = "many"; count = "more";`)
	if _, err := analyze(t, input); err != nil {
		t.Fatalf("expected a local to shadow the member, got %v", err)
	}
}

func TestSiblingArmsDoNotShareLocals(t *testing.T) {
	input := ritual("f()", `
		if true { let y: int = 1; } else { y = 2; }
	`)
	_, err := analyze(t, input)

	var undef *UndefinedVariableError
	if !errors.As(err, &undef) || undef.Name != "y" {
		t.Fatalf("expected y to be undefined in the else arm, got %v", err)
	}
}

func TestLocalsDoNotLeakOutOfCycle(t *testing.T) {
	input := ritual("f()", `
		cycle count < 3 { let step: int = 1; count = count + step; }
		step = 2;
	`)
	_, err := analyze(t, input)

	var undef *UndefinedVariableError
	if !errors.As(err, &undef) || undef.Name != "step" {
		t.Fatalf("expected step to be undefined after the cycle, got %v", err)
	}
}

func TestExpressionTypes(t *testing.T) {
	tests := []struct {
		expr     string
		expected types.Type
	}{
		{"1 + 2", types.Integer},
		{"1 + 2.0", types.Float},
		{"2.5 * 2.5", types.Float},
		{"7 / 2", types.Integer},
		{"1 < 2.0", types.Boolean},
		{"3 > 2", types.Boolean},
		{"true == false", types.Boolean},
		{`"a" != "b"`, types.Boolean},
		{"add(1, 2)", types.Integer},
		{"count - 1", types.Integer},
		{"-count", types.Integer},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			program := mustParse(t, ritual("f()", "let probe: bool = true; probe = ("+tt.expr+") == ("+tt.expr+");"))
			info, err := NewAnalyzer().Analyze(program)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			body := program.Realms[0].Beings[0].Rituals[1].Body
			assign := body[1].(*ast.AssignStatement)
			left := assign.Value.(*ast.BinaryExpression).Left

			got, ok := info.TypeOf(left)
			if !ok {
				t.Fatalf("no type recorded for %s", left)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestExpressionTypeErrors(t *testing.T) {
	tests := []struct {
		expr     string
		expected TypeMismatchError
	}{
		{`"a" + 1`, TypeMismatchError{Expected: "numeric", Found: "string, int", Site: "operation (+)"}},
		{`"a" < "b"`, TypeMismatchError{Expected: "numeric", Found: "string, string", Site: "operation (<)"}},
		{`1 == "1"`, TypeMismatchError{Expected: "int", Found: "string", Site: "operation (==)"}},
		{`1 == 1.0`, TypeMismatchError{Expected: "int", Found: "float", Site: "operation (==)"}},
		{`true > false`, TypeMismatchError{Expected: "numeric", Found: "bool, bool", Site: "operation (>)"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := analyze(t, ritual("f()", "let probe: bool = "+tt.expr+";"))

			var mismatch *TypeMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("expected a type mismatch, got %v", err)
			}
			got := TypeMismatchError{Expected: mismatch.Expected, Found: mismatch.Found, Site: mismatch.Site}
			if diff := deep.Equal(got, tt.expected); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestCallChecking(t *testing.T) {
	_, err := analyze(t, ritual("f()", "add(1);"))
	var arity *ArityMismatchError
	if !errors.As(err, &arity) {
		t.Fatalf("expected an arity mismatch, got %v", err)
	}
	if arity.Expected != 2 || arity.Found != 1 || arity.Ritual != "add" {
		t.Errorf("unexpected arity error: %# v", pretty.Formatter(arity))
	}

	_, err = analyze(t, ritual("f()", `add("x", 2);`))
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected a type mismatch, got %v", err)
	}
	if mismatch.Site != "argument 0 of ritual (add)" || mismatch.Expected != "int" || mismatch.Found != "string" {
		t.Errorf("unexpected mismatch: %# v", pretty.Formatter(mismatch))
	}

	_, err = analyze(t, ritual("f()", "summon();"))
	var undef *UndefinedRitualError
	if !errors.As(err, &undef) || undef.Name != "summon" {
		t.Fatalf("expected an undefined ritual, got %v", err)
	}

	if _, err := analyze(t, ritual("f() -> int", "return add(1, 2);")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCallsStayInsideTheBeing(t *testing.T) {
	input := `realm R {
		being A { ritual helper() {} }
		being B { ritual f() { helper(); } }
	}`
	_, err := analyze(t, input)

	var undef *UndefinedRitualError
	if !errors.As(err, &undef) || undef.Name != "helper" {
		t.Fatalf("expected helper to be unreachable from B, got %v", err)
	}
}

func TestForwardReferences(t *testing.T) {
	input := `realm R { being B {
		ritual first() -> int { return second(); }
		ritual second() -> int { return 2; }
	} }`
	if _, err := analyze(t, input); err != nil {
		t.Fatalf("rituals should see later siblings, got %v", err)
	}
}

func TestReturnDiscipline(t *testing.T) {
	_, err := analyze(t, ritual("f() -> int", "let x: int = 1;"))
	var missing *MissingReturnError
	if !errors.As(err, &missing) {
		t.Fatalf("expected a missing return, got %v", err)
	}
	if missing.Ritual != "f" || missing.ReturnType != types.Integer {
		t.Errorf("unexpected missing return: %# v", pretty.Formatter(missing))
	}

	_, err = analyze(t, ritual("f()", "return 5;"))
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) || mismatch.Expected != "void" || mismatch.Found != "int" {
		t.Fatalf("expected a void mismatch, got %v", err)
	}

	if _, err := analyze(t, ritual("f()", "return;")); err != nil {
		t.Fatalf("bare return in a void ritual should pass, got %v", err)
	}

	_, err = analyze(t, ritual("f() -> int", "return;"))
	if !errors.As(err, &mismatch) || mismatch.Expected != "int" || mismatch.Found != "void" {
		t.Fatalf("expected a value-less return to be rejected, got %v", err)
	}

	_, err = analyze(t, ritual("f() -> string", "return 1;"))
	if !errors.As(err, &mismatch) || mismatch.Expected != "string" {
		t.Fatalf("expected a return type mismatch, got %v", err)
	}
}

func TestNestedReturnSatisfiesPresence(t *testing.T) {
	inputs := []string{
		ritual("f(n: int) -> int", "if n > 0 { if n > 1 { return n; } }"),
		ritual("f(n: int) -> int", "cycle { return n; }"),
		ritual("f(n: int) -> int", "if n > 0 { } else { return 0; }"),
	}
	for _, input := range inputs {
		if _, err := analyze(t, input); err != nil {
			t.Errorf("expected nested return to count, got %v", err)
		}
	}
}

func TestConditionsMustBeBoolean(t *testing.T) {
	tests := []struct {
		body string
		site string
	}{
		{"if 1 { }", "if condition"},
		{`cycle "forever" { }`, "cycle condition"},
	}

	for _, tt := range tests {
		_, err := analyze(t, ritual("f()", tt.body))
		var mismatch *TypeMismatchError
		if !errors.As(err, &mismatch) || mismatch.Site != tt.site || mismatch.Expected != "bool" {
			t.Errorf("%q: expected a bool mismatch, got %v", tt.body, err)
		}
	}

	if _, err := analyze(t, ritual("f()", "cycle { return; }")); err != nil {
		t.Errorf("a cycle without condition should pass, got %v", err)
	}
}

func TestAssignmentRules(t *testing.T) {
	_, err := analyze(t, ritual("f()", "ghost = 1;"))
	var undef *UndefinedVariableError
	if !errors.As(err, &undef) || undef.Name != "ghost" {
		t.Fatalf("expected ghost to be undefined, got %v", err)
	}

	_, err = analyze(t, ritual("f()", "count = 1.5;"))
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) || mismatch.Site != "assignment to (count)" {
		t.Fatalf("expected an assignment mismatch, got %v", err)
	}

	_, err = analyze(t, ritual("f()", "let x: float = 1;"))
	if !errors.As(err, &mismatch) || mismatch.Site != "declaration of (x)" {
		t.Fatalf("expected no implicit widening on declaration, got %v", err)
	}
}

func TestFailFast(t *testing.T) {
	input := `realm R { being B {
		x: int;
		x: int;
		ritual f() { y = 1; }
	} }`
	_, err := analyze(t, input)

	var dup *DuplicateDefinitionError
	if !errors.As(err, &dup) {
		t.Fatalf("expected the duplicate to be reported, got %v", err)
	}
	var undef *UndefinedVariableError
	if errors.As(err, &undef) {
		t.Errorf("only the first violation should be reported, got %v", err)
	}
}

func TestRegistryIsExposed(t *testing.T) {
	info, err := analyze(t, ritual("f(n: float) -> float", "return n * 2.0;"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tp, ok := info.Registry.LookupMemberVariable("R", "B", "count")
	if !ok || tp != types.Integer {
		t.Errorf("expected member count: int, got %v %v", tp, ok)
	}

	sig, ok := info.Registry.LookupRitual("R", "B", "f")
	if !ok {
		t.Fatal("expected ritual f to be registered")
	}
	if sig.ReturnType != types.Float || len(sig.Parameters) != 1 {
		t.Errorf("unexpected signature: %# v", pretty.Formatter(sig))
	}
}

func TestAnalyzersRunInParallel(t *testing.T) {
	programs := []string{
		ritual("f() -> int", "return add(1, 2);"),
		ritual("f()", `add("x", 2);`),
		`realm A {} realm A {}`,
		ritual("f(n: int) -> int", "cycle n > 0 { n = n - 1; } return n;"),
	}

	trees := make([]*ast.Program, len(programs))
	for idx, src := range programs {
		trees[idx] = mustParse(t, src)
	}

	// the sequential results are the reference
	expected := make([]string, len(trees))
	for idx, tree := range trees {
		_, err := NewAnalyzer().Analyze(tree)
		expected[idx] = fmt.Sprint(err)
	}

	got := make([]string, len(trees))
	var wg sync.WaitGroup
	for idx, tree := range trees {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := NewAnalyzer().Analyze(tree)
			got[idx] = fmt.Sprint(err)
		}()
	}
	wg.Wait()

	if diff := deep.Equal(got, expected); diff != nil {
		t.Error(diff)
	}
}

func TestAnalyzerCanBeReused(t *testing.T) {
	a := NewAnalyzer()
	program := mustParse(t, `realm A { being B { ritual f() {} } }`)

	if _, err := a.Analyze(program); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a second run starts from an empty registry
	if _, err := a.Analyze(program); err != nil {
		t.Fatalf("second analysis should not see the first registry: %v", err)
	}
}
