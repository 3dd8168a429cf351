package semantics

import (
	"fmt"

	"nervs/ast"
	"nervs/types"
)

// TypeInference computes expression types against the scope stack and the
// rituals of the being currently being checked.
type TypeInference struct {
	scopes   *ScopeStack
	registry *Registry

	realm string
	being string

	// every inferred expression ends up here
	Types map[ast.Expression]types.Type
}

func NewTypeInference(registry *Registry, scopes *ScopeStack) *TypeInference {
	return &TypeInference{
		scopes:   scopes,
		registry: registry,
		Types:    make(map[ast.Expression]types.Type),
	}
}

// SetContext selects the being calls are resolved against.
func (ti *TypeInference) SetContext(realm, being string) {
	ti.realm = realm
	ti.being = being
}

func (ti *TypeInference) Infer(expr ast.Expression) (types.Type, error) {
	tp, err := ti.inferExpressionType(expr)
	if err != nil {
		return types.Type{}, err
	}
	ti.Types[expr] = tp
	return tp, nil
}

func (ti *TypeInference) inferExpressionType(expr ast.Expression) (types.Type, error) {
	switch node := expr.(type) {
	case *ast.IntegerLiteral:
		return types.Integer, nil
	case *ast.FloatLiteral:
		return types.Float, nil
	case *ast.StringLiteral:
		return types.String, nil
	case *ast.BooleanLiteral:
		return types.Boolean, nil
	case *ast.Identifier:
		return ti.inferIdentifierType(node)
	case *ast.BinaryExpression:
		return ti.inferBinaryExpressionType(node)
	case *ast.CallExpression:
		return ti.inferCallExpressionType(node)
	default:
		return types.Type{}, fmt.Errorf("semantics: unsupported expression %T", expr)
	}
}

func (ti *TypeInference) inferIdentifierType(node *ast.Identifier) (types.Type, error) {
	tp, ok := ti.scopes.Resolve(node.Value)
	if !ok {
		return types.Type{}, &UndefinedVariableError{Name: node.Value, Token: node.Token}
	}
	return tp, nil
}

func (ti *TypeInference) inferBinaryExpressionType(node *ast.BinaryExpression) (types.Type, error) {
	left, err := ti.Infer(node.Left)
	if err != nil {
		return types.Type{}, err
	}
	right, err := ti.Infer(node.Right)
	if err != nil {
		return types.Type{}, err
	}

	site := fmt.Sprintf("operation (%s)", node.Operator)

	switch node.Operator {
	case "+", "-", "*", "/":
		tp, ok := types.Promote(left, right)
		if !ok {
			return types.Type{}, &TypeMismatchError{Expected: "numeric", Found: pair(left, right), Site: site, Token: node.Token}
		}
		return tp, nil
	case "==", "!=":
		if !types.Compatible(left, right) {
			return types.Type{}, &TypeMismatchError{Expected: left.String(), Found: right.String(), Site: site, Token: node.Token}
		}
		return types.Boolean, nil
	case "<", ">":
		if !left.IsNumeric() || !right.IsNumeric() {
			return types.Type{}, &TypeMismatchError{Expected: "numeric", Found: pair(left, right), Site: site, Token: node.Token}
		}
		return types.Boolean, nil
	default:
		return types.Type{}, fmt.Errorf("semantics: unknown operator %q", node.Operator)
	}
}

// calls only reach rituals of the current being
func (ti *TypeInference) inferCallExpressionType(node *ast.CallExpression) (types.Type, error) {
	sig, ok := ti.registry.LookupRitual(ti.realm, ti.being, node.Function)
	if !ok {
		return types.Type{}, &UndefinedRitualError{Name: node.Function, Token: node.Token}
	}

	if len(node.Args) != len(sig.Parameters) {
		return types.Type{}, &ArityMismatchError{
			Ritual:   sig.Name,
			Expected: len(sig.Parameters),
			Found:    len(node.Args),
			Token:    node.Token,
		}
	}

	for idx, arg := range node.Args {
		got, err := ti.Infer(arg)
		if err != nil {
			return types.Type{}, err
		}
		want := sig.Parameters[idx].Type
		if !types.Compatible(want, got) {
			return types.Type{}, &TypeMismatchError{
				Expected: want.String(),
				Found:    got.String(),
				Site:     fmt.Sprintf("argument %d of ritual (%s)", idx, sig.Name),
				Token:    arg.GetToken(),
			}
		}
	}

	return sig.ReturnType, nil
}
