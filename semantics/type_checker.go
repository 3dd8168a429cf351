package semantics

import (
	"fmt"

	"nervs/ast"
	"nervs/types"
)

// TypeChecker validates the statements of one ritual body at a time.
type TypeChecker struct {
	scopes    *ScopeStack
	inference *TypeInference

	// the ritual being checked
	ritual     string
	returnType types.Type
}

func NewTypeChecker(scopes *ScopeStack, inference *TypeInference) *TypeChecker {
	return &TypeChecker{
		scopes:    scopes,
		inference: inference,
	}
}

// CheckRitual validates the body of ritual inside a fresh frame holding its
// parameters. The frame is always popped, even on error.
func (tc *TypeChecker) CheckRitual(ritual *ast.Ritual) error {
	tc.ritual = ritual.Name
	tc.returnType = ritual.ReturnType
	tc.scopes.SetRitual(ritual.Name)

	tc.scopes.Enter()
	defer tc.scopes.Exit()

	for _, param := range ritual.Parameters {
		if err := tc.scopes.Declare(param.Name, param.Type); err != nil {
			return positioned(err, param.Token)
		}
	}

	for _, stmt := range ritual.Body {
		if err := tc.checkStatement(stmt); err != nil {
			return err
		}
	}

	if !ritual.ReturnType.IsVoid() && !containsReturn(ritual.Body) {
		return &MissingReturnError{Ritual: ritual.Name, ReturnType: ritual.ReturnType, Token: ritual.Token}
	}
	return nil
}

func (tc *TypeChecker) checkStatement(stmt ast.Statement) error {
	switch node := stmt.(type) {
	case *ast.VarDeclaration:
		return tc.visitVarDeclaration(node)
	case *ast.AssignStatement:
		return tc.visitAssignStatement(node)
	case *ast.CallStatement:
		// the result, if any, is dropped
		_, err := tc.inference.Infer(node.Call)
		return err
	case *ast.IfStatement:
		return tc.visitIfStatement(node)
	case *ast.CycleStatement:
		return tc.visitCycleStatement(node)
	case *ast.ReturnStatement:
		return tc.visitReturnStatement(node)
	default:
		return fmt.Errorf("semantics: unsupported statement %T", stmt)
	}
}

func (tc *TypeChecker) checkBlock(body []ast.Statement) error {
	tc.scopes.Enter()
	defer tc.scopes.Exit()

	for _, stmt := range body {
		if err := tc.checkStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (tc *TypeChecker) visitVarDeclaration(node *ast.VarDeclaration) error {
	variable := node.Variable
	if node.Initializer != nil {
		got, err := tc.inference.Infer(node.Initializer)
		if err != nil {
			return err
		}
		if !types.Compatible(variable.Type, got) {
			return &TypeMismatchError{
				Expected: variable.Type.String(),
				Found:    got.String(),
				Site:     fmt.Sprintf("declaration of (%s)", variable.Name),
				Token:    node.Initializer.GetToken(),
			}
		}
	}

	if err := tc.scopes.Declare(variable.Name, variable.Type); err != nil {
		return positioned(err, variable.Token)
	}
	return nil
}

func (tc *TypeChecker) visitAssignStatement(node *ast.AssignStatement) error {
	want, ok := tc.scopes.Resolve(node.Name)
	if !ok {
		return &UndefinedVariableError{Name: node.Name, Token: node.Token}
	}

	got, err := tc.inference.Infer(node.Value)
	if err != nil {
		return err
	}
	if !types.Compatible(want, got) {
		return &TypeMismatchError{
			Expected: want.String(),
			Found:    got.String(),
			Site:     fmt.Sprintf("assignment to (%s)", node.Name),
			Token:    node.Value.GetToken(),
		}
	}
	return nil
}

func (tc *TypeChecker) checkCondition(cond ast.Expression, site string) error {
	got, err := tc.inference.Infer(cond)
	if err != nil {
		return err
	}
	if !types.Compatible(types.Boolean, got) {
		return &TypeMismatchError{Expected: types.BoolType, Found: got.String(), Site: site, Token: cond.GetToken()}
	}
	return nil
}

func (tc *TypeChecker) visitIfStatement(node *ast.IfStatement) error {
	if err := tc.checkCondition(node.Condition, "if condition"); err != nil {
		return err
	}

	// sibling arms never see each other's locals
	if err := tc.checkBlock(node.Consequence); err != nil {
		return err
	}
	if node.Alternative != nil {
		return tc.checkBlock(node.Alternative)
	}
	return nil
}

func (tc *TypeChecker) visitCycleStatement(node *ast.CycleStatement) error {
	if node.Condition != nil {
		if err := tc.checkCondition(node.Condition, "cycle condition"); err != nil {
			return err
		}
	}
	return tc.checkBlock(node.Body)
}

func (tc *TypeChecker) visitReturnStatement(node *ast.ReturnStatement) error {
	site := fmt.Sprintf("return of ritual (%s)", tc.ritual)

	if tc.returnType.IsVoid() {
		if node.ReturnValue == nil {
			return nil
		}
		got, err := tc.inference.Infer(node.ReturnValue)
		if err != nil {
			return err
		}
		return &TypeMismatchError{Expected: types.VoidType, Found: got.String(), Site: site, Token: node.ReturnValue.GetToken()}
	}

	if node.ReturnValue == nil {
		return &TypeMismatchError{Expected: tc.returnType.String(), Found: types.VoidType, Site: site, Token: node.Token}
	}

	got, err := tc.inference.Infer(node.ReturnValue)
	if err != nil {
		return err
	}
	if !types.Compatible(tc.returnType, got) {
		return &TypeMismatchError{Expected: tc.returnType.String(), Found: got.String(), Site: site, Token: node.ReturnValue.GetToken()}
	}
	return nil
}

// containsReturn looks for a return statement anywhere in body, including
// nested if arms and cycle bodies. It is a presence check, not a flow analysis.
func containsReturn(body []ast.Statement) bool {
	for _, stmt := range body {
		switch node := stmt.(type) {
		case *ast.ReturnStatement:
			return true
		case *ast.IfStatement:
			if containsReturn(node.Consequence) || containsReturn(node.Alternative) {
				return true
			}
		case *ast.CycleStatement:
			if containsReturn(node.Body) {
				return true
			}
		}
	}
	return false
}
