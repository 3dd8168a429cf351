// Package interpreter executes rituals of an analyzed Nervs program by
// walking its tree.
package interpreter

import (
	"fmt"

	"go.uber.org/zap"

	"nervs/ast"
	"nervs/object"
	"nervs/types"
)

const (
	DefaultMaxCycleIterations = 1_000_000
	DefaultMaxCallDepth       = 10_000
)

type beingState struct {
	path    string
	members *object.Environment
	rituals map[string]*ast.Ritual
}

// Interpreter holds the member state of every being of one program. Member
// values persist across Execute calls. It is not safe for concurrent use.
type Interpreter struct {
	logger    *zap.Logger
	maxCycles int
	maxDepth  int
	beings    map[string]*beingState // keyed by Realm.Being

	// state of the ritual being executed
	env   *object.Environment
	being *beingState
	depth int
}

type Option func(*Interpreter)

func WithLogger(logger *zap.Logger) Option {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// WithMaxCycleIterations bounds how many times a single cycle statement may
// loop before execution fails.
func WithMaxCycleIterations(n int) Option {
	return func(i *Interpreter) {
		i.maxCycles = n
	}
}

// WithMaxCallDepth bounds how many ritual calls may be nested, recursion
// included.
func WithMaxCallDepth(n int) Option {
	return func(i *Interpreter) {
		i.maxDepth = n
	}
}

// New prepares program for execution. It expects a tree that passed analysis.
func New(program *ast.Program, opts ...Option) *Interpreter {
	i := &Interpreter{
		logger:    zap.NewNop(),
		maxCycles: DefaultMaxCycleIterations,
		maxDepth:  DefaultMaxCallDepth,
		beings:    make(map[string]*beingState),
	}
	for _, opt := range opts {
		opt(i)
	}

	for _, realm := range program.Realms {
		for _, being := range realm.Beings {
			state := &beingState{
				path:    realm.Name + "." + being.Name,
				members: object.NewEnvironment(nil),
				rituals: make(map[string]*ast.Ritual, len(being.Rituals)),
			}
			for _, variable := range being.Variables {
				state.members.Define(variable.Name, object.Zero(variable.Type))
			}
			for _, ritual := range being.Rituals {
				state.rituals[ritual.Name] = ritual
			}
			i.beings[state.path] = state
		}
	}

	return i
}

// Ritual returns the declaration of a ritual, used by callers to convert
// textual arguments.
func (i *Interpreter) Ritual(realm, being, ritual string) (*ast.Ritual, error) {
	state, ok := i.beings[realm+"."+being]
	if !ok {
		return nil, fmt.Errorf("being (%s.%s) not found", realm, being)
	}
	rt, ok := state.rituals[ritual]
	if !ok {
		return nil, fmt.Errorf("ritual (%s) not found in being (%s)", ritual, state.path)
	}
	return rt, nil
}

// Member reads the current value of a member variable.
func (i *Interpreter) Member(realm, being, name string) (object.Object, bool) {
	state, ok := i.beings[realm+"."+being]
	if !ok {
		return nil, false
	}
	return state.members.Resolve(name)
}

// Execute runs ritual with args and returns its result, object.VOID for void
// rituals.
func (i *Interpreter) Execute(realm, being, ritual string, args ...object.Object) (object.Object, error) {
	rt, err := i.Ritual(realm, being, ritual)
	if err != nil {
		return nil, err
	}
	state := i.beings[realm+"."+being]

	for idx, arg := range args {
		if idx >= len(rt.Parameters) {
			break
		}
		want := rt.Parameters[idx].Type
		if got, ok := object.TypeOf(arg); !ok || !types.Compatible(want, got) {
			return nil, fmt.Errorf("argument %d of ritual (%s) must be (%s), got (%s)", idx, ritual, want, arg.Type())
		}
	}

	i.logger.Debug("executing ritual", zap.String("being", state.path), zap.String("ritual", ritual), zap.Int("args", len(args)))

	i.being = state
	defer func() {
		i.being = nil
		i.env = nil
		i.depth = 0
	}()

	result := i.applyRitual(rt, args)
	if errObj, ok := result.(*object.Error); ok {
		i.logger.Debug("ritual failed", zap.String("ritual", ritual), zap.String("error", errObj.Message))
		return nil, errObj
	}
	return result, nil
}

func (i *Interpreter) applyRitual(rt *ast.Ritual, args []object.Object) object.Object {
	if len(args) != len(rt.Parameters) {
		return object.NewError("wrong number of arguments for ritual (%s). got=%d, want=%d",
			rt.Name, len(args), len(rt.Parameters))
	}

	if i.depth >= i.maxDepth {
		return object.NewError("ritual (%s) exceeded %d nested calls", rt.Name, i.maxDepth)
	}
	i.depth++
	defer func() { i.depth-- }()

	env := object.NewEnvironment(i.being.members)
	for idx, param := range rt.Parameters {
		env.Define(param.Name, args[idx])
	}

	// save the current env
	previousEnv := i.env
	i.env = env
	evaluated := i.evalStatements(rt.Body)
	// restore the old env
	i.env = previousEnv

	if object.IsError(evaluated) {
		return evaluated
	}
	if returnValue, ok := evaluated.(*object.ReturnValue); ok {
		return returnValue.Value
	}
	return object.VOID
}

// evalStatements stops at the first return or error and hands it back.
func (i *Interpreter) evalStatements(stmts []ast.Statement) object.Object {
	for _, stmt := range stmts {
		result := i.evalStatement(stmt)
		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}
	return nil
}

func (i *Interpreter) evalBlock(stmts []ast.Statement) object.Object {
	previousEnv := i.env
	i.env = object.NewEnvironment(previousEnv)
	defer func() { i.env = previousEnv }()

	return i.evalStatements(stmts)
}

func (i *Interpreter) evalStatement(stmt ast.Statement) object.Object {
	switch nd := stmt.(type) {
	case *ast.VarDeclaration:
		var val object.Object = object.Zero(nd.Variable.Type)
		if nd.Initializer != nil {
			val = i.Eval(nd.Initializer)
			if object.IsError(val) {
				return val
			}
		}
		i.env.Define(nd.Variable.Name, val)

	case *ast.AssignStatement:
		val := i.Eval(nd.Value)
		if object.IsError(val) {
			return val
		}
		if !i.env.Assign(nd.Name, val) {
			return object.NewError("identifier not found: %s", nd.Name)
		}

	case *ast.CallStatement:
		if res := i.Eval(nd.Call); object.IsError(res) {
			return res
		}

	case *ast.IfStatement:
		return i.evalIfStatement(nd)

	case *ast.CycleStatement:
		return i.evalCycleStatement(nd)

	case *ast.ReturnStatement:
		if nd.ReturnValue == nil {
			return &object.ReturnValue{Value: object.VOID}
		}
		val := i.Eval(nd.ReturnValue)
		if object.IsError(val) {
			return val
		}
		return &object.ReturnValue{Value: val}

	default:
		return object.NewError("unsupported statement %T", stmt)
	}
	return nil
}

func (i *Interpreter) evalCondition(cond ast.Expression) (bool, object.Object) {
	val := i.Eval(cond)
	if object.IsError(val) {
		return false, val
	}
	b, ok := val.(*object.Boolean)
	if !ok {
		return false, object.NewError("evaluation of the condition needs to return a boolean not %s", val.Type())
	}
	return b.Value, nil
}

func (i *Interpreter) evalIfStatement(nd *ast.IfStatement) object.Object {
	ok, errObj := i.evalCondition(nd.Condition)
	if errObj != nil {
		return errObj
	}
	if ok {
		return i.evalBlock(nd.Consequence)
	}
	if nd.Alternative != nil {
		return i.evalBlock(nd.Alternative)
	}
	return nil
}

func (i *Interpreter) evalCycleStatement(nd *ast.CycleStatement) object.Object {
	for iterations := 0; ; iterations++ {
		if nd.Condition != nil {
			ok, errObj := i.evalCondition(nd.Condition)
			if errObj != nil {
				return errObj
			}
			if !ok {
				return nil
			}
		}

		if iterations >= i.maxCycles {
			return object.NewError("cycle at %s exceeded %d iterations", nd.Token.Pos(), i.maxCycles)
		}

		result := i.evalBlock(nd.Body)
		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}
}

func (i *Interpreter) Eval(node ast.Expression) object.Object {
	switch nd := node.(type) {
	case *ast.IntegerLiteral:
		return &object.Integer{Value: nd.Value}
	case *ast.FloatLiteral:
		return &object.Float{Value: nd.Value}
	case *ast.StringLiteral:
		return &object.String{Value: nd.Value}
	case *ast.BooleanLiteral:
		return object.NativeBoolean(nd.Value)

	case *ast.Identifier:
		if obj, ok := i.env.Resolve(nd.Value); ok {
			return obj
		}
		return object.NewError("identifier not found: %s", nd.Value)

	case *ast.BinaryExpression:
		left := i.Eval(nd.Left)
		if object.IsError(left) {
			return left
		}
		right := i.Eval(nd.Right)
		if object.IsError(right) {
			return right
		}
		return evalBinaryExpression(nd.Operator, left, right)

	case *ast.CallExpression:
		rt, ok := i.being.rituals[nd.Function]
		if !ok {
			return object.NewError("ritual not found: %s", nd.Function)
		}
		args := make([]object.Object, 0, len(nd.Args))
		for _, arg := range nd.Args {
			val := i.Eval(arg)
			if object.IsError(val) {
				return val
			}
			args = append(args, val)
		}
		return i.applyRitual(rt, args)

	default:
		return object.NewError("unsupported expression %T", node)
	}
}
