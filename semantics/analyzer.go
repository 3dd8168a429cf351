package semantics

import (
	"nervs/ast"
	"nervs/types"
)

// Info is what a successful analysis leaves behind for the runtime and tools.
type Info struct {
	Registry *Registry
	Types    map[ast.Expression]types.Type
}

// TypeOf returns the inferred type of expr.
func (i *Info) TypeOf(expr ast.Expression) (types.Type, bool) {
	tp, ok := i.Types[expr]
	return tp, ok
}

// Analyzer checks one compilation unit. Instances share nothing, so separate
// units can be analyzed in parallel with one analyzer each.
type Analyzer struct {
	registry  *Registry
	scopes    *ScopeStack
	inference *TypeInference
	checker   *TypeChecker
}

func NewAnalyzer() *Analyzer {
	a := &Analyzer{}
	a.reset()
	return a
}

func (a *Analyzer) reset() {
	a.registry = NewRegistry()
	a.scopes = NewScopeStack()
	a.inference = NewTypeInference(a.registry, a.scopes)
	a.checker = NewTypeChecker(a.scopes, a.inference)
}

// Analyze walks program once, top down, and stops at the first violation.
// Every being is fully registered before any of its ritual bodies is checked,
// so rituals can call each other regardless of order.
func (a *Analyzer) Analyze(program *ast.Program) (*Info, error) {
	a.reset()

	for _, realm := range program.Realms {
		if err := a.registry.RegisterRealm(realm.Name); err != nil {
			return nil, positioned(err, realm.Token)
		}

		for _, being := range realm.Beings {
			if err := a.analyzeBeing(realm, being); err != nil {
				return nil, err
			}
		}
	}

	return &Info{Registry: a.registry, Types: a.inference.Types}, nil
}

func (a *Analyzer) analyzeBeing(realm *ast.Realm, being *ast.Being) error {
	if err := a.registry.RegisterBeing(realm.Name, being.Name); err != nil {
		return positioned(err, being.Token)
	}

	for _, variable := range being.Variables {
		if err := a.registry.RegisterMemberVariable(realm.Name, being.Name, variable); err != nil {
			return err
		}
	}

	for _, ritual := range being.Rituals {
		if err := a.registry.RegisterRitual(realm.Name, being.Name, NewSignature(ritual)); err != nil {
			return err
		}
	}

	a.scopes.SetBeing(a.registry.Being(realm.Name, being.Name))
	a.inference.SetContext(realm.Name, being.Name)
	defer a.scopes.SetBeing(nil)

	for _, ritual := range being.Rituals {
		if err := a.checker.CheckRitual(ritual); err != nil {
			return err
		}
		if a.scopes.Depth() != 0 {
			panic("semantics: scope stack leaked out of ritual " + ritual.Name)
		}
	}
	return nil
}
