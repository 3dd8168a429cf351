package object

type Environment struct {
	outer *Environment
	store map[string]Object
}

func NewEnvironment(outer *Environment) *Environment {
	s := make(map[string]Object)
	return &Environment{
		outer: outer,
		store: s,
	}
}

func (e *Environment) Resolve(name string) (Object, bool) {
	obj, ok := e.store[name]
	if !ok && e.outer != nil {
		obj, ok = e.outer.Resolve(name)
	}
	return obj, ok
}

// Define binds name in this environment, shadowing any outer binding.
func (e *Environment) Define(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Assign rebinds the nearest existing binding of name, it reports false when
// name isn't bound anywhere in the chain.
func (e *Environment) Assign(name string, val Object) bool {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = val
			return true
		}
	}
	return false
}
