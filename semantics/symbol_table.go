package semantics

import (
	"fmt"

	"nervs/ast"
	"nervs/lexer"
	"nervs/types"
)

// Signature is the callable shape of a ritual.
type Signature struct {
	Name       string
	Token      lexer.Token
	Parameters []*ast.Variable
	ReturnType types.Type
}

// NewSignature builds the signature of a parsed ritual.
func NewSignature(ritual *ast.Ritual) *Signature {
	return &Signature{
		Name:       ritual.Name,
		Token:      ritual.Token,
		Parameters: ritual.Parameters,
		ReturnType: ritual.ReturnType,
	}
}

type BeingInfo struct {
	Name      string
	Path      string // Realm.Being
	Variables map[string]types.Type
	Rituals   map[string]*Signature
}

type RealmInfo struct {
	Name   string
	Beings map[string]*BeingInfo
}

// Registry is the realm -> being -> {variables, rituals} table of one
// compilation unit. It is owned by a single analyzer and never shared.
type Registry struct {
	Realms map[string]*RealmInfo
}

func NewRegistry() *Registry {
	return &Registry{
		Realms: make(map[string]*RealmInfo),
	}
}

func (r *Registry) RegisterRealm(name string) error {
	if _, ok := r.Realms[name]; ok {
		return &DuplicateDefinitionError{Kind: KindRealm, Name: name}
	}
	r.Realms[name] = &RealmInfo{
		Name:   name,
		Beings: make(map[string]*BeingInfo),
	}
	return nil
}

func (r *Registry) RegisterBeing(realm, name string) error {
	info, ok := r.Realms[realm]
	if !ok {
		return fmt.Errorf("realm (%s): %w", realm, ErrNotRegistered)
	}
	if _, ok := info.Beings[name]; ok {
		return &DuplicateDefinitionError{Kind: KindBeing, Name: name, Path: realm}
	}
	info.Beings[name] = &BeingInfo{
		Name:      name,
		Path:      realm + "." + name,
		Variables: make(map[string]types.Type),
		Rituals:   make(map[string]*Signature),
	}
	return nil
}

func (r *Registry) RegisterMemberVariable(realm, being string, variable *ast.Variable) error {
	info, err := r.being(realm, being)
	if err != nil {
		return err
	}
	if _, ok := info.Variables[variable.Name]; ok {
		return &DuplicateDefinitionError{Kind: KindVariable, Name: variable.Name, Path: info.Path, Token: variable.Token}
	}
	info.Variables[variable.Name] = variable.Type
	return nil
}

// RegisterRitual checks the parameter names first, then the ritual name, and
// only inserts when both are unique.
func (r *Registry) RegisterRitual(realm, being string, sig *Signature) error {
	info, err := r.being(realm, being)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(sig.Parameters))
	for _, param := range sig.Parameters {
		if seen[param.Name] {
			return &DuplicateDefinitionError{
				Kind:  KindParameter,
				Name:  param.Name,
				Path:  info.Path + "." + sig.Name,
				Token: param.Token,
			}
		}
		seen[param.Name] = true
	}

	if _, ok := info.Rituals[sig.Name]; ok {
		return &DuplicateDefinitionError{Kind: KindRitual, Name: sig.Name, Path: info.Path, Token: sig.Token}
	}
	info.Rituals[sig.Name] = sig
	return nil
}

func (r *Registry) LookupRitual(realm, being, name string) (*Signature, bool) {
	info, err := r.being(realm, being)
	if err != nil {
		return nil, false
	}
	sig, ok := info.Rituals[name]
	return sig, ok
}

func (r *Registry) LookupMemberVariable(realm, being, name string) (types.Type, bool) {
	info, err := r.being(realm, being)
	if err != nil {
		return types.Type{}, false
	}
	tp, ok := info.Variables[name]
	return tp, ok
}

// Being returns the registered being, nil when either level is unknown.
func (r *Registry) Being(realm, being string) *BeingInfo {
	info, _ := r.being(realm, being)
	return info
}

func (r *Registry) being(realm, being string) (*BeingInfo, error) {
	realmInfo, ok := r.Realms[realm]
	if !ok {
		return nil, fmt.Errorf("realm (%s): %w", realm, ErrNotRegistered)
	}
	info, ok := realmInfo.Beings[being]
	if !ok {
		return nil, fmt.Errorf("being (%s.%s): %w", realm, being, ErrNotRegistered)
	}
	return info, nil
}
