package semantics

import "nervs/types"

type frame map[string]types.Type

// ScopeStack holds the local frames of the ritual being checked. Lookups go
// innermost first and fall back to the members of the current being.
type ScopeStack struct {
	frames []frame
	being  *BeingInfo
	ritual string
}

func NewScopeStack() *ScopeStack {
	return &ScopeStack{}
}

// SetBeing selects the being whose members are visible behind the frames.
func (s *ScopeStack) SetBeing(being *BeingInfo) {
	s.being = being
}

// SetRitual names the ritual whose locals are declared, it shows up in the
// path of duplicate locals.
func (s *ScopeStack) SetRitual(name string) {
	s.ritual = name
}

func (s *ScopeStack) Enter() {
	s.frames = append(s.frames, make(frame))
}

// Exit drops the innermost frame. Calling it without a matching Enter is a
// bug in the caller and panics.
func (s *ScopeStack) Exit() {
	if len(s.frames) == 0 {
		panic("semantics: scope exit without a matching enter")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *ScopeStack) Depth() int {
	return len(s.frames)
}

// Declare binds name in the innermost frame. Names already visible from an
// outer frame or the being are shadowed.
func (s *ScopeStack) Declare(name string, tp types.Type) error {
	if len(s.frames) == 0 {
		panic("semantics: declare outside of any scope")
	}
	top := s.frames[len(s.frames)-1]
	if _, ok := top[name]; ok {
		dup := &DuplicateDefinitionError{Kind: KindVariable, Name: name}
		if s.being != nil {
			dup.Path = s.being.Path
			if s.ritual != "" {
				dup.Path += "." + s.ritual
			}
		}
		return dup
	}
	top[name] = tp
	return nil
}

func (s *ScopeStack) Resolve(name string) (types.Type, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if tp, ok := s.frames[i][name]; ok {
			return tp, true
		}
	}
	if s.being != nil {
		if tp, ok := s.being.Variables[name]; ok {
			return tp, true
		}
	}
	return types.Type{}, false
}
