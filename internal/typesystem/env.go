package typesystem

import (
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// Substitution records that Source was found to stand for Target.
type Substitution struct {
	Source Type
	Target Type
}

func (s Substitution) String() string {
	return s.Source.String() + " -> " + s.Target.String()
}

// Env is an ordered, append-only substitution environment.
//
// Env has value semantics: Extend and Concat always return a fresh Env and
// never write into storage shared with the receiver, so sibling search
// branches cannot observe each other's speculative bindings.
type Env struct {
	entries []Substitution
}

// EmptyEnv returns an environment with no substitutions.
func EmptyEnv() Env { return Env{} }

// NewEnv builds an environment from the given substitutions in order.
func NewEnv(subs ...Substitution) Env {
	return Env{entries: append([]Substitution(nil), subs...)}
}

// Len returns the number of recorded substitutions.
func (e Env) Len() int { return len(e.entries) }

// Entries returns a copy of the substitutions in insertion order.
func (e Env) Entries() []Substitution {
	return append([]Substitution(nil), e.entries...)
}

// Find returns the most recently recorded target for a source structurally
// equal to source.
func (e Env) Find(source Type) (Type, bool) {
	for i := len(e.entries) - 1; i >= 0; i-- {
		if Equal(e.entries[i].Source, source) {
			return e.entries[i].Target, true
		}
	}
	return nil, false
}

// Extend returns a new environment with source -> target appended.
func (e Env) Extend(source, target Type) Env {
	// The three-index slice caps capacity so append always copies.
	return Env{entries: append(e.entries[:len(e.entries):len(e.entries)], Substitution{Source: source, Target: target})}
}

// Concat returns a new environment holding e's entries followed by other's.
func (e Env) Concat(other Env) Env {
	if len(other.entries) == 0 {
		return e
	}
	merged := make([]Substitution, 0, len(e.entries)+len(other.entries))
	merged = append(merged, e.entries...)
	merged = append(merged, other.entries...)
	return Env{entries: merged}
}

// Since returns the substitutions e recorded after base, assuming e was
// derived from base by Extend or Concat.
func (e Env) Since(base Env) Env {
	if len(e.entries) <= len(base.entries) {
		return Env{}
	}
	return NewEnv(e.entries[len(base.entries):]...)
}

// Apply replaces every bound placeholder in t by its target, following
// chains of bindings. Cyclic chains stop at the first repeated placeholder.
func (e Env) Apply(t Type) Type {
	return e.apply(t, set.New[string](0))
}

func (e Env) apply(t Type, visited *set.Set[string]) Type {
	switch typ := t.(type) {
	case TVar:
		if visited.Contains(typ.Identity()) {
			return typ
		}
		target, ok := e.Find(typ)
		if !ok {
			return typ
		}
		next := visited.Copy()
		next.Insert(typ.Identity())
		return e.apply(target, next)
	case TApp:
		args := make([]Type, len(typ.Args))
		for i, arg := range typ.Args {
			args[i] = e.apply(arg, visited)
		}
		return TApp{Constructor: typ.Constructor, Args: args}
	default:
		return t
	}
}

func (e Env) String() string {
	parts := make([]string, len(e.entries))
	for i, s := range e.entries {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
