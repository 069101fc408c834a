package typesystem

import (
	"github.com/hashicorp/go-set/v3"
)

// Hierarchy exposes the declared nominal supertypes of a type. Supertypes
// must be expressed in terms of t's own arguments (already instantiated).
type Hierarchy interface {
	Supertypes(t Type) []Type
}

// Matcher decides whether a candidate type can stand in for a required
// type, growing a substitution environment as placeholders get bound.
//
// Widen additionally lets a type argument of the candidate be a nominal
// supertype of the corresponding required argument (Printer<Number> for
// Printer<Long>). The outermost capability type is never widened.
type Matcher struct {
	Hierarchy Hierarchy
	Widen     bool
}

// IsReplaceable reports whether candidate can replace target under env.
// On success the returned Env extends env with the bindings discovered; on
// failure env is returned untouched.
func (m Matcher) IsReplaceable(candidate, target Type, env Env) (bool, Env) {
	return m.replaceable(candidate, target, env, 0)
}

// IsCompatible reports whether every declared supertype of a declaration is
// replaceable against target, threading bindings from one supertype to the
// next. A declaration without supertypes provides nothing.
func (m Matcher) IsCompatible(supertypes []Type, target Type, env Env) (bool, Env) {
	if len(supertypes) == 0 {
		return false, env
	}
	next := env
	for _, supertype := range supertypes {
		ok, extended := m.IsReplaceable(supertype, target, next)
		if !ok {
			return false, env
		}
		next = extended
	}
	return true, next
}

func (m Matcher) replaceable(candidate, target Type, env Env, depth int) (bool, Env) {
	if candidate == nil || target == nil {
		return false, env
	}

	if IsPlaceholder(candidate) {
		return m.bindPlaceholder(candidate, target, env, depth)
	}

	c, t, ok := m.equivalence(candidate, target, env, depth)
	if !ok {
		return false, env
	}

	cArgs, tArgs := c.Arguments(), t.Arguments()
	if len(cArgs) != len(tArgs) {
		return false, env
	}

	next := env
	for i := range cArgs {
		ok, extended := m.replaceable(cArgs[i], tArgs[i], next, depth+1)
		if !ok {
			return false, env
		}
		next = extended
	}
	return true, next
}

// bindPlaceholder follows existing bindings of a placeholder candidate. An
// unbound placeholder (or a cyclic chain of them) is bound to target.
func (m Matcher) bindPlaceholder(candidate, target Type, env Env, depth int) (bool, Env) {
	if IsPlaceholder(target) {
		return true, env.Extend(candidate, target)
	}

	visited := set.New[string](2)
	current := candidate
	for IsPlaceholder(current) {
		if !visited.Insert(current.Identity()) {
			return true, env.Extend(candidate, target)
		}
		bound, ok := env.Find(current)
		if !ok {
			return true, env.Extend(current, target)
		}
		current = bound
	}
	return m.replaceable(current, target, env, depth)
}

// equivalence establishes that candidate and target name the same type,
// either directly or through a previously recorded substitution in either
// direction. It returns the pair whose arguments should be compared.
func (m Matcher) equivalence(candidate, target Type, env Env, depth int) (Type, Type, bool) {
	if candidate.Identity() == target.Identity() {
		return candidate, target, true
	}
	if bound, ok := env.Find(candidate); ok && bound.Identity() == target.Identity() {
		return bound, target, true
	}
	if bound, ok := env.Find(target); ok && bound.Identity() == candidate.Identity() {
		return candidate, bound, true
	}
	if m.Widen && depth > 0 && m.Hierarchy != nil {
		if super, ok := m.supertypeNamed(target, candidate.Identity()); ok {
			return candidate, super, true
		}
	}
	return nil, nil, false
}

// supertypeNamed searches the transitive supertypes of t breadth-first for
// one whose identity is identity.
func (m Matcher) supertypeNamed(t Type, identity string) (Type, bool) {
	seen := set.New[string](4)
	seen.Insert(t.Identity())
	queue := m.Hierarchy.Supertypes(t)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if !seen.Insert(next.Identity()) {
			continue
		}
		if next.Identity() == identity {
			return next, true
		}
		queue = append(queue, m.Hierarchy.Supertypes(next)...)
	}
	return nil, false
}
