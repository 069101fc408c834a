package typesystem

import (
	"strings"
)

// Type is the interface for all type references the resolver works with.
//
// Identity is the canonical nominal identity: the fully qualified name of a
// type constructor. Two types with equal identity are name-equivalent even if
// their arguments differ.
type Type interface {
	String() string
	Identity() string
	Arguments() []Type
	Apply(Env) Type
}

// TCon represents a nominal type constant (e.g. Int, com.data.User).
type TCon struct {
	Name    string
	Package string // Declaring package, empty for local names
}

func (t TCon) Identity() string {
	if t.Package == "" {
		return t.Name
	}
	return t.Package + "." + t.Name
}

func (t TCon) String() string { return t.Name }

func (t TCon) Arguments() []Type { return nil }

func (t TCon) Apply(e Env) Type { return e.Apply(t) }

// TApp represents a generic instantiation (e.g. Semigroup<Int>).
type TApp struct {
	Constructor TCon
	Args        []Type
}

func (t TApp) Identity() string { return t.Constructor.Identity() }

func (t TApp) String() string {
	if len(t.Args) == 0 {
		return t.Constructor.String()
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}
	return t.Constructor.String() + "<" + strings.Join(args, ", ") + ">"
}

func (t TApp) Arguments() []Type { return t.Args }

func (t TApp) Apply(e Env) Type { return e.Apply(t) }

// TVar represents a generic type parameter. Its member scope is never
// elaborated, so the matcher treats it as a placeholder that binds to
// whatever it is compared against.
type TVar struct {
	Name  string
	Owner string // Fully qualified name of the declaring class or function
}

func (t TVar) Identity() string {
	if t.Owner == "" {
		return "$" + t.Name
	}
	return t.Owner + "$" + t.Name
}

func (t TVar) String() string { return t.Name }

func (t TVar) Arguments() []Type { return nil }

func (t TVar) Apply(e Env) Type { return e.Apply(t) }

// IsPlaceholder reports whether t has an unresolved member scope.
func IsPlaceholder(t Type) bool {
	_, ok := t.(TVar)
	return ok
}

// Constructor returns the nominal head of t, if it has one.
func Constructor(t Type) (TCon, bool) {
	switch typ := t.(type) {
	case TCon:
		return typ, true
	case TApp:
		return typ.Constructor, true
	default:
		return TCon{}, false
	}
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if IsPlaceholder(a) != IsPlaceholder(b) {
		return false
	}
	if a.Identity() != b.Identity() {
		return false
	}
	aArgs, bArgs := a.Arguments(), b.Arguments()
	if len(aArgs) != len(bArgs) {
		return false
	}
	for i := range aArgs {
		if !Equal(aArgs[i], bArgs[i]) {
			return false
		}
	}
	return true
}

// Qualified renders t with fully qualified constructor names. Placeholders
// carry their owner so that same-named type parameters stay distinct.
func Qualified(t Type) string {
	switch typ := t.(type) {
	case TApp:
		if len(typ.Args) == 0 {
			return typ.Constructor.Identity()
		}
		args := make([]string, len(typ.Args))
		for i, arg := range typ.Args {
			args[i] = Qualified(arg)
		}
		return typ.Constructor.Identity() + "<" + strings.Join(args, ", ") + ">"
	case TCon:
		return typ.Identity()
	case TVar:
		return typ.Identity()
	case nil:
		return "<nil>"
	default:
		return t.String()
	}
}

// Instantiate replaces the named type parameters of owner with args.
// It is used to express a generic declaration's supertypes in terms of a
// concrete instantiation.
func Instantiate(t Type, params []TVar, args []Type) Type {
	if len(params) == 0 || len(params) != len(args) {
		return t
	}
	env := EmptyEnv()
	for i, p := range params {
		env = env.Extend(p, args[i])
	}
	return env.Apply(t)
}
