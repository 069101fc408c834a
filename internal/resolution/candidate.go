package resolution

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/implicits/internal/symbols"
	"github.com/funvibe/implicits/internal/typesystem"
)

// Candidate is a value that can be supplied for an implicit parameter.
// The set of variants is closed: *LocalParameter, *SingletonOrClass and
// *ConstructedInstance.
type Candidate interface {
	// Bindings returns the substitutions accumulated while the candidate
	// was discovered.
	Bindings() typesystem.Env
	// Key identifies the source of the candidate for distinctness.
	Key() string
	// Name is the fully qualified name reported in diagnostics.
	Name() string
	candidate()
}

// LocalParameter is an implicit parameter of an enclosing function.
type LocalParameter struct {
	Param *symbols.Param
	Slot  int
	Env   typesystem.Env
}

// SingletonOrClass is an instance-providing declaration. Singletons are
// read from their static instance; classes are constructed.
type SingletonOrClass struct {
	Decl *symbols.ClassDecl
	// TypeArgs stand for the declaration's type parameters in Env. They are
	// fresh placeholders per resolution node so that nested uses of the same
	// generic declaration never share bindings.
	TypeArgs []typesystem.Type
	Env      typesystem.Env
}

// ConstructedInstance is a class whose implicit constructor parameters have
// been resolved to Args, in parameter order.
type ConstructedInstance struct {
	Decl     *symbols.ClassDecl
	TypeArgs []typesystem.Type
	Args     []Candidate
	Env      typesystem.Env
}

func (*LocalParameter) candidate()      {}
func (*SingletonOrClass) candidate()    {}
func (*ConstructedInstance) candidate() {}

func (c *LocalParameter) Bindings() typesystem.Env      { return c.Env }
func (c *SingletonOrClass) Bindings() typesystem.Env    { return c.Env }
func (c *ConstructedInstance) Bindings() typesystem.Env { return c.Env }

func (c *LocalParameter) Key() string {
	return "local:" + c.Param.Owner + "#" + strconv.Itoa(c.Slot)
}
func (c *SingletonOrClass) Key() string    { return "decl:" + c.Decl.FQName() }
func (c *ConstructedInstance) Key() string { return "decl:" + c.Decl.FQName() }

func (c *LocalParameter) Name() string {
	if c.Param.Owner == "" {
		return c.Param.Name
	}
	return c.Param.Owner + "." + c.Param.Name
}
func (c *SingletonOrClass) Name() string    { return c.Decl.FQName() }
func (c *ConstructedInstance) Name() string { return c.Decl.FQName() }

// ConstructorParams returns the declaration's constructor parameters with
// type parameters replaced by the candidate's fresh placeholders.
func (c *SingletonOrClass) ConstructorParams() []*symbols.Param {
	return instantiateParams(c.Decl, c.TypeArgs)
}

func (c *ConstructedInstance) ConstructorParams() []*symbols.Param {
	return instantiateParams(c.Decl, c.TypeArgs)
}

// Type is the candidate's declared type under its accumulated bindings.
func (c *SingletonOrClass) Type() typesystem.Type {
	return appliedType(c.Decl, c.TypeArgs, c.Env)
}

func (c *ConstructedInstance) Type() typesystem.Type {
	return appliedType(c.Decl, c.TypeArgs, c.Env)
}

func instantiateParams(decl *symbols.ClassDecl, typeArgs []typesystem.Type) []*symbols.Param {
	params := make([]*symbols.Param, len(decl.Constructor))
	for i, p := range decl.Constructor {
		params[i] = p.WithType(typesystem.Instantiate(p.Type, decl.TypeParams, typeArgs))
	}
	return params
}

func appliedType(decl *symbols.ClassDecl, typeArgs []typesystem.Type, env typesystem.Env) typesystem.Type {
	if len(typeArgs) == 0 {
		return decl.Con()
	}
	return env.Apply(typesystem.TApp{Constructor: decl.Con(), Args: typeArgs})
}

// Outcome is a recorded resolution result: exactly one of Candidate and
// Err is set.
type Outcome struct {
	Candidate Candidate
	Err       error
}

func (o Outcome) Resolved() bool { return o.Err == nil && o.Candidate != nil }

func (o Outcome) String() string {
	if o.Resolved() {
		return "resolved " + o.Candidate.Name()
	}
	if o.Err != nil {
		return "unresolved: " + o.Err.Error()
	}
	return "unresolved"
}

// Describe renders a candidate tree, one node per line, with the
// substitutions recorded at the root.
func Describe(c Candidate) string {
	var sb strings.Builder
	describe(&sb, c, 0)
	if env := c.Bindings(); env.Len() > 0 {
		sb.WriteString("bindings: ")
		sb.WriteString(env.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func describe(sb *strings.Builder, c Candidate, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
	switch cand := c.(type) {
	case *LocalParameter:
		fmt.Fprintf(sb, "local %s (slot %d)\n", cand.Param, cand.Slot)
	case *SingletonOrClass:
		if cand.Decl.IsSingleton() {
			fmt.Fprintf(sb, "singleton %s\n", cand.Decl.FQName())
		} else {
			fmt.Fprintf(sb, "new %s\n", typesystem.Qualified(cand.Type()))
		}
	case *ConstructedInstance:
		fmt.Fprintf(sb, "new %s\n", typesystem.Qualified(cand.Type()))
		for _, arg := range cand.Args {
			describe(sb, arg, indent+1)
		}
	default:
		panic(fmt.Sprintf("unknown candidate type %T", c))
	}
}
