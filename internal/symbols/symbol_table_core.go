package symbols

import (
	"strings"

	"github.com/funvibe/implicits/internal/typesystem"
)

type ClassKind int

const (
	ClassKindClass     ClassKind = iota // Ordinary class, instantiated per use
	ClassKindObject                     // Singleton with a program-wide instance
	ClassKindInterface                  // Capability type, never an instance
)

func (k ClassKind) String() string {
	switch k {
	case ClassKindObject:
		return "object"
	case ClassKindInterface:
		return "interface"
	default:
		return "class"
	}
}

// Param is a value parameter of a function or constructor.
type Param struct {
	Name     string
	Type     typesystem.Type
	Slot     int    // Local variable slot used by code generation
	Implicit bool   // Argument is deduced by instance resolution when omitted
	Package  string // Package containing the declaring function or class
	Owner    string // Fully qualified name of the declaring function or class
}

func (p *Param) String() string {
	return p.Name + ": " + p.Type.String()
}

// WithType returns a copy of p whose declared type is t.
func (p *Param) WithType(t typesystem.Type) *Param {
	cp := *p
	cp.Type = t
	return &cp
}

// ClassDecl is a class, singleton object or interface declaration.
type ClassDecl struct {
	Name       string
	Package    string
	Kind       ClassKind
	Instance   bool // Declared as an instance provider, visible to resolution
	TypeParams []typesystem.TVar
	Supertypes []typesystem.Type
	// Constructor holds the primary constructor parameters; nil for objects.
	Constructor []*Param
	Companion   *ClassDecl
	Members     []*ClassDecl
	Outer       *ClassDecl
}

// RelName is the name of the class relative to its package
// (e.g. User.Companion.UserValidator).
func (c *ClassDecl) RelName() string {
	if c.Outer == nil {
		return c.Name
	}
	return c.Outer.RelName() + "." + c.Name
}

// FQName is the fully qualified name of the class.
func (c *ClassDecl) FQName() string {
	if c.Package == "" {
		return c.RelName()
	}
	return c.Package + "." + c.RelName()
}

func (c *ClassDecl) IsSingleton() bool {
	return c.Kind == ClassKindObject
}

// Con returns the nominal type constructor naming this class.
func (c *ClassDecl) Con() typesystem.TCon {
	return typesystem.TCon{Name: c.RelName(), Package: c.Package}
}

// Type returns the class type applied to its own type parameters.
func (c *ClassDecl) Type() typesystem.Type {
	if len(c.TypeParams) == 0 {
		return c.Con()
	}
	args := make([]typesystem.Type, len(c.TypeParams))
	for i, tp := range c.TypeParams {
		args[i] = tp
	}
	return typesystem.TApp{Constructor: c.Con(), Args: args}
}

func (c *ClassDecl) String() string {
	var sb strings.Builder
	sb.WriteString(c.Kind.String())
	sb.WriteString(" ")
	sb.WriteString(c.FQName())
	if len(c.Supertypes) > 0 {
		sb.WriteString(" : ")
		for i, s := range c.Supertypes {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(s.String())
		}
	}
	return sb.String()
}

// FuncDecl is a function declaration. Parent links lexically enclosing
// functions (local functions and lambdas).
type FuncDecl struct {
	Name       string
	Package    string
	TypeParams []typesystem.TVar
	Params     []*Param
	Parent     *FuncDecl
}

func (f *FuncDecl) FQName() string {
	name := f.Name
	for p := f.Parent; p != nil; p = p.Parent {
		name = p.Name + "." + name
	}
	if f.Package == "" {
		return name
	}
	return f.Package + "." + name
}

// Param returns the parameter with the given name.
func (f *FuncDecl) Param(name string) (*Param, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// EnclosingParams walks outward through lexically enclosing functions,
// concatenating each level's parameters, innermost first.
func (f *FuncDecl) EnclosingParams() []*Param {
	var params []*Param
	for fn := f; fn != nil; fn = fn.Parent {
		params = append(params, fn.Params...)
	}
	return params
}
