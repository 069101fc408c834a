package symbols

import (
	"github.com/funvibe/implicits/internal/typesystem"
)

// Scope is a read-only set of member declarations.
type Scope interface {
	Name() string
	Declarations() []*ClassDecl
}

// Provider answers the scope queries made by instance resolution.
// Implementations must be safe for concurrent reads.
type Provider interface {
	// PackageScope returns the top-level declarations of a package.
	PackageScope(pkg string) (Scope, bool)
	// CompanionScope returns the singleton scope attached to the type
	// constructor of t, if it has one.
	CompanionScope(t typesystem.Type) (Scope, bool)
}

type declScope struct {
	name  string
	decls []*ClassDecl
}

func (s *declScope) Name() string { return s.name }

func (s *declScope) Declarations() []*ClassDecl {
	return append([]*ClassDecl(nil), s.decls...)
}

// NewScope builds a scope over the given declarations.
func NewScope(name string, decls ...*ClassDecl) Scope {
	return &declScope{name: name, decls: decls}
}
