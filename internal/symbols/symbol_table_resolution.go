package symbols

import (
	"sort"
	"strings"

	"github.com/funvibe/implicits/internal/typesystem"
)

// ResolveTypeName resolves a (possibly qualified) type name as seen from
// package pkg. Unqualified names prefer the current package, then the
// prelude, then a unique match anywhere.
func (st *SymbolTable) ResolveTypeName(name, pkg string) (typesystem.TCon, error) {
	if c, ok := st.classes[name]; ok {
		return c.Con(), nil
	}
	if c, ok := st.classes[pkg+"."+name]; ok {
		return c.Con(), nil
	}

	simple := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		simple = name[i+1:]
	}
	var matches []string
	for _, fq := range st.byName[simple] {
		if fq == name || strings.HasSuffix(fq, "."+name) {
			matches = append(matches, fq)
		}
	}
	switch len(matches) {
	case 0:
		return typesystem.TCon{}, typesystem.NewUnknownTypeError(name)
	case 1:
		return st.classes[matches[0]].Con(), nil
	}
	for _, fq := range matches {
		if c := st.classes[fq]; c.Package == preludePackage() {
			return c.Con(), nil
		}
	}
	sort.Strings(matches)
	return typesystem.TCon{}, &typesystem.AmbiguousTypeError{Name: name, Candidates: matches}
}

// ClassOf returns the declaration named by the constructor of t.
func (st *SymbolTable) ClassOf(t typesystem.Type) (*ClassDecl, bool) {
	con, ok := typesystem.Constructor(t)
	if !ok {
		return nil, false
	}
	return st.Class(con.Identity())
}

// Supertypes returns the declared direct supertypes of t with the class
// type parameters replaced by the arguments of t.
func (st *SymbolTable) Supertypes(t typesystem.Type) []typesystem.Type {
	decl, ok := st.ClassOf(t)
	if !ok || len(decl.Supertypes) == 0 {
		return nil
	}
	args := t.Arguments()
	res := make([]typesystem.Type, len(decl.Supertypes))
	for i, s := range decl.Supertypes {
		if len(args) == len(decl.TypeParams) {
			res[i] = typesystem.Instantiate(s, decl.TypeParams, args)
		} else {
			res[i] = s
		}
	}
	return res
}

// PackageScope implements Provider.
func (st *SymbolTable) PackageScope(pkg string) (Scope, bool) {
	s, ok := st.packages[pkg]
	if !ok {
		return nil, false
	}
	return s, true
}

// CompanionScope implements Provider.
func (st *SymbolTable) CompanionScope(t typesystem.Type) (Scope, bool) {
	decl, ok := st.ClassOf(t)
	if !ok || decl.Companion == nil {
		return nil, false
	}
	return NewScope(decl.Companion.FQName(), decl.Companion.Members...), true
}
