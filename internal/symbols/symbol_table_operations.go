package symbols

import (
	"fmt"
)

// SymbolTable is the concrete declaration registry. It is populated once
// by the program loader and then only read.
type SymbolTable struct {
	packages map[string]*declScope
	classes  map[string]*ClassDecl // FQName -> declaration
	funcs    map[string]*FuncDecl  // FQName -> declaration
	byName   map[string][]string   // simple name -> FQNames
}

// NewEmptySymbolTable creates a table without prelude types.
func NewEmptySymbolTable() *SymbolTable {
	return &SymbolTable{
		packages: make(map[string]*declScope),
		classes:  make(map[string]*ClassDecl),
		funcs:    make(map[string]*FuncDecl),
		byName:   make(map[string][]string),
	}
}

// NewSymbolTable creates a table with the prelude types registered.
func NewSymbolTable() *SymbolTable {
	st := NewEmptySymbolTable()
	st.InitBuiltins()
	return st
}

// DefinePackage registers an (initially empty) package.
func (st *SymbolTable) DefinePackage(name string) {
	if _, ok := st.packages[name]; ok {
		return
	}
	st.packages[name] = &declScope{name: name}
}

// DefineClass registers a class together with its companion and nested
// members. Top-level classes become members of their package scope;
// nested classes must already be linked to their Outer.
func (st *SymbolTable) DefineClass(decl *ClassDecl) error {
	if decl.Outer == nil {
		st.DefinePackage(decl.Package)
	}
	if err := st.register(decl); err != nil {
		return err
	}
	if decl.Outer == nil {
		scope := st.packages[decl.Package]
		scope.decls = append(scope.decls, decl)
	}
	return nil
}

func (st *SymbolTable) register(decl *ClassDecl) error {
	fq := decl.FQName()
	if _, exists := st.classes[fq]; exists {
		return fmt.Errorf("class %s is already defined", fq)
	}
	st.classes[fq] = decl
	st.byName[decl.Name] = append(st.byName[decl.Name], fq)

	if decl.Companion != nil {
		decl.Companion.Outer = decl
		decl.Companion.Package = decl.Package
		if err := st.register(decl.Companion); err != nil {
			return err
		}
	}
	for _, m := range decl.Members {
		m.Outer = decl
		m.Package = decl.Package
		if err := st.register(m); err != nil {
			return err
		}
	}
	return nil
}

// DefineFunc registers a function. Parent functions must be defined first.
func (st *SymbolTable) DefineFunc(f *FuncDecl) error {
	fq := f.FQName()
	if _, exists := st.funcs[fq]; exists {
		return fmt.Errorf("function %s is already defined", fq)
	}
	if f.Parent != nil {
		if _, ok := st.funcs[f.Parent.FQName()]; !ok {
			return fmt.Errorf("function %s: enclosing function %s is not defined", fq, f.Parent.FQName())
		}
	}
	st.DefinePackage(f.Package)
	st.funcs[fq] = f
	return nil
}

// Class looks up a class by fully qualified name.
func (st *SymbolTable) Class(fqName string) (*ClassDecl, bool) {
	c, ok := st.classes[fqName]
	return c, ok
}

// Func looks up a function by fully qualified name.
func (st *SymbolTable) Func(fqName string) (*FuncDecl, bool) {
	f, ok := st.funcs[fqName]
	return f, ok
}
