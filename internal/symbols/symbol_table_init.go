package symbols

import (
	"sync"

	"github.com/funvibe/implicits/internal/config"
	"github.com/funvibe/implicits/internal/typesystem"
)

// Prelude declarations are immutable and shared by every table.
var (
	preludeDecls []*ClassDecl
	preludeOnce  sync.Once
)

func preludePackage() string { return config.PreludePackage }

// GetPrelude returns the built-in type declarations.
func GetPrelude() []*ClassDecl {
	preludeOnce.Do(func() {
		anyType := typesystem.TCon{Name: config.AnyTypeName, Package: config.PreludePackage}
		number := typesystem.TCon{Name: config.NumberTypeName, Package: config.PreludePackage}

		builtin := func(name string, supers ...typesystem.Type) *ClassDecl {
			return &ClassDecl{
				Name:       name,
				Package:    config.PreludePackage,
				Kind:       ClassKindClass,
				Supertypes: supers,
			}
		}
		preludeDecls = []*ClassDecl{
			builtin(config.AnyTypeName),
			builtin(config.NumberTypeName, anyType),
			builtin(config.IntTypeName, number),
			builtin(config.LongTypeName, number),
			builtin(config.DoubleTypeName, number),
			builtin(config.StringTypeName, anyType),
			builtin(config.BooleanTypeName, anyType),
		}
	})
	return preludeDecls
}

// InitBuiltins registers the prelude types in the std package.
func (st *SymbolTable) InitBuiltins() {
	for _, decl := range GetPrelude() {
		if _, exists := st.classes[decl.FQName()]; exists {
			continue
		}
		// Prelude names are unique by construction.
		_ = st.DefineClass(decl)
	}
}
