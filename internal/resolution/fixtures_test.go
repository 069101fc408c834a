package resolution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/implicits/internal/symbols"
	"github.com/funvibe/implicits/internal/typesystem"
)

const extPkg = "com.ext"

// world is a small declaration set built per test.
type world struct {
	t  *testing.T
	st *symbols.SymbolTable
}

func newWorld(t *testing.T) *world {
	w := &world{t: t, st: symbols.NewSymbolTable()}
	w.define(&symbols.ClassDecl{Name: "Semigroup", Package: extPkg, Kind: symbols.ClassKindInterface,
		TypeParams: []typesystem.TVar{w.tv("Semigroup", "A")}})
	w.define(&symbols.ClassDecl{Name: "Wrapper", Package: extPkg, Kind: symbols.ClassKindClass,
		TypeParams: []typesystem.TVar{w.tv("Wrapper", "A")}})
	return w
}

func (w *world) define(decl *symbols.ClassDecl) *symbols.ClassDecl {
	w.t.Helper()
	require.NoError(w.t, w.st.DefineClass(decl))
	return decl
}

func (w *world) tv(owner, name string) typesystem.TVar {
	return typesystem.TVar{Name: name, Owner: extPkg + "." + owner}
}

func (w *world) con(fq string) typesystem.TCon {
	w.t.Helper()
	c, ok := w.st.Class(fq)
	require.True(w.t, ok, "class %s", fq)
	return c.Con()
}

func (w *world) std(name string) typesystem.TCon {
	return w.con("std." + name)
}

func app(c typesystem.TCon, args ...typesystem.Type) typesystem.TApp {
	return typesystem.TApp{Constructor: c, Args: args}
}

func (w *world) semigroup(arg typesystem.Type) typesystem.TApp {
	return app(w.con(extPkg+".Semigroup"), arg)
}

// singleton declares `object name : supertypes` as an instance.
func (w *world) singleton(pkg, name string, supertypes ...typesystem.Type) *symbols.ClassDecl {
	return w.define(&symbols.ClassDecl{Name: name, Package: pkg, Kind: symbols.ClassKindObject,
		Instance: true, Supertypes: supertypes})
}

// wrapperSemigroup declares
// `class WrapperSemigroup<A>(with instance: Semigroup<A>) : Semigroup<Wrapper<A>>`.
func (w *world) wrapperSemigroup() *symbols.ClassDecl {
	a := w.tv("WrapperSemigroup", "A")
	return w.define(&symbols.ClassDecl{
		Name: "WrapperSemigroup", Package: extPkg, Kind: symbols.ClassKindClass, Instance: true,
		TypeParams: []typesystem.TVar{a},
		Supertypes: []typesystem.Type{w.semigroup(app(w.con(extPkg+".Wrapper"), a))},
		Constructor: []*symbols.Param{{
			Name: "instance", Type: w.semigroup(a), Slot: 1, Implicit: true,
			Package: extPkg, Owner: extPkg + ".WrapperSemigroup",
		}},
	})
}

func (w *world) resolver(opts ...Option) *Resolver {
	return New(w.st, w.st, opts...)
}

// required builds an implicit parameter of a function in pkg.
func required(pkg, name string, t typesystem.Type) *symbols.Param {
	return &symbols.Param{Name: name, Type: t, Implicit: true, Package: pkg, Owner: pkg + ".combine"}
}
