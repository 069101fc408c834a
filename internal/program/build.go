package program

import (
	"fmt"
	"sort"

	"github.com/funvibe/implicits/internal/checker"
	"github.com/funvibe/implicits/internal/config"
	"github.com/funvibe/implicits/internal/diagnostics"
	"github.com/funvibe/implicits/internal/symbols"
	"github.com/funvibe/implicits/internal/typesystem"
)

// Program is a loaded compilation unit.
type Program struct {
	Unit    *Unit
	Symbols *symbols.SymbolTable
	Calls   []checker.CallSite
}

// typeScope maps type parameter names visible at a declaration.
type typeScope map[string]typesystem.TVar

func (s typeScope) with(params []typesystem.TVar) typeScope {
	next := make(typeScope, len(s)+len(params))
	for k, v := range s {
		next[k] = v
	}
	for _, p := range params {
		next[p.Name] = p
	}
	return next
}

type pendingClass struct {
	decl *symbols.ClassDecl
	spec *TypeSpec
}

type pendingFunc struct {
	decl  *symbols.FuncDecl
	spec  *FuncSpec
	scope typeScope
}

type builder struct {
	unit    *Unit
	opts    config.Options
	st      *symbols.SymbolTable
	classes []pendingClass
	funcs   []pendingFunc
	errors  []*diagnostics.DiagnosticError
}

// Build declares the unit in a fresh symbol table and resolves its call
// sites. Declaration errors are reported and the offending declaration is
// skipped.
func Build(unit *Unit, opts config.Options) (*Program, []*diagnostics.DiagnosticError) {
	b := &builder{unit: unit, opts: opts, st: symbols.NewSymbolTable()}

	for i := range unit.Packages {
		pkg := &unit.Packages[i]
		b.st.DefinePackage(pkg.Name)
		for j := range pkg.Types {
			b.declareClass(&pkg.Types[j], pkg.Name)
		}
		for j := range pkg.Functions {
			b.declareFunc(&pkg.Functions[j], pkg.Name, nil, typeScope{})
		}
	}
	for _, pc := range b.classes {
		b.completeClass(pc)
	}
	for _, pf := range b.funcs {
		b.completeFunc(pf)
	}

	prog := &Program{Unit: unit, Symbols: b.st}
	for i := range unit.Calls {
		if site, ok := b.callSite(&unit.Calls[i]); ok {
			prog.Calls = append(prog.Calls, site)
		}
	}
	return prog, b.errors
}

func (b *builder) report(code diagnostics.ErrorCode, pos diagnostics.Pos, format string, args ...interface{}) {
	err := diagnostics.NewError(code, pos, fmt.Sprintf(format, args...))
	err.File = b.unit.Path
	b.errors = append(b.errors, err)
}

func parseKind(kind string) (symbols.ClassKind, error) {
	switch kind {
	case "", "class":
		return symbols.ClassKindClass, nil
	case "object":
		return symbols.ClassKindObject, nil
	case "interface":
		return symbols.ClassKindInterface, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", kind)
	}
}

// newClass builds the declaration tree of spec without resolving types.
func (b *builder) newClass(spec *TypeSpec, pkg string, outer *symbols.ClassDecl) (*symbols.ClassDecl, error) {
	kind, err := parseKind(spec.Kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("type without a name")
	}
	decl := &symbols.ClassDecl{Name: spec.Name, Package: pkg, Kind: kind, Instance: spec.Instance, Outer: outer}
	if kind == symbols.ClassKindObject && len(spec.TypeParams) > 0 {
		return nil, fmt.Errorf("%s: objects cannot have type parameters", decl.FQName())
	}
	if kind != symbols.ClassKindClass && len(spec.Constructor) > 0 {
		return nil, fmt.Errorf("%s: only classes have constructors", decl.FQName())
	}
	for _, name := range spec.TypeParams {
		decl.TypeParams = append(decl.TypeParams, typesystem.TVar{Name: name, Owner: decl.FQName()})
	}
	b.classes = append(b.classes, pendingClass{decl: decl, spec: spec})

	if spec.Companion != nil {
		if spec.Companion.Name == "" {
			spec.Companion.Name = b.opts.CompanionName
		}
		if spec.Companion.Kind == "" {
			spec.Companion.Kind = "object"
		}
		companion, err := b.newClass(spec.Companion, pkg, decl)
		if err != nil {
			return nil, err
		}
		decl.Companion = companion
	}
	for i := range spec.Members {
		member, err := b.newClass(&spec.Members[i], pkg, decl)
		if err != nil {
			return nil, err
		}
		decl.Members = append(decl.Members, member)
	}
	return decl, nil
}

func (b *builder) declareClass(spec *TypeSpec, pkg string) {
	mark := len(b.classes)
	decl, err := b.newClass(spec, pkg, nil)
	if err == nil {
		err = b.st.DefineClass(decl)
	}
	if err != nil {
		b.classes = b.classes[:mark]
		b.report(diagnostics.ErrM003, spec.Pos, "%v", err)
	}
}

func (b *builder) declareFunc(spec *FuncSpec, pkg string, parent *symbols.FuncDecl, scope typeScope) {
	f := &symbols.FuncDecl{Name: spec.Name, Package: pkg, Parent: parent}
	for _, name := range spec.TypeParams {
		f.TypeParams = append(f.TypeParams, typesystem.TVar{Name: name, Owner: f.FQName()})
	}
	if err := b.st.DefineFunc(f); err != nil {
		b.report(diagnostics.ErrM003, spec.Pos, "%v", err)
		return
	}
	scope = scope.with(f.TypeParams)
	b.funcs = append(b.funcs, pendingFunc{decl: f, spec: spec, scope: scope})
	for i := range spec.Functions {
		b.declareFunc(&spec.Functions[i], pkg, f, scope)
	}
}

func (b *builder) completeClass(pc pendingClass) {
	decl, spec := pc.decl, pc.spec
	scope := typeScope{}.with(decl.TypeParams)
	for _, src := range spec.Supertypes {
		t, err := b.resolveType(src, decl.Package, scope)
		if err != nil {
			b.report(diagnostics.ErrM002, spec.Pos, "supertype of %s: %v", decl.FQName(), err)
			continue
		}
		decl.Supertypes = append(decl.Supertypes, t)
	}
	// Slot 0 holds the receiver.
	decl.Constructor = b.params(spec.Constructor, decl.Package, decl.FQName(), 1, scope, spec.Pos)
}

func (b *builder) completeFunc(pf pendingFunc) {
	pf.decl.Params = b.params(pf.spec.Params, pf.decl.Package, pf.decl.FQName(), 0, pf.scope, pf.spec.Pos)
}

func (b *builder) params(specs []ParamSpec, pkg, owner string, firstSlot int, scope typeScope, pos diagnostics.Pos) []*symbols.Param {
	var params []*symbols.Param
	for i, ps := range specs {
		t, err := b.resolveType(ps.Type, pkg, scope)
		if err != nil {
			b.report(diagnostics.ErrM002, pos, "parameter %s of %s: %v", ps.Name, owner, err)
			t = typesystem.TCon{Name: config.AnyTypeName, Package: config.PreludePackage}
		}
		params = append(params, &symbols.Param{
			Name:     ps.Name,
			Type:     t,
			Slot:     firstSlot + i,
			Implicit: ps.Implicit,
			Package:  pkg,
			Owner:    owner,
		})
	}
	return params
}

func (b *builder) resolveType(src, pkg string, scope typeScope) (typesystem.Type, error) {
	expr, err := ParseType(src)
	if err != nil {
		return nil, err
	}
	return b.typeOf(expr, pkg, scope)
}

func (b *builder) typeOf(expr *TypeExpr, pkg string, scope typeScope) (typesystem.Type, error) {
	if tv, ok := scope[expr.Name]; ok {
		if len(expr.Args) > 0 {
			return nil, fmt.Errorf("type parameter %s cannot take type arguments", expr.Name)
		}
		return tv, nil
	}
	con, err := b.st.ResolveTypeName(expr.Name, pkg)
	if err != nil {
		return nil, err
	}
	decl, _ := b.st.Class(con.Identity())
	if len(expr.Args) != len(decl.TypeParams) {
		return nil, fmt.Errorf("%s expects %d type arguments, got %d", con.Identity(), len(decl.TypeParams), len(expr.Args))
	}
	if len(expr.Args) == 0 {
		return con, nil
	}
	args := make([]typesystem.Type, len(expr.Args))
	for i, arg := range expr.Args {
		if args[i], err = b.typeOf(arg, pkg, scope); err != nil {
			return nil, err
		}
	}
	return typesystem.TApp{Constructor: con, Args: args}, nil
}

func (b *builder) callSite(spec *CallSpec) (checker.CallSite, bool) {
	callee, ok := b.st.Func(spec.Callee)
	if !ok {
		b.report(diagnostics.ErrM004, spec.Pos, "unknown function %s", spec.Callee)
		return checker.CallSite{}, false
	}
	site := checker.CallSite{Callee: callee, Pos: spec.Pos}

	pkg, scope := callee.Package, typeScope{}
	if spec.In != "" {
		caller, ok := b.st.Func(spec.In)
		if !ok {
			b.report(diagnostics.ErrM004, spec.Pos, "unknown calling function %s", spec.In)
			return checker.CallSite{}, false
		}
		site.Caller = caller
		pkg = caller.Package
		for f := caller; f != nil; f = f.Parent {
			scope = scope.with(f.TypeParams)
		}
	}

	if len(spec.TypeArgs) > 0 {
		site.TypeArgs = make(map[string]typesystem.Type, len(spec.TypeArgs))
		names := make([]string, 0, len(spec.TypeArgs))
		for name := range spec.TypeArgs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			src := spec.TypeArgs[name]
			if !hasTypeParam(callee, name) {
				b.report(diagnostics.ErrM004, spec.Pos, "%s has no type parameter %s", callee.FQName(), name)
				return checker.CallSite{}, false
			}
			t, err := b.resolveType(src, pkg, scope)
			if err != nil {
				b.report(diagnostics.ErrM002, spec.Pos, "type argument %s: %v", name, err)
				return checker.CallSite{}, false
			}
			site.TypeArgs[name] = t
		}
	}

	if len(spec.Explicit) > 0 {
		site.Supplied = make(map[string]bool, len(spec.Explicit))
		for _, name := range spec.Explicit {
			p, ok := callee.Param(name)
			if !ok || !p.Implicit {
				b.report(diagnostics.ErrM004, spec.Pos, "%s has no implicit parameter %s", callee.FQName(), name)
				return checker.CallSite{}, false
			}
			site.Supplied[name] = true
		}
	}
	return site, true
}

func hasTypeParam(f *symbols.FuncDecl, name string) bool {
	for _, tp := range f.TypeParams {
		if tp.Name == name {
			return true
		}
	}
	return false
}
