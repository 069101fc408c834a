package resolution

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/implicits/internal/symbols"
	"github.com/funvibe/implicits/internal/typesystem"
)

// Query is the input of a single scope search.
type Query struct {
	Required  *symbols.Param
	Type      typesystem.Type // Required.Type under Env
	Enclosing []*symbols.Param
	Env       typesystem.Env
	Matcher   typesystem.Matcher
	Provider  symbols.Provider
	// InstancesPackage is the conventional subpackage holding instances.
	InstancesPackage string
	// Path identifies the resolution node; it keeps the placeholders of
	// nested generic declarations apart.
	Path string
}

// Strategy searches one kind of scope. Find returns at most one candidate
// and never reports ambiguity itself.
type Strategy struct {
	Name string
	Find func(q Query) (Candidate, bool)
}

// Match is a compatible declaration together with the bindings its own
// supertypes produced.
type Match struct {
	Decl     *symbols.ClassDecl
	TypeArgs []typesystem.Type
	Env      typesystem.Env
}

func (m Match) candidate() Candidate {
	return &SingletonOrClass{Decl: m.Decl, TypeArgs: m.TypeArgs, Env: m.Env}
}

// CompatibilityResult lists the compatible declarations of a scope.
type CompatibilityResult struct {
	Matches []Match
}

// Unique returns the only match, if there is exactly one.
func (r CompatibilityResult) Unique() (Match, bool) {
	if len(r.Matches) != 1 {
		return Match{}, false
	}
	return r.Matches[0], true
}

// CompatibleClasses scans a scope for instance-providing declarations whose
// supertypes are all replaceable against the query type. Each match is
// tested against q.Env independently.
func CompatibleClasses(scope symbols.Scope, q Query) CompatibilityResult {
	var res CompatibilityResult
	for _, decl := range scope.Declarations() {
		if !decl.Instance || decl.Kind == symbols.ClassKindInterface {
			continue
		}
		typeArgs, supertypes := freshen(decl, q.Path)
		ok, env := q.Matcher.IsCompatible(supertypes, q.Type, q.Env)
		if !ok {
			// A requirement may name the instance class itself.
			ok, env = q.Matcher.IsReplaceable(ownType(decl, typeArgs), q.Type, q.Env)
		}
		if ok {
			res.Matches = append(res.Matches, Match{Decl: decl, TypeArgs: typeArgs, Env: env})
		}
	}
	return res
}

// freshen returns placeholders for the type parameters of decl at the
// given resolution path, and the supertypes expressed in terms of them.
// The root node uses the declared parameters unchanged.
func freshen(decl *symbols.ClassDecl, path string) ([]typesystem.Type, []typesystem.Type) {
	if len(decl.TypeParams) == 0 {
		return nil, decl.Supertypes
	}
	args := make([]typesystem.Type, len(decl.TypeParams))
	for i, tp := range decl.TypeParams {
		if path == "" {
			args[i] = tp
		} else {
			args[i] = typesystem.TVar{Name: tp.Name, Owner: tp.Owner + path}
		}
	}
	if path == "" {
		return args, decl.Supertypes
	}
	supertypes := make([]typesystem.Type, len(decl.Supertypes))
	for i, s := range decl.Supertypes {
		supertypes[i] = typesystem.Instantiate(s, decl.TypeParams, args)
	}
	return args, supertypes
}

func ownType(decl *symbols.ClassDecl, typeArgs []typesystem.Type) typesystem.Type {
	if len(typeArgs) == 0 {
		return decl.Con()
	}
	return typesystem.TApp{Constructor: decl.Con(), Args: typeArgs}
}

func subpackage(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// DefaultStrategies returns the six scope searches in scan order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "local-scope", Find: findInEnclosing},
		{Name: "declaring-package", Find: findInDeclaringPackage},
		{Name: "owning-type-companion", Find: findInOwningTypeCompanions},
		{Name: "capability-companion", Find: findInCapabilityCompanion},
		{Name: "owning-type-instances", Find: findInOwningTypeInstances},
		{Name: "capability-instances", Find: findInCapabilityInstances},
	}
}

func findInEnclosing(q Query) (Candidate, bool) {
	var found []Candidate
	// Slots index the enclosing list, innermost function first, so a
	// captured parameter never shares a slot with the closure's own.
	for i, p := range q.Enclosing {
		if !p.Implicit {
			continue
		}
		if ok, env := q.Matcher.IsReplaceable(p.Type, q.Type, q.Env); ok {
			found = append(found, &LocalParameter{Param: p, Slot: i, Env: env})
		}
	}
	if len(found) != 1 {
		return nil, false
	}
	return found[0], true
}

func findInDeclaringPackage(q Query) (Candidate, bool) {
	scope, ok := q.Provider.PackageScope(q.Required.Package)
	if !ok {
		return nil, false
	}
	return uniqueIn(q, scope)
}

func findInCapabilityCompanion(q Query) (Candidate, bool) {
	scope, ok := q.Provider.CompanionScope(q.Type)
	if !ok {
		return nil, false
	}
	return uniqueIn(q, scope)
}

func findInCapabilityInstances(q Query) (Candidate, bool) {
	con, ok := typesystem.Constructor(q.Type)
	if !ok {
		return nil, false
	}
	scope, ok := q.Provider.PackageScope(subpackage(con.Package, q.InstancesPackage))
	if !ok {
		return nil, false
	}
	return uniqueIn(q, scope)
}

// Owning types are the type arguments of the requirement. A single
// compatible declaration must exist across all of their scopes.

func findInOwningTypeCompanions(q Query) (Candidate, bool) {
	var scopes []symbols.Scope
	for _, arg := range q.Type.Arguments() {
		if scope, ok := q.Provider.CompanionScope(arg); ok {
			scopes = append(scopes, scope)
		}
	}
	return uniqueAcross(q, scopes)
}

func findInOwningTypeInstances(q Query) (Candidate, bool) {
	var scopes []symbols.Scope
	for _, arg := range q.Type.Arguments() {
		con, ok := typesystem.Constructor(arg)
		if !ok {
			continue
		}
		if scope, ok := q.Provider.PackageScope(subpackage(con.Package, q.InstancesPackage)); ok {
			scopes = append(scopes, scope)
		}
	}
	return uniqueAcross(q, scopes)
}

func uniqueIn(q Query, scope symbols.Scope) (Candidate, bool) {
	m, ok := CompatibleClasses(scope, q).Unique()
	if !ok {
		return nil, false
	}
	return m.candidate(), true
}

func uniqueAcross(q Query, scopes []symbols.Scope) (Candidate, bool) {
	var matches []Match
	seen := set.New[string](len(scopes))
	for _, scope := range scopes {
		if !seen.Insert(scope.Name()) {
			continue
		}
		matches = append(matches, CompatibleClasses(scope, q).Matches...)
	}
	m, ok := CompatibilityResult{Matches: matches}.Unique()
	if !ok {
		return nil, false
	}
	return m.candidate(), true
}
