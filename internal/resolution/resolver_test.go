package resolution

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/implicits/internal/symbols"
	"github.com/funvibe/implicits/internal/typesystem"
)

func TestResolveUniqueSingleton(t *testing.T) {
	w := newWorld(t)
	intSemigroup := w.singleton(extPkg, "IntSemigroup", w.semigroup(w.std("Int")))

	c, err := w.resolver().Resolve(required(extPkg, "sg", w.semigroup(w.std("Int"))), nil, typesystem.EmptyEnv())
	require.NoError(t, err)

	cand, ok := c.(*SingletonOrClass)
	require.True(t, ok, "got %T", c)
	assert.Same(t, intSemigroup, cand.Decl)
}

func TestResolveAmbiguousAcrossStrategies(t *testing.T) {
	w := newWorld(t)
	w.singleton(extPkg, "IntSemigroup", w.semigroup(w.std("Int")))
	w.singleton(extPkg+".instances", "AnotherIntSemigroup", w.semigroup(w.std("Int")))

	_, err := w.resolver().Resolve(required(extPkg, "sg", w.semigroup(w.std("Int"))), nil, typesystem.EmptyEnv())
	require.Error(t, err)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, AmbiguousCandidate, rerr.Kind)
	assert.Equal(t, []string{"com.ext.IntSemigroup", "com.ext.instances.AnotherIntSemigroup"}, rerr.Candidates)
	assert.Contains(t, err.Error(), "com.ext.IntSemigroup, com.ext.instances.AnotherIntSemigroup")
	assert.Contains(t, err.Error(), "coherence requires exactly one instance in scope")
}

func TestResolveConstructedInstance(t *testing.T) {
	w := newWorld(t)
	intSemigroup := w.singleton(extPkg, "IntSemigroup", w.semigroup(w.std("Int")))
	wrapper := w.wrapperSemigroup()

	req := w.semigroup(app(w.con(extPkg+".Wrapper"), w.std("Int")))
	c, err := w.resolver().Resolve(required(extPkg, "sg", req), nil, typesystem.EmptyEnv())
	require.NoError(t, err)

	ci, ok := c.(*ConstructedInstance)
	require.True(t, ok, "got %T", c)
	assert.Same(t, wrapper, ci.Decl)
	require.Len(t, ci.Args, 1)
	child, ok := ci.Args[0].(*SingletonOrClass)
	require.True(t, ok, "got %T", ci.Args[0])
	assert.Same(t, intSemigroup, child.Decl)

	bound, ok := ci.Env.Find(w.tv("WrapperSemigroup", "A"))
	require.True(t, ok, "A must be bound in %s", ci.Env)
	assert.Equal(t, "std.Int", bound.Identity())
	assert.Equal(t, "WrapperSemigroup<Int>", ci.Type().String())
}

func TestResolveNestedGenericInstances(t *testing.T) {
	w := newWorld(t)
	w.singleton(extPkg, "IntSemigroup", w.semigroup(w.std("Int")))
	w.wrapperSemigroup()

	wrapper := w.con(extPkg + ".Wrapper")
	req := w.semigroup(app(wrapper, app(wrapper, w.std("Int"))))
	c, err := w.resolver().Resolve(required(extPkg, "sg", req), nil, typesystem.EmptyEnv())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(Describe(c),
		"new com.ext.WrapperSemigroup<com.ext.Wrapper<std.Int>>\n"+
			"  new com.ext.WrapperSemigroup<std.Int>\n"+
			"    singleton com.ext.IntSemigroup\n"), Describe(c))
}

func TestResolveNoCandidate(t *testing.T) {
	w := newWorld(t)
	w.define(&symbols.ClassDecl{Name: "Validator", Package: extPkg, Kind: symbols.ClassKindInterface,
		TypeParams: []typesystem.TVar{w.tv("Validator", "T")}})
	w.define(&symbols.ClassDecl{Name: "User", Package: "com.app", Kind: symbols.ClassKindClass})

	req := app(w.con(extPkg+".Validator"), w.con("com.app.User"))
	_, err := w.resolver().Resolve(required("com.app", "validator", req), nil, typesystem.EmptyEnv())
	require.Error(t, err)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, NoCandidate, rerr.Kind)
	assert.Equal(t, "no candidate found for parameter `validator: Validator<User>`", err.Error())
}

func TestResolveLocalParameter(t *testing.T) {
	w := newWorld(t)
	w.define(&symbols.ClassDecl{Name: "Repository", Package: extPkg, Kind: symbols.ClassKindInterface,
		TypeParams: []typesystem.TVar{w.tv("Repository", "T")}})
	w.define(&symbols.ClassDecl{Name: "User", Package: "com.app", Kind: symbols.ClassKindClass})
	repoType := app(w.con(extPkg+".Repository"), w.con("com.app.User"))

	enclosing := []*symbols.Param{
		{Name: "id", Type: w.std("Int"), Slot: 0, Package: "com.app", Owner: "com.app.load"},
		{Name: "repo", Type: repoType, Slot: 1, Implicit: true, Package: "com.app", Owner: "com.app.load"},
	}
	c, err := w.resolver().Resolve(required("com.app", "repository", repoType), enclosing, typesystem.EmptyEnv())
	require.NoError(t, err)

	local, ok := c.(*LocalParameter)
	require.True(t, ok, "got %T", c)
	assert.Equal(t, 1, local.Slot)
	assert.Same(t, enclosing[1], local.Param)
}

func TestResolveLocalAndDeclarationAreAmbiguous(t *testing.T) {
	w := newWorld(t)
	intType := w.semigroup(w.std("Int"))
	w.singleton(extPkg, "IntSemigroup", intType)
	enclosing := []*symbols.Param{{Name: "sg", Type: intType, Implicit: true, Owner: "com.app.outer"}}

	_, err := w.resolver().Resolve(required(extPkg, "sg", intType), enclosing, typesystem.EmptyEnv())
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, AmbiguousCandidate, rerr.Kind)
	assert.Equal(t, []string{"com.app.outer.sg", "com.ext.IntSemigroup"}, rerr.Candidates)
}

func TestResolveSameDeclarationFromTwoStrategiesIsDistinct(t *testing.T) {
	w := newWorld(t)
	// The declaring package and the capability package coincide.
	w.singleton(extPkg, "IntSemigroup", w.semigroup(w.std("Int")))
	twice := WithStrategies(DefaultStrategies()[1], DefaultStrategies()[1])

	c, err := w.resolver(twice).Resolve(required(extPkg, "sg", w.semigroup(w.std("Int"))), nil, typesystem.EmptyEnv())
	require.NoError(t, err)
	assert.Equal(t, "com.ext.IntSemigroup", c.Name())
}

func TestResolveWidensTypeArguments(t *testing.T) {
	w := newWorld(t)
	printer := w.define(&symbols.ClassDecl{Name: "Printer", Package: extPkg, Kind: symbols.ClassKindInterface,
		TypeParams: []typesystem.TVar{w.tv("Printer", "T")}})
	w.singleton(extPkg, "NumberPrinter", app(printer.Con(), w.std("Number")))

	c, err := w.resolver().Resolve(required(extPkg, "p", app(printer.Con(), w.std("Long"))), nil, typesystem.EmptyEnv())
	require.NoError(t, err)
	assert.Equal(t, "com.ext.NumberPrinter", c.Name())
}

func TestResolveWideningIsFallbackOnly(t *testing.T) {
	w := newWorld(t)
	printer := w.define(&symbols.ClassDecl{Name: "Printer", Package: extPkg, Kind: symbols.ClassKindInterface,
		TypeParams: []typesystem.TVar{w.tv("Printer", "T")}})
	w.singleton(extPkg, "NumberPrinter", app(printer.Con(), w.std("Number")))
	w.singleton(extPkg+".instances", "LongPrinter", app(printer.Con(), w.std("Long")))

	c, err := w.resolver().Resolve(required(extPkg, "p", app(printer.Con(), w.std("Long"))), nil, typesystem.EmptyEnv())
	require.NoError(t, err)
	assert.Equal(t, "com.ext.instances.LongPrinter", c.Name())
}

func TestResolveNeverWidensCapabilityType(t *testing.T) {
	w := newWorld(t)
	// Any is a supertype of Number, but only type arguments are widened.
	w.singleton(extPkg, "AnyValue", w.std("Any"))

	_, err := w.resolver().Resolve(required(extPkg, "n", w.std("Number")), nil, typesystem.EmptyEnv())
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, NoCandidate, rerr.Kind)
}

func TestResolveCompanionScopes(t *testing.T) {
	w := newWorld(t)
	validator := w.define(&symbols.ClassDecl{Name: "Validator", Package: extPkg, Kind: symbols.ClassKindInterface,
		TypeParams: []typesystem.TVar{w.tv("Validator", "T")}})
	userCon := typesystem.TCon{Name: "User", Package: "com.app"}
	userValidator := &symbols.ClassDecl{Name: "UserValidator", Kind: symbols.ClassKindObject, Instance: true,
		Supertypes: []typesystem.Type{app(validator.Con(), userCon)}}
	w.define(&symbols.ClassDecl{Name: "User", Package: "com.app", Kind: symbols.ClassKindClass,
		Companion: &symbols.ClassDecl{Name: "Companion", Kind: symbols.ClassKindObject,
			Members: []*symbols.ClassDecl{userValidator}}})

	c, err := w.resolver().Resolve(required("com.other", "v", app(validator.Con(), userCon)), nil, typesystem.EmptyEnv())
	require.NoError(t, err)
	assert.Equal(t, "com.app.User.Companion.UserValidator", c.Name())
}

func TestResolveMalformedConstructor(t *testing.T) {
	w := newWorld(t)
	w.define(&symbols.ClassDecl{
		Name: "SizedSemigroup", Package: extPkg, Kind: symbols.ClassKindClass, Instance: true,
		Supertypes: []typesystem.Type{w.semigroup(w.std("Int"))},
		Constructor: []*symbols.Param{{Name: "size", Type: w.std("Int"), Slot: 1, Owner: extPkg + ".SizedSemigroup"}},
	})

	_, err := w.resolver().Resolve(required(extPkg, "sg", w.semigroup(w.std("Int"))), nil, typesystem.EmptyEnv())
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, MalformedInstanceConstructor, rerr.Kind)
	assert.Equal(t, "size", rerr.Param.Name)
	assert.Equal(t, "com.ext.SizedSemigroup", rerr.Constructor)
	assert.Contains(t, err.Error(), "mark it implicit or pass it explicitly")
}

func TestResolveFailsFastInParameterOrder(t *testing.T) {
	w := newWorld(t)
	show := w.define(&symbols.ClassDecl{Name: "Show", Package: extPkg, Kind: symbols.ClassKindInterface,
		TypeParams: []typesystem.TVar{w.tv("Show", "T")}})
	w.define(&symbols.ClassDecl{
		Name: "PairSemigroup", Package: extPkg, Kind: symbols.ClassKindClass, Instance: true,
		Supertypes: []typesystem.Type{w.semigroup(w.std("Int"))},
		Constructor: []*symbols.Param{
			{Name: "first", Type: app(show.Con(), w.std("Int")), Slot: 1, Implicit: true},
			{Name: "second", Type: app(show.Con(), w.std("String")), Slot: 2, Implicit: true},
		},
	})

	var searched []string
	counting := make([]Strategy, 0, 6)
	for _, s := range DefaultStrategies() {
		s := s
		counting = append(counting, Strategy{Name: s.Name, Find: func(q Query) (Candidate, bool) {
			if s.Name == "local-scope" {
				searched = append(searched, q.Required.Name)
			}
			return s.Find(q)
		}})
	}

	_, err := w.resolver(WithStrategies(counting...)).
		Resolve(required(extPkg, "sg", w.semigroup(w.std("Int"))), nil, typesystem.EmptyEnv())
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, NoCandidate, rerr.Kind)
	assert.Equal(t, "first", rerr.Param.Name)
	assert.Equal(t, "first", rerr.Root().Param.Name)
	assert.Equal(t, "com.ext.PairSemigroup", rerr.Constructor)
	// Root requirement, then the first constructor parameter (exact and
	// widened passes); the second parameter is never attempted.
	assert.Equal(t, []string{"sg", "first", "first"}, searched)
}

func TestResolveDetectsCycles(t *testing.T) {
	w := newWorld(t)
	show := w.define(&symbols.ClassDecl{Name: "Show", Package: extPkg, Kind: symbols.ClassKindInterface,
		TypeParams: []typesystem.TVar{w.tv("Show", "T")}})
	eq := w.define(&symbols.ClassDecl{Name: "Eq", Package: extPkg, Kind: symbols.ClassKindInterface,
		TypeParams: []typesystem.TVar{w.tv("Eq", "T")}})
	showInt := app(show.Con(), w.std("Int"))
	eqInt := app(eq.Con(), w.std("Int"))
	w.define(&symbols.ClassDecl{Name: "ShowInt", Package: extPkg, Kind: symbols.ClassKindClass, Instance: true,
		Supertypes:  []typesystem.Type{showInt},
		Constructor: []*symbols.Param{{Name: "eq", Type: eqInt, Implicit: true, Package: extPkg}}})
	w.define(&symbols.ClassDecl{Name: "EqInt", Package: extPkg, Kind: symbols.ClassKindClass, Instance: true,
		Supertypes:  []typesystem.Type{eqInt},
		Constructor: []*symbols.Param{{Name: "show", Type: showInt, Implicit: true, Package: extPkg}}})

	_, err := w.resolver().Resolve(required(extPkg, "s", showInt), nil, typesystem.EmptyEnv())
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, CyclicInstanceDependency, rerr.Kind)
	assert.Equal(t, []string{"com.ext.ShowInt", "com.ext.EqInt", "com.ext.ShowInt"}, rerr.Root().Chain)
}

func TestResolveMaxDepth(t *testing.T) {
	w := newWorld(t)
	w.singleton(extPkg, "IntSemigroup", w.semigroup(w.std("Int")))
	w.wrapperSemigroup()
	wrapper := w.con(extPkg + ".Wrapper")
	req := required(extPkg, "sg", w.semigroup(app(wrapper, app(wrapper, w.std("Int")))))

	_, err := w.resolver(WithMaxDepth(1)).Resolve(req, nil, typesystem.EmptyEnv())
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, CyclicInstanceDependency, rerr.Kind)

	_, err = w.resolver(WithMaxDepth(2)).Resolve(req, nil, typesystem.EmptyEnv())
	assert.NoError(t, err)
}

func TestResolveDeterministic(t *testing.T) {
	w := newWorld(t)
	w.singleton(extPkg, "IntSemigroup", w.semigroup(w.std("Int")))
	w.wrapperSemigroup()
	req := required(extPkg, "sg", w.semigroup(app(w.con(extPkg+".Wrapper"), w.std("Int"))))

	r := w.resolver()
	first, err := r.Resolve(req, nil, typesystem.EmptyEnv())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := r.Resolve(req, nil, typesystem.EmptyEnv())
		require.NoError(t, err)
		assert.Equal(t, Describe(first), Describe(again))
	}
}

func TestResolveArgumentsRejectsConstructedInstance(t *testing.T) {
	w := newWorld(t)
	decl := w.wrapperSemigroup()
	r := w.resolver()

	assert.PanicsWithError(t,
		"internal error: constructed instance passed to argument resolution (com.ext.WrapperSemigroup)",
		func() {
			_, _ = r.resolveArguments(&ConstructedInstance{Decl: decl}, nil, trail{}, Query{}, "")
		})
}
