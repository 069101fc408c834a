package codegen

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/implicits/internal/resolution"
	"github.com/funvibe/implicits/internal/symbols"
	"github.com/funvibe/implicits/internal/typesystem"
)

// recorder keeps emitted instructions as text.
type recorder struct {
	ops []string
}

func (r *recorder) LoadLocal(slot int, t RuntimeType) {
	r.ops = append(r.ops, fmt.Sprintf("LOAD_LOCAL %d %s", slot, t))
}
func (r *recorder) GetStatic(owner, field string, t RuntimeType) {
	r.ops = append(r.ops, fmt.Sprintf("GET_STATIC %s %s %s", owner, field, t))
}
func (r *recorder) CheckCast(t RuntimeType) { r.ops = append(r.ops, "CHECKCAST "+t.InternalName) }
func (r *recorder) New(t RuntimeType)       { r.ops = append(r.ops, "NEW "+t.InternalName) }
func (r *recorder) Dup()                    { r.ops = append(r.ops, "DUP") }
func (r *recorder) InvokeConstructor(owner, descriptor string) {
	r.ops = append(r.ops, "INVOKE_CTOR "+owner+" "+descriptor)
}

var (
	intType      = typesystem.TCon{Name: "Int", Package: "std"}
	semigroupCon = typesystem.TCon{Name: "Semigroup", Package: "com.ext"}
	wrapperCon   = typesystem.TCon{Name: "Wrapper", Package: "com.ext"}
	tvA          = typesystem.TVar{Name: "A", Owner: "com.ext.WrapperSemigroup"}
)

func semigroupOf(arg typesystem.Type) typesystem.Type {
	return typesystem.TApp{Constructor: semigroupCon, Args: []typesystem.Type{arg}}
}

func intSemigroup() *symbols.ClassDecl {
	return &symbols.ClassDecl{Name: "IntSemigroup", Package: "com.ext", Kind: symbols.ClassKindObject,
		Instance: true, Supertypes: []typesystem.Type{semigroupOf(intType)}}
}

func wrapperSemigroup() *symbols.ClassDecl {
	return &symbols.ClassDecl{
		Name: "WrapperSemigroup", Package: "com.ext", Kind: symbols.ClassKindClass, Instance: true,
		TypeParams: []typesystem.TVar{tvA},
		Supertypes: []typesystem.Type{semigroupOf(typesystem.TApp{Constructor: wrapperCon, Args: []typesystem.Type{tvA}})},
		Constructor: []*symbols.Param{{Name: "instance", Type: semigroupOf(tvA), Slot: 1, Implicit: true, Package: "com.ext"}},
	}
}

func TestLowerSingleton(t *testing.T) {
	rec := &recorder{}
	req := &symbols.Param{Name: "sg", Type: semigroupOf(intType)}
	err := Lower(&resolution.SingletonOrClass{Decl: intSemigroup()}, req, DefaultMapper{}, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"GET_STATIC com/ext/IntSemigroup INSTANCE Lcom/ext/IntSemigroup;",
		"CHECKCAST com/ext/Semigroup",
	}, rec.ops)
}

func TestLowerLocalParameter(t *testing.T) {
	rec := &recorder{}
	repo := &symbols.Param{Name: "repo", Type: typesystem.TCon{Name: "Repository", Package: "com.app"}, Slot: 2, Implicit: true}
	err := Lower(&resolution.LocalParameter{Param: repo, Slot: 2}, repo, DefaultMapper{}, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"LOAD_LOCAL 2 Lcom/app/Repository;"}, rec.ops)
}

func TestLowerConstructedInstance(t *testing.T) {
	rec := &recorder{}
	wrapper := wrapperSemigroup()
	c := &resolution.ConstructedInstance{
		Decl:     wrapper,
		TypeArgs: []typesystem.Type{tvA},
		Args:     []resolution.Candidate{&resolution.SingletonOrClass{Decl: intSemigroup()}},
		Env:      typesystem.EmptyEnv().Extend(tvA, intType),
	}
	req := &symbols.Param{Name: "sg", Type: semigroupOf(typesystem.TApp{Constructor: wrapperCon, Args: []typesystem.Type{intType}})}

	require.NoError(t, Lower(c, req, DefaultMapper{}, rec))
	assert.Equal(t, []string{
		"NEW com/ext/WrapperSemigroup",
		"DUP",
		"GET_STATIC com/ext/IntSemigroup INSTANCE Lcom/ext/IntSemigroup;",
		"CHECKCAST com/ext/Semigroup",
		"INVOKE_CTOR com/ext/WrapperSemigroup (Lcom/ext/Semigroup;)V",
		"CHECKCAST com/ext/Semigroup",
	}, rec.ops)
}

func TestLowerPlainClass(t *testing.T) {
	rec := &recorder{}
	decl := &symbols.ClassDecl{Name: "IntMonoid", Package: "com.ext", Kind: symbols.ClassKindClass, Instance: true}
	req := &symbols.Param{Name: "m", Type: semigroupOf(intType)}

	require.NoError(t, Lower(&resolution.SingletonOrClass{Decl: decl}, req, DefaultMapper{}, rec))
	assert.Equal(t, []string{
		"NEW com/ext/IntMonoid",
		"DUP",
		"INVOKE_CTOR com/ext/IntMonoid ()V",
		"CHECKCAST com/ext/Semigroup",
	}, rec.ops)
}

func TestLowerRejectsUnresolvedConstructor(t *testing.T) {
	req := &symbols.Param{Name: "sg", Type: semigroupOf(intType)}
	err := Lower(&resolution.SingletonOrClass{Decl: wrapperSemigroup()}, req, DefaultMapper{}, &recorder{})
	assert.Error(t, err)

	err = Lower(&resolution.ConstructedInstance{Decl: wrapperSemigroup()}, req, DefaultMapper{}, &recorder{})
	assert.Error(t, err)
}

func TestLowerResolvedCandidate(t *testing.T) {
	st := symbols.NewSymbolTable()
	require.NoError(t, st.DefineClass(&symbols.ClassDecl{Name: "Semigroup", Package: "com.ext", Kind: symbols.ClassKindInterface,
		TypeParams: []typesystem.TVar{{Name: "A", Owner: "com.ext.Semigroup"}}}))
	require.NoError(t, st.DefineClass(&symbols.ClassDecl{Name: "Wrapper", Package: "com.ext", Kind: symbols.ClassKindClass,
		TypeParams: []typesystem.TVar{{Name: "A", Owner: "com.ext.Wrapper"}}}))
	require.NoError(t, st.DefineClass(intSemigroup()))
	require.NoError(t, st.DefineClass(wrapperSemigroup()))

	req := &symbols.Param{Name: "sg", Package: "com.ext", Implicit: true,
		Type: semigroupOf(typesystem.TApp{Constructor: wrapperCon, Args: []typesystem.Type{intType}})}
	c, err := resolution.New(st, st).Resolve(req, nil, typesystem.EmptyEnv())
	require.NoError(t, err)

	e := NewChunkEmitter(7)
	require.NoError(t, Lower(c, req, DefaultMapper{}, e))
	assert.Equal(t,
		"== sg ==\n"+
			"0000    7 NEW              'com/ext/WrapperSemigroup'\n"+
			"0003    | DUP\n"+
			"0004    | GET_STATIC       'com/ext/IntSemigroup' 'INSTANCE' 'Lcom/ext/IntSemigroup;'\n"+
			"0011    | CHECKCAST        'com/ext/Semigroup'\n"+
			"0014    | INVOKE_CTOR      'com/ext/WrapperSemigroup' '(Lcom/ext/Semigroup;)V'\n"+
			"0019    | CHECKCAST        'com/ext/Semigroup'\n",
		Disassemble(e.Chunk, "sg"))
}

func TestDefaultMapper(t *testing.T) {
	m := DefaultMapper{}
	tests := []struct {
		name string
		in   typesystem.Type
		want string
	}{
		{"nominal", intType, "Lstd/Int;"},
		{"generic erased", semigroupOf(intType), "Lcom/ext/Semigroup;"},
		{"placeholder erased", tvA, "Lstd/Any;"},
		{"nested", typesystem.TCon{Name: "User.Companion.UserValidator", Package: "com.app"}, "Lcom/app/User$Companion$UserValidator;"},
		{"default package", typesystem.TCon{Name: "Top"}, "LTop;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.MapType(tt.in).Descriptor())
		})
	}
}
