package codegen

import (
	"fmt"
	"strings"

	"github.com/funvibe/implicits/internal/config"
	"github.com/funvibe/implicits/internal/resolution"
	"github.com/funvibe/implicits/internal/symbols"
)

// Lower emits the instructions that leave the value of c on the stack,
// typed as the required parameter.
func Lower(c resolution.Candidate, required *symbols.Param, mapper TypeMapper, e Emitter) error {
	switch cand := c.(type) {
	case *resolution.LocalParameter:
		e.LoadLocal(cand.Slot, mapper.MapType(cand.Param.Type))
		return nil

	case *resolution.SingletonOrClass:
		if cand.Decl.IsSingleton() {
			owner := mapper.MapClass(cand.Decl)
			e.GetStatic(owner.InternalName, config.SingletonFieldName, owner)
			e.CheckCast(mapper.MapType(required.Type))
			return nil
		}
		if len(cand.Decl.Constructor) > 0 {
			return fmt.Errorf("cannot instantiate %s: constructor arguments were not resolved", cand.Decl.FQName())
		}
		return construct(cand.Decl, nil, nil, required, mapper, e)

	case *resolution.ConstructedInstance:
		params := cand.ConstructorParams()
		if len(params) != len(cand.Args) {
			return fmt.Errorf("cannot instantiate %s: %d constructor parameters, %d arguments",
				cand.Decl.FQName(), len(params), len(cand.Args))
		}
		return construct(cand.Decl, params, cand.Args, required, mapper, e)

	default:
		return fmt.Errorf("unknown candidate type %T", c)
	}
}

func construct(decl *symbols.ClassDecl, params []*symbols.Param, args []resolution.Candidate, required *symbols.Param, mapper TypeMapper, e Emitter) error {
	owner := mapper.MapClass(decl)
	e.New(owner)
	e.Dup()
	for i, arg := range args {
		if err := Lower(arg, params[i], mapper, e); err != nil {
			return fmt.Errorf("argument %s of %s: %w", params[i].Name, decl.FQName(), err)
		}
	}
	e.InvokeConstructor(owner.InternalName, ConstructorDescriptor(params, mapper))
	e.CheckCast(mapper.MapType(required.Type))
	return nil
}

// ConstructorDescriptor returns the method descriptor of a constructor
// taking params, e.g. (Lcom/ext/Semigroup;)V.
func ConstructorDescriptor(params []*symbols.Param, mapper TypeMapper) string {
	var sb strings.Builder
	sb.WriteString("(")
	for _, p := range params {
		sb.WriteString(mapper.MapType(p.Type).Descriptor())
	}
	sb.WriteString(")")
	sb.WriteString(config.VoidDescriptor)
	return sb.String()
}
