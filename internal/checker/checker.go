package checker

import (
	"errors"
	"fmt"

	"github.com/funvibe/implicits/internal/diagnostics"
	"github.com/funvibe/implicits/internal/resolution"
	"github.com/funvibe/implicits/internal/symbols"
	"github.com/funvibe/implicits/internal/typesystem"
)

// ErrFatal reports that a compilation unit was aborted by an internal
// error.
var ErrFatal = errors.New("fatal internal error")

// CallSite is a call whose implicit arguments may need resolution.
type CallSite struct {
	Callee *symbols.FuncDecl
	// Caller is the innermost function containing the call; nil for
	// top-level calls.
	Caller *symbols.FuncDecl
	// TypeArgs instantiate the callee's type parameters by name.
	TypeArgs map[string]typesystem.Type
	// Supplied names the implicit parameters passed explicitly.
	Supplied map[string]bool
	Pos      diagnostics.Pos
}

// Checker resolves the implicit arguments of call sites of one
// compilation unit.
type Checker struct {
	resolver *resolution.Resolver
	file     string
	bindings *BindingTable
	errors   []*diagnostics.DiagnosticError
}

func New(resolver *resolution.Resolver, file string) *Checker {
	return &Checker{resolver: resolver, file: file, bindings: NewBindingTable()}
}

func (c *Checker) Bindings() *BindingTable { return c.bindings }

func (c *Checker) Errors() []*diagnostics.DiagnosticError { return c.errors }

// Check resolves every implicit callee parameter that was not supplied.
// Resolution failures become diagnostics; a non-nil error wrapping
// ErrFatal means the unit must be abandoned.
func (c *Checker) Check(site CallSite) error {
	var enclosing []*symbols.Param
	if site.Caller != nil {
		enclosing = site.Caller.EnclosingParams()
	}

	for _, p := range site.Callee.Params {
		if !p.Implicit || site.Supplied[p.Name] {
			continue
		}
		required := p.WithType(instantiate(p.Type, site.Callee, site.TypeArgs))
		key := typesystem.Qualified(required.Type)

		candidate, err := c.resolve(required, enclosing)
		if err != nil {
			var violation *resolution.InvariantViolation
			if errors.As(err, &violation) {
				c.report(diagnostics.ErrR005, site.Pos, violation.Message)
				return fmt.Errorf("%w: %s", ErrFatal, violation.Error())
			}
			c.report(codeFor(err), site.Pos, err.Error())
		}

		c.bindings.Record(Binding{
			Key:     key,
			Param:   required,
			Outcome: resolution.Outcome{Candidate: candidate, Err: err},
			Site:    site.Callee.FQName(),
			Pos:     site.Pos,
		})
	}
	return nil
}

// resolve converts an invariant violation panic into an error.
func (c *Checker) resolve(required *symbols.Param, enclosing []*symbols.Param) (cand resolution.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			violation, ok := r.(*resolution.InvariantViolation)
			if !ok {
				panic(r)
			}
			cand, err = nil, violation
		}
	}()
	return c.resolver.Resolve(required, enclosing, typesystem.EmptyEnv())
}

func (c *Checker) report(code diagnostics.ErrorCode, pos diagnostics.Pos, msg string) {
	err := diagnostics.NewError(code, pos, msg)
	err.File = c.file
	c.errors = append(c.errors, err)
}

func instantiate(t typesystem.Type, callee *symbols.FuncDecl, typeArgs map[string]typesystem.Type) typesystem.Type {
	if len(typeArgs) == 0 {
		return t
	}
	var params []typesystem.TVar
	var args []typesystem.Type
	for _, tp := range callee.TypeParams {
		if arg, ok := typeArgs[tp.Name]; ok {
			params = append(params, tp)
			args = append(args, arg)
		}
	}
	return typesystem.Instantiate(t, params, args)
}

func codeFor(err error) diagnostics.ErrorCode {
	var rerr *resolution.Error
	if !errors.As(err, &rerr) {
		return diagnostics.ErrR005
	}
	switch rerr.Kind {
	case resolution.NoCandidate:
		return diagnostics.ErrR001
	case resolution.AmbiguousCandidate:
		return diagnostics.ErrR002
	case resolution.MalformedInstanceConstructor:
		return diagnostics.ErrR003
	case resolution.CyclicInstanceDependency:
		return diagnostics.ErrR004
	default:
		return diagnostics.ErrR005
	}
}
