package resolution

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/implicits/internal/config"
	"github.com/funvibe/implicits/internal/symbols"
	"github.com/funvibe/implicits/internal/typesystem"
)

// Resolver deduces the value of implicit parameters. It holds no mutable
// state and may be shared between goroutines as long as the provider and
// hierarchy are safe for concurrent reads.
type Resolver struct {
	provider         symbols.Provider
	hierarchy        typesystem.Hierarchy
	strategies       []Strategy
	logger           *slog.Logger
	maxDepth         int
	instancesPackage string
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithMaxDepth bounds the nesting of constructed instances.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) { r.maxDepth = depth }
}

// WithStrategies replaces the scope searches, in scan order.
func WithStrategies(strategies ...Strategy) Option {
	return func(r *Resolver) { r.strategies = append([]Strategy(nil), strategies...) }
}

func WithInstancesPackage(name string) Option {
	return func(r *Resolver) { r.instancesPackage = name }
}

// New creates a resolver over the given declarations.
func New(provider symbols.Provider, hierarchy typesystem.Hierarchy, opts ...Option) *Resolver {
	r := &Resolver{
		provider:         provider,
		hierarchy:        hierarchy,
		strategies:       DefaultStrategies(),
		maxDepth:         config.DefaultMaxDepth,
		instancesPackage: config.DefaultInstancesPackage,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// trail records the instance constructors currently being resolved on the
// path from the root requirement.
type trail struct {
	active *set.Set[string]
	chain  []string
}

func (t trail) push(key, name string) trail {
	active := t.active.Copy()
	active.Insert(key)
	chain := make([]string, len(t.chain), len(t.chain)+1)
	copy(chain, t.chain)
	return trail{active: active, chain: append(chain, name)}
}

// Resolve finds the unique value for required. Enclosing holds the
// parameters of the lexically enclosing functions, innermost first.
//
// All failures caused by the input program are returned as *Error. Feeding
// a constructed instance back into argument resolution panics with
// *InvariantViolation.
func (r *Resolver) Resolve(required *symbols.Param, enclosing []*symbols.Param, env typesystem.Env) (Candidate, error) {
	return r.resolve(required, enclosing, env, trail{active: set.New[string](8)}, "")
}

func (r *Resolver) resolve(required *symbols.Param, enclosing []*symbols.Param, env typesystem.Env, tr trail, path string) (Candidate, error) {
	start := time.Now()
	q := Query{
		Required:         required,
		Type:             env.Apply(required.Type),
		Enclosing:        enclosing,
		Env:              env,
		Matcher:          typesystem.Matcher{Hierarchy: r.hierarchy},
		Provider:         r.provider,
		InstancesPackage: r.instancesPackage,
		Path:             path,
	}

	candidates := r.search(q)
	if len(candidates) == 0 && r.hierarchy != nil {
		q.Matcher.Widen = true
		candidates = r.search(q)
	}

	switch len(candidates) {
	case 0:
		err := &Error{Kind: NoCandidate, Param: required}
		r.traceFailure(required, start, err)
		return nil, err
	case 1:
		resolved, err := r.resolveArguments(candidates[0], enclosing, tr, q, path)
		if err != nil {
			r.traceFailure(required, start, err)
			return nil, err
		}
		r.logger.Debug("implicit resolution complete",
			slog.String("param", required.String()),
			slog.String("resolved", resolved.Name()),
			slog.Bool("widened", q.Matcher.Widen),
			slog.Duration("duration", time.Since(start)),
		)
		return resolved, nil
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.Name()
		}
		sort.Strings(names)
		err := &Error{Kind: AmbiguousCandidate, Param: required, Candidates: names}
		r.traceFailure(required, start, err)
		return nil, err
	}
}

// search runs every strategy and keeps the distinct results.
func (r *Resolver) search(q Query) []Candidate {
	var candidates []Candidate
	seen := set.New[string](len(r.strategies))
	for _, s := range r.strategies {
		c, ok := s.Find(q)
		if !ok {
			continue
		}
		r.logger.Debug("implicit candidate found",
			slog.String("strategy", s.Name),
			slog.String("candidate", c.Name()),
			slog.String("type", q.Type.String()),
		)
		if seen.Insert(c.Key()) {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// resolveArguments resolves the implicit constructor parameters of a class
// candidate, in order, stopping at the first failure.
func (r *Resolver) resolveArguments(c Candidate, enclosing []*symbols.Param, tr trail, q Query, path string) (Candidate, error) {
	var cand *SingletonOrClass
	switch typed := c.(type) {
	case *LocalParameter:
		return c, nil
	case *SingletonOrClass:
		cand = typed
	case *ConstructedInstance:
		violation("constructed instance passed to argument resolution", c)
	default:
		violation(fmt.Sprintf("unknown candidate type %T", c), c)
	}

	decl := cand.Decl
	if decl.IsSingleton() || len(decl.Constructor) == 0 {
		return cand, nil
	}

	key := decl.FQName() + " for " + typesystem.Qualified(q.Type)
	if tr.active.Contains(key) || len(tr.chain) >= r.maxDepth {
		return nil, &Error{
			Kind:  CyclicInstanceDependency,
			Param: q.Required,
			Chain: append(append([]string(nil), tr.chain...), decl.FQName()),
		}
	}
	tr = tr.push(key, decl.FQName())

	acc := cand.Env
	args := make([]Candidate, 0, len(decl.Constructor))
	for i, p := range cand.ConstructorParams() {
		if !p.Implicit {
			return nil, &Error{Kind: MalformedInstanceConstructor, Param: p, Constructor: decl.FQName()}
		}
		child, err := r.resolve(p, enclosing, acc, tr, path+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, wrapChild(err, p, decl)
		}
		args = append(args, child)
		acc = acc.Concat(child.Bindings().Since(acc))
	}
	return &ConstructedInstance{Decl: decl, TypeArgs: cand.TypeArgs, Args: args, Env: acc}, nil
}

func wrapChild(err error, p *symbols.Param, decl *symbols.ClassDecl) error {
	var rerr *Error
	if !errors.As(err, &rerr) {
		return fmt.Errorf("parameter %s of %s: %w", p.Name, decl.FQName(), err)
	}
	return &Error{Kind: rerr.Kind, Param: p, Constructor: decl.FQName(), Cause: err}
}

func (r *Resolver) traceFailure(required *symbols.Param, start time.Time, err error) {
	r.logger.Debug("implicit resolution failed",
		slog.String("param", required.String()),
		slog.Duration("duration", time.Since(start)),
		slog.String("error", err.Error()),
	)
}
