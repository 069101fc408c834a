package resolution

import (
	"fmt"
	"strings"

	"github.com/funvibe/implicits/internal/symbols"
)

// Kind classifies resolution failures.
type Kind int

const (
	NoCandidate Kind = iota
	AmbiguousCandidate
	MalformedInstanceConstructor
	CyclicInstanceDependency
	InternalInvariantViolation
)

func (k Kind) String() string {
	switch k {
	case NoCandidate:
		return "NoCandidate"
	case AmbiguousCandidate:
		return "AmbiguousCandidate"
	case MalformedInstanceConstructor:
		return "MalformedInstanceConstructor"
	case CyclicInstanceDependency:
		return "CyclicInstanceDependency"
	case InternalInvariantViolation:
		return "InternalInvariantViolation"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a user-facing resolution failure. Failures of nested
// constructor arguments wrap their cause and keep its Kind.
type Error struct {
	Kind  Kind
	Param *symbols.Param
	// Constructor is set when Param belongs to an instance constructor
	// reached through resolution.
	Constructor string
	Candidates  []string // AmbiguousCandidate: conflicting names, sorted
	Chain       []string // CyclicInstanceDependency: declarations on the cycle
	Cause       error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot resolve parameter `%s` of %s: %v", e.Param, e.Constructor, e.Cause)
	}
	switch e.Kind {
	case NoCandidate:
		return fmt.Sprintf("no candidate found for parameter `%s`", e.Param)
	case AmbiguousCandidate:
		return fmt.Sprintf("ambiguous implicit for parameter `%s`: found conflicting candidates: %s; coherence requires exactly one instance in scope",
			e.Param, strings.Join(e.Candidates, ", "))
	case MalformedInstanceConstructor:
		return fmt.Sprintf("constructor of %s has parameter `%s` that is not implicit; mark it implicit or pass it explicitly",
			e.Constructor, e.Param)
	case CyclicInstanceDependency:
		return fmt.Sprintf("cyclic instance dependency for parameter `%s`: %s", e.Param, strings.Join(e.Chain, " -> "))
	default:
		return fmt.Sprintf("%s for parameter `%s`", e.Kind, e.Param)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Root returns the innermost resolution error of a nested failure.
func (e *Error) Root() *Error {
	root := e
	for {
		next, ok := root.Cause.(*Error)
		if !ok {
			return root
		}
		root = next
	}
}

// InvariantViolation is raised with panic when the engine is fed input
// that no well-formed program can produce.
type InvariantViolation struct {
	Message   string
	Candidate Candidate
}

func (e *InvariantViolation) Error() string {
	if e.Candidate == nil {
		return "internal error: " + e.Message
	}
	return fmt.Sprintf("internal error: %s (%s)", e.Message, e.Candidate.Name())
}

func violation(msg string, c Candidate) {
	panic(&InvariantViolation{Message: msg, Candidate: c})
}
