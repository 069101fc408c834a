package typesystem

import "fmt"

// UnknownTypeError indicates a type name could not be resolved
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type: %s", e.Name)
}

func NewUnknownTypeError(name string) *UnknownTypeError {
	return &UnknownTypeError{Name: name}
}

// AmbiguousTypeError indicates a simple type name matches several declarations
type AmbiguousTypeError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousTypeError) Error() string {
	return fmt.Sprintf("ambiguous type %s: could be any of %v", e.Name, e.Candidates)
}
