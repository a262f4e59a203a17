package domain

import "errors"

var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a request failed basic field validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDepthExceeded indicates a create or move would put an activity
	// below the deepest allowed level.
	ErrDepthExceeded = errors.New("maximum activity nesting depth exceeded (3 levels)")

	// ErrSelfParent indicates an activity was named as its own parent.
	ErrSelfParent = errors.New("activity cannot be its own parent")

	// ErrCycle indicates a move would place an activity under one of its
	// own descendants.
	ErrCycle = errors.New("circular activity reference")

	// ErrStructuralIntegrity indicates the stored activity tree is corrupt:
	// a traversal revisited a node or ran past the number of stored nodes.
	ErrStructuralIntegrity = errors.New("activity tree structural integrity violated")
)

// IsValidationError reports whether err is a client-correctable validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDepthExceeded) ||
		errors.Is(err, ErrSelfParent) ||
		errors.Is(err, ErrCycle)
}
