// Package numerator provides domain contracts for daily sequential document identifiers.
// Implementations live in infrastructure layer.
package numerator

import (
	"context"
)

// Outcome tells how an identifier was produced.
type Outcome int

const (
	// Allocated identifiers come from the transactional path and are unique
	// within their scope and target.
	Allocated Outcome = iota

	// Degraded identifiers come from the fallback path and are only
	// probabilistically unique.
	Degraded
)

func (o Outcome) String() string {
	if o == Degraded {
		return "degraded"
	}
	return "allocated"
}

// Result is the outcome of one allocation call.
type Result struct {
	Outcome Outcome

	// ID is set when Outcome is Allocated.
	ID GeneratedID

	// Fallback is set when Outcome is Degraded.
	Fallback string

	// Cause is the error that forced the fallback path.
	Cause error
}

// AllocatedResult wraps a successfully allocated identifier.
func AllocatedResult(id GeneratedID) Result {
	return Result{Outcome: Allocated, ID: id}
}

// DegradedResult wraps a fallback identifier and the error that caused it.
func DegradedResult(fallback string, cause error) Result {
	return Result{Outcome: Degraded, Fallback: fallback, Cause: cause}
}

// IsDegraded reports whether the identifier came from the fallback path.
func (r Result) IsDegraded() bool {
	return r.Outcome == Degraded
}

// String returns the identifier text regardless of outcome.
func (r Result) String() string {
	if r.Outcome == Degraded {
		return r.Fallback
	}
	return r.ID.String()
}

// Allocator hands out identifiers for records of a target table/column.
// Both operations are total: failures are absorbed into a Degraded result.
type Allocator interface {
	// AllocateByType resolves typ through the prefix registry and allocates
	// the next identifier of today's scope.
	AllocateByType(ctx context.Context, typ string, target Target) Result

	// AllocateByPrefix allocates using the upper-cased prefix directly.
	AllocateByPrefix(ctx context.Context, prefix string, target Target) Result
}

// PrefixResolver maps a logical type name ("invoice") to its prefix ("INV").
// Implementations return apperror PREFIX_NOT_FOUND for unknown types.
type PrefixResolver interface {
	Resolve(ctx context.Context, typ string) (string, error)
}

// SequenceProbe finds the greatest identifier of a scope in the target
// storage and holds an exclusive lock on that scope until the enclosing
// transaction ends. It returns nil when the scope is empty.
type SequenceProbe interface {
	ProbeMax(ctx context.Context, target Target, scope ScopeKey) (*string, error)
}
