package hr

import (
	"errors"

	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
	"github.com/jamesprial/hr-mcp-gateway/internal/pool"
)

// Sentinel errors for HR lookups. Both are business rule violations: the
// store answered, the answer was "no".
var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrAmbiguousEmployee = errors.New("ambiguous employee")
)

// Context keys carried by resolution errors.
const (
	ContextQuery       = "query"
	ContextCandidates  = "candidates"
	ContextSuggestions = "suggestions"
)

func notFoundError(op, query string, suggestions []string) *ierrors.DomainError {
	e := ierrors.New("hr", op, ierrors.ErrRuleViolation, ErrEmployeeNotFound).
		WithContext(ContextQuery, query)
	if len(suggestions) > 0 {
		e = e.WithContext(ContextSuggestions, suggestions)
	}
	return e
}

func ambiguousError(op, query string, candidates []Candidate) *ierrors.DomainError {
	return ierrors.New("hr", op, ierrors.ErrRuleViolation, ErrAmbiguousEmployee).
		WithContext(ContextQuery, query).
		WithContext(ContextCandidates, candidates)
}

// queryError marks a store failure. The connection that produced it is
// released unhealthy.
func queryError(op string, err error) *ierrors.DomainError {
	return ierrors.New("hr", op, ierrors.ErrUpstream, pool.Broken(err))
}
