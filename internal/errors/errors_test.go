package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *DomainError
		contains string
	}{
		{
			name: "formats with wrapped error",
			err: &DomainError{
				Domain: "pool",
				Op:     "Acquire",
				Kind:   ErrExhausted,
				Err:    errors.New("wait timed out"),
			},
			contains: "pool.Acquire: pool exhausted: wait timed out",
		},
		{
			name: "formats with Kind only",
			err: &DomainError{
				Domain: "auth",
				Op:     "Authenticate",
				Kind:   ErrUnauthorized,
			},
			contains: "auth.Authenticate: unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.err.Error()
			if !strings.Contains(got, tt.contains) {
				t.Errorf("DomainError.Error() = %q, want to contain %q", got, tt.contains)
			}
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("driver: bad connection")
	err := New("hr", "LeaveBalance", ErrUpstream, inner)
	if got := err.Unwrap(); got != inner {
		t.Errorf("DomainError.Unwrap() = %v, want %v", got, inner)
	}

	if got := New("hr", "LeaveBalance", ErrUpstream, nil).Unwrap(); got != nil {
		t.Errorf("DomainError.Unwrap() = %v, want nil", got)
	}
}

func TestDomainError_Is(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    *DomainError
		target error
		want   bool
	}{
		{
			name:   "matches Kind",
			err:    New("ratelimit", "Admit", ErrThrottled, nil),
			target: ErrThrottled,
			want:   true,
		},
		{
			name:   "matches wrapped error",
			err:    New("mcp", "Dispatch", ErrBadRequest, ErrNotFound),
			target: ErrNotFound,
			want:   true,
		},
		{
			name:   "does not match different error",
			err:    New("auth", "Authenticate", ErrUnauthorized, nil),
			target: ErrForbidden,
			want:   false,
		},
		{
			name:   "matches kind of nested domain error",
			err:    New("mcp", "Dispatch", ErrInternal, New("pool", "Acquire", ErrExhausted, nil)),
			target: ErrExhausted,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Is(tt.target); got != tt.want {
				t.Errorf("DomainError.Is() = %v, want %v", got, tt.want)
			}
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is(DomainError, target) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDomainError_WithContext_Chaining(t *testing.T) {
	t.Parallel()

	err := &DomainError{Domain: "mcp", Op: "Dispatch"}

	result := err.WithContext("tool", "get_leave_balance").WithContext("field", "employee_id")
	if result != err {
		t.Error("WithContext() should return same error for chaining")
	}

	for _, key := range []string{"tool", "field"} {
		if _, ok := err.Context[key]; !ok {
			t.Errorf("WithContext() chaining did not add key %q", key)
		}
	}
}

func TestNew_InitializesContext(t *testing.T) {
	t.Parallel()

	err := New("auth", "Revoke", ErrNotFound, nil)
	if err.Context == nil {
		t.Fatal("New() should initialize Context map")
	}
	if err.Domain != "auth" || err.Op != "Revoke" || err.Kind != ErrNotFound {
		t.Errorf("New() = %+v, want auth.Revoke with ErrNotFound", err)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	inner := New("hr", "ResolveEmployee", ErrBadRequest, nil).WithContext(ContextField, "name")
	outer := fmt.Errorf("dispatch: %w", New("mcp", "Dispatch", ErrBadRequest, inner).WithContext("tool", "get_work_report"))

	if v, ok := Lookup(outer, "tool"); !ok || v != "get_work_report" {
		t.Errorf("Lookup(tool) = %v, %v, want get_work_report, true", v, ok)
	}
	if v, ok := Lookup(outer, ContextField); !ok || v != "name" {
		t.Errorf("Lookup(field) = %v, %v, want name, true", v, ok)
	}
	if _, ok := Lookup(outer, "missing"); ok {
		t.Error("Lookup(missing) should report false")
	}
	if _, ok := Lookup(errors.New("plain"), "tool"); ok {
		t.Error("Lookup on a plain error should report false")
	}
}

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err     error
		wantMsg string
	}{
		{ErrNotFound, "not found"},
		{ErrUnauthorized, "unauthorized"},
		{ErrForbidden, "forbidden"},
		{ErrBadRequest, "bad request"},
		{ErrInternal, "internal error"},
		{ErrThrottled, "throttled"},
		{ErrExhausted, "pool exhausted"},
		{ErrUnknownTool, "unknown tool"},
		{ErrUpstream, "upstream failure"},
		{ErrRuleViolation, "business rule violation"},
	}

	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}
