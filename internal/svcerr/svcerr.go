// Package svcerr classifies control-backend failures into the small set of
// kinds the dashboard knows how to explain to an operator.
package svcerr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Kind is the operator-facing error class.
type Kind int

const (
	SystemError Kind = iota
	PermissionDenied
	NotFound
	Timeout
	InvalidState
)

func (k Kind) String() string {
	switch k {
	case PermissionDenied:
		return "permission_denied"
	case NotFound:
		return "not_found"
	case Timeout:
		return "timeout"
	case InvalidState:
		return "invalid_state"
	default:
		return "system_error"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names produced by String.
func (k *Kind) UnmarshalText(b []byte) error {
	for _, c := range []Kind{SystemError, PermissionDenied, NotFound, Timeout, InvalidState} {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", b)
}

// Error is a classified failure. Service is empty for collection-wide errors.
type Error struct {
	Kind    Kind
	Message string
	Service string
	Err     error
}

func (e *Error) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("service '%s': %s", e.Service, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Guidance returns the hint shown under the message.
func (e *Error) Guidance() string {
	return Guidance(e.Kind)
}

// MarshalJSON renders the error the way presentation adapters consume it.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind     string `json:"kind"`
		Message  string `json:"message"`
		Service  string `json:"service,omitempty"`
		Guidance string `json:"guidance,omitempty"`
	}{e.Kind.String(), e.Message, e.Service, e.Guidance()})
}

// New builds a classified error.
func New(kind Kind, service, format string, args ...any) *Error {
	return &Error{Kind: kind, Service: service, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, classifying it if needed. nil yields SystemError.
func KindOf(err error) Kind {
	if err == nil {
		return SystemError
	}
	return Classify(err, "").Kind
}

// Is reports whether err classifies as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Classify maps any error onto the taxonomy. A typed *Error anywhere in the
// chain wins; then well-known sentinels; then message heuristics.
func Classify(err error, service string) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		if typed.Service == "" && service != "" {
			cp := *typed
			cp.Service = service
			return &cp
		}
		return typed
	}

	out := &Error{Kind: SystemError, Message: err.Error(), Service: service, Err: err}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		out.Kind = Timeout
	case errors.Is(err, os.ErrPermission):
		out.Kind = PermissionDenied
	case errors.Is(err, os.ErrNotExist):
		out.Kind = NotFound
	default:
		out.Kind = kindFromMessage(err.Error())
	}
	return out
}

var messageHints = []struct {
	kind    Kind
	needles []string
}{
	{PermissionDenied, []string{"access is denied", "access denied", "permission denied", "interactive authentication required", "not permitted"}},
	{NotFound, []string{"not found", "does not exist", "not loaded", "no such"}},
	{Timeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{InvalidState, []string{"invalid state", "already running", "already stopped", "already starting", "already stopping", "is disabled", "is masked"}},
}

func kindFromMessage(msg string) Kind {
	lower := strings.ToLower(msg)
	for _, hint := range messageHints {
		for _, needle := range hint.needles {
			if strings.Contains(lower, needle) {
				return hint.kind
			}
		}
	}
	return SystemError
}

// Guidance returns actionable advice for a kind, or "" when there is none.
func Guidance(kind Kind) string {
	switch kind {
	case PermissionDenied:
		return "Re-run svcboard as an elevated user (root / Administrator) or use the privileged daemon."
	case NotFound:
		return "Make sure the service is still installed; refresh the list."
	case Timeout:
		return "The service may be unresponsive. Check its logs and refresh."
	case InvalidState:
		return "Refresh the service list to see the current status."
	default:
		return ""
	}
}
