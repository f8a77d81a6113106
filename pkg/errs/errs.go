// Package errs defines the error taxonomy shared by the brainstorm packages.
//
// Every failure surfaced to a caller is an *Error carrying one of four kinds:
//
//   - KindConfig: bad or missing agent, model or credential configuration.
//     Always reported before any network call is attempted.
//   - KindValidation: the caller passed something unusable (empty prompt,
//     streaming without a handler, empty message sequence).
//   - KindProvider: the hosted API rejected the request or answered with
//     something we can't use (authentication, rate limits, unknown models,
//     malformed responses).
//   - KindNetwork: the transport failed before a complete answer arrived.
//
// Kinds are matched with errors.Is against the package sentinels:
//
//	if errors.Is(err, errs.ErrValidation) {
//	    // the call never left the process
//	}
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindConfig
	KindValidation
	KindProvider
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindValidation:
		return "validation"
	case KindProvider:
		return "provider"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String. Unrecognized names yield KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "config":
		return KindConfig
	case "validation":
		return KindValidation
	case "provider":
		return KindProvider
	case "network":
		return KindNetwork
	default:
		return KindUnknown
	}
}

var (
	ErrConfig     = errors.New("configuration error")
	ErrValidation = errors.New("validation error")
	ErrProvider   = errors.New("provider error")
	ErrNetwork    = errors.New("network error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindConfig:
		return ErrConfig
	case KindValidation:
		return ErrValidation
	case KindProvider:
		return ErrProvider
	case KindNetwork:
		return ErrNetwork
	default:
		return nil
	}
}

// Error wraps an underlying error with its kind, the operation that failed and
// a short reason. Err may be nil when the reason says it all.
type Error struct {
	Kind   Kind
	Op     string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && s == target
}

// Config creates a KindConfig error.
func Config(op, reason string, err error) error {
	return &Error{Kind: KindConfig, Op: op, Reason: reason, Err: err}
}

// Configf creates a KindConfig error with a formatted reason.
func Configf(op, format string, args ...any) error {
	return &Error{Kind: KindConfig, Op: op, Reason: fmt.Sprintf(format, args...)}
}

// Validation creates a KindValidation error.
func Validation(op, reason string) error {
	return &Error{Kind: KindValidation, Op: op, Reason: reason}
}

// Provider creates a KindProvider error.
func Provider(op, reason string, err error) error {
	return &Error{Kind: KindProvider, Op: op, Reason: reason, Err: err}
}

// Network creates a KindNetwork error.
func Network(op string, err error) error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
