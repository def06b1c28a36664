// Package walleterr defines the flat error-kind taxonomy shared by every
// package in the wallet core, so callers can branch on recovery policy
// (retry, surface, abort) without parsing error strings.
package walleterr

import (
	"errors"
	"fmt"
)

// Kind is one of a fixed set of error categories. It is never extended at
// runtime; new kinds are a source change, not a registration call.
type Kind uint8

const (
	KindInvalidInput Kind = iota
	KindInsufficientBalance
	KindNetworkError
	KindRPCError
	KindDoubleSpend
	KindParseError
	KindChecksumMismatch
	KindScalarInvalid
	KindPointInvalid
	KindPolicyViolation
	KindCancelled
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindNetworkError:
		return "network_error"
	case KindRPCError:
		return "rpc_error"
	case KindDoubleSpend:
		return "double_spend"
	case KindParseError:
		return "parse_error"
	case KindChecksumMismatch:
		return "checksum_mismatch"
	case KindScalarInvalid:
		return "scalar_invalid"
	case KindPointInvalid:
		return "point_invalid"
	case KindPolicyViolation:
		return "policy_violation"
	case KindCancelled:
		return "cancelled"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error wraps a sentinel or contextual error with its Kind, and optionally
// an RPC error code for KindRPCError.
type Error struct {
	kind    Kind
	err     error
	RPCCode int
}

func New(kind Kind, err error) *Error {
	return &Error{kind: kind, err: err}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, err: fmt.Errorf(format, args...)}
}

func RPC(code int, message string) *Error {
	return &Error{kind: KindRPCError, err: errors.New(message), RPCCode: code}
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Error() string {
	if e.kind == KindRPCError {
		return fmt.Sprintf("rpc_error(code=%d): %s", e.RPCCode, e.err.Error())
	}
	return fmt.Sprintf("%s: %s", e.kind, e.err.Error())
}

func (e *Error) Unwrap() error {
	return e.err
}

// Of returns the Kind carried by err, letting a caller test against a
// Kind() as if it were a sentinel:
// errors.Is(err, walleterr.KindCancelled) is not valid Go (Kind isn't an
// error); use Of(err) == walleterr.KindCancelled instead.
func Of(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// IsRetryable reports whether the recovery policy in spec §7 says the Node
// adapter should retry this error internally before surfacing it.
func IsRetryable(err error) bool {
	switch Of(err) {
	case KindNetworkError, KindRPCError:
		return true
	default:
		return false
	}
}

var (
	ErrCancelled           = New(KindCancelled, errors.New("operation cancelled"))
	ErrInsufficientBalance = New(KindInsufficientBalance, errors.New("selection cannot reach target amount"))
)
