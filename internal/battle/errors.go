package battle

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the recoverable conditions the core can hit, each
// with a fixed handling policy.
type ErrorKind uint8

const (
	// InvalidPlacement aborts battle init and is returned to the caller.
	InvalidPlacement ErrorKind = iota
	// MissingDependency (unknown ability/weapon id) degrades to a failed
	// handler call; the tick continues.
	MissingDependency
	// InconsistentState (negative hp, stale ttl reference) is clamped and
	// logged; never aborts.
	InconsistentState
	// CancellationRequested finalizes the battle to a forced decision.
	CancellationRequested
	// InternalPanic propagates out of tick; the caller kills the worker.
	InternalPanic
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidPlacement:
		return "invalid_placement"
	case MissingDependency:
		return "missing_dependency"
	case InconsistentState:
		return "inconsistent_state"
	case CancellationRequested:
		return "cancellation_requested"
	case InternalPanic:
		return "internal_panic"
	default:
		return "unknown"
	}
}

// Severity maps an error kind onto the diagnostic event severity scale.
func (k ErrorKind) Severity() string {
	switch k {
	case InvalidPlacement, InternalPanic:
		return "critical"
	case InconsistentState:
		return "warning"
	default:
		return "info"
	}
}

// BattleError wraps one of the five error kinds with stack context via
// pkg/errors, so a propagated InternalPanic still carries its origin.
type BattleError struct {
	Kind ErrorKind
	msg  string
	err  error
}

func (e *BattleError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *BattleError) Unwrap() error { return e.err }

// NewBattleError constructs a BattleError, attaching a stack trace via
// pkg/errors.WithStack so the caller's recover() can still log "where".
func NewBattleError(kind ErrorKind, msg string) *BattleError {
	return &BattleError{Kind: kind, msg: msg, err: errors.New(msg)}
}

// WrapBattleError wraps an existing error under a kind.
func WrapBattleError(kind ErrorKind, msg string, cause error) *BattleError {
	return &BattleError{Kind: kind, msg: msg, err: errors.Wrap(cause, msg)}
}

// AsBattleError extracts a *BattleError if err is (or wraps) one.
func AsBattleError(err error) (*BattleError, bool) {
	var be *BattleError
	if stderrors.As(err, &be) {
		return be, true
	}
	return nil, false
}
