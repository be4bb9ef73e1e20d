package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a lifecycle failure.
type ErrorKind int

const (
	// KindNotFound: no reservation has the requested id.
	KindNotFound ErrorKind = iota + 1
	// KindInvalidTransition: the reservation exists but its current status
	// does not allow the operation.  Reason says why.
	KindInvalidTransition
	// KindInternal: the store failed.  Nothing was changed.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

// Reason refines KindInvalidTransition.
type Reason string

const (
	ReasonAlreadyCanceled Reason = "already_canceled"
	ReasonAlreadyFinished Reason = "already_finished"
	ReasonNotPaid         Reason = "not_paid"
	ReasonAlreadyPaid     Reason = "already_paid"
)

// Sentinels for errors.Is.  A *LifecycleError matches the sentinel of its
// kind, or of its reason for invalid transitions.
var (
	ErrNotFound        = errors.New("reservation not found")
	ErrAlreadyCanceled = errors.New("reservation already canceled")
	ErrAlreadyFinished = errors.New("reservation already finished")
	ErrNotPaid         = errors.New("reservation not paid")
	ErrAlreadyPaid     = errors.New("reservation already paid")
	ErrInternal        = errors.New("internal error")
)

var reasonSentinels = map[Reason]error{
	ReasonAlreadyCanceled: ErrAlreadyCanceled,
	ReasonAlreadyFinished: ErrAlreadyFinished,
	ReasonNotPaid:         ErrNotPaid,
	ReasonAlreadyPaid:     ErrAlreadyPaid,
}

// LifecycleError is the single error type returned by Lifecycle.  Message
// is safe to show to callers; Cause holds the underlying store error for
// logs and is never rendered by the HTTP layer.
type LifecycleError struct {
	Kind          ErrorKind
	Reason        Reason
	ReservationID uint64
	Message       string
	Cause         error
}

func (e *LifecycleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LifecycleError) Unwrap() error { return e.Cause }

// Is matches the package sentinels.
func (e *LifecycleError) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == ErrNotFound
	case KindInternal:
		return target == ErrInternal
	case KindInvalidTransition:
		s, ok := reasonSentinels[e.Reason]
		return ok && target == s
	}
	return false
}

// Temporary reports whether retrying later could succeed.  Only store
// failures qualify; rejections are final for the current status.
func (e *LifecycleError) Temporary() bool { return e.Kind == KindInternal }

// Outcome is the metrics label for the error.
func (e *LifecycleError) Outcome() string {
	if e.Kind == KindInvalidTransition {
		return string(e.Reason)
	}
	return e.Kind.String()
}

func notFound(id uint64) *LifecycleError {
	return &LifecycleError{Kind: KindNotFound, ReservationID: id, Message: "reservation not found"}
}

func rejected(id uint64, r Reason, msg string) *LifecycleError {
	if msg == "" {
		msg = reasonSentinels[r].Error()
	}
	return &LifecycleError{Kind: KindInvalidTransition, Reason: r, ReservationID: id, Message: msg}
}

func internal(id uint64, cause error) *LifecycleError {
	return &LifecycleError{Kind: KindInternal, ReservationID: id, Message: "internal error", Cause: cause}
}

// AsLifecycleError extracts a *LifecycleError from err.
func AsLifecycleError(err error) (*LifecycleError, bool) {
	var le *LifecycleError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
