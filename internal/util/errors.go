package util

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so controllers can map them to HTTP
// statuses in one place.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindAccessDenied
	KindInvalidState
	KindValidationFailed
	KindConflict
)

type DomainError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *DomainError) Unwrap() error { return e.Err }

func NotFoundErr(msg string) error         { return &DomainError{Kind: KindNotFound, Msg: msg} }
func AccessDeniedErr(msg string) error     { return &DomainError{Kind: KindAccessDenied, Msg: msg} }
func InvalidStateErr(msg string) error     { return &DomainError{Kind: KindInvalidState, Msg: msg} }
func ValidationFailedErr(msg string) error { return &DomainError{Kind: KindValidationFailed, Msg: msg} }
func ConflictErr(msg string) error         { return &DomainError{Kind: KindConflict, Msg: msg} }

// KindOf returns the error's kind, or 0 for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

var (
	ErrTestNotFound         = NotFoundErr("test not found")
	ErrAttemptNotFound      = NotFoundErr("attempt not found")
	ErrPaymentNotFound      = NotFoundErr("payment not found")
	ErrPlanNotFound         = NotFoundErr("plan not found")
	ErrNotAttemptOwner      = AccessDeniedErr("attempt does not belong to requester")
	ErrNoEntitlement        = AccessDeniedErr("exhausted free attempts, no active subscription")
	ErrAttemptNotInProgress = InvalidStateErr("attempt is not in progress")
	ErrAttemptNotSubmitted  = InvalidStateErr("attempt has not been submitted")
	ErrAlreadySubmitted     = InvalidStateErr("attempt already submitted")
	ErrAttemptExpired       = InvalidStateErr("attempt duration has elapsed")
	ErrSignatureMismatch    = ValidationFailedErr("payment signature mismatch")
	ErrQuestionNotInSet     = ValidationFailedErr("question is not part of this attempt")
	ErrAttemptNumberTaken   = ConflictErr("concurrent attempt creation, retry")
)
