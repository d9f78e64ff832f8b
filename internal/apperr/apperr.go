// Package apperr classifies failures into kinds so callers can tell permanent input
// errors from provider failures that may succeed on a later attempt.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the category of a failure.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	KindIngestion     Kind = "ingestion"
	KindEmbedding     Kind = "embedding"
	KindIndex         Kind = "index"
	KindRetrieval     Kind = "retrieval"
	KindGeneration    Kind = "generation"
	KindModelMismatch Kind = "model_mismatch"
	KindRateLimited   Kind = "rate_limited"
	KindInternal      Kind = "internal"
)

// Error is a classified failure. Op names the operation that failed and is meant for logs;
// Error() returns only the message and cause, which are surfaced to API callers.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == "" && t.Err == nil
}

// New returns an Error with a message and no cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap classifies err. A nil err yields nil.
// If err is already an *Error it keeps its kind unless it is internal.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// WrapMsg classifies err and prefixes its message.
func WrapMsg(kind Kind, op, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// OpOf returns the operation recorded on the first *Error in err's chain.
func OpOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Op
	}
	return ""
}

// Retryable reports whether err came from a downstream provider and may succeed if repeated.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindEmbedding, KindIndex, KindRetrieval, KindGeneration, KindRateLimited:
		return true
	default:
		return false
	}
}

// HTTPStatus maps a kind to the status code used at the HTTP boundary.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindEmbedding, KindGeneration:
		return http.StatusBadGateway
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
