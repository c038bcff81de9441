// Package result defines the envelope every service operation returns.
package result

import (
	"errors"
	"net/http"
)

// Code classifies the outcome of an operation. Values mirror HTTP statuses.
type Code int

const (
	Success      Code = 200
	NoContent    Code = 204
	BadRequest   Code = 400
	Unauthorized Code = 401
	Forbidden    Code = 403
	NotFound     Code = 404
	Fail         Code = 500
)

func (c Code) String() string {
	switch c {
	case Success:
		return "Success"
	case NoContent:
		return "NoContent"
	case BadRequest:
		return "BadRequest"
	case Unauthorized:
		return "Unauthorized"
	case Forbidden:
		return "Forbidden"
	case NotFound:
		return "NotFound"
	case Fail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// HTTPStatus is the status the boundary writes for this code.
// NoContent is sent as 200 so the envelope body is not dropped.
func (c Code) HTTPStatus() int {
	switch c {
	case NoContent:
		return http.StatusOK
	case Success, BadRequest, Unauthorized, Forbidden, NotFound:
		return int(c)
	default:
		return http.StatusInternalServerError
	}
}

// Result is the uniform success/failure wrapper.
type Result[T any] struct {
	Code    Code   `json:"responseCode"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Succeeded reports whether the code is in the 2xx range.
func (r Result[T]) Succeeded() bool {
	return r.Code == Success || r.Code == NoContent
}

// OK wraps a payload in a Success envelope.
func OK[T any](data T, message string) Result[T] {
	return Result[T]{Code: Success, Message: messageOr(message, Success), Data: data}
}

// Failure builds an envelope without payload.
func Failure[T any](code Code, message string) Result[T] {
	return Result[T]{Code: code, Message: messageOr(message, code)}
}

func messageOr(message string, code Code) string {
	if message == "" {
		return code.String()
	}
	return message
}

// Outcome is an expected, non-retryable business result (not found,
// forbidden, bad request...). It travels as an error between layers and
// is turned back into an envelope by Propagate.
type Outcome struct {
	Code    Code
	Message string
}

func (o *Outcome) Error() string {
	return messageOr(o.Message, o.Code)
}

func NewOutcome(code Code, message string) *Outcome {
	return &Outcome{Code: code, Message: message}
}

func NotFoundOutcome(message string) *Outcome     { return NewOutcome(NotFound, message) }
func ForbiddenOutcome(message string) *Outcome    { return NewOutcome(Forbidden, message) }
func BadRequestOutcome(message string) *Outcome   { return NewOutcome(BadRequest, message) }
func UnauthorizedOutcome(message string) *Outcome { return NewOutcome(Unauthorized, message) }

// AsOutcome extracts an Outcome from an error chain.
func AsOutcome(err error) (*Outcome, bool) {
	var o *Outcome
	if errors.As(err, &o) {
		return o, true
	}
	return nil, false
}

// Propagate converts err into the value a service should return: an
// Outcome becomes a failure envelope with a nil error, anything else is an
// unexpected fault and is handed back untouched.
func Propagate[T any](err error) (Result[T], error) {
	if o, ok := AsOutcome(err); ok {
		return Failure[T](o.Code, o.Message), nil
	}
	return Result[T]{}, err
}
