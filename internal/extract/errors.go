package extract

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a scan failed.
type Kind string

const (
	KindRateLimited    Kind = "rate_limited"
	KindQuotaExhausted Kind = "quota_exhausted"
	KindUpstream       Kind = "upstream"
	KindParse          Kind = "parse"
	KindCanceled       Kind = "canceled"
	KindInvalidInput   Kind = "invalid_input"
	KindUnknown        Kind = "unknown"
)

// Messages shown to the person scanning.
const (
	MsgRateLimited    = "Rate limit exceeded. Please try again later."
	MsgQuotaExhausted = "Payment required. Please add credits to your workspace."
	MsgNoContent      = "No content in AI response"
	MsgParseFailed    = "Failed to parse contact data from image"
	MsgNoImage        = "No image data provided"
	MsgImageTooLarge  = "Image data is too large"
	MsgCanceled       = "Scan canceled"
	MsgUnknown        = "Unknown error"
)

// Error is the failure type returned by the adapter. Message is safe to show
// to the user; Err holds the underlying cause for logs.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status the scan endpoint answers with for this failure.
func (e *Error) HTTPStatus() int {
	return StatusFor(e.Kind)
}

// StatusFor maps a failure kind to an HTTP status.
func StatusFor(kind Kind) int {
	switch kind {
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindQuotaExhausted:
		return http.StatusPaymentRequired
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// statusError maps a non-2xx gateway status to a failure.
func statusError(status int) *Error {
	switch status {
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Status: status, Message: MsgRateLimited}
	case http.StatusPaymentRequired:
		return &Error{Kind: KindQuotaExhausted, Status: status, Message: MsgQuotaExhausted}
	default:
		return &Error{Kind: KindUpstream, Status: status, Message: fmt.Sprintf("AI Gateway error: %d", status)}
	}
}

// AsError normalises any error into an *Error, defaulting to KindUnknown.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUnknown, Message: MsgUnknown, Err: err}
}
