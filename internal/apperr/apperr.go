// Package apperr defines the error taxonomy exposed by the API. Every error
// carries a stable code (also the i18n message key) and an HTTP status; the
// Detail string is for logs only and never reaches the client.
package apperr

import "fmt"

const (
	CodeInvalidImage            = "invalid_image"
	CodeImageTooLarge           = "image_too_large"
	CodeUnsupportedImageType    = "unsupported_image_type"
	CodeImageDimensionsExceeded = "image_dimensions_exceeded"
	CodeRequestInvalid          = "request_invalid"
	CodeRateLimited             = "rate_limited"
	CodeServiceUnavailable      = "service_unavailable"
	CodeRecognitionUnavailable  = "recognition_unavailable"
	CodeAnimeNotFound           = "anime_not_found"
	CodeLinksNotFound           = "links_not_found"
	CodeLLMUnavailable          = "llm_unavailable"
	CodeInternal                = "internal_error"
)

type Error struct {
	Code       string
	HTTPStatus int
	Detail     string
	Err        error

	// RetryAfterSeconds is set only for rate_limited.
	RetryAfterSeconds int
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// WithCause attaches the underlying collaborator error for logging; the cause
// text is never embedded in anything user-facing.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

func InvalidImage(detail string) *Error {
	return &Error{Code: CodeInvalidImage, HTTPStatus: 400, Detail: detail}
}

func ImageTooLarge(detail string) *Error {
	return &Error{Code: CodeImageTooLarge, HTTPStatus: 413, Detail: detail}
}

func UnsupportedImageType(detail string) *Error {
	return &Error{Code: CodeUnsupportedImageType, HTTPStatus: 415, Detail: detail}
}

func ImageDimensionsExceeded(detail string) *Error {
	return &Error{Code: CodeImageDimensionsExceeded, HTTPStatus: 413, Detail: detail}
}

func RequestInvalid(detail string) *Error {
	return &Error{Code: CodeRequestInvalid, HTTPStatus: 422, Detail: detail}
}

func RateLimited(retryAfterSeconds int) *Error {
	return &Error{
		Code:              CodeRateLimited,
		HTTPStatus:        429,
		Detail:            "rate limited",
		RetryAfterSeconds: retryAfterSeconds,
	}
}

func ServiceUnavailable(detail string) *Error {
	return &Error{Code: CodeServiceUnavailable, HTTPStatus: 503, Detail: detail}
}

func RecognitionUnavailable(detail string) *Error {
	return &Error{Code: CodeRecognitionUnavailable, HTTPStatus: 503, Detail: detail}
}

func AnimeNotFound(detail string) *Error {
	return &Error{Code: CodeAnimeNotFound, HTTPStatus: 404, Detail: detail}
}

func LinksNotFound(detail string) *Error {
	return &Error{Code: CodeLinksNotFound, HTTPStatus: 404, Detail: detail}
}

func LLMUnavailable(detail string) *Error {
	return &Error{Code: CodeLLMUnavailable, HTTPStatus: 503, Detail: detail}
}

func Internal(detail string) *Error {
	return &Error{Code: CodeInternal, HTTPStatus: 500, Detail: detail}
}
