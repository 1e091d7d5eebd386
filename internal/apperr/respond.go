package apperr

import (
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"tenseii/internal/i18n"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"request_id"`
}

// Respond writes the JSON error envelope with a localized message and aborts
// the request. Unknown errors are masked as internal_error.
func Respond(c *gin.Context, locale, requestID string, err error) {
	var ae *Error
	if !errors.As(err, &ae) {
		ae = Internal("unhandled error").WithCause(err)
	}

	if ae.HTTPStatus >= 500 {
		log.Printf("app error: code=%s request_id=%s detail=%q cause=%v", ae.Code, requestID, ae.Detail, ae.Err)
	} else {
		log.Printf("app error: code=%s request_id=%s", ae.Code, requestID)
	}

	if ae.Code == CodeRateLimited && ae.RetryAfterSeconds > 0 {
		c.Header("Retry-After", strconv.Itoa(ae.RetryAfterSeconds))
	}

	c.AbortWithStatusJSON(ae.HTTPStatus, errorEnvelope{
		Error:     errorBody{Code: ae.Code, Message: i18n.T(locale, ae.Code)},
		RequestID: requestID,
	})
}
