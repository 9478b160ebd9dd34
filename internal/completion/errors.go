package completion

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// FailureClass describes how a completion failure should be handled.
type FailureClass int

const (
	// FailureTransient failures may succeed when retried.
	FailureTransient FailureClass = iota
	// FailurePermanent failures will fail again with the same request.
	FailurePermanent
	// FailureAuthentication failures indicate rejected credentials.
	FailureAuthentication
)

// StatusCode extracts the HTTP status carried by a completion error, if any.
func StatusCode(err error) (int, bool) {
	var apiError *openai.APIError
	if errors.As(err, &apiError) && apiError.HTTPStatusCode > 0 {
		return apiError.HTTPStatusCode, true
	}
	var requestError *openai.RequestError
	if errors.As(err, &requestError) && requestError.HTTPStatusCode > 0 {
		return requestError.HTTPStatusCode, true
	}
	return 0, false
}

// ClassifyError maps a completion error to a FailureClass.
func ClassifyError(err error) FailureClass {
	if errors.Is(err, ErrAPIKeyMissing) || errors.Is(err, ErrModelMissing) {
		return FailurePermanent
	}

	statusCode, hasStatus := StatusCode(err)
	if !hasStatus {
		return FailureTransient
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return FailureAuthentication
	case http.StatusBadRequest, http.StatusNotFound:
		return FailurePermanent
	default:
		return FailureTransient
	}
}
