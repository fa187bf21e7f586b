package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// RequestContext describes a request for error messages only.
type RequestContext struct {
	// Service is the user facing name of the called service, e.g. "Telegram bridge".
	Service string
	// RequestType is a short description of the request, e.g. "user info" or "login".
	RequestType string
}

// NetworkError is returned when the request never produced an HTTP response.
type NetworkError struct {
	RequestContext

	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s request failed: %v", e.Service, e.RequestType, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ApiError is returned when the server answered with a non-2xx status.
type ApiError struct {
	RequestContext

	StatusCode int
	// ErrCode is the machine readable error code sent by the server, if any.
	ErrCode string
	// Message is the human readable error sent by the server, if any.
	Message string
}

func (e *ApiError) Error() string {
	if len(e.Message) > 0 {
		return fmt.Sprintf("%s %s request failed: %s", e.Service, e.RequestType, e.Message)
	}

	return fmt.Sprintf("%s %s request failed with HTTP %d", e.Service, e.RequestType, e.StatusCode)
}

// Unauthorized reports whether the server rejected the access token.
func (e *ApiError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.ErrCode == "M_UNKNOWN_TOKEN" || e.ErrCode == "M_MISSING_TOKEN"
}

type errorPayload struct {
	Error   string `json:"error"`
	ErrCode string `json:"errcode"`
	Message string `json:"message"`
}

func newApiError(rctx RequestContext, statusCode int, body []byte) *ApiError {
	apiErr := &ApiError{RequestContext: rctx, StatusCode: statusCode}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.ErrCode = payload.ErrCode
		if len(payload.Error) > 0 {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = payload.Message
		}
	} else if text := strings.TrimSpace(string(body)); len(text) > 0 && len(text) < 200 && !strings.HasPrefix(text, "<") {
		// plain text errors from reverse proxies
		apiErr.Message = text
	}

	return apiErr
}
