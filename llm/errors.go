package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError carries the HTTP status of a failed provider call alongside a
// human readable message. Callers can inspect the status for classification.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// apiError builds an APIError from a non-2xx response, extracting the
// provider's error message from the body when present.
func apiError(status int, body []byte) *APIError {
	detail := extractErrorMessage(body)

	var msg string
	switch {
	case status == http.StatusTooManyRequests:
		msg = "rate limit exceeded, please try again later"
	case status == http.StatusUnauthorized:
		msg = "authentication failed, check your API key"
	case status == http.StatusPaymentRequired || status == http.StatusForbidden:
		msg = "quota exceeded or access denied"
	case status == http.StatusNotFound:
		msg = "model not found, check the configured model name"
	case status == http.StatusBadRequest:
		msg = "invalid request"
	case status >= 500:
		msg = "provider server error, please try again later"
	default:
		msg = fmt.Sprintf("request failed with status %d", status)
	}

	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	return &APIError{Status: status, Message: msg}
}

// extractErrorMessage pulls the error string out of a JSON error body.
// Both {"error": "..."} and {"error": {"message": "..."}} shapes are
// handled since providers differ.
func extractErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}

	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	return ""
}

// DescribeError converts a provider error into a message suitable for
// surfacing to the user. Timeouts and connection refusals get friendlier
// wording than the raw error chain.
func DescribeError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out, the provider took too long to respond"
	}
	if errors.Is(err, context.Canceled) {
		return "request was cancelled"
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") {
		return "could not connect to the provider, is the service running?"
	}
	return msg
}
