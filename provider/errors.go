package provider

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mstgnz/paybridge/infra/validate"
)

// Messages returned to callers for faults that must not leak internals
const (
	MessageConfigFault = "An unexpected error occurred (Error Code: EV_343). Please contact our support team for assistance"
	MessageNoDetails   = "No additional details available"
)

// UpstreamError is a non-success HTTP status returned by a provider
type UpstreamError struct {
	Provider   string
	Phase      string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d", e.Provider, e.Phase, e.StatusCode)
}

// TransportError is a failure to reach a provider or to read its response
type TransportError struct {
	Provider string
	Phase    string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s request failed: %s", e.Provider, e.Phase, e.Message())
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Message describes the failure without the request URL, which may carry
// credentials or identifiers.
func (e *TransportError) Message() string {
	if e.Err == nil {
		return "unknown error"
	}
	var uerr *url.Error
	if errors.As(e.Err, &uerr) && uerr.Err != nil {
		return uerr.Err.Error()
	}
	return e.Err.Error()
}

// ConfigError reports a missing or malformed provider setting
type ConfigError struct {
	Provider string
	Field    string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

// DispatchError is returned when no provider is registered under the requested name
type DispatchError struct {
	Provider string
}

func (e *DispatchError) Error() string {
	return "Invalid payment provider: " + e.Provider
}

// ErrorPayload is the diagnostic shape returned to callers for a failed payment
type ErrorPayload struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorPayloadFor maps any payment error to the payload shown to callers.
// Unknown errors are reported with the generic configuration message.
func ErrorPayloadFor(err error) ErrorPayload {
	var (
		verr      *validate.Error
		upstream  *UpstreamError
		transport *TransportError
		dispatch  *DispatchError
	)

	switch {
	case err == nil:
		return ErrorPayload{}
	case errors.As(err, &verr):
		return ErrorPayload{Error: verr.Reason}
	case errors.As(err, &upstream):
		details := upstream.Body
		if strings.TrimSpace(details) == "" {
			details = MessageNoDetails
		}
		return ErrorPayload{
			Error:   fmt.Sprintf("API returned error with status %d", upstream.StatusCode),
			Details: details,
		}
	case errors.As(err, &transport):
		return ErrorPayload{
			Error:   "An unexpected error occurred: " + transport.Message(),
			Details: MessageNoDetails,
		}
	case errors.As(err, &dispatch):
		return ErrorPayload{Error: dispatch.Error()}
	default:
		return ErrorPayload{Error: MessageConfigFault}
	}
}
