// Package types holds the JSON wire contract shared by handlers and clients.
package types

// SuccessEnvelope wraps every 2xx response body under a data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public shape of a failed request. Details is only populated
// for codes that allow it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every non-2xx response body under an error key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
