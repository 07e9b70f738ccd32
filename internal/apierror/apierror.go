// Package apierror provides the response envelope shared by every JSON endpoint.
// All failures returned to clients go through this package so that internal
// details (DB errors, stack traces) never reach the caller.
package apierror

// Response is the canonical envelope: {success, data?, message?, error?}.
// RequestID is set on 5xx responses so the caller can quote it and the
// matching log line can be found.
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Path      string `json:"path,omitempty"`
}

// OK wraps a successful payload.
func OK(data any, msg string) Response {
	return Response{Success: true, Data: data, Message: msg}
}

// New builds a failure envelope with a client-facing message.
func New(msg string) Response {
	return Response{Success: false, Message: msg}
}

// WithError builds a failure envelope carrying a short machine-oriented detail.
func WithError(msg, detail string) Response {
	return Response{Success: false, Message: msg, Error: detail}
}

// Internal builds the generic 5xx envelope keyed by the request correlation id.
func Internal(msg, requestID string) Response {
	return Response{Success: false, Message: msg, RequestID: requestID}
}

// NotFoundRoute is returned for unmatched API routes.
func NotFoundRoute(path string) Response {
	return Response{Success: false, Message: "Endpoint no encontrado", Path: path}
}
