// Package domain contains the core business entities and value objects.
package domain

// Status is the outcome of a chat call.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorKind classifies a failed chat call.
type ErrorKind string

const (
	KindNone           ErrorKind = ""
	KindTimeout        ErrorKind = "timeout"
	KindAuthentication ErrorKind = "authentication_failed"
	KindRateLimited    ErrorKind = "rate_limited"
	KindBadRequest     ErrorKind = "bad_request"
	KindUpstream       ErrorKind = "upstream_error"
	KindMalformed      ErrorKind = "malformed_response"
	KindUnexpected     ErrorKind = "unexpected"
)

// Result is the normalized reply every provider converges on.
// Kind is only set when Status is StatusError and is not part of the wire shape.
type Result struct {
	Status  Status    `json:"status"`
	Message string    `json:"message"`
	Role    Role      `json:"role"`
	Kind    ErrorKind `json:"-"`
}

// Success builds a successful assistant reply.
func Success(text string) Result {
	return Result{Status: StatusSuccess, Message: text, Role: RoleAssistant}
}

// Failure builds an error reply attributed to the system role.
func Failure(kind ErrorKind, message string) Result {
	return Result{Status: StatusError, Message: message, Role: RoleSystem, Kind: kind}
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}
