// Package upstream defines the error taxonomy shared by all provider clients.
//
// Every failure leaving a client is one of three typed errors so that the API
// layer can translate it without inspecting transport details: a provider's own
// error envelope (ReportedError), a transport-level failure (RequestError), or
// a response whose shape did not match the expected fields (ParseError).
package upstream

import "fmt"

// ReportedError is a failure the provider signalled in its own error envelope.
// StatusCode and Message are surfaced to the caller verbatim: a 404 "city not
// found" from the primary provider must reach the client as exactly that.
type ReportedError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ReportedError) Error() string {
	return fmt.Sprintf("%s reported %d: %s", e.Provider, e.StatusCode, e.Message)
}

// RequestError is a transport-level failure reaching a provider: connection
// refused, timeout, circuit open, or a malformed request.
type RequestError struct {
	Provider string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError is a response whose shape did not match the expected fields.
type ParseError struct {
	Provider string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s returned an unparseable response: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
