package client

import (
	"errors"
	"fmt"
)

// TransportError means the server could not be reached at all (network
// failure, timeout). The request may or may not have been processed.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AsTransport checks if an error is a TransportError and returns it.
func AsTransport(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// ServerError is a non-2xx response. Message carries the server-provided
// {error} body when present, a generic fallback otherwise.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// AsServer checks if an error is a ServerError and returns it.
func AsServer(err error) (*ServerError, bool) {
	var se *ServerError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ProtocolError is a 2xx response missing an expected field, e.g. no
// filePath after a submission. Never silently ignored.
type ProtocolError struct {
	Field  string
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: missing %s in response (%s)", e.Field, e.Detail)
}

// AsProtocol checks if an error is a ProtocolError and returns it.
func AsProtocol(err error) (*ProtocolError, bool) {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// genericMessage is used when a non-2xx body carries no error field.
const genericMessage = "request failed"
