package types

import (
	"errors"
	"fmt"
)

// ErrSearchCancelled is returned when a fetch attempt was cancelled because a
// newer trigger superseded it. The coordinator absorbs it; it is never
// surfaced in a snapshot.
type ErrSearchCancelled struct{}

func (e *ErrSearchCancelled) Error() string {
	return "search cancelled"
}

// From checks if the given error is an ErrSearchCancelled
func (e *ErrSearchCancelled) From(err error) bool {
	var cancelled *ErrSearchCancelled
	return errors.As(err, &cancelled)
}

// ErrSearchTransport is returned when the backing source could not be reached
type ErrSearchTransport struct {
	Endpoint string
	Err      error
}

func (e *ErrSearchTransport) Error() string {
	return fmt.Sprintf("search transport failed: %s: %v", e.Endpoint, e.Err)
}

func (e *ErrSearchTransport) Unwrap() error {
	return e.Err
}

// From checks if the given error is an ErrSearchTransport
func (e *ErrSearchTransport) From(err error) bool {
	var transport *ErrSearchTransport
	return errors.As(err, &transport)
}

// ErrSearchDecode is returned when a source response could not be interpreted
type ErrSearchDecode struct {
	Endpoint string
	Err      error
}

func (e *ErrSearchDecode) Error() string {
	return fmt.Sprintf("search response decode failed: %s: %v", e.Endpoint, e.Err)
}

func (e *ErrSearchDecode) Unwrap() error {
	return e.Err
}

// From checks if the given error is an ErrSearchDecode
func (e *ErrSearchDecode) From(err error) bool {
	var decode *ErrSearchDecode
	return errors.As(err, &decode)
}

// ErrSourceNotFound is returned when an unknown source backend is requested
type ErrSourceNotFound struct {
	Name string
}

func (e *ErrSourceNotFound) Error() string {
	return fmt.Sprintf("source not found: %s", e.Name)
}

// ErrSessionNotFound is returned when a session id does not resolve
type ErrSessionNotFound struct {
	SessionId string
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionId)
}

// From checks if the given error is an ErrSessionNotFound
func (e *ErrSessionNotFound) From(err error) bool {
	var notFound *ErrSessionNotFound
	return errors.As(err, &notFound)
}
