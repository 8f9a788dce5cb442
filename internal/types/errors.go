package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks missing provider credentials. Requests abort before a prompt is built.
	ErrConfiguration = errors.New("configuration error")
	// ErrMissingUserInput is returned when the request carries no usable free-text need.
	ErrMissingUserInput = errors.New("userInput is required")
	// ErrInvalidContext is returned when the request body has no JSON object under "context".
	ErrInvalidContext = errors.New("context must be a JSON object")
	// ErrUnauthenticated is returned when no user identity accompanies the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrCandidateInvalid marks a model suggestion missing its name or address.
	ErrCandidateInvalid = errors.New("candidate invalid")
)

// UpstreamKind separates transport failures from well-formed responses with unusable payloads.
type UpstreamKind string

const (
	UpstreamUnavailable UpstreamKind = "upstream_unavailable"
	UpstreamMalformed   UpstreamKind = "upstream_malformed"
)

// UpstreamError describes a failed call to an external collaborator.
type UpstreamError struct {
	Kind       UpstreamKind
	Service    string
	Message    string
	Type       string
	Code       int
	PromptHash string
	Err        error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Service, e.Kind)
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Type != "" {
		fmt.Fprintf(&b, " (type: %s)", e.Type)
	}
	if e.Code != 0 {
		fmt.Fprintf(&b, " (code: %d)", e.Code)
	}
	if e.Err != nil && e.Message == "" {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ParseError is returned when the model's answer cannot be decoded as the contracted JSON array.
// CleanedText keeps the fence-stripped answer for operators.
type ParseError struct {
	CleanedText string
	Err         error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("AI response is not a valid JSON array: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
