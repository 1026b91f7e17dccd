package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfig            = errors.New("configuration error")
	ErrTemplateRender    = errors.New("template render error")
	ErrNotFound          = errors.New("endpoint not found")
	ErrServerFailure     = errors.New("endpoint failure")
	ErrRedirectUnhandled = errors.New("redirect not followed")
)

// ConfigError is returned when an operation cannot be resolved from the
// client configuration (unknown operation prefix, malformed schema, version gate).
type ConfigError struct {
	Op     string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error for %q: %s", e.Op, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// TemplateRenderError is returned in strict mode when a schema template
// references variables that were not supplied.
type TemplateRenderError struct {
	Operation string
	Template  string
	Missing   []string
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf(
		"cannot render template %q for %s: missing variables [%s]",
		e.Template, e.Operation, strings.Join(e.Missing, ", "),
	)
}

func (e *TemplateRenderError) Is(target error) bool {
	return target == ErrTemplateRender
}

// FailureKind classifies a non-success outcome.
type FailureKind int

const (
	FailureServer FailureKind = iota
	FailureNotFound
	FailureRedirect
)

func (k FailureKind) String() string {
	switch k {
	case FailureNotFound:
		return "not_found"
	case FailureRedirect:
		return "redirect"
	default:
		return "failure"
	}
}

// EndpointFailure represents an unsuccessful call to a remote endpoint.
type EndpointFailure struct {
	Method     Method
	URL        string
	StatusCode int
	Body       string
	Kind       FailureKind
	// Err is the transport error when no response was received.
	Err error
}

// Error implements the error interface.
func (e *EndpointFailure) Error() string {
	return fmt.Sprintf(
		"Error in calling %s on the endpoint: %s, response_code: %d",
		strings.ToUpper(string(e.Method)), e.URL, e.StatusCode,
	)
}

func (e *EndpointFailure) Unwrap() error {
	return e.Err
}

func (e *EndpointFailure) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == FailureNotFound
	case ErrServerFailure:
		return e.Kind == FailureServer
	case ErrRedirectUnhandled:
		return e.Kind == FailureRedirect
	}
	return false
}

func IsEndpointFailure(err error) bool {
	var failure *EndpointFailure
	return errors.As(err, &failure)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IgnoreStatusCodes returns nil when err is an EndpointFailure with one of the given codes.
func IgnoreStatusCodes(err error, codes ...int) error {
	if ExpectStatusCodes(err, codes...) {
		return nil
	}
	return err
}

// ExpectStatusCodes reports whether err is an EndpointFailure with one of the given codes.
func ExpectStatusCodes(err error, codes ...int) bool {
	var failure *EndpointFailure
	if !errors.As(err, &failure) {
		return false
	}
	for _, code := range codes {
		if failure.StatusCode == code {
			return true
		}
	}
	return false
}
