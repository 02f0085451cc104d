package prismic

import (
	"errors"
	"fmt"
)

// ErrorKind tags the variant of an Error.
type ErrorKind int

const (
	// KindUnexpected is any non-2xx response, or a 401 without a continuation URL.
	KindUnexpected ErrorKind = iota

	// KindAuthorizationNeeded means the repository is private and no access token was supplied.
	KindAuthorizationNeeded

	// KindInvalidToken means the supplied access token was rejected or has expired.
	KindInvalidToken
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindAuthorizationNeeded:
		return "authorization_needed"
	case KindInvalidToken:
		return "invalid_token"
	default:
		return "unexpected"
	}
}

// Messages carried by the authorization variants.
const (
	MessageAuthorizationNeeded = "You need to provide an access token to access this repository"
	MessageInvalidToken        = "The provided access token is either invalid or expired"
	MessageNoContinuationURL   = "Authorization error, but no URL was provided"
)

// Error is returned when the repository rejects the root document request.
// Callers branch on Kind; the authorization variants carry a ContinuationURL
// that starts the OAuth flow.
type Error struct {
	Kind            ErrorKind `json:"kind"                       yaml:"kind"`
	Message         string    `json:"message"                    yaml:"message"`
	ContinuationURL string    `json:"continuation_url,omitempty" yaml:"continuation_url,omitempty"`
	StatusCode      int       `json:"status_code,omitempty"      yaml:"status_code,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ContinuationURL != "" {
		return fmt.Sprintf("%s (continue at %s)", e.Message, e.ContinuationURL)
	}

	return e.Message
}

// NewAuthorizationNeeded returns an error for a private repository accessed without a token.
func NewAuthorizationNeeded(message, continuationURL string) *Error {
	return &Error{Kind: KindAuthorizationNeeded, Message: message, ContinuationURL: continuationURL, StatusCode: 401}
}

// NewInvalidToken returns an error for a rejected or expired access token.
func NewInvalidToken(message, continuationURL string) *Error {
	return &Error{Kind: KindInvalidToken, Message: message, ContinuationURL: continuationURL, StatusCode: 401}
}

// NewUnexpectedError returns an error for any other failed response.
func NewUnexpectedError(statusCode int, message string) *Error {
	return &Error{Kind: KindUnexpected, Message: message, StatusCode: statusCode}
}

// ParseError is returned when the root descriptor cannot be decoded. It
// indicates a protocol or version mismatch and is not recoverable.
type ParseError struct {
	Document string
	Err      error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed API document %s: %v", e.Document, e.Err)
}

// Unwrap returns the underlying decoding error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Static errors for err113 compliance.
var (
	ErrNoMasterRef        = errors.New("no master reference found")
	ErrMultipleMasterRefs = errors.New("more than one master reference found")
	ErrFormNotFound       = errors.New("form not found")
	ErrNoResults          = errors.New("query returned no documents")
	ErrNoMainDocument     = errors.New("preview token has no main document")
	ErrEndpointRequired   = errors.New("repository endpoint is required")
	ErrConfigRequired     = errors.New("config is required")
	ErrKeyNotFound        = errors.New("key not found")
	ErrEntryExpired       = errors.New("entry expired")
	ErrNATSConfigRequired = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCache   = errors.New("unsupported cache type")
	ErrCacheDisabled      = errors.New("cache disabled")
	ErrNotFoundInAnyStore = errors.New("key not found in any store")
)

func kindOf(err error) (ErrorKind, bool) {
	apiErr := &Error{}
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}

	return 0, false
}

// IsAuthorizationNeeded reports whether err means an access token is required.
func IsAuthorizationNeeded(err error) bool {
	kind, ok := kindOf(err)

	return ok && kind == KindAuthorizationNeeded
}

// IsInvalidToken reports whether err means the access token was rejected.
func IsInvalidToken(err error) bool {
	kind, ok := kindOf(err)

	return ok && kind == KindInvalidToken
}

// IsUnexpected reports whether err is an unexpected repository response.
func IsUnexpected(err error) bool {
	kind, ok := kindOf(err)

	return ok && kind == KindUnexpected
}

// IsParseError reports whether err is a root document decoding failure.
func IsParseError(err error) bool {
	parseErr := &ParseError{}

	return errors.As(err, &parseErr)
}

// ContinuationURL returns the OAuth continuation URL carried by err, if any.
func ContinuationURL(err error) (string, bool) {
	apiErr := &Error{}
	if errors.As(err, &apiErr) && apiErr.ContinuationURL != "" {
		return apiErr.ContinuationURL, true
	}

	return "", false
}
