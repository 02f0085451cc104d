package constants

import "errors"

// Configuration errors.
var (
	ErrNoEndpointConfigured = errors.New("no repository endpoint configured, use --endpoint or 'prismic config set endpoint <url>'")
	ErrUnknownConfigKey     = errors.New("unknown configuration key")
	ErrEmptyToken           = errors.New("access token cannot be empty")
)

// Command errors.
var (
	ErrUnsupportedOutput = errors.New("unsupported output format")
	ErrRefNotFound       = errors.New("reference not found")
	ErrFormNotFound      = errors.New("form not found")
)
