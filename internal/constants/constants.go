package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// ConnectTimeout bounds establishing a TCP connection to the repository.
	ConnectTimeout = 3 * time.Second

	// IdleConnTimeout is how long a pooled connection may sit unused.
	IdleConnTimeout = 3 * time.Second

	// RequestTimeout bounds a whole request, including reading the body.
	RequestTimeout = 5 * time.Second

	// TLSHandshakeTimeout bounds the TLS handshake.
	TLSHandshakeTimeout = 3 * time.Second

	// MaxConnsPerHost caps concurrent connections to one repository host.
	MaxConnsPerHost = 64

	// MaxIdleConnsPerHost caps idle pooled connections to one host.
	MaxIdleConnsPerHost = 16
)

// HTTP status codes the fetcher distinguishes.
const (
	// HTTPStatusOK represents a successful HTTP response.
	HTTPStatusOK = 200

	// HTTPStatusUnauthorized represents a missing or rejected access token.
	HTTPStatusUnauthorized = 401
)

// Retry limits.
const (
	// DefaultRetryMax is the default number of retries. Bootstrap fetches
	// are cheap to repeat from the caller, so none are done unless asked.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 100 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 1 * time.Second
)

// Client identification.
const (
	// UserAgent is sent with every request.
	UserAgent = "prismic-go-kit/1.0"

	// AcceptJSON is the Accept header value for every request.
	AcceptJSON = "application/json"
)

// Cache settings.
const (
	// BootstrapTTL is how long a fetched root document stays fresh.
	BootstrapTTL = 5 * time.Second

	// DefaultCacheSize is the default number of entries kept by the memory store.
	DefaultCacheSize = 1000

	// DefaultCleanupInterval is the sweep period for expired memory entries.
	DefaultCleanupInterval = time.Minute

	// DefaultNATSBucket is the JetStream KV bucket used by the NATS store.
	DefaultNATSBucket = "prismic_api"

	// DefaultNATSTimeout bounds NATS connection and KV operations.
	DefaultNATSTimeout = 2 * time.Second
)

// Repository protocol names.
const (
	// EverythingForm is the form that searches every document.
	EverythingForm = "everything"

	// AccessTokenParam is the query parameter that carries the access token.
	AccessTokenParam = "access_token"

	// QueryField is the form field carrying predicates.
	QueryField = "q"

	// RefField is the form field selecting the reference to query.
	RefField = "ref"
)

// Format constants.
const (
	// FormatJSON represents JSON output format.
	FormatJSON = "json"

	// FormatYAML represents YAML output format.
	FormatYAML = "yaml"

	// FormatTable represents table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// CheckMarkSymbol represents a check mark for truthy table cells.
	CheckMarkSymbol = "✓"

	// NotAvailable represents unavailable data.
	NotAvailable = "N/A"

	// MaskedSecret represents a masked secret value.
	MaskedSecret = "***"
)
