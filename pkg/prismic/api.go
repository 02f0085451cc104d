package prismic

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// LinkResolver turns a document into the URL the embedding application serves it at.
type LinkResolver func(doc *Document) (string, error)

// SearchForm is a form bound to the API it came from. Setters return the
// form so calls can be chained; every setter works on a copy, so a form taken
// from API.Forms can be reused.
type SearchForm interface {
	// Form returns the underlying template.
	Form() Form
	// Set overrides the value of a field.
	Set(field, value string) SearchForm
	// Ref selects the reference the query runs against.
	Ref(ref string) SearchForm
	// Query sets the predicates of the "q" field.
	Query(predicates ...Predicate) SearchForm
	// PageSize sets the number of results per page.
	PageSize(size int) SearchForm
	// Page selects the page to fetch, starting at 1.
	Page(page int) SearchForm
	// Orderings sets the ordering clause, e.g. "[my.article.date desc]".
	Orderings(orderings string) SearchForm
	// Data returns the field values that would be submitted.
	Data() map[string][]string
	// Submit runs the query.
	Submit(ctx context.Context) (*SearchResponse, error)
}

// API is the caller-facing handle over one decoded root document. It is
// immutable and safe for concurrent use.
type API interface {
	// Data returns the decoded root document.
	Data() *APIData
	// Refs returns references keyed by label.
	Refs() map[string]Ref
	// Ref returns the reference with the given label.
	Ref(label string) (Ref, bool)
	// Master returns the single master reference.
	Master() (Ref, error)
	// Bookmarks maps bookmark names to document ids.
	Bookmarks() map[string]string
	// Types maps document type names to display names.
	Types() map[string]string
	// Tags lists the repository tags.
	Tags() []string
	// Forms returns every form bound to this API.
	Forms() map[string]SearchForm
	// Form returns one bound form.
	Form(name string) (SearchForm, error)
	// Experiments returns the A/B test configuration.
	Experiments() Experiments
	// Experiment returns the current running experiment, or nil.
	Experiment() *Experiment
	// OAuthInitiateEndpoint returns the URL that starts the OAuth flow.
	OAuthInitiateEndpoint() string
	// OAuthTokenEndpoint returns the URL that exchanges OAuth codes for tokens.
	OAuthTokenEndpoint() string
	// AccessToken returns the token the API was fetched with, if any.
	AccessToken() string
	// PreviewSession resolves a preview token to the URL of its main
	// document. It never fails: any error yields defaultURL.
	PreviewSession(ctx context.Context, token string, resolver LinkResolver, defaultURL string) string
	// Close releases transport resources owned by this API.
	Close()
}

// Cache is the contract of the shared root document cache.
type Cache interface {
	// GetOrSet returns the live value under key, or runs producer once per
	// key and caches its result for ttl. Producer errors are not cached.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, producer func(ctx context.Context) ([]byte, error)) ([]byte, error)
}

// Config represents client configuration for bootstrapping an API.
//
// # Caching
//
// Root documents are cached under the fully qualified request URL, including
// the access token, for BootstrapTTL. When Cache is nil the process default
// cache of pkg/prismicclient is used, so every API in the process shares it.
//
// # Timeouts, retries, and proxies
//
// Requests are bounded by a 3s connect timeout, a 3s idle timeout and a 5s
// total timeout. Retries are disabled unless RetryMax is set. Proxy routes
// every request through the given proxy URL; credentials may be embedded in
// the URL user info.
type Config struct {
	// Endpoint: URL of the repository root document, e.g.
	// "https://repo.cdn.prismic.io/api". Required.
	Endpoint string
	// AccessToken: optional token for private repositories. It is sent as
	// the access_token query parameter on the root request and on every
	// form submission.
	AccessToken string
	// Proxy: optional proxy for every request.
	Proxy *url.URL
	// Cache: optional cache shared by APIs. Nil means the process default.
	Cache Cache
	// Logger: optional diagnostic sink. Nil means NoopLogger.
	Logger Logger
	// HTTPClient: optional base client. Its Transport is used as-is; the
	// bounded timeouts and proxy settings above only apply to the client
	// built when this is nil.
	HTTPClient *http.Client
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// RetryMax: maximum number of retries for transient failures (>=500
	// except 501, 429 and connection errors). Zero disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// BootstrapTTL: overrides how long a root document stays cached.
	BootstrapTTL time.Duration
	// Debug: logs every request and response at debug level.
	Debug bool
}
