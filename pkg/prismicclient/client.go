package prismicclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/fivetwenty-io/prismic-go/internal/client"
	"github.com/fivetwenty-io/prismic-go/internal/constants"
	"github.com/fivetwenty-io/prismic-go/internal/http"
	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

var (
	defaultCacheOnce sync.Once
	defaultCache     *prismic.TTLCache
)

// DefaultCache returns the process-wide root document cache used when a
// Config carries no Cache.
func DefaultCache() *prismic.TTLCache {
	defaultCacheOnce.Do(func() {
		defaultCache = prismic.NewMemoryCache(constants.DefaultCacheSize)
	})

	return defaultCache
}

// New fetches the root document of config.Endpoint and returns an API over it.
func New(ctx context.Context, config *prismic.Config) (prismic.API, error) {
	if config == nil {
		return nil, prismic.ErrConfigRequired
	}

	if strings.TrimSpace(config.Endpoint) == "" {
		return nil, prismic.ErrEndpointRequired
	}

	resolved := *config
	resolved.Endpoint = normalizeEndpoint(config.Endpoint)

	cache := resolved.Cache
	if cache == nil {
		cache = DefaultCache()
	}

	api, err := client.New(ctx, &resolved, cache)
	if err != nil {
		return nil, err
	}

	return api, nil
}

// normalizeEndpoint trims whitespace and a trailing slash and defaults the
// scheme to https.
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// Get bootstraps an API for endpoint, with an optional access token.
func Get(ctx context.Context, endpoint, accessToken string) (prismic.API, error) {
	return New(ctx, &prismic.Config{
		Endpoint:    endpoint,
		AccessToken: accessToken,
	})
}

// NewWithToken is Get with a required access token.
func NewWithToken(ctx context.Context, endpoint, accessToken string) (prismic.API, error) {
	if accessToken == "" {
		return nil, constants.ErrEmptyToken
	}

	return Get(ctx, endpoint, accessToken)
}

// NewWithProxy bootstraps an API whose requests all go through proxyURL.
func NewWithProxy(ctx context.Context, endpoint, accessToken, proxyURL string) (prismic.API, error) {
	proxy, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL: %w", err)
	}

	return New(ctx, &prismic.Config{
		Endpoint:    endpoint,
		AccessToken: accessToken,
		Proxy:       proxy,
	})
}

// Close releases the idle connections of the shared transport.
func Close() {
	http.CloseDefaultTransport()
}
