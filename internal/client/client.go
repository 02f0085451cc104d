package client

import (
	"context"
	"time"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
	"github.com/fivetwenty-io/prismic-go/internal/http"
	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *prismic.Config, logger prismic.Logger) []http.Option {
	httpOpts := []http.Option{http.WithLogger(logger)}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Proxy != nil {
		httpOpts = append(httpOpts, http.WithProxy(config.Proxy))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New fetches, through cache, the root document described by config and
// wraps it in an API. Fetch errors are returned unchanged; a document that
// cannot be decoded yields a *prismic.ParseError.
func New(ctx context.Context, config *prismic.Config, cache prismic.Cache) (*API, error) {
	if config == nil {
		return nil, prismic.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, prismic.ErrEndpointRequired
	}

	logger := config.Logger
	if logger == nil {
		logger = prismic.NoopLogger{}
	}

	if cache == nil {
		cache = prismic.NewMemoryCache(constants.DefaultCacheSize)
	}

	ttl := config.BootstrapTTL
	if ttl <= 0 {
		ttl = constants.BootstrapTTL
	}

	requestURL, err := RequestURL(config.Endpoint, config.AccessToken)
	if err != nil {
		return nil, err
	}

	httpClient := http.NewClient(createHTTPClientOptions(config, logger)...)
	fetcher := NewFetcher(httpClient)
	document := http.RedactURL(requestURL)

	data, err := cache.GetOrSet(ctx, requestURL, ttl, func(ctx context.Context) ([]byte, error) {
		start := time.Now()

		body, fetchErr := fetcher.FetchURL(ctx, requestURL, config.AccessToken != "")
		if fetchErr != nil {
			logger.Warn("API document fetch failed", map[string]interface{}{
				"url":   document,
				"error": fetchErr.Error(),
			})

			return nil, fetchErr
		}

		logger.Debug("API document fetched", map[string]interface{}{
			"url":      document,
			"bytes":    len(body),
			"duration": time.Since(start).String(),
		})

		return body, nil
	})
	if err != nil {
		httpClient.Close()

		return nil, err
	}

	apiData, err := ParseAPIData(document, data)
	if err != nil {
		httpClient.Close()
		logger.Error("API document is malformed", map[string]interface{}{
			"url":   document,
			"error": err.Error(),
		})

		return nil, err
	}

	return NewAPI(apiData, config.AccessToken, httpClient, logger), nil
}
