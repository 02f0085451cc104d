package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
	"github.com/fivetwenty-io/prismic-go/pkg/prismicclient"
)

// newLogger builds the diagnostic logger for a command run.
func newLogger() prismic.Logger {
	level := hclog.Info
	if viper.GetBool("verbose") {
		level = hclog.Debug
	}

	return prismic.NewHCLogger(hclog.New(&hclog.LoggerOptions{
		Name:   "prismic",
		Level:  level,
		Output: os.Stderr,
	}))
}

// cacheConfigFromViper maps the cache flags to a cache configuration.
func cacheConfigFromViper(logger prismic.Logger) *prismic.CacheConfig {
	config := prismic.DefaultCacheConfig()
	config.Logger = logger

	cacheType := strings.ToLower(viper.GetString("cache"))
	if cacheType != "" {
		config.Type = prismic.CacheType(cacheType)
	}

	if config.Type == prismic.CacheTypeNATS || config.Type == prismic.CacheTypeTiered {
		config.NATS = &prismic.NATSKVConfig{URL: viper.GetString("nats_url")}
	}

	return config
}

// buildConfig assembles the library configuration from flags, environment
// and the config file.
func buildConfig(logger prismic.Logger) (*prismic.Config, error) {
	endpoint := viper.GetString("endpoint")
	if endpoint == "" {
		return nil, constants.ErrNoEndpointConfigured
	}

	config := &prismic.Config{
		Endpoint:    endpoint,
		AccessToken: viper.GetString("token"),
		Logger:      logger,
		RetryMax:    viper.GetInt("retries"),
		Debug:       viper.GetBool("verbose"),
	}

	if rawProxy := viper.GetString("proxy"); rawProxy != "" {
		proxy, err := url.Parse(rawProxy)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy URL: %w", err)
		}

		config.Proxy = proxy
	}

	return config, nil
}

type closer interface {
	Close()
}

// createAPI bootstraps the API of the configured repository. The returned
// release function closes the API and the cache store.
func createAPI(ctx context.Context) (prismic.API, func(), error) {
	logger := newLogger()

	config, err := buildConfig(logger)
	if err != nil {
		return nil, nil, err
	}

	cache, err := prismic.NewCacheFromConfig(cacheConfigFromViper(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("creating cache: %w", err)
	}

	release := func() {
		if store, ok := cache.Store().(closer); ok {
			store.Close()
		}
	}

	config.Cache = cache

	api, err := prismicclient.New(ctx, config)
	if err != nil {
		release()

		return nil, nil, err
	}

	return api, func() {
		api.Close()
		release()
	}, nil
}

// DescribeError renders err for the terminal, adding the OAuth continuation
// URL to authorization failures.
func DescribeError(err error) string {
	continuationURL, ok := prismic.ContinuationURL(err)
	if !ok {
		return "Error: " + err.Error()
	}

	return fmt.Sprintf("Error: %v\nAuthorize at: %s", err, continuationURL)
}
