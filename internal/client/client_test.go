package client

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

func TestNew(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	logger := &recordingLogger{}

	api, err := New(context.Background(), &prismic.Config{Endpoint: repo.endpoint(), Logger: logger}, prismic.NewMemoryCache(10))
	require.NoError(t, err)
	t.Cleanup(api.Close)

	master, err := api.Master()
	require.NoError(t, err)
	assert.Equal(t, "UlfoxUnM0wkXYXbX", master.Ref)

	debug := logger.byLevel("debug")
	require.Len(t, debug, 1)
	assert.Equal(t, "API document fetched", debug[0].msg)
	assert.Equal(t, repo.endpoint(), debug[0].fields["url"])
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), nil, nil)
	require.ErrorIs(t, err, prismic.ErrConfigRequired)

	_, err = New(context.Background(), &prismic.Config{}, nil)
	require.ErrorIs(t, err, prismic.ErrEndpointRequired)
}

func TestNew_UsesCache(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	cache := prismic.NewMemoryCache(10)
	config := &prismic.Config{Endpoint: repo.endpoint()}

	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			api, err := New(context.Background(), config, cache)
			assert.NoError(t, err)

			if api != nil {
				api.Close()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), repo.rootRequests.Load())
}

func TestNew_CacheKeyIncludesToken(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	cache := prismic.NewMemoryCache(10)

	first, err := New(context.Background(), &prismic.Config{Endpoint: repo.endpoint()}, cache)
	require.NoError(t, err)
	t.Cleanup(first.Close)

	second, err := New(context.Background(), &prismic.Config{Endpoint: repo.endpoint(), AccessToken: "tok"}, cache)
	require.NoError(t, err)
	t.Cleanup(second.Close)

	assert.Equal(t, int32(2), repo.rootRequests.Load())
	assert.Empty(t, first.AccessToken())
	assert.Equal(t, "tok", second.AccessToken())
}

func TestNew_TTL(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	now := time.Now()

	var mu sync.Mutex

	cache := prismic.NewMemoryCache(10, prismic.WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		return now
	}))
	config := &prismic.Config{Endpoint: repo.endpoint(), BootstrapTTL: time.Minute}

	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()

		now = now.Add(d)
	}

	for _, step := range []time.Duration{0, 30 * time.Second, 31 * time.Second} {
		advance(step)

		api, err := New(context.Background(), config, cache)
		require.NoError(t, err)
		api.Close()
	}

	assert.Equal(t, int32(2), repo.rootRequests.Load())
}

func TestNew_FailuresAreNotCached(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	repo.requireToken("good")

	logger := &recordingLogger{}
	cache := prismic.NewMemoryCache(10)

	_, err := New(context.Background(), &prismic.Config{Endpoint: repo.endpoint(), Logger: logger}, cache)
	require.Error(t, err)
	assert.True(t, prismic.IsAuthorizationNeeded(err))

	url, ok := prismic.ContinuationURL(err)
	assert.True(t, ok)
	assert.Equal(t, repo.URL+"/auth", url)

	_, err = New(context.Background(), &prismic.Config{Endpoint: repo.endpoint(), AccessToken: "bad"}, cache)
	assert.True(t, prismic.IsInvalidToken(err))

	_, err = New(context.Background(), &prismic.Config{Endpoint: repo.endpoint(), Logger: logger}, cache)
	require.Error(t, err)

	assert.Equal(t, int32(3), repo.rootRequests.Load())

	warnings := logger.byLevel("warn")
	require.Len(t, warnings, 2)
	assert.Equal(t, "API document fetch failed", warnings[0].msg)

	api, err := New(context.Background(), &prismic.Config{Endpoint: repo.endpoint(), AccessToken: "good"}, cache)
	require.NoError(t, err)
	t.Cleanup(api.Close)
	assert.Equal(t, "good", api.AccessToken())
}

func TestNew_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	repo.setRoot(http.StatusBadGateway, "upstream down")

	_, err := New(context.Background(), &prismic.Config{Endpoint: repo.endpoint()}, prismic.NewMemoryCache(10))
	require.Error(t, err)
	assert.True(t, prismic.IsUnexpected(err))
	assert.Equal(t, "Got an HTTP error 502 (Bad Gateway)", err.Error())
}

func TestNew_MalformedDocument(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	repo.setRoot(http.StatusOK, `{"refs": []}`)

	logger := &recordingLogger{}
	cache := prismic.NewMemoryCache(10)
	config := &prismic.Config{Endpoint: repo.endpoint(), AccessToken: "secret", Logger: logger}

	_, err := New(context.Background(), config, cache)
	require.Error(t, err)
	assert.True(t, prismic.IsParseError(err))
	assert.NotContains(t, err.Error(), "secret")

	errorsLogged := logger.byLevel("error")
	require.Len(t, errorsLogged, 1)
	assert.Equal(t, "API document is malformed", errorsLogged[0].msg)

	// The raw document stays cached, so the next call fails without a request.
	_, err = New(context.Background(), config, cache)
	assert.True(t, prismic.IsParseError(err))
	assert.Equal(t, int32(1), repo.rootRequests.Load())
}

func TestNew_Retries(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	repo.setRoot(http.StatusServiceUnavailable, "")

	config := &prismic.Config{
		Endpoint:     repo.endpoint(),
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	}

	_, err := New(context.Background(), config, prismic.NewMemoryCache(10))
	require.Error(t, err)
	assert.Equal(t, int32(3), repo.rootRequests.Load())
}

func TestCreateHTTPClientOptions(t *testing.T) {
	t.Parallel()

	config := &prismic.Config{Endpoint: "https://repo/api"}
	assert.Len(t, createHTTPClientOptions(config, prismic.NoopLogger{}), 1)

	config.Debug = true
	config.UserAgent = "site/1.0"
	config.RetryMax = 3
	config.HTTPClient = &http.Client{}
	assert.Len(t, createHTTPClientOptions(config, prismic.NoopLogger{}), 5)
}
