package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/fivetwenty-io/prismic-go/internal/http"
	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

func TestRequestURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		token    string
		want     string
	}{
		{name: "no token", endpoint: "https://repo.cdn.prismic.io/api", want: "https://repo.cdn.prismic.io/api"},
		{
			name:     "token",
			endpoint: "https://repo.cdn.prismic.io/api",
			token:    "MC5abc",
			want:     "https://repo.cdn.prismic.io/api?access_token=MC5abc",
		},
		{
			name:     "token is encoded",
			endpoint: "https://repo.cdn.prismic.io/api",
			token:    "a+b/c=",
			want:     "https://repo.cdn.prismic.io/api?access_token=a%2Bb%2Fc%3D",
		},
		{
			name:     "existing query kept",
			endpoint: "https://repo.cdn.prismic.io/api?lang=fr",
			token:    "tok",
			want:     "https://repo.cdn.prismic.io/api?access_token=tok&lang=fr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RequestURL(tt.endpoint, tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		token      string
		wantBody   string
		wantKind   prismic.ErrorKind
		wantMsg    string
		wantURL    string
		wantStatus int
	}{
		{
			name:     "ok",
			status:   http.StatusOK,
			body:     `{"refs": []}`,
			wantBody: `{"refs": []}`,
		},
		{
			name:       "unauthorized without token",
			status:     http.StatusUnauthorized,
			body:       `{"oauth_initiate": "https://repo.prismic.io/auth"}`,
			wantKind:   prismic.KindAuthorizationNeeded,
			wantMsg:    prismic.MessageAuthorizationNeeded,
			wantURL:    "https://repo.prismic.io/auth",
			wantStatus: 401,
		},
		{
			name:       "unauthorized with token",
			status:     http.StatusUnauthorized,
			body:       `{"oauth_initiate": "https://repo.prismic.io/auth"}`,
			token:      "expired",
			wantKind:   prismic.KindInvalidToken,
			wantMsg:    prismic.MessageInvalidToken,
			wantURL:    "https://repo.prismic.io/auth",
			wantStatus: 401,
		},
		{
			name:       "unauthorized without continuation URL",
			status:     http.StatusUnauthorized,
			body:       `{"error": "nope"}`,
			wantKind:   prismic.KindUnexpected,
			wantMsg:    prismic.MessageNoContinuationURL,
			wantStatus: 401,
		},
		{
			name:       "unauthorized with undecodable body",
			status:     http.StatusUnauthorized,
			body:       `<html>denied</html>`,
			token:      "tok",
			wantKind:   prismic.KindUnexpected,
			wantMsg:    prismic.MessageNoContinuationURL,
			wantStatus: 401,
		},
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       `not here`,
			wantKind:   prismic.KindUnexpected,
			wantMsg:    "Got an HTTP error 404 (Not Found)",
			wantStatus: 404,
		},
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			wantKind:   prismic.KindUnexpected,
			wantMsg:    "Got an HTTP error 500 (Internal Server Error)",
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, "/api", request.URL.Path)
				assert.Equal(t, tt.token, request.URL.Query().Get("access_token"))
				writer.WriteHeader(tt.status)
				_, _ = writer.Write([]byte(tt.body))
			}))
			defer server.Close()

			fetcher := NewFetcher(internalhttp.NewClient())

			body, err := fetcher.Fetch(context.Background(), server.URL+"/api", tt.token)
			if tt.wantBody != "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))

				return
			}

			require.Error(t, err)
			assert.Nil(t, body)

			apiErr := &prismic.Error{}
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.wantURL, apiErr.ContinuationURL)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
		})
	}
}

func TestFetcher_NetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	target := server.URL + "/api"
	server.Close()

	_, err := NewFetcher(internalhttp.NewClient()).Fetch(context.Background(), target, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching API document")

	apiErr := &prismic.Error{}
	assert.NotErrorAs(t, err, &apiErr)
}

func TestFetcher_ContextCancelled(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher(internalhttp.NewClient()).Fetch(ctx, repo.endpoint(), "")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), repo.rootRequests.Load())
}
