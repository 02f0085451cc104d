package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
	"github.com/fivetwenty-io/prismic-go/internal/http"
	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

// Fetcher retrieves the raw root document of a repository and classifies
// failed responses into prismic.Error variants.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a fetcher over httpClient.
func NewFetcher(httpClient *http.Client) *Fetcher {
	return &Fetcher{httpClient: httpClient}
}

// RequestURL returns endpoint with the access_token parameter appended when
// a token is supplied. It doubles as the cache key.
func RequestURL(endpoint, accessToken string) (string, error) {
	var query url.Values
	if accessToken != "" {
		query = url.Values{constants.AccessTokenParam: []string{accessToken}}
	}

	requestURL, err := http.BuildURL(endpoint, query)
	if err != nil {
		return "", fmt.Errorf("building request URL: %w", err)
	}

	return requestURL, nil
}

// Fetch retrieves the root document of endpoint.
func (f *Fetcher) Fetch(ctx context.Context, endpoint, accessToken string) ([]byte, error) {
	requestURL, err := RequestURL(endpoint, accessToken)
	if err != nil {
		return nil, err
	}

	return f.FetchURL(ctx, requestURL, accessToken != "")
}

// FetchURL retrieves an already built request URL. tokenSupplied selects
// between InvalidToken and AuthorizationNeeded on a 401.
func (f *Fetcher) FetchURL(ctx context.Context, requestURL string, tokenSupplied bool) ([]byte, error) {
	resp, err := f.httpClient.Get(ctx, requestURL, nil)
	if err != nil {
		statusErr := &http.StatusError{}
		if !errors.As(err, &statusErr) || resp == nil {
			return nil, fmt.Errorf("fetching API document: %w", err)
		}
	}

	return classify(resp, tokenSupplied)
}

type authorizationBody struct {
	OAuthInitiate *string `json:"oauth_initiate"`
}

func classify(resp *http.Response, tokenSupplied bool) ([]byte, error) {
	switch resp.StatusCode {
	case constants.HTTPStatusOK:
		return resp.Body, nil

	case constants.HTTPStatusUnauthorized:
		var body authorizationBody

		// An undecodable body is the same as one without a URL.
		_ = json.Unmarshal(resp.Body, &body)

		if body.OAuthInitiate == nil || *body.OAuthInitiate == "" {
			return nil, prismic.NewUnexpectedError(resp.StatusCode, prismic.MessageNoContinuationURL)
		}

		if tokenSupplied {
			return nil, prismic.NewInvalidToken(prismic.MessageInvalidToken, *body.OAuthInitiate)
		}

		return nil, prismic.NewAuthorizationNeeded(prismic.MessageAuthorizationNeeded, *body.OAuthInitiate)

	default:
		return nil, prismic.NewUnexpectedError(resp.StatusCode,
			fmt.Sprintf("Got an HTTP error %d (%s)", resp.StatusCode, resp.StatusText))
	}
}
