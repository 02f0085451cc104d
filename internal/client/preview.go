package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

// Static errors for err113 compliance.
var (
	ErrNoLinkResolver = errors.New("no link resolver provided")
	ErrResolverPanic  = errors.New("link resolver panicked")
)

type previewSession struct {
	MainDocument *string `json:"mainDocument"`
}

// PreviewSession implements prismic.API.PreviewSession.
func (a *API) PreviewSession(ctx context.Context, token string, resolver prismic.LinkResolver, defaultURL string) string {
	target, err := a.resolvePreview(ctx, token, resolver)
	if err != nil {
		a.logger.Warn("preview session unresolved, using default URL", map[string]interface{}{
			"default_url": defaultURL,
			"error":       err.Error(),
		})

		return defaultURL
	}

	return target
}

func (a *API) resolvePreview(ctx context.Context, token string, resolver prismic.LinkResolver) (string, error) {
	if resolver == nil {
		return "", ErrNoLinkResolver
	}

	if a.httpClient == nil {
		return "", ErrNoHTTPClient
	}

	resp, err := a.httpClient.Get(ctx, token, nil)
	if err != nil {
		return "", fmt.Errorf("fetching preview token: %w", err)
	}

	var session previewSession

	err = json.Unmarshal(resp.Body, &session)
	if err != nil {
		return "", fmt.Errorf("parsing preview token: %w", err)
	}

	if session.MainDocument == nil || *session.MainDocument == "" {
		return "", prismic.ErrNoMainDocument
	}

	form, err := a.Form(constants.EverythingForm)
	if err != nil {
		return "", err
	}

	results, err := form.
		Query(prismic.At("document.id", *session.MainDocument)).
		Ref(token).
		Submit(ctx)
	if err != nil {
		return "", err
	}

	if len(results.Results) == 0 {
		return "", fmt.Errorf("%w: %s", prismic.ErrNoResults, *session.MainDocument)
	}

	return resolve(resolver, &results.Results[0])
}

func resolve(resolver prismic.LinkResolver, doc *prismic.Document) (target string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: %v", ErrResolverPanic, recovered)
		}
	}()

	target, err = resolver(doc)
	if err != nil {
		return "", fmt.Errorf("resolving document %s: %w", doc.ID, err)
	}

	return target, nil
}
