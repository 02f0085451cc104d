package client

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/fivetwenty-io/prismic-go/internal/http"
	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

// API implements prismic.API. Derived views are built once at construction
// since the document never changes; accessors hand out copies.
type API struct {
	data        *prismic.APIData
	accessToken string
	httpClient  *http.Client
	logger      prismic.Logger

	refs      map[string]prismic.Ref
	forms     map[string]prismic.SearchForm
	closeOnce sync.Once
}

// NewAPI wraps a decoded document.
func NewAPI(data *prismic.APIData, accessToken string, httpClient *http.Client, logger prismic.Logger) *API {
	if logger == nil {
		logger = prismic.NoopLogger{}
	}

	api := &API{
		data:        data,
		accessToken: accessToken,
		httpClient:  httpClient,
		logger:      logger,
	}

	api.refs = refsByLabel(data.Refs)

	api.forms = make(map[string]prismic.SearchForm, len(data.Forms))
	for name, form := range data.Forms {
		api.forms[name] = NewSearchForm(api, form)
	}

	return api
}

// refsByLabel keys refs by label. On a label collision the first ref in
// document order wins.
func refsByLabel(refs []prismic.Ref) map[string]prismic.Ref {
	byLabel := make(map[string]prismic.Ref, len(refs))

	for _, ref := range refs {
		if _, seen := byLabel[ref.Label]; !seen {
			byLabel[ref.Label] = ref
		}
	}

	return byLabel
}

// Data implements prismic.API.Data.
func (a *API) Data() *prismic.APIData {
	return a.data
}

// Refs implements prismic.API.Refs.
func (a *API) Refs() map[string]prismic.Ref {
	return maps.Clone(a.refs)
}

// Ref implements prismic.API.Ref.
func (a *API) Ref(label string) (prismic.Ref, bool) {
	ref, ok := a.refs[label]

	return ref, ok
}

// Master implements prismic.API.Master.
func (a *API) Master() (prismic.Ref, error) {
	var (
		master prismic.Ref
		count  int
	)

	for _, ref := range a.data.Refs {
		if ref.IsMasterRef {
			master = ref
			count++
		}
	}

	switch count {
	case 0:
		return prismic.Ref{}, prismic.ErrNoMasterRef
	case 1:
		return master, nil
	default:
		return prismic.Ref{}, fmt.Errorf("%w: %d refs are marked master", prismic.ErrMultipleMasterRefs, count)
	}
}

// Bookmarks implements prismic.API.Bookmarks.
func (a *API) Bookmarks() map[string]string {
	return maps.Clone(a.data.Bookmarks)
}

// Types implements prismic.API.Types.
func (a *API) Types() map[string]string {
	return maps.Clone(a.data.Types)
}

// Tags implements prismic.API.Tags.
func (a *API) Tags() []string {
	return slices.Clone(a.data.Tags)
}

// Forms implements prismic.API.Forms.
func (a *API) Forms() map[string]prismic.SearchForm {
	return maps.Clone(a.forms)
}

// Form implements prismic.API.Form.
func (a *API) Form(name string) (prismic.SearchForm, error) {
	form, ok := a.forms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", prismic.ErrFormNotFound, name)
	}

	return form, nil
}

// Experiments implements prismic.API.Experiments.
func (a *API) Experiments() prismic.Experiments {
	return a.data.Experiments
}

// Experiment implements prismic.API.Experiment.
func (a *API) Experiment() *prismic.Experiment {
	return a.data.Experiments.Current()
}

// OAuthInitiateEndpoint implements prismic.API.OAuthInitiateEndpoint.
func (a *API) OAuthInitiateEndpoint() string {
	return a.data.OAuthEndpoints.Initiate
}

// OAuthTokenEndpoint implements prismic.API.OAuthTokenEndpoint.
func (a *API) OAuthTokenEndpoint() string {
	return a.data.OAuthEndpoints.Token
}

// AccessToken implements prismic.API.AccessToken.
func (a *API) AccessToken() string {
	return a.accessToken
}

// Close implements prismic.API.Close.
func (a *API) Close() {
	a.closeOnce.Do(func() {
		if a.httpClient != nil {
			a.httpClient.Close()
		}
	})
}
