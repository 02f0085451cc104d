package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedFormMethod = errors.New("unsupported form method")
	ErrNoHTTPClient          = errors.New("no HTTP client configured")
)

// SearchForm implements prismic.SearchForm. Setters return modified copies.
type SearchForm struct {
	api  *API
	form prismic.Form
	data map[string][]string
}

// NewSearchForm binds form to api, seeded with the form defaults.
func NewSearchForm(api *API, form prismic.Form) *SearchForm {
	return &SearchForm{
		api:  api,
		form: form,
		data: form.DefaultData(),
	}
}

func (f *SearchForm) clone() *SearchForm {
	data := make(map[string][]string, len(f.data))
	for key, values := range f.data {
		data[key] = append([]string(nil), values...)
	}

	return &SearchForm{api: f.api, form: f.form, data: data}
}

// Form implements prismic.SearchForm.Form.
func (f *SearchForm) Form() prismic.Form {
	return f.form
}

// Set implements prismic.SearchForm.Set. Values of fields declared multiple
// accumulate; any other field is replaced.
func (f *SearchForm) Set(field, value string) prismic.SearchForm {
	next := f.clone()

	if definition, ok := f.form.Fields[field]; ok && definition.Multiple {
		next.data[field] = append(next.data[field], value)
	} else {
		next.data[field] = []string{value}
	}

	return next
}

func (f *SearchForm) replace(field, value string) *SearchForm {
	next := f.clone()
	next.data[field] = []string{value}

	return next
}

// Ref implements prismic.SearchForm.Ref.
func (f *SearchForm) Ref(ref string) prismic.SearchForm {
	return f.replace(constants.RefField, ref)
}

// Query implements prismic.SearchForm.Query. It replaces earlier predicates.
func (f *SearchForm) Query(predicates ...prismic.Predicate) prismic.SearchForm {
	return f.replace(constants.QueryField, prismic.Query(predicates...))
}

// PageSize implements prismic.SearchForm.PageSize.
func (f *SearchForm) PageSize(size int) prismic.SearchForm {
	return f.replace("pageSize", strconv.Itoa(size))
}

// Page implements prismic.SearchForm.Page.
func (f *SearchForm) Page(page int) prismic.SearchForm {
	return f.replace("page", strconv.Itoa(page))
}

// Orderings implements prismic.SearchForm.Orderings.
func (f *SearchForm) Orderings(orderings string) prismic.SearchForm {
	return f.replace("orderings", orderings)
}

// Data implements prismic.SearchForm.Data.
func (f *SearchForm) Data() map[string][]string {
	return f.clone().data
}

// Submit implements prismic.SearchForm.Submit.
func (f *SearchForm) Submit(ctx context.Context) (*prismic.SearchResponse, error) {
	if !strings.EqualFold(f.form.Method, http.MethodGet) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormMethod, f.form.Method)
	}

	if f.api == nil || f.api.httpClient == nil {
		return nil, ErrNoHTTPClient
	}

	query := url.Values(f.Data())
	if f.api.accessToken != "" {
		query.Set(constants.AccessTokenParam, f.api.accessToken)
	}

	resp, err := f.api.httpClient.Get(ctx, f.form.Action, query)
	if err != nil {
		return nil, fmt.Errorf("submitting form: %w", err)
	}

	var results prismic.SearchResponse

	err = json.Unmarshal(resp.Body, &results)
	if err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	return &results, nil
}
