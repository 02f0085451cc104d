package prismic

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Ref is a named, immutable snapshot pointer into the repository history.
type Ref struct {
	ID          string     `json:"id"                    yaml:"id"`
	Ref         string     `json:"ref"                   yaml:"ref"`
	Label       string     `json:"label"                 yaml:"label"`
	IsMasterRef bool       `json:"isMasterRef"           yaml:"is_master_ref"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty" yaml:"scheduled_at,omitempty"`
}

// Field describes one form parameter.
type Field struct {
	Type     string  `json:"type"              yaml:"type"`
	Multiple bool    `json:"multiple"          yaml:"multiple"`
	Default  *string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Form is a named, reusable query template.
type Form struct {
	Name    *string          `json:"name,omitempty" yaml:"name,omitempty"`
	Method  string           `json:"method"         yaml:"method"`
	Rel     *string          `json:"rel,omitempty"  yaml:"rel,omitempty"`
	Enctype string           `json:"enctype"        yaml:"enctype"`
	Action  string           `json:"action"         yaml:"action"`
	Fields  map[string]Field `json:"fields"         yaml:"fields"`
}

// DefaultData returns the default value of every field that has one, each
// as a single-element slice. Fields without a default are omitted.
func (f Form) DefaultData() map[string][]string {
	data := make(map[string][]string)

	for name, field := range f.Fields {
		if field.Default != nil {
			data[name] = []string{*field.Default}
		}
	}

	return data
}

// OAuthEndpoints holds the repository's OAuth initiate and token URLs.
type OAuthEndpoints struct {
	Initiate string `json:"oauth_initiate" yaml:"oauth_initiate"`
	Token    string `json:"oauth_token"    yaml:"oauth_token"`
}

// Variation is one arm of an A/B experiment, backed by its own ref.
type Variation struct {
	ID    string `json:"id"    yaml:"id"`
	Ref   string `json:"ref"   yaml:"ref"`
	Label string `json:"label" yaml:"label"`
}

// Experiment is a configured A/B test.
type Experiment struct {
	ID         string      `json:"id"                 yaml:"id"`
	GoogleID   *string     `json:"googleId,omitempty" yaml:"google_id,omitempty"`
	Name       string      `json:"name"               yaml:"name"`
	Variations []Variation `json:"variations"         yaml:"variations"`
}

// Experiments holds the draft and running experiments of a repository.
type Experiments struct {
	Draft   []Experiment `json:"draft"   yaml:"draft"`
	Running []Experiment `json:"running" yaml:"running"`
}

// Current returns the first running experiment, or nil when none runs.
func (e Experiments) Current() *Experiment {
	if len(e.Running) == 0 {
		return nil
	}

	return &e.Running[0]
}

// RefFromCookie resolves an experiment cookie of the form
// "<googleId> <variationIndex>" to the ref of that variation. The cookie may
// be URL-escaped. It returns false when the cookie does not match a running
// experiment variation.
func (e Experiments) RefFromCookie(cookie string) (string, bool) {
	unescaped, err := url.QueryUnescape(strings.TrimSpace(cookie))
	if err != nil {
		return "", false
	}

	parts := strings.Fields(unescaped)
	if len(parts) < 2 {
		return "", false
	}

	index, err := strconv.Atoi(parts[1])
	if err != nil || index < 0 {
		return "", false
	}

	for _, experiment := range e.Running {
		if experiment.GoogleID == nil || *experiment.GoogleID != parts[0] {
			continue
		}

		if index >= len(experiment.Variations) {
			return "", false
		}

		return experiment.Variations[index].Ref, true
	}

	return "", false
}

// APIData is the decoded root descriptor of a repository.
type APIData struct {
	Refs           []Ref             `json:"refs"        yaml:"refs"`
	Bookmarks      map[string]string `json:"bookmarks"   yaml:"bookmarks"`
	Types          map[string]string `json:"types"       yaml:"types"`
	Tags           []string          `json:"tags"        yaml:"tags"`
	Forms          map[string]Form   `json:"forms"       yaml:"forms"`
	OAuthEndpoints OAuthEndpoints    `json:"oauth"       yaml:"oauth"`
	Experiments    Experiments       `json:"experiments" yaml:"experiments"`
}

// Document is a single search result.
type Document struct {
	ID    string          `json:"id"             yaml:"id"`
	UID   *string         `json:"uid,omitempty"  yaml:"uid,omitempty"`
	Type  string          `json:"type"           yaml:"type"`
	Href  string          `json:"href"           yaml:"href"`
	Tags  []string        `json:"tags"           yaml:"tags"`
	Slugs []string        `json:"slugs"          yaml:"slugs"`
	Lang  string          `json:"lang,omitempty" yaml:"lang,omitempty"`
	Data  json.RawMessage `json:"data,omitempty" yaml:"-"`
}

// Slug returns the most recent slug of the document, or "-" when it has none.
func (d Document) Slug() string {
	if len(d.Slugs) == 0 {
		return "-"
	}

	return d.Slugs[0]
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Page             int        `json:"page"               yaml:"page"`
	ResultsPerPage   int        `json:"results_per_page"   yaml:"results_per_page"`
	ResultsSize      int        `json:"results_size"       yaml:"results_size"`
	TotalResultsSize int        `json:"total_results_size" yaml:"total_results_size"`
	TotalPages       int        `json:"total_pages"        yaml:"total_pages"`
	NextPage         *string    `json:"next_page"          yaml:"next_page,omitempty"`
	PrevPage         *string    `json:"prev_page"          yaml:"prev_page,omitempty"`
	Results          []Document `json:"results"            yaml:"results"`
}
