package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	internalhttp "github.com/fivetwenty-io/prismic-go/internal/http"
	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

// rootDocument renders a root document whose forms point at baseURL.
func rootDocument(baseURL string) string {
	return fmt.Sprintf(`{
  "refs": [
    {"id": "master", "ref": "UlfoxUnM0wkXYXbX", "label": "Master", "isMasterRef": true},
    {"id": "release-1", "ref": "UlfoxUnM0wkXYXbY", "label": "Summer", "scheduledAt": 1700000000000}
  ],
  "bookmarks": {"about": "Ue0EDd_mqb8Dhk3j"},
  "types": {"article": "Article", "page": "Page"},
  "tags": ["news", "docs"],
  "forms": {
    "everything": {
      "method": "GET",
      "enctype": "application/x-www-form-urlencoded",
      "action": "%[1]s/api/documents/search",
      "fields": {
        "ref": {"type": "String", "multiple": false},
        "q": {"type": "String", "multiple": true},
        "page": {"type": "Integer", "multiple": false, "default": "1"},
        "pageSize": {"type": "Integer", "multiple": false, "default": "20"}
      }
    },
    "articles": {
      "name": "Articles",
      "method": "GET",
      "rel": "collection",
      "enctype": "application/x-www-form-urlencoded",
      "action": "%[1]s/api/documents/search",
      "fields": {
        "ref": {"type": "String", "multiple": false},
        "q": {"type": "String", "multiple": true, "default": "[[:d = any(document.type, [\"article\"])]]"}
      }
    }
  },
  "oauth_initiate": "%[1]s/auth",
  "oauth_token": "%[1]s/auth/token",
  "experiments": {
    "draft": [],
    "running": [
      {"id": "exp1", "googleId": "_UQtin7EQAOH5M34RQq6Dg", "name": "Homepage",
       "variations": [{"id": "v1", "ref": "VDUBBawGAKoGelsX", "label": "Base"}]}
    ]
  }
}`, baseURL)
}

// testRepository is an httptest server that serves a root document, a
// search endpoint and preview tokens.
type testRepository struct {
	*httptest.Server

	rootRequests   atomic.Int32
	searchRequests atomic.Int32

	mu          sync.Mutex
	rootStatus  int
	rootBody    string
	searchBody  string
	previews    map[string]string
	lastSearch  map[string][]string
	requireAuth string
}

func newTestRepository(t *testing.T) *testRepository {
	t.Helper()

	repo := &testRepository{
		rootStatus: http.StatusOK,
		previews:   map[string]string{},
		searchBody: `{"page": 1, "results_per_page": 20, "results_size": 0, "total_results_size": 0, "total_pages": 0, "results": []}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api", repo.handleRoot)
	mux.HandleFunc("/api/documents/search", repo.handleSearch)
	mux.HandleFunc("/previews/", repo.handlePreview)

	repo.Server = httptest.NewServer(mux)
	repo.rootBody = rootDocument(repo.URL)
	t.Cleanup(repo.Close)

	return repo
}

func (r *testRepository) endpoint() string {
	return r.URL + "/api"
}

func (r *testRepository) setRoot(status int, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rootStatus = status
	r.rootBody = body
}

func (r *testRepository) setSearch(body string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.searchBody = body
}

// addPreview registers a preview token URL returning body and returns it.
func (r *testRepository) addPreview(name, body string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.previews[name] = body

	return r.URL + "/previews/" + name
}

func (r *testRepository) searchQuery() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lastSearch
}

func (r *testRepository) handleRoot(writer http.ResponseWriter, request *http.Request) {
	r.rootRequests.Add(1)

	r.mu.Lock()
	status, body, token := r.rootStatus, r.rootBody, r.requireAuth
	r.mu.Unlock()

	if token != "" && request.URL.Query().Get("access_token") != token {
		writer.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(writer).Encode(map[string]string{"oauth_initiate": r.URL + "/auth"})

		return
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_, _ = writer.Write([]byte(body))
}

func (r *testRepository) handleSearch(writer http.ResponseWriter, request *http.Request) {
	r.searchRequests.Add(1)

	r.mu.Lock()
	r.lastSearch = request.URL.Query()
	body := r.searchBody
	r.mu.Unlock()

	writer.Header().Set("Content-Type", "application/json")
	_, _ = writer.Write([]byte(body))
}

func (r *testRepository) handlePreview(writer http.ResponseWriter, request *http.Request) {
	name := strings.TrimPrefix(request.URL.Path, "/previews/")

	r.mu.Lock()
	body, ok := r.previews[name]
	r.mu.Unlock()

	if !ok {
		writer.WriteHeader(http.StatusNotFound)

		return
	}

	_, _ = writer.Write([]byte(body))
}

// newTestAPI builds an API over the repository's root document.
func newTestAPI(t *testing.T, repo *testRepository, accessToken string, logger prismic.Logger) *API {
	t.Helper()

	data, err := ParseAPIData(repo.endpoint(), []byte(rootDocument(repo.URL)))
	require.NoError(t, err)

	api := NewAPI(data, accessToken, internalhttp.NewClient(), logger)
	t.Cleanup(api.Close)

	return api
}

// recordingLogger captures log calls.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

func (l *recordingLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *recordingLogger) byLevel(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var entries []logEntry

	for _, entry := range l.entries {
		if entry.level == level {
			entries = append(entries, entry)
		}
	}

	return entries
}

// requireToken makes the root endpoint answer 401 unless token is supplied.
func (r *testRepository) requireToken(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requireAuth = token
}
