package commands

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const testRootDocument = `{
  "refs": [
    {"id": "master", "ref": "UlfoxUnM0wkXYXbX", "label": "Master", "isMasterRef": true},
    {"id": "summer", "ref": "UlfoxUnM0wkXYXbY", "label": "Summer", "scheduledAt": 1700000000000}
  ],
  "bookmarks": {"about": "Ue0EDd_mqb8Dhk3j"},
  "types": {"article": "Article"},
  "tags": ["news"],
  "forms": {
    "everything": {
      "method": "GET",
      "enctype": "application/x-www-form-urlencoded",
      "action": "%[1]s/api/documents/search",
      "fields": {"ref": {"type": "String"}, "q": {"type": "String", "multiple": true}}
    }
  },
  "oauth_initiate": "%[1]s/auth",
  "oauth_token": "%[1]s/auth/token",
  "experiments": {"draft": [], "running": [
    {"id": "exp1", "googleId": "g1", "name": "Homepage", "variations": [{"id": "v1", "ref": "VR", "label": "Base"}]}
  ]}
}`

const testSearchResults = `{"page": 1, "results_per_page": 20, "results_size": 1, "total_results_size": 1,
  "total_pages": 1, "results": [{"id": "WKxlPCUAAJZ10P4H", "uid": "hello", "type": "article",
  "href": "h", "tags": ["news"], "slugs": ["hello-world"]}]}`

// newTestRepository serves a root document, a search endpoint and one
// preview token. searches receives the query of every search request.
func newTestRepository(t *testing.T) (*httptest.Server, chan map[string][]string) {
	t.Helper()

	searches := make(chan map[string][]string, 10)

	var server *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Query().Get("access_token") == "revoked" {
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = fmt.Fprintf(writer, `{"oauth_initiate": "%s/auth"}`, server.URL)

			return
		}

		_, _ = fmt.Fprintf(writer, testRootDocument, server.URL)
	})
	mux.HandleFunc("/api/documents/search", func(writer http.ResponseWriter, request *http.Request) {
		searches <- request.URL.Query()

		_, _ = writer.Write([]byte(testSearchResults))
	})
	mux.HandleFunc("/previews/session", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"mainDocument": "WKxlPCUAAJZ10P4H"}`))
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server, searches
}

// useViper resets the global viper state around a test.
func useViper(t *testing.T, values map[string]interface{}) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("cache", "none")

	for key, value := range values {
		viper.Set(key, value)
	}
}

// runCommand executes cmd with args and returns what it wrote.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func requireSearch(t *testing.T, searches chan map[string][]string) map[string][]string {
	t.Helper()

	select {
	case query := <-searches:
		return query
	default:
		require.FailNow(t, "no search request received")

		return nil
	}
}
