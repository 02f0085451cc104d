package prismicclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://repo.cdn.prismic.io/api":  "https://repo.cdn.prismic.io/api",
		"https://repo.cdn.prismic.io/api/": "https://repo.cdn.prismic.io/api",
		"  http://localhost:3000/api  ":    "http://localhost:3000/api",
		"repo.cdn.prismic.io/api/v2":       "https://repo.cdn.prismic.io/api/v2",
	}

	for input, want := range tests {
		assert.Equal(t, want, normalizeEndpoint(input), input)
	}
}
