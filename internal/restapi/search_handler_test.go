package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchHandler(t *testing.T) {
	server := serveAPI(t, createTestApi(t))

	tests := []struct {
		name      string
		query     string
		wantNames []string
	}{
		{"stop prefix", "q=Biry", []string{"Biryulyovo Tovarnaya", "Biryulyovo Zapadnoye"}},
		{"word prefix", "q=Zapad", []string{"Biryulyovo Zapadnoye"}},
		{"bus prefix", "q=63", []string{"635"}},
		{"limit", "q=Biry&limit=1", []string{"Biryulyovo Tovarnaya"}},
		{"no hits", "q=Tram", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := getJSON(t, server.URL+"/api/search?"+tt.query+"&key="+testAPIKey)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			results := body["results"].([]any)
			if tt.wantNames == nil {
				assert.Empty(t, results)
				return
			}
			assert.ElementsMatch(t, tt.wantNames, collectStrings(t, results, "name"))
		})
	}
}

func TestSearchHandlerValidation(t *testing.T) {
	server := serveAPI(t, createTestApi(t))

	for _, query := range []string{"", "q=+", "q=Biry&limit=0", "q=Biry&limit=x"} {
		t.Run(query, func(t *testing.T) {
			resp, _ := getJSON(t, server.URL+"/api/search?"+query+"&key="+testAPIKey)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}
