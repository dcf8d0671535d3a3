package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRoutesAndNames(t *testing.T) {
	r := New()
	tagged := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Group", "api")
			next.ServeHTTP(w, req)
		})
	}

	api := r.Group("/api/", tagged)
	api.Put("/products/{id}", "products.update", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(chi.URLParam(req, "id")))
	})
	api.Get("products", "products.index", func(w http.ResponseWriter, _ *http.Request) {})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/products/p-1", nil))
	assert.Equal(t, "p-1", rec.Body.String())
	assert.Equal(t, "api", rec.Header().Get("X-Group"))

	url, err := r.URL("products.update", map[string]string{"id": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/abc", url)

	_, err = r.URL("products.update", nil)
	assert.Error(t, err)
	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesAreSorted(t *testing.T) {
	r := New()
	noop := func(http.ResponseWriter, *http.Request) {}
	r.Post("/api/products", "products.store", noop)
	r.Get("/api/products", "products.index", noop)
	r.Get("/healthz", "", noop)

	got := r.Routes()
	require.Len(t, got, 3)
	assert.Equal(t, RouteInfo{Method: http.MethodGet, Path: "/api/products", Name: "products.index"}, got[0])
	assert.Equal(t, RouteInfo{Method: http.MethodPost, Path: "/api/products", Name: "products.store"}, got[1])
	assert.Equal(t, "/healthz", got[2].Path)
}
