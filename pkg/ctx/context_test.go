package ctx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "github.com/livraria-escolar/catalog/pkg/ctx"
)

func TestWrapAndJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	var written int
	appctx.Wrap(func(c *appctx.Context) {
		c.JSON(http.StatusOK, []string{})
		written = c.WrittenStatus()
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, written)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestFailWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	appctx.Wrap(func(c *appctx.Context) {
		c.Fail(http.StatusInternalServerError, "Failed to add product", "boom")
	})(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to add product","details":"boom"}`, rec.Body.String())
}

func TestParamQueryAndDecode(t *testing.T) {
	r := chi.NewRouter()
	r.Put("/products/{id}", appctx.Wrap(func(c *appctx.Context) {
		var body struct {
			Name string `json:"name"`
		}
		require.NoError(t, c.Decode(&body))
		c.JSON(http.StatusOK, map[string]string{
			"id":   c.Param("id"),
			"lang": c.Query("lang"),
			"name": body.Name,
		})
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/p1?lang=%20en%20", strings.NewReader(`{"name":"Atlas"}`))
	r.ServeHTTP(rec, req)

	assert.JSONEq(t, `{"id":"p1","lang":"en","name":"Atlas"}`, rec.Body.String())
}
