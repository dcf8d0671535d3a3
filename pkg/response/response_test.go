package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureOmitsEmptyDetails(t *testing.T) {
	w := httptest.NewRecorder()
	Failure(w, http.StatusInternalServerError, "Failed to fetch products", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Failed to fetch products"}`, w.Body.String())
}

func TestFailureWithDetails(t *testing.T) {
	w := httptest.NewRecorder()
	Failure(w, http.StatusInternalServerError, "Failed to add product", "deadline exceeded")

	assert.JSONEq(t, `{"error":"Failed to add product","details":"deadline exceeded"}`, w.Body.String())
}

func TestCreatedEncodesBody(t *testing.T) {
	w := httptest.NewRecorder()
	Created(w, map[string]string{"id": "p1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"p1"}`, w.Body.String())
}

func TestTooManyRequests(t *testing.T) {
	w := httptest.NewRecorder()
	TooManyRequests(w)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too Many Requests"}`, w.Body.String())
}
