package http

import (
	"context"
	"encoding/json"
	"io"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livraria-escolar/catalog/pkg/reqid"
)

func TestPostJSONAndDecode(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, gohttp.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-9", r.Header.Get(reqid.Header))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		w.WriteHeader(gohttp.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["name"]})
	}))
	defer srv.Close()

	ctx := reqid.WithValue(context.Background(), "req-9")
	resp, err := Post(srv.URL).WithContext(ctx).Body(map[string]string{"name": "Atlas"}).Send()
	require.NoError(t, err)
	require.True(t, resp.OK())

	var out map[string]string
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, "Atlas", out["echo"])
}

func TestSendAttemptsOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(gohttp.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to add product"}`))
	}))
	defer srv.Close()

	resp, err := Post(srv.URL).Body("x").Send()
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Error(t, resp.Throw())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFileSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		_, _ = w.Write([]byte(hdr.Filename + ":" + string(data)))
	}))
	defer srv.Close()

	resp, err := Post(srv.URL).File("file", "capa.jpg", []byte("img")).Send()
	require.NoError(t, err)
	assert.Equal(t, "capa.jpg:img", resp.Text())
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(_ gohttp.ResponseWriter, r *gohttp.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := Get(srv.URL).Timeout(20 * time.Millisecond).Send()
	assert.Error(t, err)
}
