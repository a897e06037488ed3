package httpreader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_ExtractsHTMLText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Robots</title></head><body><p>Warehouse robots.</p><script>x()</script></body></html>`))
	}))
	defer srv.Close()

	text, err := New(Config{}).Read(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Robots\n\nWarehouse robots.", text)
}

func TestRead_PlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("  plain body \n"))
	}))
	defer srv.Close()

	text, err := New(Config{}).Read(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "plain body", text)
}

func TestRead_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/binary":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF"))
		}
	}))
	defer srv.Close()

	r := New(Config{})

	_, err := r.Read(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "status 404")

	_, err = r.Read(context.Background(), srv.URL+"/binary")
	assert.ErrorContains(t, err, "unsupported content type")
}
