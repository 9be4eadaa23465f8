package imdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownloadExport(t *testing.T) {
	body := "Const,Your Rating\ntt0111161,10\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/csv")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientOptions{})
	require.NoError(t, err)

	got, err := client.DownloadExport(context.Background(), srv.URL+"/export.csv")
	require.NoError(t, err)
	require.Equal(t, body, string(got))
}

func TestDownloadExportNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "expired", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientOptions{})
	require.NoError(t, err)

	_, err = client.DownloadExport(context.Background(), srv.URL+"/export.csv")
	require.ErrorIs(t, err, ErrTransport)
	require.EqualValues(t, 1, calls.Load())
}
