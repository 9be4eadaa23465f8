package imdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestListingStrategiesAgree(t *testing.T) {
	f := newFakeIMDb(t, []exportNode{
		ratingsNode("2024-01-03T00:00:00Z", JobProcessing, ""),
		listNode("2024-01-02T00:00:00Z", JobReady, trustedResultPrefix+"/l.csv", "ls123", "My List", "LIST"),
	})

	fromPage, _ := f.newTestClient(t, ClientOptions{Listing: ListingFromPage})
	fromGraphql, _ := f.newTestClient(t, ClientOptions{Listing: ListingFromGraphql})

	pageJobs, err := fromPage.ListExports(context.Background())
	require.NoError(t, err)
	graphqlJobs, err := fromGraphql.ListExports(context.Background())
	require.NoError(t, err)

	require.Empty(t, cmp.Diff(pageJobs, graphqlJobs))
	require.Len(t, pageJobs, 2)
	require.Empty(t, cmp.Diff(ExportJob{
		Kind: ExportKindList,
		List: ListIdentity{
			Id:    "ls123",
			Name:  "My List",
			Class: ListClassList,
		},
		StartedAt: mustParseTime(t, "2024-01-02T00:00:00Z"),
		Status:    JobReady,
		ResultUrl: trustedResultPrefix + "/l.csv",
	}, pageJobs[1]))
}

func TestListingSendsSessionHeader(t *testing.T) {
	f := newFakeIMDb(t, nil)
	client, _ := f.newTestClient(t, ClientOptions{
		Listing: ListingFromGraphql,
		Cookies: map[string]string{sessionCookieName: "123-4567890-1234567"},
	})

	_, err := client.ListExports(context.Background())
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, "123-4567890-1234567", f.lastSessionHeader)
}

func TestPageListingWithoutNextData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>sign in to continue</body></html>`)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientOptions{BaseUrl: srv.URL, GraphqlUrl: srv.URL})
	require.NoError(t, err)

	_, err = client.ListExports(context.Background())
	require.ErrorIs(t, err, ErrProtocol)
}

func TestPageListingWithoutExportData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{}}}</script></head></html>`)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientOptions{BaseUrl: srv.URL, GraphqlUrl: srv.URL})
	require.NoError(t, err)

	_, err = client.ListExports(context.Background())
	require.ErrorIs(t, err, ErrProtocol)
}

func TestListingTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientOptions{BaseUrl: srv.URL, GraphqlUrl: srv.URL})
	require.NoError(t, err)

	_, err = client.ListExports(context.Background())
	require.ErrorIs(t, err, ErrTransport)
}

func TestExtractNextData(t *testing.T) {
	raw, err := extractNextData([]byte(
		`<html><head><script id="__NEXT_DATA__" type="application/json">{"props":{}}</script></head></html>`,
	))
	require.NoError(t, err)
	require.JSONEq(t, `{"props":{}}`, string(raw))

	_, err = extractNextData([]byte(
		`<html><head><script id="__NEXT_DATA__" type="application/json">{broken</script></head></html>`,
	))
	require.ErrorIs(t, err, ErrProtocol)
}

func TestCookiesRoundTrip(t *testing.T) {
	f := newFakeIMDb(t)
	seeded := map[string]string{
		"session-id": "123-4567890-1234567",
		"at-main":    "token",
	}
	client, _ := f.newTestClient(t, ClientOptions{Cookies: seeded})

	require.Empty(t, cmp.Diff(seeded, client.Cookies()))
}

func TestCookiesPickUpServerUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session-id", Value: "refreshed", Path: "/"})
		fmt.Fprint(w, `<html><head><script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"mainColumnData":{"getExports":{"edges":[]}}}}}</script></head></html>`)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientOptions{
		BaseUrl:    srv.URL,
		GraphqlUrl: srv.URL,
		Cookies:    map[string]string{"session-id": "original"},
	})
	require.NoError(t, err)

	jobs, err := client.ListExports(context.Background())
	require.NoError(t, err)
	require.Empty(t, jobs)
	require.Equal(t, "refreshed", client.Cookies()["session-id"])
}

func TestUnknownListingStrategy(t *testing.T) {
	_, err := NewClient(ClientOptions{Listing: "rpc"})
	require.Error(t, err)
}

func TestDecodeListingOrderPreserved(t *testing.T) {
	f := newFakeIMDb(t, []exportNode{
		ratingsNode("2024-01-05T00:00:00Z", JobProcessing, ""),
		ratingsNode("2024-01-04T00:00:00Z", JobReady, trustedResultPrefix+"/a"),
		ratingsNode("2024-01-03T00:00:00Z", JobReady, trustedResultPrefix+"/b"),
	})
	client, _ := f.newTestClient(t, ClientOptions{})

	jobs, err := client.ListExports(context.Background())
	require.NoError(t, err)

	var started []time.Time
	for _, job := range jobs {
		started = append(started, job.StartedAt)
	}
	require.Equal(t, []time.Time{
		mustParseTime(t, "2024-01-05T00:00:00Z"),
		mustParseTime(t, "2024-01-04T00:00:00Z"),
		mustParseTime(t, "2024-01-03T00:00:00Z"),
	}, started)
}
