package imdb

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func mustParseTime(t *testing.T, value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func decodeNodes(t *testing.T, nodes ...exportNode) []ExportJob {
	jobs := make([]ExportJob, 0, len(nodes))
	for _, node := range nodes {
		job, err := decodeExportNode(node)
		require.NoError(t, err)
		jobs = append(jobs, job)
	}
	return jobs
}

func TestMatchEmptyListing(t *testing.T) {
	selectors := []Selector{
		{Kind: SelectRatings},
		{Kind: SelectWatchlist},
		{Kind: SelectList, ListID: "ls123"},
	}
	for _, sel := range selectors {
		outcome, err := matchExports(nil, sel, time.Time{})
		require.NoError(t, err)
		require.Equal(t, StatusNotFound, outcome.Status)
	}
}

func TestMatchReadyRatings(t *testing.T) {
	jobs := decodeNodes(t, ratingsNode(
		"2024-01-02T00:00:00Z",
		JobReady,
		trustedResultPrefix+"/x",
	))

	outcome, err := matchExports(jobs, Selector{Kind: SelectRatings}, mustParseTime(t, "2024-01-01T00:00:00Z"))
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(PollOutcome{
		Status: StatusReady,
		Url:    trustedResultPrefix + "/x",
	}, outcome))
}

func TestMatchStaleJobIgnored(t *testing.T) {
	jobs := decodeNodes(t, ratingsNode(
		"2024-01-02T00:00:00Z",
		JobReady,
		trustedResultPrefix+"/x",
	))

	// started before the cutoff
	outcome, err := matchExports(jobs, Selector{Kind: SelectRatings}, mustParseTime(t, "2024-01-03T00:00:00Z"))
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, outcome.Status)

	// started exactly at the cutoff is stale too
	outcome, err = matchExports(jobs, Selector{Kind: SelectRatings}, mustParseTime(t, "2024-01-02T00:00:00Z"))
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, outcome.Status)
}

func TestMatchUntrustedResultUrl(t *testing.T) {
	jobs := decodeNodes(t, ratingsNode(
		"2024-01-02T00:00:00Z",
		JobReady,
		"https://evil.example.com/x",
	))

	_, err := matchExports(jobs, Selector{Kind: SelectRatings}, time.Time{})
	require.ErrorIs(t, err, ErrProtocol)
}

func TestMatchSelectors(t *testing.T) {
	jobs := decodeNodes(t,
		listNode("2024-01-05T00:00:00Z", JobProcessing, "", "ls999", "WATCHLIST", "WATCH_LIST"),
		listNode("2024-01-04T00:00:00Z", JobReady, trustedResultPrefix+"/list", "ls123", "My List", "LIST"),
		ratingsNode("2024-01-03T00:00:00Z", JobReady, trustedResultPrefix+"/ratings"),
	)

	outcome, err := matchExports(jobs, Selector{Kind: SelectWatchlist}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, StatusProcessing, outcome.Status)

	outcome, err = matchExports(jobs, Selector{Kind: SelectList, ListID: "ls123"}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, StatusReady, outcome.Status)
	require.Equal(t, trustedResultPrefix+"/list", outcome.Url)

	outcome, err = matchExports(jobs, Selector{Kind: SelectRatings}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, trustedResultPrefix+"/ratings", outcome.Url)

	outcome, err = matchExports(jobs, Selector{Kind: SelectList, ListID: "ls000"}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, outcome.Status)
}

func TestMatchPrefersNewestFirstOrder(t *testing.T) {
	// the listing is newest-first, the first matching job wins even if
	// an older ready one follows
	jobs := decodeNodes(t,
		ratingsNode("2024-01-06T00:00:00Z", JobProcessing, ""),
		ratingsNode("2024-01-03T00:00:00Z", JobReady, trustedResultPrefix+"/old"),
	)

	outcome, err := matchExports(jobs, Selector{Kind: SelectRatings}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, StatusProcessing, outcome.Status)
}

func TestDecodeUnknownStatus(t *testing.T) {
	node := ratingsNode("2024-01-02T00:00:00Z", JobReady, trustedResultPrefix+"/x")
	node.Status.Id = "FAILED"

	_, err := decodeExportNode(node)
	require.ErrorIs(t, err, ErrProtocol)
}

func TestDecodeFractionalSeconds(t *testing.T) {
	node := ratingsNode("2024-01-02T03:04:05.678Z", JobProcessing, "")
	job, err := decodeExportNode(node)
	require.NoError(t, err)
	require.Equal(t, 678000000, job.StartedAt.Nanosecond())
}
