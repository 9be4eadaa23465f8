package imdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatchlistInfo(t *testing.T) {
	f := newFakeIMDb(t)
	f.watchlist = map[string]any{
		"aboveTheFoldData": map[string]any{
			"authorId": "ur0123456",
			"listId":   "ls0456789",
		},
		"mainColumnData": map[string]any{
			"predefinedList": map[string]any{
				"id":               "ls0456789",
				"lastModifiedDate": "2024-03-01T12:30:00Z",
			},
		},
	}
	client, _ := f.newTestClient(t, ClientOptions{})

	info, err := client.WatchlistInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ur0123456", info.UserId)
	require.Equal(t, "ls0456789", info.ListId)
	require.Equal(t, mustParseTime(t, "2024-03-01T12:30:00Z"), info.LastModified)
}

func TestWatchlistInfoListIdFallback(t *testing.T) {
	// some renders omit listId above the fold, the predefined list id
	// fills in
	f := newFakeIMDb(t)
	f.watchlist = map[string]any{
		"aboveTheFoldData": map[string]any{"authorId": "ur0123456"},
		"mainColumnData": map[string]any{
			"predefinedList": map[string]any{"id": "ls0456789"},
		},
	}
	client, _ := f.newTestClient(t, ClientOptions{})

	info, err := client.WatchlistInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ls0456789", info.ListId)
	require.True(t, info.LastModified.IsZero())
}

func TestWatchlistInfoMissingData(t *testing.T) {
	f := newFakeIMDb(t)
	f.watchlist = map[string]any{}
	client, _ := f.newTestClient(t, ClientOptions{})

	_, err := client.WatchlistInfo(context.Background())
	require.ErrorIs(t, err, ErrProtocol)
}

func TestRatingsInfo(t *testing.T) {
	f := newFakeIMDb(t)
	f.ratings = map[string]any{
		"aboveTheFoldData": map[string]any{"authorId": "ur0123456"},
		"mainColumnData": map[string]any{
			"advancedTitleSearch": map[string]any{
				"edges": []map[string]any{
					{"node": map[string]any{"title": map[string]any{"id": "tt0111161"}}},
					{"node": map[string]any{"title": map[string]any{"id": "tt0068646"}}},
				},
			},
		},
	}
	client, _ := f.newTestClient(t, ClientOptions{})

	info, err := client.RatingsInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ur0123456", info.UserId)
	require.Equal(t, []string{"tt0111161", "tt0068646"}, info.RecentTitleIds)
}

func TestRatingsInfoRejectsNonUserId(t *testing.T) {
	f := newFakeIMDb(t)
	f.ratings = map[string]any{
		"aboveTheFoldData": map[string]any{"authorId": "ls0456789"},
		"mainColumnData": map[string]any{
			"advancedTitleSearch": map[string]any{"edges": []map[string]any{}},
		},
	}
	client, _ := f.newTestClient(t, ClientOptions{})

	_, err := client.RatingsInfo(context.Background())
	require.ErrorIs(t, err, ErrProtocol)
}

func TestListPageUrls(t *testing.T) {
	require.Equal(t, "/list/watchlist", watchlistUrl(""))
	require.Equal(t, "/user/ur0123456/watchlist/", watchlistUrl("ur0123456"))
	require.Equal(t, "/list/ratings", ratingsUrl(""))
	require.Equal(t, "/user/ur0123456/ratings/", ratingsUrl("ur0123456"))
}
