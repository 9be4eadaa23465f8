package imdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
)

// page timestamps come without fractional seconds
const pageTimeLayout = "2006-01-02T15:04:05Z"

func watchlistUrl(userId string) string {
	if userId != "" {
		return fmt.Sprintf("/user/%s/watchlist/", userId)
	}
	return watchlistPath
}

func ratingsUrl(userId string) string {
	if userId != "" {
		return fmt.Sprintf("/user/%s/ratings/", userId)
	}
	return ratingsPath
}

func (c *Client) fetchPageData(ctx context.Context, path string) (json.RawMessage, error) {
	res, err := c.page.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, transportErr("GET "+path, err)
	}
	if err := statusErr("GET "+path, res); err != nil {
		return nil, err
	}
	return extractNextData(res.Body())
}

// WatchlistInfo identifies the signed-in user's watchlist. The list id
// feeds the watchlist enqueue indirection, the modification time feeds
// staleness checks.
type WatchlistInfo struct {
	UserId       string
	ListId       string
	LastModified time.Time
}

// WatchlistInfo scrapes the watchlist page of the signed-in user, or
// of the given user when userId is non-empty.
func (c *Client) WatchlistInfo(ctx context.Context, userId ...string) (WatchlistInfo, error) {
	ctx, span := tracer.Start(ctx, "WatchlistInfo")
	defer span.End()

	path := watchlistUrl(first(userId))
	raw, err := c.fetchPageData(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch watchlist page")
		return WatchlistInfo{}, err
	}

	var payload struct {
		Props struct {
			PageProps struct {
				AboveTheFoldData *struct {
					AuthorId string `json:"authorId"`
					ListId   string `json:"listId"`
				} `json:"aboveTheFoldData"`
				MainColumnData *struct {
					PredefinedList struct {
						Id               string `json:"id"`
						LastModifiedDate string `json:"lastModifiedDate"`
					} `json:"predefinedList"`
				} `json:"mainColumnData"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	err = json.Unmarshal(raw, &payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse watchlist page data")
		return WatchlistInfo{}, fmt.Errorf("%w: %s", ErrProtocol, err)
	}

	pageProps := payload.Props.PageProps
	if pageProps.AboveTheFoldData == nil {
		span.SetStatus(codes.Error, "watchlist page is missing aboveTheFoldData")
		return WatchlistInfo{}, fmt.Errorf("%w: missing aboveTheFoldData", ErrProtocol)
	}

	info := WatchlistInfo{
		UserId: pageProps.AboveTheFoldData.AuthorId,
		ListId: pageProps.AboveTheFoldData.ListId,
	}
	if pageProps.MainColumnData != nil {
		if info.ListId == "" {
			info.ListId = pageProps.MainColumnData.PredefinedList.Id
		}
		if raw := pageProps.MainColumnData.PredefinedList.LastModifiedDate; raw != "" {
			info.LastModified, err = time.Parse(pageTimeLayout, raw)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to parse lastModifiedDate")
				return WatchlistInfo{}, fmt.Errorf("%w: bad lastModifiedDate %q: %s", ErrProtocol, raw, err)
			}
		}
	}

	return info, nil
}

// RatingsInfo carries the signed-in user's id and the title ids of
// their most recent ratings, newest first.
type RatingsInfo struct {
	UserId         string
	RecentTitleIds []string
}

func (c *Client) RatingsInfo(ctx context.Context, userId ...string) (RatingsInfo, error) {
	ctx, span := tracer.Start(ctx, "RatingsInfo")
	defer span.End()

	path := ratingsUrl(first(userId))
	raw, err := c.fetchPageData(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch ratings page")
		return RatingsInfo{}, err
	}

	var payload struct {
		Props struct {
			PageProps struct {
				AboveTheFoldData *struct {
					AuthorId string `json:"authorId"`
				} `json:"aboveTheFoldData"`
				MainColumnData *struct {
					AdvancedTitleSearch struct {
						Edges []struct {
							Node struct {
								Title struct {
									Id string `json:"id"`
								} `json:"title"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"advancedTitleSearch"`
				} `json:"mainColumnData"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	err = json.Unmarshal(raw, &payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse ratings page data")
		return RatingsInfo{}, fmt.Errorf("%w: %s", ErrProtocol, err)
	}

	pageProps := payload.Props.PageProps
	if pageProps.AboveTheFoldData == nil || pageProps.MainColumnData == nil {
		span.SetStatus(codes.Error, "ratings page is missing expected containers")
		return RatingsInfo{}, fmt.Errorf("%w: missing ratings page data", ErrProtocol)
	}
	if !strings.HasPrefix(pageProps.AboveTheFoldData.AuthorId, "ur") {
		span.SetStatus(codes.Error, "ratings page carried no user id")
		return RatingsInfo{}, fmt.Errorf("%w: expected a user id, got %q", ErrProtocol, pageProps.AboveTheFoldData.AuthorId)
	}

	info := RatingsInfo{UserId: pageProps.AboveTheFoldData.AuthorId}
	for _, edge := range pageProps.MainColumnData.AdvancedTitleSearch.Edges {
		info.RecentTitleIds = append(info.RecentTitleIds, edge.Node.Title.Id)
	}
	return info, nil
}

func first(values []string) string {
	if len(values) > 0 {
		return values[0]
	}
	return ""
}
