package imdb

import (
	"fmt"
	"strings"
)

type SelectorKind int

const (
	SelectWatchlist SelectorKind = iota
	SelectRatings
	SelectList
)

// Selector identifies which export a caller means: their watchlist,
// their ratings, or a list by its public "ls..." id.
type Selector struct {
	Kind   SelectorKind
	ListID string
}

// ParseSelector rejects unrecognized shapes up front so the rest of
// the package never sees an invalid export id.
func ParseSelector(value string) (Selector, error) {
	switch {
	case value == "watchlist":
		return Selector{Kind: SelectWatchlist}, nil
	case value == "ratings":
		return Selector{Kind: SelectRatings}, nil
	case strings.HasPrefix(value, "ls"):
		return Selector{Kind: SelectList, ListID: value}, nil
	}
	return Selector{}, fmt.Errorf("invalid export id: %q", value)
}

func (s Selector) String() string {
	switch s.Kind {
	case SelectWatchlist:
		return "watchlist"
	case SelectRatings:
		return "ratings"
	default:
		return s.ListID
	}
}
