package imdb

import (
	"bytes"
	"encoding/json"
	"fmt"

	"imdbdata/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// imdb pages are rendered by next.js, which embeds the full page state
// as a single JSON blob in a well-known script tag. This is the
// "embedded data" source that page scrapes descend into.
func extractNextData(body []byte) (json.RawMessage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProtocol, err)
	}

	for _, script := range doc.Find(`script#__NEXT_DATA__`).Nodes {
		text := htmlutil.GetText(script)
		if !json.Valid([]byte(text)) {
			return nil, fmt.Errorf("%w: __NEXT_DATA__ is not valid json", ErrProtocol)
		}
		return json.RawMessage(text), nil
	}

	return nil, fmt.Errorf("%w: could not find __NEXT_DATA__", ErrProtocol)
}
