package imdb

import (
	"context"

	"go.opentelemetry.io/otel/codes"
)

// DownloadExport fetches a resolved result url and returns the raw
// body. It never retries: by this point the export is confirmed ready,
// so a failure means something else (expired url, auth) and retry
// policy belongs to the caller.
func (c *Client) DownloadExport(ctx context.Context, url string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "DownloadExport")
	defer span.End()

	res, err := c.download.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to download export")
		return nil, transportErr("GET export", err)
	}
	if err := statusErr("GET export", res); err != nil {
		span.SetStatus(codes.Error, "export download returned an error")
		return nil, err
	}

	return res.Body(), nil
}
