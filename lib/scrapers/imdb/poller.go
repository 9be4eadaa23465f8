package imdb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultMaxWait = time.Minute * 5

type ResolveOptions struct {
	// NotBefore discards exports started at or before this instant,
	// a ready-but-stale export from an earlier request never counts.
	NotBefore time.Time
	// MaxWait bounds the total time ResolveExport spends polling,
	// measured from the moment it is called. Defaults to
	// DefaultMaxWait.
	MaxWait time.Duration
}

// ExportStatus runs a single listing fetch + match cycle. It has no
// side effects and never retries; it is the state-inspection primitive
// underneath ResolveExport.
func (c *Client) ExportStatus(ctx context.Context, sel Selector, notBefore time.Time) (PollOutcome, error) {
	ctx, span := tracer.Start(ctx, "ExportStatus")
	defer span.End()
	span.SetAttributes(attribute.String("selector", sel.String()))

	jobs, err := c.listing.FetchListing(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch export listing")
		return PollOutcome{}, err
	}
	slog.DebugContext(ctx, "found exports", "count", len(jobs))

	outcome, err := matchExports(jobs, sel, notBefore)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing contained a malformed ready export")
		return PollOutcome{}, err
	}

	span.SetAttributes(attribute.String("outcome", string(outcome.Status)))
	return outcome, nil
}

// ResolveExport drives the export to a download url: an already-ready
// export is returned immediately, a missing one is enqueued and a
// processing one is polled with doubling backoff until ready or
// MaxWait runs out.
//
// Enqueueing is attempted a bounded number of times; if the job never
// shows up in the listing afterwards the resolution fails with
// ErrExportNotFound rather than enqueueing forever. Exhausting MaxWait
// while the export is still processing fails with ErrExportTimeout.
// Callers that need to tell "definitely absent" from "gave up waiting"
// check those two sentinels.
func (c *Client) ResolveExport(ctx context.Context, sel Selector, opts ResolveOptions) (string, error) {
	ctx, span := tracer.Start(ctx, "ResolveExport")
	defer span.End()
	span.SetAttributes(attribute.String("selector", sel.String()))

	maxWait := opts.MaxWait
	if maxWait == 0 {
		maxWait = DefaultMaxWait
	}
	deadline := c.now().Add(maxWait)

	enqueued := 0
	for {
		outcome, err := c.ExportStatus(ctx, sel, opts.NotBefore)
		if err != nil {
			span.RecordError(err)
			return "", err
		}

		switch outcome.Status {
		case StatusReady:
			return outcome.Url, nil

		case StatusNotFound:
			if enqueued >= c.maxEnqueueAttempts {
				span.SetStatus(codes.Error, "enqueued export never appeared in the listing")
				return "", fmt.Errorf(
					"%w: enqueued %d times and no export appeared",
					ErrExportNotFound, enqueued,
				)
			}
			slog.WarnContext(ctx, "export not found, enqueuing", "selector", sel.String())
			err := c.QueueExport(ctx, sel)
			if err != nil {
				span.RecordError(err)
				return "", err
			}
			enqueued++
			err = c.wait(ctx, c.pollUnit)
			if err != nil {
				return "", err
			}

		case StatusProcessing:
			wait := c.pollUnit
			for c.now().Before(deadline) {
				slog.WarnContext(ctx, "export is processing, waiting", "wait", wait)
				err := c.wait(ctx, wait)
				if err != nil {
					return "", err
				}
				outcome, err = c.ExportStatus(ctx, sel, opts.NotBefore)
				if err != nil {
					span.RecordError(err)
					return "", err
				}
				if outcome.Status == StatusReady {
					return outcome.Url, nil
				}
				wait *= 2
			}

			span.SetStatus(codes.Error, "export was still processing at the deadline")
			return "", fmt.Errorf("%w: gave up after %s", ErrExportTimeout, maxWait)
		}
	}
}

// GetExport resolves the export and downloads its body in one go.
func (c *Client) GetExport(ctx context.Context, sel Selector, opts ResolveOptions) ([]byte, error) {
	url, err := c.ResolveExport(ctx, sel, opts)
	if err != nil {
		return nil, err
	}
	return c.DownloadExport(ctx, url)
}
