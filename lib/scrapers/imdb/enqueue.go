package imdb

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
)

const startListExportMutation = `
mutation StartListExport($listId: ID!) {
  createListExport(input: {listId: $listId}) {
    status {
      id
    }
  }
}
`

const startRatingsExportMutation = `
mutation StartRatingsExport {
  createRatingsExport {
    status {
      id
    }
  }
}
`

type enqueueAck struct {
	Status struct {
		Id string `json:"id"`
	} `json:"status"`
}

// QueueExport asks imdb to start producing a fresh export. The remote
// contract is "enqueue always acknowledges as processing", anything
// else is a protocol violation.
//
// There is no direct command for the watchlist: its own list id is
// resolved from the watchlist page first and the export is enqueued as
// an ordinary list export.
func (c *Client) QueueExport(ctx context.Context, sel Selector) error {
	ctx, span := tracer.Start(ctx, "QueueExport")
	defer span.End()

	switch sel.Kind {
	case SelectRatings:
		var ack struct {
			CreateRatingsExport *enqueueAck `json:"createRatingsExport"`
		}
		err := c.graphqlMutation(
			ctx,
			"StartRatingsExport",
			startRatingsExportMutation,
			map[string]any{"listId": "RATINGS"},
			&ack,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to enqueue ratings export")
			return err
		}
		return checkEnqueueAck(ack.CreateRatingsExport)

	case SelectList:
		var ack struct {
			CreateListExport *enqueueAck `json:"createListExport"`
		}
		err := c.graphqlMutation(
			ctx,
			"StartListExport",
			startListExportMutation,
			map[string]any{"listId": sel.ListID},
			&ack,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to enqueue list export")
			return err
		}
		return checkEnqueueAck(ack.CreateListExport)

	case SelectWatchlist:
		info, err := c.WatchlistInfo(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to resolve watchlist id")
			return err
		}
		if info.ListId == "" {
			span.SetStatus(codes.Error, "watchlist has no list id")
			return fmt.Errorf("%w: watchlist export needs a list id and none was found", ErrUnsupported)
		}
		slog.DebugContext(ctx, "resolved watchlist id", "list_id", info.ListId)
		return c.QueueExport(ctx, Selector{Kind: SelectList, ListID: info.ListId})
	}

	return fmt.Errorf("%w: unknown selector", ErrUnsupported)
}

func checkEnqueueAck(ack *enqueueAck) error {
	if ack == nil {
		return fmt.Errorf("%w: enqueue was not acknowledged", ErrProtocol)
	}
	if ack.Status.Id != string(JobProcessing) {
		return fmt.Errorf("%w: enqueue acknowledged as %q, expected %q", ErrProtocol, ack.Status.Id, JobProcessing)
	}
	return nil
}
