package imdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"
)

type ExportKind string

const (
	ExportKindList    ExportKind = "LIST"
	ExportKindRatings ExportKind = "RATINGS"
)

type ListClass string

const (
	ListClassList      ListClass = "LIST"
	ListClassWatchlist ListClass = "WATCH_LIST"
)

type JobStatus string

const (
	JobReady      JobStatus = "READY"
	JobProcessing JobStatus = "PROCESSING"
)

// ListIdentity is present only on LIST exports.
type ListIdentity struct {
	Id    string
	Name  string
	Class ListClass
}

// ExportJob is an immutable snapshot of one remote export at fetch
// time. Jobs are never mutated, every poll produces a fresh list.
type ExportJob struct {
	Kind      ExportKind
	List      ListIdentity
	StartedAt time.Time
	Status    JobStatus
	ResultUrl string
}

// wire shape shared by the graphql response and the embedded page data
type exportNode struct {
	StartedOn            string `json:"startedOn"`
	TotalExportedObjects int    `json:"totalExportedObjects"`
	Status               struct {
		Id string `json:"id"`
	} `json:"status"`
	ResultUrl          string `json:"resultUrl"`
	ExpiresOn          string `json:"expiresOn"`
	ExportType         string `json:"exportType"`
	ListExportMetadata struct {
		Id          string `json:"id"`
		ListClassId string `json:"listClassId"`
		Name        string `json:"name"`
	} `json:"listExportMetadata"`
}

type exportConnection struct {
	GetExports *struct {
		Edges []struct {
			Node exportNode `json:"node"`
		} `json:"edges"`
	} `json:"getExports"`
}

func decodeExportNode(node exportNode) (ExportJob, error) {
	startedAt, err := time.Parse(time.RFC3339, node.StartedOn)
	if err != nil {
		return ExportJob{}, fmt.Errorf("%w: bad startedOn %q: %s", ErrProtocol, node.StartedOn, err)
	}

	var status JobStatus
	switch node.Status.Id {
	case string(JobReady):
		status = JobReady
	case string(JobProcessing):
		status = JobProcessing
	default:
		// there is no known FAILED state, but an unknown status must
		// not be mistaken for "still processing"
		return ExportJob{}, fmt.Errorf("%w: unknown export status %q", ErrProtocol, node.Status.Id)
	}

	job := ExportJob{
		StartedAt: startedAt,
		Status:    status,
		ResultUrl: node.ResultUrl,
	}

	switch node.ExportType {
	case string(ExportKindRatings):
		job.Kind = ExportKindRatings
	case string(ExportKindList):
		job.Kind = ExportKindList
		job.List = ListIdentity{
			Id:    node.ListExportMetadata.Id,
			Name:  node.ListExportMetadata.Name,
			Class: ListClass(node.ListExportMetadata.ListClassId),
		}
	default:
		return ExportJob{}, fmt.Errorf("%w: unknown export type %q", ErrProtocol, node.ExportType)
	}

	return job, nil
}

func decodeExportConnection(conn exportConnection) ([]ExportJob, error) {
	if conn.GetExports == nil {
		return nil, fmt.Errorf("%w: missing getExports", ErrProtocol)
	}
	// remote order is newest-first and the matcher relies on it, so no
	// local re-sort here
	jobs := make([]ExportJob, 0, len(conn.GetExports.Edges))
	for _, edge := range conn.GetExports.Edges {
		job, err := decodeExportNode(edge.Node)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// ListingSource fetches the export jobs currently visible to the
// session. Implementations are interchangeable, the active one is
// picked by ClientOptions.Listing.
type ListingSource interface {
	FetchListing(ctx context.Context) ([]ExportJob, error)
}

// ListExports returns the current listing snapshot through the active
// strategy, in the order the remote side reported it.
func (c *Client) ListExports(ctx context.Context) ([]ExportJob, error) {
	return c.listing.FetchListing(ctx)
}

// pageListing scrapes the embedded JSON of the /exports/ page.
type pageListing struct {
	c *Client
}

func (l pageListing) FetchListing(ctx context.Context) ([]ExportJob, error) {
	ctx, span := tracer.Start(ctx, "listing:page")
	defer span.End()

	res, err := l.c.page.R().
		SetContext(ctx).
		Get(exportsPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch exports page")
		return nil, transportErr("GET "+exportsPath, err)
	}
	if err := statusErr("GET "+exportsPath, res); err != nil {
		span.SetStatus(codes.Error, "exports page returned an error")
		return nil, err
	}

	raw, err := extractNextData(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exports page carried no embedded data")
		return nil, err
	}

	var payload struct {
		Props struct {
			PageProps struct {
				MainColumnData *exportConnection `json:"mainColumnData"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	err = json.Unmarshal(raw, &payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse embedded data")
		return nil, fmt.Errorf("%w: %s", ErrProtocol, err)
	}
	if payload.Props.PageProps.MainColumnData == nil {
		span.SetStatus(codes.Error, "embedded data is missing mainColumnData")
		return nil, fmt.Errorf("%w: missing mainColumnData", ErrProtocol)
	}

	jobs, err := decodeExportConnection(*payload.Props.PageProps.MainColumnData)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	slog.DebugContext(ctx, "fetched export listing", "source", "page", "count", len(jobs))
	return jobs, nil
}

// the structured API serves the listing through a persisted query, the
// hash identifies the query server-side so no query text is sent.
var yourExportsParams = map[string]string{
	"operationName": "YourExports",
	"variables":     `{"first":2,"locale":"en-US"}`,
	"extensions":    `{"persistedQuery":{"sha256Hash":"5470e249d72b3078b1ec2c2adc0a4a74ecd822e3333d22182fc71fb78588dcb6","version":1}}`,
}

// graphqlListing queries the structured API directly.
type graphqlListing struct {
	c *Client
}

func (l graphqlListing) FetchListing(ctx context.Context) ([]ExportJob, error) {
	ctx, span := tracer.Start(ctx, "listing:graphql")
	defer span.End()

	req := l.c.graphql.R().
		SetContext(ctx).
		SetQueryParams(yourExportsParams)
	if sessionId := l.c.sessionId(); sessionId != "" {
		req.SetHeader(sessionHeaderName, sessionId)
	}

	res, err := req.Get("")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query exports")
		return nil, transportErr("GET YourExports", err)
	}
	if err := statusErr("GET YourExports", res); err != nil {
		span.SetStatus(codes.Error, "exports query returned an error")
		return nil, err
	}

	var payload struct {
		Data *exportConnection `json:"data"`
	}
	err = json.Unmarshal(res.Body(), &payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse exports query response")
		return nil, fmt.Errorf("%w: %s", ErrProtocol, err)
	}
	if payload.Data == nil {
		span.SetStatus(codes.Error, "exports query response is missing data")
		return nil, fmt.Errorf("%w: missing data", ErrProtocol)
	}

	jobs, err := decodeExportConnection(*payload.Data)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	slog.DebugContext(ctx, "fetched export listing", "source", "graphql", "count", len(jobs))
	return jobs, nil
}
