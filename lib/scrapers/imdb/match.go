package imdb

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusNotFound   Status = "NOT_FOUND"
	StatusProcessing Status = "PROCESSING"
	StatusReady      Status = "READY"
)

// PollOutcome is the tri-state result of one listing+match cycle.
type PollOutcome struct {
	Status Status
	// Url is set only when Status is StatusReady.
	Url string
}

// the watchlist export is recognized by this sentinel name, its list
// id is not known a priori
const watchlistExportName = "WATCHLIST"

func selectorMatches(job ExportJob, sel Selector) bool {
	switch sel.Kind {
	case SelectRatings:
		return job.Kind == ExportKindRatings
	case SelectWatchlist:
		return job.Kind == ExportKindList && job.List.Name == watchlistExportName
	case SelectList:
		return job.Kind == ExportKindList && job.List.Id == sel.ListID
	}
	return false
}

// matchExports picks the most recent job for the selector out of a
// listing snapshot. Jobs started at or before notBefore are stale and
// ignored even if ready; the listing's own (newest-first) order breaks
// ties.
func matchExports(jobs []ExportJob, sel Selector, notBefore time.Time) (PollOutcome, error) {
	for _, job := range jobs {
		if !selectorMatches(job, sel) {
			continue
		}
		if !job.StartedAt.After(notBefore) {
			continue
		}

		if job.Status == JobProcessing {
			return PollOutcome{Status: StatusProcessing}, nil
		}

		if !strings.HasPrefix(job.ResultUrl, trustedResultPrefix) {
			return PollOutcome{}, fmt.Errorf(
				"%w: result url %q is outside the trusted bucket",
				ErrProtocol, job.ResultUrl,
			)
		}
		return PollOutcome{Status: StatusReady, Url: job.ResultUrl}, nil
	}

	return PollOutcome{Status: StatusNotFound}, nil
}
