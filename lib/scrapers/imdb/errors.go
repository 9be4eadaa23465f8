package imdb

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrTransport covers network failures and non-2xx responses.
	ErrTransport = errors.New("request to imdb failed")
	// ErrProtocol means the response shape no longer matches what this
	// package expects. imdb's export pipeline is undocumented, when it
	// changes we want a loud failure instead of a silent coercion.
	ErrProtocol = errors.New("unexpected response from imdb")
	// ErrUnsupported marks selector/operation combinations with no
	// known command on imdb's side.
	ErrUnsupported = errors.New("unsupported export operation")
	// ErrExportNotFound is the terminal "definitely absent" signal.
	ErrExportNotFound = errors.New("export not found")
	// ErrExportTimeout means polling gave up while the export was
	// still processing, distinct from ErrExportNotFound.
	ErrExportTimeout = errors.New("timed out waiting for export")
)

func transportErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %s", ErrTransport, op, err)
}

func statusErr(op string, res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", ErrTransport, op, res.Status())
}
