package imdb

import (
	"imdbdata/lib/restyutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/imdb")

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput sets the destination that clients created
// afterwards dump their raw HTTP messages into (debug builds only).
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
