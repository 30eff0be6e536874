package collector

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/newsletter-cli/internal/model"
)

// ErrSourceUnavailable marks a source that could not be reached or returned
// nothing usable. The orchestrator recovers locally: the source contributes
// zero records and the run continues.
var ErrSourceUnavailable = eris.New("collector: source unavailable")

// ErrSourceTimeout marks a source whose fetch exceeded the per-source
// timeout. Recovered the same way as ErrSourceUnavailable.
var ErrSourceTimeout = eris.New("collector: source timeout")

// Collector produces raw newsletter records from one data source.
type Collector interface {
	// Source returns the collector's id.
	Source() model.Source

	// Collect fetches the source and returns a finite batch of raw records.
	Collect(ctx context.Context) ([]model.RawRecord, error)
}
