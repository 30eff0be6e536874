package sink

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/newsletter-cli/internal/model"
)

// JSON writes the canonical records plus the run result as one JSON
// document.
type JSON struct {
	path string
}

// NewJSON creates a JSON sink writing to path.
func NewJSON(path string) *JSON {
	return &JSON{path: path}
}

func (s *JSON) Name() string { return "json" }

type jsonDocument struct {
	Newsletters []model.Newsletter `json:"newsletters"`
	Run         *model.RunResult   `json:"run,omitempty"`
}

// Write encodes the full canonical records, provenance included, and writes
// them atomically.
func (s *JSON) Write(_ context.Context, newsletters []model.Newsletter, result *model.RunResult) error {
	data, err := json.MarshalIndent(jsonDocument{Newsletters: newsletters, Run: result}, "", "  ")
	if err != nil {
		return eris.Wrapf(ErrSinkWrite, "json: marshal: %v", err)
	}
	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data); err != nil {
		return eris.Wrapf(ErrSinkWrite, "json: write %s: %v", s.path, err)
	}

	zap.L().Info("json: dataset written",
		zap.String("path", s.path),
		zap.Int("records", len(newsletters)),
	)
	return nil
}
