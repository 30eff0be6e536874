package sink

import (
	"context"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/newsletter-cli/internal/model"
)

// CSV writes the canonical records as a CSV file.
type CSV struct {
	path string
}

// NewCSV creates a CSV sink writing to path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

func (s *CSV) Name() string { return "csv" }

// Write marshals the records and writes them atomically.
func (s *CSV) Write(_ context.Context, newsletters []model.Newsletter, _ *model.RunResult) error {
	rows := make([]exportRow, 0, len(newsletters))
	for _, n := range newsletters {
		rows = append(rows, rowFor(n))
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrapf(ErrSinkWrite, "csv: marshal: %v", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return eris.Wrapf(ErrSinkWrite, "csv: write %s: %v", s.path, err)
	}

	zap.L().Info("csv: dataset written",
		zap.String("path", s.path),
		zap.Int("records", len(rows)),
	)
	return nil
}
