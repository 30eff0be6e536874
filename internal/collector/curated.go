package collector

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/newsletter-cli/internal/model"
)

// CuratedOptions configures the curated list collector.
type CuratedOptions struct {
	Path string
}

// curatedEntry is one row of the hand-maintained YAML list.
type curatedEntry struct {
	Name        string            `yaml:"name"`
	Link        string            `yaml:"link"`
	Publisher   string            `yaml:"publisher"`
	Email       string            `yaml:"email"`
	Subscribers string            `yaml:"subscribers"`
	Social      map[string]string `yaml:"social"`
}

// Curated reads a static, human-maintained YAML list of newsletters. It is
// the highest-trust source after the platform's own API.
type Curated struct {
	opts CuratedOptions
}

// NewCurated creates the curated list collector.
func NewCurated(opts CuratedOptions) *Curated {
	return &Curated{opts: opts}
}

func (c *Curated) Source() model.Source { return model.SourceCurated }

// Collect loads the YAML list from disk. A missing or unreadable file is a
// source failure, not a run failure.
func (c *Curated) Collect(ctx context.Context) ([]model.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrSourceTimeout
	}

	data, err := os.ReadFile(c.opts.Path)
	if err != nil {
		return nil, eris.Wrapf(ErrSourceUnavailable, "curated: read %s: %v", c.opts.Path, err)
	}

	var entries []curatedEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(ErrSourceUnavailable, "curated: parse %s: %v", c.opts.Path, err)
	}

	records := make([]model.RawRecord, 0, len(entries))
	for _, e := range entries {
		fields := make(map[string]any)
		if e.Name != "" {
			fields[model.FieldName] = e.Name
		}
		if e.Link != "" {
			fields[model.FieldLink] = e.Link
		}
		if e.Publisher != "" {
			fields[model.FieldPublisher] = e.Publisher
		}
		if e.Email != "" {
			fields[model.FieldEmail] = e.Email
		}
		if e.Subscribers != "" {
			fields[model.FieldSubscribers] = e.Subscribers
		}
		if len(e.Social) > 0 {
			fields[model.FieldSocial] = e.Social
		}
		records = append(records, model.RawRecord{
			Source:    model.SourceCurated,
			Fields:    fields,
			FetchedAt: time.Now().UTC(),
		})
	}

	zap.L().Info("curated: list loaded",
		zap.String("path", c.opts.Path),
		zap.Int("entries", len(records)),
	)
	return records, nil
}
