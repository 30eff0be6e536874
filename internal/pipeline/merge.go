package pipeline

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/newsletter-cli/internal/model"
)

// QualityRanking assigns each source a fixed quality score. Higher scores win
// field conflicts during merging. The ranking must be total over the enabled
// sources and deterministic for a run.
type QualityRanking map[model.Source]int

// DefaultRanking returns the built-in quality order: the platform's own
// discovery API over the curated list over the directory scrape over generic
// RSS metadata.
func DefaultRanking() QualityRanking {
	return QualityRanking{
		model.SourcePlatform:  4,
		model.SourceCurated:   3,
		model.SourceDirectory: 2,
		model.SourceRSS:       1,
	}
}

// RankingFromPriority builds a ranking from an ordered list of source ids,
// highest priority first. Every entry must name a known source and appear at
// most once.
func RankingFromPriority(order []string) (QualityRanking, error) {
	r := make(QualityRanking, len(order))
	for i, id := range order {
		s := model.Source(id)
		if !model.IsKnownSource(s) {
			return nil, eris.Wrapf(ErrConfiguration, "unknown source id %q in source_priority", id)
		}
		if _, dup := r[s]; dup {
			return nil, eris.Wrapf(ErrConfiguration, "duplicate source id %q in source_priority", id)
		}
		r[s] = len(order) - i
	}
	return r, nil
}

// Merger owns the identity->newsletter map for a single run. No other
// component reads or writes it. Merging only adds or upgrades information: a
// field is never cleared once set, and an existing value is only replaced
// when the incoming source's quality score is strictly greater than the
// value's current provenance. Ties keep the existing value so the outcome is
// deterministic regardless of adapter ordering.
type Merger struct {
	ranking QualityRanking
	records map[string]*model.Newsletter
}

// NewMerger creates a Merger with the given quality ranking.
func NewMerger(ranking QualityRanking) *Merger {
	return &Merger{
		ranking: ranking,
		records: make(map[string]*model.Newsletter),
	}
}

// Merge folds one normalized partial record into the canonical record for
// key, creating it on first sighting. Social accounts are unioned rather
// than replaced since different sources surface different platforms for the
// same newsletter.
func (m *Merger) Merge(key string, f model.Fields, source model.Source, seenAt time.Time) {
	n, ok := m.records[key]
	if !ok {
		n = &model.Newsletter{
			IdentityKey: key,
			Provenance:  make(map[string]model.FieldProvenance),
		}
		m.records[key] = n
	}
	quality := m.ranking[source]

	set := func(field string, present bool, apply func()) {
		if !present {
			return
		}
		if prov, exists := n.Provenance[field]; exists && prov.Quality >= quality {
			return
		}
		apply()
		n.Provenance[field] = model.FieldProvenance{Source: source, Quality: quality, SeenAt: seenAt}
	}

	set(model.FieldName, f.Name != "", func() { n.Name = f.Name })
	set(model.FieldLink, f.Link != "", func() { n.Link = f.Link })
	set(model.FieldPublisher, f.Publisher != "", func() { n.Publisher = f.Publisher })
	set(model.FieldEmail, f.Email != "", func() { n.Email = f.Email })
	set(model.FieldSubscribers, f.SubscriberCount != nil, func() {
		c := *f.SubscriberCount
		n.SubscriberCount = &c
	})

	if len(f.Social) > 0 {
		if n.Social == nil {
			n.Social = make(map[model.Platform]string, len(f.Social))
		}
		for platform, handle := range f.Social {
			if _, exists := n.Social[platform]; !exists {
				n.Social[platform] = handle
			}
		}
		if _, exists := n.Provenance[model.FieldSocial]; !exists {
			n.Provenance[model.FieldSocial] = model.FieldProvenance{Source: source, Quality: quality, SeenAt: seenAt}
		}
	}

	n.Complete = n.IsComplete()
}

// Len returns the number of distinct canonical records seen so far.
func (m *Merger) Len() int {
	return len(m.records)
}

// Finalize freezes the run's canonical records and returns them sorted by
// identity key, so identical inputs yield identical output byte for byte.
func (m *Merger) Finalize() []model.Newsletter {
	out := make([]model.Newsletter, 0, len(m.records))
	for _, n := range m.records {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IdentityKey < out[j].IdentityKey })

	zap.L().Debug("merge: finalized canonical records", zap.Int("records", len(out)))
	return out
}
