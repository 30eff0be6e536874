package model

import "time"

// Source identifies the collector that produced a raw record.
type Source string

const (
	SourceRSS       Source = "rss"
	SourceDirectory Source = "directory"
	SourceCurated   Source = "curated"
	SourcePlatform  Source = "platform_api"
)

// KnownSources returns every collector id the pipeline can enable.
func KnownSources() []Source {
	return []Source{SourceRSS, SourceDirectory, SourceCurated, SourcePlatform}
}

// IsKnownSource reports whether id names a registered collector.
func IsKnownSource(id Source) bool {
	for _, s := range KnownSources() {
		if s == id {
			return true
		}
	}
	return false
}

// Raw field keys collectors may populate. A key absent from RawRecord.Fields
// means the source did not observe that field, which is different from an
// empty value.
const (
	FieldName        = "name"
	FieldLink        = "link"
	FieldPublisher   = "publisher"
	FieldEmail       = "email"
	FieldSubscribers = "subscriber_count"
	FieldSocial      = "social_accounts"
)

// RawRecord is one source hit before normalization. Collectors create it,
// the normalizer consumes it once, then it is discarded.
type RawRecord struct {
	Source    Source         `json:"source"`
	Fields    map[string]any `json:"fields"`
	FetchedAt time.Time      `json:"fetched_at"`
}
