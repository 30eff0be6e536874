package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/newsletter-cli/internal/model"
)

var seenAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestMerger_HigherQualityWinsConflicts(t *testing.T) {
	m := NewMerger(DefaultRanking())

	m.Merge("k", model.Fields{Name: "Copy Letter", Email: "a@rss.example.com"}, model.SourceRSS, seenAt)
	m.Merge("k", model.Fields{Email: "b@curated.example.com"}, model.SourceCurated, seenAt)

	out := m.Finalize()
	require.Len(t, out, 1)
	assert.Equal(t, "b@curated.example.com", out[0].Email)
	assert.Equal(t, model.SourceCurated, out[0].Provenance[model.FieldEmail].Source)
	// unchallenged field keeps its original provenance
	assert.Equal(t, model.SourceRSS, out[0].Provenance[model.FieldName].Source)
}

func TestMerger_LowerQualityNeverOverwrites(t *testing.T) {
	m := NewMerger(DefaultRanking())

	m.Merge("k", model.Fields{Name: "X", Email: "keep@example.com"}, model.SourcePlatform, seenAt)
	m.Merge("k", model.Fields{Email: "drop@example.com"}, model.SourceRSS, seenAt)

	out := m.Finalize()
	require.Len(t, out, 1)
	assert.Equal(t, "keep@example.com", out[0].Email)
}

func TestMerger_EqualQualityFirstWriterWins(t *testing.T) {
	ranking := QualityRanking{model.SourceRSS: 2, model.SourceDirectory: 2}
	m := NewMerger(ranking)

	m.Merge("k", model.Fields{Name: "First Seen"}, model.SourceRSS, seenAt)
	m.Merge("k", model.Fields{Name: "Second Seen"}, model.SourceDirectory, seenAt)

	out := m.Finalize()
	require.Len(t, out, 1)
	assert.Equal(t, "First Seen", out[0].Name)
	assert.Equal(t, model.SourceRSS, out[0].Provenance[model.FieldName].Source)
}

func TestMerger_AbsentFieldsFillRegardlessOfQuality(t *testing.T) {
	m := NewMerger(DefaultRanking())

	m.Merge("k", model.Fields{Name: "X"}, model.SourcePlatform, seenAt)
	m.Merge("k", model.Fields{Publisher: "Jane Doe"}, model.SourceRSS, seenAt)

	out := m.Finalize()
	require.Len(t, out, 1)
	assert.Equal(t, "Jane Doe", out[0].Publisher)
}

func TestMerger_FieldNeverCleared(t *testing.T) {
	m := NewMerger(DefaultRanking())

	m.Merge("k", model.Fields{Name: "X", Email: "x@example.com"}, model.SourceCurated, seenAt)
	m.Merge("k", model.Fields{Name: "X"}, model.SourcePlatform, seenAt)

	out := m.Finalize()
	require.Len(t, out, 1)
	assert.Equal(t, "x@example.com", out[0].Email)
}

func TestMerger_SocialUnion(t *testing.T) {
	m := NewMerger(DefaultRanking())

	m.Merge("k", model.Fields{
		Name:   "X",
		Social: map[model.Platform]string{model.PlatformTwitter: "@a"},
	}, model.SourceRSS, seenAt)
	m.Merge("k", model.Fields{
		Social: map[model.Platform]string{model.PlatformLinkedIn: "@b"},
	}, model.SourceCurated, seenAt)

	out := m.Finalize()
	require.Len(t, out, 1)
	assert.Equal(t, map[model.Platform]string{
		model.PlatformTwitter:  "@a",
		model.PlatformLinkedIn: "@b",
	}, out[0].Social)
}

func TestMerger_SocialFirstWriterPerPlatform(t *testing.T) {
	m := NewMerger(DefaultRanking())

	m.Merge("k", model.Fields{
		Name:   "X",
		Social: map[model.Platform]string{model.PlatformTwitter: "@first"},
	}, model.SourceRSS, seenAt)
	m.Merge("k", model.Fields{
		Social: map[model.Platform]string{model.PlatformTwitter: "@second"},
	}, model.SourcePlatform, seenAt)

	out := m.Finalize()
	require.Len(t, out, 1)
	assert.Equal(t, "@first", out[0].Social[model.PlatformTwitter])
}

func TestMerger_SubscriberCountCopied(t *testing.T) {
	m := NewMerger(DefaultRanking())

	count := 1204
	m.Merge("k", model.Fields{Name: "X", SubscriberCount: &count}, model.SourceCurated, seenAt)
	count = 9999 // caller mutation must not leak into the record

	out := m.Finalize()
	require.Len(t, out, 1)
	require.NotNil(t, out[0].SubscriberCount)
	assert.Equal(t, 1204, *out[0].SubscriberCount)
}

func TestMerger_CompleteRecomputedAsFieldsArrive(t *testing.T) {
	m := NewMerger(DefaultRanking())
	count := 5000

	m.Merge("k", model.Fields{Name: "X", Link: "https://example.com/x"}, model.SourceRSS, seenAt)
	assert.False(t, m.Finalize()[0].Complete)

	m.Merge("k", model.Fields{
		Publisher:       "Jane",
		Email:           "jane@example.com",
		SubscriberCount: &count,
	}, model.SourceCurated, seenAt)
	assert.True(t, m.Finalize()[0].Complete)
}

func TestMerger_DistinctKeysStaySeparate(t *testing.T) {
	m := NewMerger(DefaultRanking())

	m.Merge("a", model.Fields{Name: "A"}, model.SourceRSS, seenAt)
	m.Merge("b", model.Fields{Name: "B"}, model.SourceRSS, seenAt)

	assert.Equal(t, 2, m.Len())
	out := m.Finalize()
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].IdentityKey)
	assert.Equal(t, "b", out[1].IdentityKey)
}

func TestRankingFromPriority(t *testing.T) {
	r, err := RankingFromPriority([]string{"curated", "platform_api", "rss", "directory"})
	require.NoError(t, err)
	assert.Greater(t, r[model.SourceCurated], r[model.SourcePlatform])
	assert.Greater(t, r[model.SourcePlatform], r[model.SourceRSS])
	assert.Greater(t, r[model.SourceRSS], r[model.SourceDirectory])
}

func TestRankingFromPriority_UnknownSource(t *testing.T) {
	_, err := RankingFromPriority([]string{"curated", "mailchimp"})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRankingFromPriority_Duplicate(t *testing.T) {
	_, err := RankingFromPriority([]string{"rss", "rss"})
	assert.ErrorIs(t, err, ErrConfiguration)
}
