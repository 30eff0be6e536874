package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/newsletter-cli/internal/model"
)

func rawRecord(fields map[string]any) model.RawRecord {
	return model.RawRecord{
		Source:    model.SourceCurated,
		Fields:    fields,
		FetchedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNormalize_Name(t *testing.T) {
	f, err := Normalize(rawRecord(map[string]any{
		"name": `  "The   Copy  Letter"  `,
	}))
	require.NoError(t, err)
	assert.Equal(t, "The Copy Letter", f.Name)
}

func TestNormalize_LinkSchemelessGetsHTTPS(t *testing.T) {
	f, err := Normalize(rawRecord(map[string]any{
		"link": "Example.com/newsletter",
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/newsletter", f.Link)
}

func TestNormalize_LinkStripsTrackingParams(t *testing.T) {
	f, err := Normalize(rawRecord(map[string]any{
		"link": "https://example.com/nl?utm_source=x&utm_medium=y&fbclid=abc&page=2#top",
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/nl?page=2", f.Link)
}

func TestNormalize_LinkUnparsableDropped(t *testing.T) {
	f, err := Normalize(rawRecord(map[string]any{
		"name": "Kept By Name",
		"link": "://not a url",
	}))
	require.NoError(t, err)
	assert.Empty(t, f.Link)
	assert.Equal(t, "Kept By Name", f.Name)
}

func TestNormalize_Email(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Jane@Example.COM ", "jane@example.com"},
		{"not-an-email", ""},
		{"jane@localhost", ""},
		{"", ""},
	}
	for _, tt := range tests {
		f, err := Normalize(rawRecord(map[string]any{
			"name":  "X",
			"email": tt.in,
		}))
		require.NoError(t, err)
		assert.Equal(t, tt.want, f.Email, "input %q", tt.in)
	}
}

func TestNormalize_SubscriberCountForms(t *testing.T) {
	tests := []struct {
		in   any
		want *int
	}{
		{"12.3k", intPtr(12300)},
		{"1,204", intPtr(1204)},
		{"over 5000", intPtr(5000)},
		{"N/A", nil},
		{"2M", intPtr(2_000_000)},
		{"10000+", intPtr(10000)},
		{"~850", intPtr(850)},
		{"about 40k subscribers", intPtr(40000)},
		{12500, intPtr(12500)},
		{float64(980.6), intPtr(981)},
		{"-50", nil},
		{"", nil},
	}
	for _, tt := range tests {
		f, err := Normalize(rawRecord(map[string]any{
			"name":             "X",
			"subscriber_count": tt.in,
		}))
		require.NoError(t, err)
		if tt.want == nil {
			assert.Nil(t, f.SubscriberCount, "input %v", tt.in)
		} else {
			require.NotNil(t, f.SubscriberCount, "input %v", tt.in)
			assert.Equal(t, *tt.want, *f.SubscriberCount, "input %v", tt.in)
		}
	}
}

func TestNormalize_SubscriberCountAbsentStaysAbsent(t *testing.T) {
	f, err := Normalize(rawRecord(map[string]any{"name": "X"}))
	require.NoError(t, err)
	assert.Nil(t, f.SubscriberCount)
}

func TestNormalize_SocialFromURLs(t *testing.T) {
	f, err := Normalize(rawRecord(map[string]any{
		"name": "X",
		"social_accounts": []string{
			"https://twitter.com/janewrites",
			"https://www.linkedin.com/in/jane-doe",
			"https://example.org/profile",
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "@janewrites", f.Social[model.PlatformTwitter])
	assert.Equal(t, "@jane-doe", f.Social[model.PlatformLinkedIn])
	assert.Equal(t, "https://example.org/profile", f.Social[model.PlatformOther])
}

func TestNormalize_SocialFromMap(t *testing.T) {
	f, err := Normalize(rawRecord(map[string]any{
		"name": "X",
		"social_accounts": map[string]string{
			"twitter": "@a",
			"myspace": "jane",
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "@a", f.Social[model.PlatformTwitter])
	assert.Equal(t, "jane", f.Social[model.PlatformOther])
}

func TestParseSocial_PlatformPrefix(t *testing.T) {
	p, handle := ParseSocial("bluesky:jane.bsky.social")
	assert.Equal(t, model.PlatformBluesky, p)
	assert.Equal(t, "@jane.bsky.social", handle)
}

func TestParseSocial_UnknownKeptAsOther(t *testing.T) {
	p, handle := ParseSocial("some random text")
	assert.Equal(t, model.PlatformOther, p)
	assert.Equal(t, "some random text", handle)
}

func TestNormalize_MalformedRecord(t *testing.T) {
	_, err := Normalize(rawRecord(map[string]any{
		"email": "jane@example.com",
	}))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestNormalize_AbsentFieldsStayAbsent(t *testing.T) {
	f, err := Normalize(rawRecord(map[string]any{"name": "Only Name"}))
	require.NoError(t, err)
	assert.Empty(t, f.Link)
	assert.Empty(t, f.Publisher)
	assert.Empty(t, f.Email)
	assert.Nil(t, f.SubscriberCount)
	assert.Nil(t, f.Social)
}

func intPtr(n int) *int { return &n }
