package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/newsletter-cli/internal/model"
)

func searchURL(keyword string, limit string) string {
	return "https://platform.example.com/api/v1/search/publications?limit=" + limit +
		"&offset=0&query=" + keyword + "&sort=top"
}

func TestPlatformCollect_MapsPublications(t *testing.T) {
	fetch := &stubFetcher{responses: map[string][]byte{
		searchURL("copywriting", "50"): []byte(`{"publications": [
			{
				"id": 11,
				"name": "The Copy Letter",
				"custom_domain": "copyletter.example.com",
				"author_name": "Jane Doe",
				"total_subscribers": 12300,
				"twitter_screen_name": "janewrites"
			},
			{
				"id": 12,
				"name": "Growth Notes",
				"subdomain": "growthnotes"
			}
		]}`),
	}}
	c := NewPlatform(fetch, PlatformOptions{
		BaseURL:         "https://platform.example.com",
		PublicationHost: "substack.com",
		Keywords:        []string{"copywriting"},
	})

	records, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, model.SourcePlatform, first.Source)
	assert.Equal(t, "The Copy Letter", first.Fields[model.FieldName])
	assert.Equal(t, "https://copyletter.example.com", first.Fields[model.FieldLink])
	assert.Equal(t, "Jane Doe", first.Fields[model.FieldPublisher])
	assert.Equal(t, 12300, first.Fields[model.FieldSubscribers])
	assert.Equal(t, map[string]string{"twitter": "@janewrites"}, first.Fields[model.FieldSocial])

	second := records[1]
	assert.Equal(t, "https://growthnotes.substack.com", second.Fields[model.FieldLink],
		"subdomain publications resolve against the publication host")
	assert.NotContains(t, second.Fields, model.FieldSubscribers)
}

func TestPlatformCollect_DeduplicatesAcrossKeywords(t *testing.T) {
	pub := []byte(`{"publications": [{"id": 11, "name": "The Copy Letter", "subdomain": "copy"}]}`)
	fetch := &stubFetcher{responses: map[string][]byte{
		searchURL("copywriting", "50"): pub,
		searchURL("marketing", "50"):   pub,
	}}
	c := NewPlatform(fetch, PlatformOptions{
		BaseURL:         "https://platform.example.com",
		PublicationHost: "substack.com",
		Keywords:        []string{"copywriting", "marketing"},
	})

	records, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestPlatformCollect_PartialKeywordFailureTolerated(t *testing.T) {
	fetch := &stubFetcher{responses: map[string][]byte{
		searchURL("copywriting", "50"): []byte(`{"publications": [{"id": 1, "name": "X", "subdomain": "x"}]}`),
	}}
	c := NewPlatform(fetch, PlatformOptions{
		BaseURL:         "https://platform.example.com",
		PublicationHost: "substack.com",
		Keywords:        []string{"copywriting", "unknown"},
	})

	records, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestPlatformCollect_AllKeywordsFailed(t *testing.T) {
	c := NewPlatform(&stubFetcher{}, PlatformOptions{
		BaseURL:  "https://platform.example.com",
		Keywords: []string{"copywriting"},
	})

	_, err := c.Collect(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestPlatformCollect_NoKeywordsConfigured(t *testing.T) {
	c := NewPlatform(&stubFetcher{}, PlatformOptions{BaseURL: "https://platform.example.com"})

	records, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}
