package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/newsletter-cli/internal/fetcher"
	"github.com/sells-group/newsletter-cli/internal/model"
)

// PlatformOptions configures the platform discovery API collector.
type PlatformOptions struct {
	BaseURL         string
	PublicationHost string // host suffix for subdomain-hosted publications
	Keywords        []string
	PageSize        int
}

// platformSearchResponse is the discovery endpoint's JSON shape.
type platformSearchResponse struct {
	Publications []platformPublication `json:"publications"`
}

type platformPublication struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Subdomain         string `json:"subdomain"`
	CustomDomain      string `json:"custom_domain"`
	AuthorName        string `json:"author_name"`
	TotalSubscribers  *int   `json:"total_subscribers"`
	TwitterScreenName string `json:"twitter_screen_name"`
}

// Platform searches a newsletter platform's discovery API for each
// configured keyword. Keywords are passed through opaquely from run
// configuration.
type Platform struct {
	fetch fetcher.Fetcher
	opts  PlatformOptions
}

// NewPlatform creates the platform API collector.
func NewPlatform(fetch fetcher.Fetcher, opts PlatformOptions) *Platform {
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	return &Platform{fetch: fetch, opts: opts}
}

func (c *Platform) Source() model.Source { return model.SourcePlatform }

// Collect runs one search per keyword and flattens the hits. Publications
// seen under multiple keywords are reported once.
func (c *Platform) Collect(ctx context.Context) ([]model.RawRecord, error) {
	if len(c.opts.Keywords) == 0 {
		return nil, nil
	}

	var records []model.RawRecord
	seen := make(map[int64]struct{})
	failures := 0

	for _, keyword := range c.opts.Keywords {
		resp, err := c.search(ctx, keyword)
		if err != nil {
			failures++
			zap.L().Warn("platform: keyword search failed",
				zap.String("keyword", keyword),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("platform: keyword searched",
			zap.String("keyword", keyword),
			zap.Int("publications", len(resp.Publications)),
		)
		for _, pub := range resp.Publications {
			if _, dup := seen[pub.ID]; dup {
				continue
			}
			seen[pub.ID] = struct{}{}
			records = append(records, c.publicationRecord(pub))
		}
	}

	if failures == len(c.opts.Keywords) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSourceTimeout
		}
		return nil, eris.Wrap(ErrSourceUnavailable, "platform: all keyword searches failed")
	}
	return records, nil
}

func (c *Platform) search(ctx context.Context, keyword string) (*platformSearchResponse, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("limit", fmt.Sprintf("%d", c.opts.PageSize))
	q.Set("offset", "0")
	q.Set("sort", "top")

	var resp platformSearchResponse
	searchURL := c.opts.BaseURL + "/api/v1/search/publications?" + q.Encode()
	if err := c.fetch.GetJSON(ctx, searchURL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Platform) publicationRecord(pub platformPublication) model.RawRecord {
	fields := make(map[string]any)

	if pub.Name != "" {
		fields[model.FieldName] = pub.Name
	}
	switch {
	case pub.CustomDomain != "":
		fields[model.FieldLink] = "https://" + pub.CustomDomain
	case pub.Subdomain != "":
		fields[model.FieldLink] = fmt.Sprintf("https://%s.%s", pub.Subdomain, c.opts.PublicationHost)
	}
	if pub.AuthorName != "" {
		fields[model.FieldPublisher] = pub.AuthorName
	}
	if pub.TotalSubscribers != nil {
		fields[model.FieldSubscribers] = *pub.TotalSubscribers
	}
	if pub.TwitterScreenName != "" {
		fields[model.FieldSocial] = map[string]string{"twitter": "@" + pub.TwitterScreenName}
	}

	return model.RawRecord{
		Source:    model.SourcePlatform,
		Fields:    fields,
		FetchedAt: time.Now().UTC(),
	}
}
