package collector

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/newsletter-cli/internal/fetcher"
	"github.com/sells-group/newsletter-cli/internal/model"
)

// commonFeedPaths are probed on each configured site, in order.
var commonFeedPaths = []string{
	"/feed/",
	"/rss/",
	"/feed.xml",
	"/rss.xml",
	"/atom.xml",
	"/blog/feed/",
	"/index.xml",
}

// RSSOptions configures the RSS collector.
type RSSOptions struct {
	Websites        []string
	MaxFeedsPerSite int
}

// RSS discovers feeds on configured websites and reads newsletter metadata
// from the feed channel element.
type RSS struct {
	fetch  fetcher.Fetcher
	opts   RSSOptions
	parser *gofeed.Parser
}

// NewRSS creates the RSS collector.
func NewRSS(fetch fetcher.Fetcher, opts RSSOptions) *RSS {
	if opts.MaxFeedsPerSite <= 0 {
		opts.MaxFeedsPerSite = 3
	}
	return &RSS{
		fetch:  fetch,
		opts:   opts,
		parser: gofeed.NewParser(),
	}
}

func (c *RSS) Source() model.Source { return model.SourceRSS }

// Collect probes common feed locations on each configured website. Per-site
// failures are logged and skipped; the collector fails only when every site
// failed.
func (c *RSS) Collect(ctx context.Context) ([]model.RawRecord, error) {
	if len(c.opts.Websites) == 0 {
		return nil, nil
	}

	var records []model.RawRecord
	failures := 0

	for _, site := range c.opts.Websites {
		if err := ctx.Err(); err != nil {
			return records, eris.Wrap(ErrSourceTimeout, err.Error())
		}

		recs, err := c.collectSite(ctx, site)
		if err != nil {
			failures++
			zap.L().Warn("rss: site failed",
				zap.String("site", site),
				zap.Error(err),
			)
			continue
		}
		records = append(records, recs...)
	}

	if failures == len(c.opts.Websites) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSourceTimeout
		}
		return nil, eris.Wrap(ErrSourceUnavailable, "rss: all sites failed")
	}
	return records, nil
}

func (c *RSS) collectSite(ctx context.Context, site string) ([]model.RawRecord, error) {
	base := strings.TrimSuffix(site, "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}

	var records []model.RawRecord
	for _, path := range commonFeedPaths {
		if len(records) >= c.opts.MaxFeedsPerSite {
			break
		}
		body, err := c.fetch.Get(ctx, base+path)
		if err != nil {
			continue
		}
		feed, err := c.parser.ParseString(string(body))
		if err != nil {
			continue
		}
		records = append(records, c.feedRecord(feed, base))
	}

	if len(records) == 0 {
		return nil, eris.Errorf("rss: no feeds found for %s", site)
	}
	return records, nil
}

// feedRecord maps feed channel metadata into a raw record. Only observed
// fields are set; RSS rarely carries subscriber counts or social handles.
func (c *RSS) feedRecord(feed *gofeed.Feed, site string) model.RawRecord {
	fields := make(map[string]any)

	if feed.Title != "" {
		fields[model.FieldName] = feed.Title
	}
	link := feed.Link
	if link == "" {
		link = site
	}
	fields[model.FieldLink] = link

	authors := feed.Authors
	if len(authors) == 0 && feed.Author != nil {
		authors = []*gofeed.Person{feed.Author}
	}
	for _, author := range authors {
		if author == nil {
			continue
		}
		if author.Name != "" {
			fields[model.FieldPublisher] = author.Name
		}
		if author.Email != "" {
			fields[model.FieldEmail] = author.Email
		}
	}

	return model.RawRecord{
		Source:    model.SourceRSS,
		Fields:    fields,
		FetchedAt: time.Now().UTC(),
	}
}
