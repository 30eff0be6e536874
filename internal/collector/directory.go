package collector

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/newsletter-cli/internal/fetcher"
	"github.com/sells-group/newsletter-cli/internal/model"
)

// DirectoryOptions configures the directory collector.
type DirectoryOptions struct {
	URLs []string
}

// Directory scrapes newsletter-directory listing pages. The directory does
// not publish subscriber counts, so that field is never set here.
type Directory struct {
	fetch fetcher.Fetcher
	opts  DirectoryOptions
}

// NewDirectory creates the directory collector.
func NewDirectory(fetch fetcher.Fetcher, opts DirectoryOptions) *Directory {
	return &Directory{fetch: fetch, opts: opts}
}

func (c *Directory) Source() model.Source { return model.SourceDirectory }

// Collect scrapes every configured listing page. Per-page failures are
// logged and skipped; the collector fails only when every page failed.
func (c *Directory) Collect(ctx context.Context) ([]model.RawRecord, error) {
	if len(c.opts.URLs) == 0 {
		return nil, nil
	}

	var records []model.RawRecord
	failures := 0

	for _, pageURL := range c.opts.URLs {
		recs, err := c.collectPage(ctx, pageURL)
		if err != nil {
			failures++
			zap.L().Warn("directory: page failed",
				zap.String("url", pageURL),
				zap.Error(err),
			)
			continue
		}
		records = append(records, recs...)
	}

	if failures == len(c.opts.URLs) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSourceTimeout
		}
		return nil, eris.Wrap(ErrSourceUnavailable, "directory: all pages failed")
	}
	return records, nil
}

func (c *Directory) collectPage(ctx context.Context, pageURL string) ([]model.RawRecord, error) {
	body, err := c.fetch.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "directory: parse %s", pageURL)
	}

	var records []model.RawRecord
	doc.Find("div.blog-list-container div.blog-list").Each(func(_ int, item *goquery.Selection) {
		rec, ok := c.parseItem(item, pageURL)
		if ok {
			records = append(records, rec)
		}
	})

	zap.L().Info("directory: page scraped",
		zap.String("url", pageURL),
		zap.Int("items", len(records)),
	)
	return records, nil
}

func (c *Directory) parseItem(item *goquery.Selection, pageURL string) (model.RawRecord, bool) {
	nameElem := item.Find("div.blog-name a").First()
	name := strings.TrimSpace(nameElem.Text())
	link, _ := nameElem.Attr("href")
	if name == "" && link == "" {
		return model.RawRecord{}, false
	}

	fields := make(map[string]any)
	if name != "" {
		fields[model.FieldName] = name
	}
	if link != "" {
		fields[model.FieldLink] = absoluteURL(pageURL, link)
	}

	if publisher := strings.TrimSpace(item.Find("div.blog-desc i").First().Text()); publisher != "" {
		fields[model.FieldPublisher] = publisher
	}

	var social []string
	item.Find("div.blog-contact a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		switch {
		case href == "":
		case strings.HasPrefix(href, "mailto:"):
			fields[model.FieldEmail] = strings.TrimPrefix(href, "mailto:")
		default:
			social = append(social, href)
		}
	})
	if len(social) > 0 {
		fields[model.FieldSocial] = social
	}

	return model.RawRecord{
		Source:    model.SourceDirectory,
		Fields:    fields,
		FetchedAt: time.Now().UTC(),
	}, true
}

// absoluteURL resolves href against the listing page URL.
func absoluteURL(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
