// Package crawl fetches prospect websites and reduces them to text
// snapshots suitable for prompting. It deliberately stays shallow: the
// landing page plus a bounded set of same-host links.
package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"golang.org/x/sync/errgroup"
)

const (
	maxBodyBytes   = 2 << 20
	maxLinkedPages = 4
	maxTextRunes   = 12000
	fetchWorkers   = 4
)

// Page is the extracted content of a single fetched page.
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Snapshot is the crawl result for one website.
type Snapshot struct {
	Site      string    `json:"site"`
	Pages     []Page    `json:"pages"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Text concatenates all page text, separated by page URLs, for prompt use.
func (s *Snapshot) Text() string {
	var b strings.Builder
	for _, p := range s.Pages {
		fmt.Fprintf(&b, "## %s (%s)\n%s\n\n", p.Title, p.URL, p.Text)
	}
	return b.String()
}

// Crawler fetches website snapshots over a shared HTTP client.
type Crawler struct {
	client *http.Client
}

// New creates a Crawler with the given request timeout.
func New(timeout time.Duration) *Crawler {
	return &Crawler{
		client: &http.Client{Timeout: timeout},
	}
}

// Snapshot fetches the landing page at site, extracts its text and same-host
// links, then fetches up to maxLinkedPages of those links concurrently.
// Individual linked-page failures are dropped; only a landing page failure
// fails the snapshot.
func (c *Crawler) Snapshot(ctx context.Context, site string) (*Snapshot, error) {
	base, err := url.Parse(site)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid site url %q", site)
	}

	landing, links, err := c.fetchPage(ctx, base.String(), base)
	if err != nil {
		return nil, fmt.Errorf("fetch landing page: %w", err)
	}

	snapshot := &Snapshot{
		Site:      base.String(),
		Pages:     []Page{landing},
		FetchedAt: time.Now().UTC(),
	}

	if len(links) > maxLinkedPages {
		links = links[:maxLinkedPages]
	}

	pages := make([]*Page, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)

	for i, link := range links {
		g.Go(func() error {
			page, _, err := c.fetchPage(gctx, link, base)
			if err != nil {
				return nil
			}
			pages[i] = &page
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, p := range pages {
		if p != nil {
			snapshot.Pages = append(snapshot.Pages, *p)
		}
	}

	return snapshot, nil
}

func (c *Crawler) fetchPage(ctx context.Context, pageURL string, base *url.URL) (Page, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, nil, err
	}
	req.Header.Set("User-Agent", "prospect-crawler/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return Page{}, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	page := Page{
		URL:   pageURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  ExtractText(doc),
	}

	return page, sameHostLinks(doc, base), nil
}

// ExtractText flattens the visible document text, stripping scripts and
// styles and collapsing whitespace, truncated to maxTextRunes.
func ExtractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	text := doc.Find("body").Text()
	fields := strings.Fields(text)
	text = strings.Join(fields, " ")

	runes := []rune(text)
	if len(runes) > maxTextRunes {
		text = string(runes[:maxTextRunes])
	}
	return text
}

func sameHostLinks(doc *goquery.Document, base *url.URL) []string {
	seen := map[string]bool{base.String(): true}
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		ref, err := url.Parse(href)
		if err != nil {
			return
		}

		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""
		if resolved.Host != base.Host {
			return
		}

		key := resolved.String()
		if !seen[key] {
			seen[key] = true
			links = append(links, key)
		}
	})

	return links
}
