package crawl_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/prospect-labs/prospect/internal/crawl"
)

func document(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestExtractTextStripsScriptsAndStyles(t *testing.T) {
	doc := document(t, `<html><head>
		<style>body { color: red }</style>
	</head><body>
		<h1>Acme Robotics</h1>
		<script>window.track("pageview")</script>
		<p>Industrial   automation
		for   mid-market plants.</p>
		<noscript>Enable JavaScript</noscript>
	</body></html>`)

	got := crawl.ExtractText(doc)

	want := "Acme Robotics Industrial automation for mid-market plants."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractTextTruncates(t *testing.T) {
	body := strings.Repeat("word ", 5000)
	doc := document(t, "<html><body>"+body+"</body></html>")

	got := crawl.ExtractText(doc)

	if n := len([]rune(got)); n > 12000 {
		t.Errorf("text not truncated: %d runes", n)
	}
}

func TestSnapshotText(t *testing.T) {
	s := crawl.Snapshot{
		Site: "https://acme.example",
		Pages: []crawl.Page{
			{URL: "https://acme.example", Title: "Home", Text: "landing"},
			{URL: "https://acme.example/about", Title: "About", Text: "team"},
		},
	}

	text := s.Text()

	for _, fragment := range []string{"## Home (https://acme.example)", "landing", "## About", "team"} {
		if !strings.Contains(text, fragment) {
			t.Errorf("missing %q in snapshot text", fragment)
		}
	}
}
