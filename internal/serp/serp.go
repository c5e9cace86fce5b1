// Package serp collects the organic results of the first page of a Google search.
//
// Fetching drives a real browser through chromedp because the result markup is
// rendered by script. Parsing is separate and works on any saved page.
package serp

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/geocolumn/domain/model"
)

// ErrNoResults is returned when no candidate selector matches the page.
var ErrNoResults = errors.New("serp: no results found, adjust the candidate selectors")

// CandidateSelectors locate result titles. Google switches markup between
// regions and experiments, so they are tried in order and the first one that
// matches anything is used.
var CandidateSelectors = []string{
	"div#search a h3",
	"div#rso a h3",
	"#search a h3",
	"a h3",
}

// Result is one organic search result.
type Result struct {
	Title string
	URL   string
}

// Column names of the results table.
const (
	ColumnTitle = "titulo"
	ColumnURL   = "url"
)

// ParseResults extracts results from a search results page. Items without a
// title or link are skipped and repeated URLs are kept once, in page order.
func ParseResults(r io.Reader) ([]Result, error) {
	return parseResults(r, slog.Default())
}

func parseResults(r io.Reader, logger *slog.Logger) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var titles *goquery.Selection
	for _, selector := range CandidateSelectors {
		if found := doc.Find(selector); found.Length() > 0 {
			logger.Debug("result selector matched", "selector", selector, "elements", found.Length())
			titles = found
			break
		}
	}
	if titles == nil {
		return nil, ErrNoResults
	}

	results := make([]Result, 0, titles.Length())
	seen := make(map[string]struct{})
	titles.Each(func(_ int, h3 *goquery.Selection) {
		link := h3.Closest("a")
		title := strings.TrimSpace(h3.Text())
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if title == "" || href == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		results = append(results, Result{Title: title, URL: href})
	})
	return results, nil
}

// ParseHTML is ParseResults for a page held in a string.
func ParseHTML(html string) ([]Result, error) {
	return ParseResults(strings.NewReader(html))
}

// ToTable converts results to a table with the columns titulo and url.
func ToTable(results []Result) *model.Table {
	records := make([]model.Record, 0, len(results))
	for _, r := range results {
		records = append(records, model.NewRecord([]string{r.Title, r.URL}))
	}
	return model.NewTable("serp", model.NewHeader([]string{ColumnTitle, ColumnURL}), records)
}
