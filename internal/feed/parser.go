package feed

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"github.com/bilgisen/khabar/internal/models"
)

const maxSummaryRunes = 2000

// Parser turns feed documents into staging items.
type Parser struct {
	htmlTagRegex *regexp.Regexp
}

func NewParser() *Parser {
	return &Parser{
		htmlTagRegex: regexp.MustCompile(`<[^>]*>`),
	}
}

// CleanHTML removes HTML tags and normalizes whitespace
func (p *Parser) CleanHTML(input string) string {
	cleaned := p.htmlTagRegex.ReplaceAllString(input, " ")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

// Parse reads an RSS, Atom or JSON feed. Entries without a title or any
// identity are skipped and reported in the returned error list.
func (p *Parser) Parse(body []byte) ([]models.RssItem, []error, error) {
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]models.RssItem, 0, len(feed.Items))
	seen := make(map[string]bool, len(feed.Items))
	var skipped []error
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		item := p.normalize(entry)
		if err := validateItem(item); err != nil {
			skipped = append(skipped, err)
			continue
		}
		if seen[item.GUID] {
			continue
		}
		seen[item.GUID] = true
		items = append(items, item)
	}
	return items, skipped, nil
}

func (p *Parser) normalize(e *gofeed.Item) models.RssItem {
	item := models.RssItem{
		GUID:     strings.TrimSpace(e.GUID),
		Title:    p.CleanHTML(e.Title),
		Link:     strings.TrimSpace(e.Link),
		ImageURL: imageOf(e),
		Author:   authorOf(e),
	}
	if item.GUID == "" {
		item.GUID = item.Link
	}

	summary := e.Description
	if summary == "" {
		summary = e.Content
	}
	item.Summary = truncate(p.CleanHTML(summary), maxSummaryRunes)

	switch {
	case e.PublishedParsed != nil:
		t := e.PublishedParsed.UTC()
		item.PublishedAt = &t
	case e.UpdatedParsed != nil:
		t := e.UpdatedParsed.UTC()
		item.PublishedAt = &t
	}
	return item
}

func validateItem(item models.RssItem) error {
	if item.GUID == "" {
		return errors.New("missing required field: guid or link")
	}
	if item.Title == "" {
		return fmt.Errorf("item %s: missing required field: title", item.GUID)
	}
	return nil
}

func imageOf(e *gofeed.Item) string {
	if e.Image != nil && e.Image.URL != "" {
		return strings.TrimSpace(e.Image.URL)
	}
	for _, enc := range e.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return strings.TrimSpace(enc.URL)
		}
	}
	if media, ok := e.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				if u := ext.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}
	return ""
}

func authorOf(e *gofeed.Item) string {
	if e.Author != nil && e.Author.Name != "" {
		return e.Author.Name
	}
	for _, a := range e.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// publishedOrNow is used when an entry carries no date.
func publishedOrNow(item models.RssItem, now time.Time) time.Time {
	if item.PublishedAt != nil {
		return *item.PublishedAt
	}
	return now
}
