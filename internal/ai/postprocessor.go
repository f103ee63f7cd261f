package ai

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	controlChars  = regexp.MustCompile(`[\x00-\x09\x0B-\x1F\x7F]`)
	scriptBlocks  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	dangerousTags = regexp.MustCompile(`(?i)</?(script|iframe|object|embed|link|meta)[^>]*>`)
)

// PostProcessor validates and cleans model output before it is stored.
type PostProcessor struct {
	maxTitleLength   int
	maxExcerptLength int
}

func NewPostProcessor() *PostProcessor {
	return &PostProcessor{
		maxTitleLength:   200,
		maxExcerptLength: 500,
	}
}

// Process cleans t in place. A translation without a title is rejected.
func (p *PostProcessor) Process(t *Translation) error {
	t.Title = truncateRunes(p.cleanText(t.Title), p.maxTitleLength)
	t.Excerpt = truncateRunes(p.cleanText(t.Excerpt), p.maxExcerptLength)
	t.Content = p.cleanContent(t.Content)

	if t.Title == "" {
		return fmt.Errorf("missing required field: title_hi")
	}
	return nil
}

// cleanText removes control characters and normalizes whitespace.
func (p *PostProcessor) cleanText(s string) string {
	s = controlChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// cleanContent strips markup that must never reach the site.
func (p *PostProcessor) cleanContent(content string) string {
	content = scriptBlocks.ReplaceAllString(content, "")
	content = dangerousTags.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.TrimSpace(content)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max-1])) + "…"
}
