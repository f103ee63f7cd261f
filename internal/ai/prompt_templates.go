package ai

import (
	"fmt"
	"strings"
)

// PromptTemplates contains the prompt templates sent to the model.
var PromptTemplates = struct {
	HindiTranslation string
}{
	HindiTranslation: `You are a senior Hindi news editor.
Translate the following English news story into natural, formal Hindi (Devanagari script) suitable for a news website:

1. Keep names of people, places and organisations accurate; transliterate them when there is no common Hindi form
2. Do not add facts, opinions or commentary
3. Keep paragraph breaks in the content

Format your response as a valid JSON object with these fields:
- title_hi (string)
- excerpt_hi (string)
- content_hi (string)

English Story:
Title: %s

Excerpt: %s

Content: %s`,
}

// BuildTranslationPrompt creates the prompt for a Hindi translation.
func BuildTranslationPrompt(in Translation) string {
	return fmt.Sprintf(PromptTemplates.HindiTranslation,
		escapeForPrompt(in.Title),
		escapeForPrompt(in.Excerpt),
		strings.TrimSpace(in.Content))
}

// escapeForPrompt flattens a single-line field.
func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}

// ResponseTemplate is the JSON structure expected back from the model.
type ResponseTemplate struct {
	TitleHi   string `json:"title_hi"`
	ExcerptHi string `json:"excerpt_hi"`
	ContentHi string `json:"content_hi"`
}
