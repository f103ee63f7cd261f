// Package ai translates imported English stories into Hindi with Gemini.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Translation is the localizable text of an article.
type Translation struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
}

type GeminiClient struct {
	client  *resty.Client
	apiKey  string
	model   string
	baseURL string
	post    *PostProcessor
}

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		client:  resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		post:    NewPostProcessor(),
	}
}

// SetBaseURL points the client at another endpoint.
func (g *GeminiClient) SetBaseURL(u string) {
	g.baseURL = strings.TrimRight(u, "/")
}

// TranslateToHindi returns the Hindi rendition of in.
func (g *GeminiClient) TranslateToHindi(ctx context.Context, in Translation) (Translation, error) {
	response, err := g.callGeminiAPI(ctx, BuildTranslationPrompt(in))
	if err != nil {
		return Translation{}, fmt.Errorf("error calling Gemini API: %w", err)
	}

	out, err := parseTranslation(response)
	if err != nil {
		return Translation{}, fmt.Errorf("error parsing Gemini response: %w", err)
	}
	if err := g.post.Process(&out); err != nil {
		return Translation{}, err
	}
	return out, nil
}

func (g *GeminiClient) callGeminiAPI(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, g.model)

	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}

	var resp geminiResponse
	r, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", g.apiKey).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(url)

	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s", resp.Error.Message)
	}
	if r.IsError() {
		return "", fmt.Errorf("API error: status %d", r.StatusCode())
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func parseTranslation(response string) (Translation, error) {
	var result ResponseTemplate

	// Gemini sometimes wraps JSON in a markdown code block.
	clean := strings.TrimSpace(response)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return Translation{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return Translation{
		Title:   result.TitleHi,
		Excerpt: result.ExcerptHi,
		Content: result.ContentHi,
	}, nil
}
