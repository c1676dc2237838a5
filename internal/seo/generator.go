// Package seo generates pin copy (title, description, hashtags, alt text)
// from a topic by asking an OpenAI-compatible completion endpoint and
// extracting the JSON object embedded in its reply.
package seo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	openai "github.com/sashabaranov/go-openai"

	"pinposter/internal/config"
	"pinposter/internal/models"
)

const systemPrompt = `You are an SEO copywriter for Pinterest pins.
Reply with a single JSON object and nothing else, in this exact shape:
{
  "title": "catchy pin title, at most 100 characters",
  "description": "start with a five star rating like ★★★★★ followed by a short marketing blurb of 2-3 sentences",
  "hashtags": ["five to ten relevant hashtags, lowercase, without the # symbol"],
  "altText": "plain description of the poster image for accessibility, at most 100 characters"
}
Write all text fields in the requested language.`

var languageNames = map[string]string{
	"en": "English",
	"fr": "French",
	"ar": "Arabic",
}

// GenerationError reports a failed LLM call or an unusable model reply.
type GenerationError struct {
	Reason string
	Err    error
}

func (e GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("content generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("content generation failed: %s", e.Reason)
}

func (e GenerationError) Unwrap() error { return e.Err }

// Generator produces PinContent for a topic.
type Generator interface {
	Generate(ctx context.Context, topic, language string) (*models.PinContent, error)
}

type generator struct {
	client   *openai.Client
	model    string
	site     string
	validate *validator.Validate
}

// NewGenerator builds a Generator from the resolved request configuration.
func NewGenerator(rc config.RequestConfig) Generator {
	cfg := openai.DefaultConfig(rc.LLMAPIKey)
	if rc.LLMBaseURL != "" {
		cfg.BaseURL = rc.LLMBaseURL
	}
	return &generator{
		client:   openai.NewClientWithConfig(cfg),
		model:    rc.LLMModel,
		site:     rc.WebsiteURL,
		validate: validator.New(),
	}
}

func (g *generator) Generate(ctx context.Context, topic, language string) (*models.PinContent, error) {
	langName, ok := languageNames[language]
	if !ok {
		langName = languageNames["en"]
	}

	userPrompt := fmt.Sprintf(
		"Topic: %s\nLanguage: %s\nThe pin links to %s; make the copy entice clicks to that site.",
		topic, langName, g.site,
	)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		MaxTokens:   600,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, GenerationError{Reason: "completion request failed", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, GenerationError{Reason: "completion returned no choices"}
	}

	content, err := parseContent(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if err := g.validate.Struct(content); err != nil {
		return nil, GenerationError{Reason: "generated content failed validation", Err: err}
	}
	return content, nil
}

// parseContent extracts and decodes the JSON object embedded in the model
// reply. Models routinely wrap the object in prose or a code fence.
func parseContent(raw string) (*models.PinContent, error) {
	blob, ok := extractJSON(raw)
	if !ok {
		return nil, GenerationError{Reason: "invalid JSON response"}
	}

	var content models.PinContent
	if err := json.Unmarshal([]byte(blob), &content); err != nil {
		return nil, GenerationError{Reason: "invalid JSON response", Err: err}
	}

	// The shape asks for bare tags, but models still prefix # sometimes.
	for i, tag := range content.Hashtags {
		content.Hashtags[i] = strings.TrimPrefix(strings.TrimSpace(tag), "#")
	}
	return &content, nil
}

// extractJSON returns the first brace-delimited substring of s, scanning from
// the first '{' to its balancing '}' while skipping braces inside JSON
// strings.
func extractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
