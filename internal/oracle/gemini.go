package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("gemini: empty response")

// GeminiConfig tunes the judge model.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

const systemInstruction = `You are a strict but fair quiz grader. ` +
	`You compare a player's free-text answer with the expected answer and reply with JSON only.`

// Gemini judges answers with a Google Gemini model. It implements validation.Oracle.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewGemini creates the client once; callers must Close it.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	name := strings.TrimSpace(cfg.Model)
	if name == "" {
		return nil, errors.New("gemini: model is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	m := client.GenerativeModel(name)
	m.GenerationConfig = generationConfig(cfg)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}
	return &Gemini{client: client, model: m, name: name}, nil
}

func generationConfig(cfg GeminiConfig) genai.GenerationConfig {
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}
	return genai.GenerationConfig{
		Temperature:      ptrFloat32(cfg.Temperature),
		MaxOutputTokens:  &maxTokens,
		ResponseMIMEType: "application/json",
	}
}

// Model returns the configured model identifier.
func (g *Gemini) Model() string { return g.name }

// Judge sends prompt and returns the raw model text. No retries: the caller falls back on failure.
func (g *Gemini) Judge(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini judge: %w", err)
	}
	txt := strings.TrimSpace(firstText(resp))
	if txt == "" {
		return "", ErrEmptyResponse
	}
	return txt, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
