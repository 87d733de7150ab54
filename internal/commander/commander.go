package commander

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// DefaultLowFuel is the fuel level below which drones head home.
const DefaultLowFuel = 20

// Commander decides one turn of moves.
type Commander interface {
	Decide(ctx context.Context, s Situation) (Plan, error)
}

// ErrNoAPIKey is returned when the Gemini commander is requested without credentials.
var ErrNoAPIKey = errors.New("GOOGLE_API_KEY not set")

type generateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiCommander asks a Gemini model for each turn's plan.
type GeminiCommander struct {
	model    string
	lowFuel  int
	generate generateFunc
}

// NewGeminiCommander creates a commander backed by the Gemini API. An empty apiKey
// falls back to GOOGLE_API_KEY.
func NewGeminiCommander(ctx context.Context, apiKey, model string, lowFuel int) (*GeminiCommander, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	gen := func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return newGeminiCommander(model, lowFuel, gen), nil
}

func newGeminiCommander(model string, lowFuel int, gen generateFunc) *GeminiCommander {
	if lowFuel <= 0 {
		lowFuel = DefaultLowFuel
	}
	return &GeminiCommander{model: model, lowFuel: lowFuel, generate: gen}
}

// Model returns the configured model name.
func (c *GeminiCommander) Model() string { return c.model }

// Decide sends the situation report and parses the reply.
func (c *GeminiCommander) Decide(ctx context.Context, s Situation) (Plan, error) {
	text, err := c.generate(ctx, BuildPrompt(s, c.lowFuel))
	if err != nil {
		return Plan{}, fmt.Errorf("commander request: %w", err)
	}
	return ParsePlan(text)
}
