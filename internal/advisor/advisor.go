// Package advisor turns retrieved FRED data into a narrative report using
// a Gemini model. It produces the three sections the service promises:
// Executive Summary, Detailed Analysis, and Stakeholder Insights.
package advisor

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/enjojoy/fredagent/pkg/analysis"
	"github.com/enjojoy/fredagent/pkg/constants"
	"github.com/enjojoy/fredagent/pkg/errors"
	"github.com/enjojoy/fredagent/pkg/logging"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Sections holds the three narrative parts of a report.
type Sections struct {
	ExecutiveSummary    string
	DetailedAnalysis    string
	StakeholderInsights string
}

// Gemini is an advisor backed by the Gemini API.
type Gemini struct {
	apiKey string
	model  string
	logger *zerolog.Logger

	mu     sync.Mutex
	client *genai.Client
}

// Option configures a Gemini advisor.
type Option func(*Gemini)

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithLogger sets the advisor logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(g *Gemini) {
		g.logger = logger
	}
}

// New creates a Gemini advisor. The client is constructed lazily on the
// first Advise call so that construction never needs a context.
func New(apiKey string, opts ...Option) *Gemini {
	g := &Gemini{
		apiKey: apiKey,
		model:  DefaultModel,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Model returns the configured model name.
func (g *Gemini) Model() string {
	return g.model
}

// getOrCreateClient returns the cached genai client, creating it if needed.
func (g *Gemini) getOrCreateClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	if g.apiKey == "" {
		return nil, &errors.AuthenticationError{
			Service: "gemini",
			Method:  "api_key",
			Message: "Gemini API key not configured, set GEMINI_API_KEY",
			Err:     errors.ErrAPIKeyRequired,
		}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAdvisorError(g.model, "failed to create Gemini client", err)
	}

	g.client = client
	return client, nil
}

// generationContext bounds a single generation call. The caller's deadline
// still applies when it is shorter.
func generationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, constants.AdvisorTimeout)
}

// Advise generates the narrative sections for a query and its data digest.
func (g *Gemini) Advise(ctx context.Context, query string, briefs []analysis.SeriesBrief) (Sections, error) {
	client, err := g.getOrCreateClient(ctx)
	if err != nil {
		return Sections{}, err
	}

	prompt := buildPrompt(query, briefs)

	g.logger.Debug().
		Str("model", g.model).
		Int("series_count", len(briefs)).
		Msg("Requesting advisor generation")

	genCtx, cancel := generationContext(ctx)
	defer cancel()

	resp, err := client.Models.GenerateContent(genCtx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.3),
	})
	if err != nil {
		return Sections{}, errors.NewAdvisorError(g.model, "generation failed", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Sections{}, errors.NewAdvisorError(g.model, "model returned no text", nil)
	}

	return ParseSections(text), nil
}
