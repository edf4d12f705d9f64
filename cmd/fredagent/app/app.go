// Package app provides the application context and dependency management
// for the fredagent CLI. It centralizes configuration, logging, and the
// construction of the query pipeline.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/enjojoy/fredagent/internal/advisor"
	"github.com/enjojoy/fredagent/internal/agent"
	"github.com/enjojoy/fredagent/pkg/errors"
	"github.com/enjojoy/fredagent/pkg/fred"
)

// App represents the fredagent application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Pipeline dependencies (lazy-initialized, singletons)
	mu      sync.Mutex
	fred    *fred.Client
	advisor *advisor.Gemini
	agent   *agent.Agent
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "failed to load configuration", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// FREDClient returns the FRED API client, creating it lazily.
// It fails when FRED_API_KEY is not configured.
func (a *App) FREDClient() (*fred.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fred != nil {
		return a.fred, nil
	}

	if a.config.FredAPIKey == "" {
		return nil, errors.NewConfigError("fred", "FRED_API_KEY is not set", errors.ErrAPIKeyRequired)
	}

	a.fred = fred.New(a.config.FredAPIKey, fred.WithLogger(a.logger))
	return a.fred, nil
}

// Advisor returns the Gemini advisor, creating it lazily.
// It fails when neither GEMINI_API_KEY nor GOOGLE_API_KEY is configured.
func (a *App) Advisor() (*advisor.Gemini, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.advisor != nil {
		return a.advisor, nil
	}

	if a.config.GeminiAPIKey == "" {
		return nil, errors.NewConfigError("advisor", "GEMINI_API_KEY (or GOOGLE_API_KEY) is not set", errors.ErrAPIKeyRequired)
	}

	a.advisor = advisor.New(a.config.GeminiAPIKey,
		advisor.WithModel(a.config.AdvisorModel),
		advisor.WithLogger(a.logger),
	)
	return a.advisor, nil
}

// Agent returns the query pipeline agent, creating it lazily along with
// its FRED client and advisor.
func (a *App) Agent() (*agent.Agent, error) {
	fredClient, err := a.FREDClient()
	if err != nil {
		return nil, err
	}
	adv, err := a.Advisor()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.agent == nil {
		a.agent = agent.New(fredClient, adv, agent.WithLogger(a.logger))
	}
	return a.agent, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
