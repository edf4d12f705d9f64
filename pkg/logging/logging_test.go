package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/enjojoy/fredagent/pkg/logging"
)

func TestNewWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf)

	logger.Info().Str("series_id", "UNRATE").Msg("fetch complete")

	out := buf.String()
	assert.Contains(t, out, `"series_id":"UNRATE"`)
	assert.Contains(t, out, "fetch complete")
}

func TestConfigLevelFiltering(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(originalLevel)

	var buf bytes.Buffer
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "warn",
		Format: "json",
	})
	logger = logger.Output(&buf)

	logger.Info().Msg("below threshold")
	logger.Warn().Msg("at threshold")

	out := buf.String()
	assert.NotContains(t, out, "below threshold")
	assert.Contains(t, out, "at threshold")
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf)

	ctx := logging.WithLogger(context.Background(), &logger)
	ctx = logging.WithSeries(ctx, "CPIAUCSL")
	ctx = logging.WithJob(ctx, "job-123")

	logging.Ctx(ctx).Info().Msg("processing")

	out := buf.String()
	assert.Contains(t, out, `"series_id":"CPIAUCSL"`)
	assert.Contains(t, out, `"job_id":"job-123"`)
}

func TestRequestID(t *testing.T) {
	ctx := logging.WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", logging.RequestID(ctx))
	assert.Equal(t, "", logging.RequestID(context.Background()))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.NotNil(t, logging.FromContext(context.Background()))
	assert.NotNil(t, logging.FromContext(nil)) //nolint:staticcheck // exercising nil-context fallback
}
