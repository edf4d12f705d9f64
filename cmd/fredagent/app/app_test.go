package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enjojoy/fredagent/pkg/errors"
)

func newTestApp(t *testing.T, config *Config) *App {
	t.Helper()
	a, err := New("1.2.3", "abc1234", "2026-01-01", "test", WithConfig(config))
	require.NoError(t, err)
	return a
}

func TestNewAppVersionInfo(t *testing.T) {
	a := newTestApp(t, &Config{})

	assert.Equal(t, "1.2.3", a.Version())
	assert.Equal(t, "abc1234", a.Commit())
	assert.Equal(t, "2026-01-01", a.Date())
	assert.Equal(t, "test", a.BuiltBy())
	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Config())
}

func TestFREDClientRequiresKey(t *testing.T) {
	a := newTestApp(t, &Config{})

	_, err := a.FREDClient()
	require.Error(t, err)
	assert.True(t, errors.IsAPIKeyError(err))
}

func TestAdvisorRequiresKey(t *testing.T) {
	a := newTestApp(t, &Config{FredAPIKey: "fredkey"})

	_, err := a.Advisor()
	require.Error(t, err)
	assert.True(t, errors.IsAPIKeyError(err))
}

func TestAgentWiresDependencies(t *testing.T) {
	a := newTestApp(t, &Config{FredAPIKey: "fredkey", GeminiAPIKey: "geminikey"})

	ag, err := a.Agent()
	require.NoError(t, err)
	assert.NotNil(t, ag)

	// Singleton: second call returns the same instance.
	again, err := a.Agent()
	require.NoError(t, err)
	assert.Same(t, ag, again)
}

func TestVersionCommand(t *testing.T) {
	a := newTestApp(t, &Config{})

	cmd := a.NewVersionCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)

	assert.Contains(t, buf.String(), "fredagent 1.2.3")
}

func TestUpdateFromFlags(t *testing.T) {
	c := &Config{Format: "text", LogLevel: "info"}

	c.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, c.Verbose)
	assert.True(t, c.NoColor)
	assert.Equal(t, "text", c.Format)
	assert.Equal(t, "info", c.LogLevel)

	c.UpdateFromFlags(false, true, false, "json", "debug")
	assert.Equal(t, "json", c.Format)
	assert.Equal(t, "debug", c.LogLevel)
}
