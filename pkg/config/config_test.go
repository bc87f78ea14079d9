package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "127.0.0.1:8939", cfg.Control.Address)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 60.0, cfg.Typing.DefaultWPM)
	assert.Equal(t, 1000, cfg.Typing.MaxTextLength)
	assert.Equal(t, 100.0, cfg.Locator.MinWidth)
	assert.Equal(t, 100.0, cfg.Locator.MinHeight)

	// Selector order matters: most specific first, generic
	// contenteditable later, container selectors last.
	require.NotEmpty(t, cfg.Locator.Selectors)
	assert.Equal(t, ".kix-lineview-content", cfg.Locator.Selectors[0])
	assert.Contains(t, cfg.Locator.Selectors, `[contenteditable="true"]`)
	assert.NotEmpty(t, cfg.Locator.FallbackSelector)
	assert.NotEmpty(t, cfg.Emitter.InnerSelectors)

	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Control.Address, cfg.Control.Address)
	assert.Equal(t, Default().Locator.Selectors, cfg.Locator.Selectors)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
control:
  address: "127.0.0.1:9999"
browser:
  headless: true
typing:
  default_wpm: 45
locator:
  selectors:
    - ".custom-editor"
  min_width: 50
  min_height: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Control.Address)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 45.0, cfg.Typing.DefaultWPM)
	assert.Equal(t, []string{".custom-editor"}, cfg.Locator.Selectors)
	assert.Equal(t, 50.0, cfg.Locator.MinWidth)

	// Untouched sections keep their defaults.
	assert.Equal(t, 1000, cfg.Typing.MaxTextLength)
	assert.Equal(t, Default().Document.URLPattern, cfg.Document.URLPattern)
	assert.Equal(t, Default().Emitter.InnerSelectors, cfg.Emitter.InnerSelectors)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locator: [not: a: map"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty control address",
			mutate:  func(c *Config) { c.Control.Address = "" },
			wantErr: "control.address",
		},
		{
			name:    "empty url pattern",
			mutate:  func(c *Config) { c.Document.URLPattern = "" },
			wantErr: "url_pattern",
		},
		{
			name:    "zero wpm",
			mutate:  func(c *Config) { c.Typing.DefaultWPM = 0 },
			wantErr: "default_wpm",
		},
		{
			name:    "negative wpm",
			mutate:  func(c *Config) { c.Typing.DefaultWPM = -10 },
			wantErr: "default_wpm",
		},
		{
			name:    "zero max length",
			mutate:  func(c *Config) { c.Typing.MaxTextLength = 0 },
			wantErr: "max_text_length",
		},
		{
			name:    "zero viewport",
			mutate:  func(c *Config) { c.Browser.ViewportWidth = 0 },
			wantErr: "viewport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFillEmptyRestoresSelectorDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
locator:
  selectors: []
emitter:
  inner_selectors: []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Locator.Selectors, cfg.Locator.Selectors)
	assert.Equal(t, Default().Emitter.InnerSelectors, cfg.Emitter.InnerSelectors)
}
