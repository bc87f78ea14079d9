// Package config loads the ghosttype configuration file.
//
// Configuration is a single YAML document, by default at
// ~/.ghosttype/config.yaml. A missing file is not an error: every
// setting has a built-in default matching the known host markup. The
// locator and emitter selector lists live here rather than in code
// because the host application's class names are obfuscated and
// versioned; when the host re-renders its editor under new markup, the
// selector lists are updated without a rebuild.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the ghosttype daemon and CLI.
type Config struct {
	Control  ControlConfig  `yaml:"control"`
	Browser  BrowserConfig  `yaml:"browser"`
	Document DocumentConfig `yaml:"document"`
	Locator  LocatorConfig  `yaml:"locator"`
	Emitter  EmitterConfig  `yaml:"emitter"`
	Typing   TypingConfig   `yaml:"typing"`
	History  HistoryConfig  `yaml:"history"`
}

// ControlConfig configures the local command channel.
type ControlConfig struct {
	// Address is the host:port the control server listens on.
	// Loopback only; the channel carries no authentication.
	Address string `yaml:"address"`
}

// BrowserConfig configures the managed Chromium instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs without a visible
	// window. Headed is the default so the simulated typing is
	// observable.
	Headless bool `yaml:"headless"`

	// ViewportWidth and ViewportHeight set the initial viewport size.
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`

	// TimeoutMs is the default timeout for page operations.
	TimeoutMs float64 `yaml:"timeout_ms"`
}

// DocumentConfig identifies the host document the actor attaches to.
type DocumentConfig struct {
	// URL is the document the daemon navigates to on startup.
	URL string `yaml:"url"`

	// URLPattern is the glob the supervisor matches page addresses
	// against before installing the actor.
	URLPattern string `yaml:"url_pattern"`
}

// LocatorConfig configures the editor surface search.
type LocatorConfig struct {
	// Selectors is the ordered candidate list, most specific first.
	Selectors []string `yaml:"selectors"`

	// FallbackSelector is the outermost known container, used when no
	// candidate passes the size check.
	FallbackSelector string `yaml:"fallback_selector"`

	// MinWidth and MinHeight are the visibility thresholds in CSS
	// pixels. Editable nodes smaller than this are assumed to be
	// administrative or decorative, not the editing surface.
	MinWidth  float64 `yaml:"min_width"`
	MinHeight float64 `yaml:"min_height"`
}

// EmitterConfig configures synthetic input emission.
type EmitterConfig struct {
	// InnerSelectors locate the most specific content node inside the
	// editor, where the host's input pipeline is most likely to
	// listen. Ordered, most specific first.
	InnerSelectors []string `yaml:"inner_selectors"`
}

// TypingConfig holds typing session defaults and limits.
type TypingConfig struct {
	// DefaultWPM is the speed used when the caller supplies none.
	DefaultWPM float64 `yaml:"default_wpm"`

	// MaxTextLength is the maximum payload length in characters.
	// Longer payloads are truncated, never trusted.
	MaxTextLength int `yaml:"max_text_length"`
}

// HistoryConfig configures the session history store.
type HistoryConfig struct {
	// Path is the SQLite database location. Empty disables history.
	Path string `yaml:"path"`
}

// Default returns the built-in configuration. The selector lists track
// the Google Docs document view as last observed; keep them current
// against the live host application.
func Default() Config {
	return Config{
		Control: ControlConfig{
			Address: "127.0.0.1:8939",
		},
		Browser: BrowserConfig{
			Headless:       false,
			ViewportWidth:  1280,
			ViewportHeight: 720,
			TimeoutMs:      30000,
		},
		Document: DocumentConfig{
			URL:        "https://docs.google.com/document/u/0/",
			URLPattern: "https://docs.google.com/document/*",
		},
		Locator: LocatorConfig{
			Selectors: []string{
				".kix-lineview-content",
				`[contenteditable="true"][role="textbox"]`,
				".kix-appview-editor",
				`[data-params*="editor"]`,
				`[aria-label*="document"]`,
				`[contenteditable="true"]`,
				`[role="textbox"]`,
				".kix-page-content-wrapper",
				".kix-appview-editor-content",
			},
			FallbackSelector: ".kix-appview-editor",
			MinWidth:         100,
			MinHeight:        100,
		},
		Emitter: EmitterConfig{
			InnerSelectors: []string{
				".kix-lineview-content",
				`[contenteditable="true"]`,
			},
		},
		Typing: TypingConfig{
			DefaultWPM:    60,
			MaxTextLength: 1000,
		},
		History: HistoryConfig{
			Path: defaultHistoryPath(),
		},
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".ghosttype", "config.yaml")
}

func defaultHistoryPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".ghosttype", "history.db")
}

// Load reads the configuration at path, layering it over the defaults.
// An empty path means the default location. A missing file yields the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.fillEmpty()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// fillEmpty restores defaults for list settings an explicit file left
// empty. An empty selector list is never useful.
func (c *Config) fillEmpty() {
	def := Default()
	if len(c.Locator.Selectors) == 0 {
		c.Locator.Selectors = def.Locator.Selectors
	}
	if len(c.Emitter.InnerSelectors) == 0 {
		c.Emitter.InnerSelectors = def.Emitter.InnerSelectors
	}
}

// Validate checks the configuration for values the daemon cannot run
// with.
func (c *Config) Validate() error {
	if c.Control.Address == "" {
		return fmt.Errorf("control.address cannot be empty")
	}
	if c.Document.URLPattern == "" {
		return fmt.Errorf("document.url_pattern cannot be empty")
	}
	if c.Typing.DefaultWPM <= 0 {
		return fmt.Errorf("typing.default_wpm must be positive, got %v", c.Typing.DefaultWPM)
	}
	if c.Typing.MaxTextLength <= 0 {
		return fmt.Errorf("typing.max_text_length must be positive, got %d", c.Typing.MaxTextLength)
	}
	if c.Locator.MinWidth < 0 || c.Locator.MinHeight < 0 {
		return fmt.Errorf("locator minimum size cannot be negative")
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("browser viewport dimensions must be positive")
	}
	return nil
}
