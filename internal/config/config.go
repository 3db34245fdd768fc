package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for jsonedit
type Config struct {
	View   ViewConfig   `yaml:"view"`
	Editor EditorConfig `yaml:"editor"`
	Drag   DragConfig   `yaml:"drag"`
	Log    LogConfig    `yaml:"log"`
}

// ViewConfig controls how the view tree is built and labelled
type ViewConfig struct {
	MaxLabelLength int `yaml:"max_label_length"`
	LoadDepth      int `yaml:"load_depth"`
	ExpandAllLimit int `yaml:"expand_all_limit"`
}

// EditorConfig controls edit operations and text validation
type EditorConfig struct {
	ValidationDelay time.Duration `yaml:"validation_delay"`
	Indent          string        `yaml:"indent"`
	PasteDepth      int           `yaml:"paste_depth"`
}

// DragConfig controls drag-and-drop behaviour
type DragConfig struct {
	ExpandDelay time.Duration `yaml:"expand_delay"`
}

// LogConfig controls the logger built by the CLI
type LogConfig struct {
	Level string `yaml:"level"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		View: ViewConfig{
			MaxLabelLength: 100,
			LoadDepth:      2,
			ExpandAllLimit: 1000,
		},
		Editor: EditorConfig{
			ValidationDelay: 250 * time.Millisecond,
			Indent:          "  ",
			PasteDepth:      0,
		},
		Drag: DragConfig{
			ExpandDelay: 500 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonedit.yml", ".jsonedit.yaml", "jsonedit.yml", "jsonedit.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate rejects values the editor cannot work with
func (c *Config) Validate() error {
	if c.View.MaxLabelLength < 0 {
		return fmt.Errorf("view.max_label_length must not be negative, got %d", c.View.MaxLabelLength)
	}
	if c.View.LoadDepth < 0 {
		return fmt.Errorf("view.load_depth must not be negative, got %d", c.View.LoadDepth)
	}
	if c.View.ExpandAllLimit < 0 {
		return fmt.Errorf("view.expand_all_limit must not be negative, got %d", c.View.ExpandAllLimit)
	}
	if c.Editor.PasteDepth < 0 {
		return fmt.Errorf("editor.paste_depth must not be negative, got %d", c.Editor.PasteDepth)
	}
	if c.Editor.ValidationDelay < 0 {
		return fmt.Errorf("editor.validation_delay must not be negative, got %s", c.Editor.ValidationDelay)
	}
	if c.Drag.ExpandDelay < 0 {
		return fmt.Errorf("drag.expand_delay must not be negative, got %s", c.Drag.ExpandDelay)
	}
	if strings.Trim(c.Editor.Indent, " \t") != "" {
		return fmt.Errorf("editor.indent must contain only spaces and tabs, got %q", c.Editor.Indent)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	return nil
}

// Debug reports whether debug logging is requested
func (c *Config) Debug() bool {
	return strings.EqualFold(c.Log.Level, "debug")
}

// MergeConfigs merges CLI overrides into a base config.
// Non-zero values from override take precedence over base values.
func MergeConfigs(base, override *Config) *Config {
	merged := *base

	if override.View.MaxLabelLength != 0 {
		merged.View.MaxLabelLength = override.View.MaxLabelLength
	}
	if override.View.LoadDepth != 0 {
		merged.View.LoadDepth = override.View.LoadDepth
	}
	if override.Editor.Indent != "" {
		merged.Editor.Indent = override.Editor.Indent
	}
	if override.Log.Level != "" {
		merged.Log.Level = override.Log.Level
	}

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence. Zero CLI
// values leave the file or default value in place.
func LoadConfigWithCLI(configPath, cliIndent string, cliLoadDepth int, cliDebug bool) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	override := &Config{
		View:   ViewConfig{LoadDepth: cliLoadDepth},
		Editor: EditorConfig{Indent: cliIndent},
	}
	if cliDebug {
		override.Log.Level = "debug"
	}
	cfg = MergeConfigs(cfg, override)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
