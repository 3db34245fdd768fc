package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, pattern, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", pattern)
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	_ = tmpFile.Close()
	return tmpFile.Name()
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 100, cfg.View.MaxLabelLength)
	assert.Equal(t, 2, cfg.View.LoadDepth)
	assert.Equal(t, 1000, cfg.View.ExpandAllLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.Editor.ValidationDelay)
	assert.Equal(t, "  ", cfg.Editor.Indent)
	assert.Equal(t, 0, cfg.Editor.PasteDepth)
	assert.Equal(t, 500*time.Millisecond, cfg.Drag.ExpandDelay)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Debug())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	configYAML := `
view:
  max_label_length: 40
  load_depth: 3
editor:
  validation_delay: 1s
  indent: "\t"
drag:
  expand_delay: 750ms
log:
  level: debug
`
	path := writeTempConfig(t, "jsonedit_*.yml", configYAML)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.View.MaxLabelLength)
	assert.Equal(t, 3, cfg.View.LoadDepth)
	assert.Equal(t, 1000, cfg.View.ExpandAllLimit) // default kept
	assert.Equal(t, time.Second, cfg.Editor.ValidationDelay)
	assert.Equal(t, "\t", cfg.Editor.Indent)
	assert.Equal(t, 750*time.Millisecond, cfg.Drag.ExpandDelay)
	assert.True(t, cfg.Debug())
}

func TestConfig_LoadNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no such file or directory")
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	invalidYAML := `
view:
  max_label_length: [unclosed array
`
	path := writeTempConfig(t, "invalid_*.yml", invalidYAML)

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_LoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		message string
	}{
		{"negative label length", "view:\n  max_label_length: -1\n", "max_label_length"},
		{"negative depth", "view:\n  load_depth: -2\n", "load_depth"},
		{"indent with letters", "editor:\n  indent: \"ab\"\n", "editor.indent"},
		{"unknown level", "log:\n  level: loud\n", "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, "bad_*.yml", tt.yaml)
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestConfig_FindConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_search_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	nestedDir := filepath.Join(tmpDir, "project", "subdir")
	err = os.MkdirAll(nestedDir, 0o755)
	require.NoError(t, err)

	// Config file lives in the project root
	configPath := filepath.Join(tmpDir, "project", ".jsonedit.yml")
	err = os.WriteFile(configPath, []byte("log:\n  level: warn\n"), 0o644)
	require.NoError(t, err)

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	err = os.Chdir(nestedDir)
	require.NoError(t, err)

	// Should find it in the parent directory
	foundPath := FindConfigFile()
	require.NotEmpty(t, foundPath, "Should find config file")

	foundContent, err := os.ReadFile(foundPath)
	require.NoError(t, err)
	assert.Contains(t, string(foundContent), "level: warn")
}

func TestConfig_FindConfigFileNotFound(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "no_config_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	err = os.Chdir(tmpDir)
	require.NoError(t, err)

	foundPath := FindConfigFile()
	assert.Empty(t, foundPath)
}

func TestConfig_MergeWithCLI(t *testing.T) {
	baseConfig := NewConfig()
	baseConfig.View.MaxLabelLength = 60

	cliOverrides := &Config{
		View:   ViewConfig{LoadDepth: 5},
		Editor: EditorConfig{Indent: "    "},
	}

	merged := MergeConfigs(baseConfig, cliOverrides)

	assert.Equal(t, 5, merged.View.LoadDepth)       // Overridden by CLI
	assert.Equal(t, "    ", merged.Editor.Indent)   // Overridden by CLI
	assert.Equal(t, 60, merged.View.MaxLabelLength) // Kept from base
	assert.Equal(t, "info", merged.Log.Level)       // Kept from base
	assert.Equal(t, 2, baseConfig.View.LoadDepth)   // Base untouched
}

func TestLoadConfigWithPrecedence(t *testing.T) {
	configYAML := `
view:
  load_depth: 4
  max_label_length: 20
editor:
  indent: "\t"
`
	path := writeTempConfig(t, "precedence_test_*.yml", configYAML)

	cfg, err := LoadConfigWithCLI(path, "   ", 1, true)
	require.NoError(t, err)

	// CLI > config file > defaults
	assert.Equal(t, "   ", cfg.Editor.Indent)    // From CLI
	assert.Equal(t, 1, cfg.View.LoadDepth)       // From CLI
	assert.True(t, cfg.Debug())                  // From CLI
	assert.Equal(t, 20, cfg.View.MaxLabelLength) // From config file
}

func TestLoadConfigWithPrecedence_NoOverrides(t *testing.T) {
	configYAML := `
view:
  load_depth: 4
`
	path := writeTempConfig(t, "precedence_no_override_*.yml", configYAML)

	cfg, err := LoadConfigWithCLI(path, "", 0, false)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.View.LoadDepth)
	assert.Equal(t, "  ", cfg.Editor.Indent) // Default value
	assert.False(t, cfg.Debug())
}

func TestLoadConfigWithCLI_NoFile(t *testing.T) {
	cfg, err := LoadConfigWithCLI("", "", 0, false)
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}
