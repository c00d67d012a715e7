package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Cols)
	assert.Equal(t, 24, cfg.Rows)
}

func TestLoadAndSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &SessionConfig{
		Cols:            120,
		Rows:            40,
		ScrollbackLines: 5000,
		ShellPath:       "/bin/zsh",
		SourceRC:        true,
		AdditionalEnv:   map[string]string{"FOO": "bar"},
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Cols, loaded.Cols)
	assert.Equal(t, cfg.Rows, loaded.Rows)
	assert.Equal(t, cfg.ShellPath, loaded.ShellPath)
	assert.Equal(t, "bar", loaded.AdditionalEnv["FOO"])
}

func TestLoadClampsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cols: 0\nrows: -5\nscrollback_lines: -1\n"), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Cols)
	assert.Equal(t, 24, cfg.Rows)
	assert.Equal(t, 0, cfg.ScrollbackLines)
}

func TestLoadThemeAppliesRecognizedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheme.theme")
	content := "# a comment\nforeground=#aabbcc\nbackground=#001122\ncursor=#ffffff\ncolor1=#112233\nnonsense-line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	palette, err := LoadTheme(path)
	require.NoError(t, err)
	assert.Equal(t, byte(0xaa), palette.DefaultFg.R)
	assert.Equal(t, byte(0x00), palette.DefaultBg.R)
	assert.Equal(t, byte(0xff), palette.CursorColor.R)
	assert.Equal(t, byte(0x11), palette.Indexed(1).R)
}

func TestLoadThemeEmptyPathReturnsDefaults(t *testing.T) {
	palette, err := LoadTheme("")
	require.NoError(t, err)
	assert.NotNil(t, palette)
}

func TestResolveShellFallsBackToCommonShells(t *testing.T) {
	cfg := DefaultSessionConfig()
	shell := cfg.ResolveShell("")
	assert.NotEmpty(t, shell)
}
