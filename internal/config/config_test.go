package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setup-station/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.Defaults()

	assert.NotEmpty(t, cfg.CorePackages)
	assert.NotEmpty(t, cfg.Dotfiles)
	assert.NotEmpty(t, cfg.ZshPlugins)
	assert.Equal(t, "neovim/neovim", cfg.Editor.Repo)
	assert.NotEmpty(t, cfg.Editor.Version)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `core_packages:
  - git
  - tmux
repo_base_dir: ~/code
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "tmux"}, cfg.CorePackages)
	assert.Equal(t, "~/code", cfg.RepoBaseDir)
	// Untouched sections keep their defaults.
	assert.NotEmpty(t, cfg.Dotfiles)
	assert.Equal(t, "neovim/neovim", cfg.Editor.Repo)
}

func TestLoadExplicitMissingFileIsError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAMLIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("core_packages: [unclosed"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"~/.zshrc", filepath.Join(home, ".zshrc")},
		{"~", home},
		{"/etc/hosts", "/etc/hosts"},
		{"relative/path", "relative/path"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, config.ExpandPath(tt.in), "input %q", tt.in)
	}
}
