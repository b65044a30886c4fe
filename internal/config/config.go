// Package config loads the YAML configuration describing what the
// installer manages: package lists per step, dotfile sync records, plugin
// and project repositories, and the GitHub release coordinates for the
// editor and fonts. A compiled-in default configuration is used when no
// file exists, so a fresh machine can be provisioned with zero setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"setup-station/internal/logger"
)

// SyncRecord describes one tracked dotfile: where it lives in the
// repository checkout and where it belongs on the machine.
type SyncRecord struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Repo is a git repository to clone when its target directory is absent.
type Repo struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Target string `yaml:"target"` // relative to RepoBaseDir unless absolute
}

// SnapPackage is a snap to install; Classic selects --classic confinement.
type SnapPackage struct {
	Name    string `yaml:"name"`
	Classic bool   `yaml:"classic"`
}

// Font is a Nerd Font zip published as a GitHub release asset.
type Font struct {
	Name string `yaml:"name"` // asset base name, e.g. JetBrainsMono
	Repo string `yaml:"repo"` // owner/name, e.g. ryanoasis/nerd-fonts
	Tag  string `yaml:"tag"`  // release tag, e.g. v3.2.1
}

// Editor holds the GitHub release coordinates for the neovim install and
// the config files synced into $XDG_CONFIG_HOME/nvim afterwards.
type Editor struct {
	Repo    string       `yaml:"repo"`    // owner/name, e.g. neovim/neovim
	Version string       `yaml:"version"` // release version without the v prefix
	Purge   []string     `yaml:"purge"`   // distro packages to purge first
	Config  []SyncRecord `yaml:"config"`
}

// Config is the top-level structure driving every step.
type Config struct {
	CorePackages    []string      `yaml:"core_packages"`
	OpenVPNPackages []string      `yaml:"openvpn_packages"`
	SnapPackages    []SnapPackage `yaml:"snap_packages"`
	ZshPlugins      []Repo        `yaml:"zsh_plugins"`
	Dotfiles        []SyncRecord  `yaml:"dotfiles"`
	DotfilesDir     string        `yaml:"dotfiles_dir"` // base for relative sync sources
	Repos           []Repo        `yaml:"repos"`
	RepoBaseDir     string        `yaml:"repo_base_dir"`
	Fonts           []Font        `yaml:"fonts"`
	Editor          Editor        `yaml:"editor"`
}

// DefaultPath returns the config location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "setup-station", "config.yaml")
}

// Load reads the configuration from path, or from DefaultPath when path is
// empty. A missing file yields the built-in defaults; a present but
// unparsable file is an error. Fields left empty in the file keep their
// default values, so a config file only needs to state overrides.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Defaults()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			logger.Debug("[DEBUG] No config at %s, using built-in defaults\n", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	logger.Debug("[DEBUG] Loaded config from %s\n", path)
	return cfg, nil
}

// Defaults returns the built-in configuration: the fixed developer tool
// list and the dotfiles tracked by this repository.
func Defaults() *Config {
	return &Config{
		CorePackages: []string{
			"git", "curl", "wget", "tmux", "htop", "tree", "jq",
			"unzip", "ripgrep", "fzf", "fontconfig", "openssh-client",
		},
		OpenVPNPackages: []string{"openvpn", "network-manager-openvpn"},
		SnapPackages: []SnapPackage{
			{Name: "code", Classic: true},
			{Name: "spotify"},
		},
		ZshPlugins: []Repo{
			{
				Name:   "oh-my-zsh",
				URL:    "https://github.com/ohmyzsh/ohmyzsh.git",
				Target: "~/.oh-my-zsh",
			},
			{
				Name:   "zsh-autosuggestions",
				URL:    "https://github.com/zsh-users/zsh-autosuggestions.git",
				Target: "~/.oh-my-zsh/custom/plugins/zsh-autosuggestions",
			},
			{
				Name:   "zsh-syntax-highlighting",
				URL:    "https://github.com/zsh-users/zsh-syntax-highlighting.git",
				Target: "~/.oh-my-zsh/custom/plugins/zsh-syntax-highlighting",
			},
		},
		Dotfiles: []SyncRecord{
			{Source: "tmux/tmux.conf", Target: "~/.tmux.conf"},
			{Source: "zsh/zshrc", Target: "~/.zshrc"},
			{Source: "bash/bashrc", Target: "~/.bashrc"},
			{Source: "bash/bash_aliases", Target: "~/.bash_aliases"},
			{Source: "git/gitconfig", Target: "~/.gitconfig"},
		},
		DotfilesDir: ".",
		RepoBaseDir: "~/src",
		Fonts: []Font{
			{Name: "JetBrainsMono", Repo: "ryanoasis/nerd-fonts", Tag: "v3.2.1"},
		},
		Editor: Editor{
			Repo:    "neovim/neovim",
			Version: "0.10.4",
			Purge:   []string{"vim", "vim-tiny", "neovim"},
			Config: []SyncRecord{
				{Source: "nvim/init.lua", Target: "~/.config/nvim/init.lua"},
			},
		},
	}
}

// ExpandPath resolves a leading "~/" against the user home directory.
// Paths without the prefix are returned unchanged.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Warn("[WARN] Cannot resolve home directory: %v\n", err)
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
