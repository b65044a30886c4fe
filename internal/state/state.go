// Package state persists a small JSON record of release artifacts the
// installer has already downloaded (editor binaries, font archives), so
// repeat runs skip downloads when the recorded version still matches the
// configured one. Package-manager installs are not tracked here; the
// package manager itself is the source of truth for those.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"setup-station/internal/logger"
)

// Artifact records one installed release artifact.
type Artifact struct {
	Version     string `json:"version"`
	InstallPath string `json:"install_path"`
}

// State maps artifact names (e.g. "neovim", "JetBrainsMono") to their
// installed version and location.
type State struct {
	Artifacts map[string]Artifact `json:"artifacts"`
}

// DefaultPath returns the state file location under the XDG state home,
// so runs from any working directory share the same record.
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, "setup-station", "state.json")
}

// Load reads the state file at path. A missing or unreadable file yields
// an empty state; state loss only costs a redundant download, never a
// failed run.
func Load(path string) *State {
	st := &State{Artifacts: make(map[string]Artifact)}

	file, err := os.ReadFile(path)
	if err != nil {
		return st
	}
	_ = json.Unmarshal(file, st)
	if st.Artifacts == nil {
		st.Artifacts = make(map[string]Artifact)
	}
	return st
}

// Save writes the state as indented JSON, creating the parent directory
// if needed. Errors are logged but not propagated: a failed state write
// must not fail a run whose actual work succeeded.
func Save(path string, st *State) {
	file, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		logger.Error("[ERROR] Failed to marshal state: %v\n", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Error("[ERROR] Failed to create state directory: %v\n", err)
		return
	}

	logger.Debug("[DEBUG] Writing state to %s\n", path)
	if err := os.WriteFile(path, file, 0o644); err != nil {
		logger.Error("[ERROR] Failed to write state file %s: %v\n", path, err)
	}
}

// Current reports whether the named artifact is recorded at the given
// version and its install path still exists on disk.
func (s *State) Current(name, version string) bool {
	a, ok := s.Artifacts[name]
	if !ok || a.Version != version {
		return false
	}
	if a.InstallPath == "" {
		return false
	}
	_, err := os.Stat(a.InstallPath)
	return err == nil
}

// Record stores or replaces the artifact entry for name.
func (s *State) Record(name, version, installPath string) {
	s.Artifacts[name] = Artifact{Version: version, InstallPath: installPath}
}
