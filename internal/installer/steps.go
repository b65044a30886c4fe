// Package installer implements the setup steps: named idempotent units of
// work dispatched from CLI flags or the interactive menu. All steps share
// a Context holding the detected distribution profile, the loaded
// configuration and the artifact state. Execution is sequential and
// fail-fast: the first step error aborts the run.
package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"setup-station/internal/config"
	"setup-station/internal/distro"
	"setup-station/internal/logger"
	"setup-station/internal/state"
)

// ErrUnknownStep is returned when a step name does not exist in the table.
var ErrUnknownStep = errors.New("unknown step")

// Context carries everything a step needs. It is built once per run;
// Profile and Config are read-only, State is mutated by steps that
// download release artifacts.
type Context struct {
	Profile *distro.Profile
	Config  *config.Config
	State   *state.State
	Runner  Runner

	// UseSudo prepends sudo to privileged package-manager commands.
	// Set from the effective UID at startup.
	UseSudo bool

	// FontsDir is where font archives are extracted.
	FontsDir string
}

// NewContext builds a run context with production defaults.
func NewContext(profile *distro.Profile, cfg *config.Config, st *state.State) *Context {
	return &Context{
		Profile:  profile,
		Config:   cfg,
		State:    st,
		Runner:   ExecRunner{},
		UseSudo:  os.Geteuid() != 0,
		FontsDir: filepath.Join(xdg.DataHome, "fonts"),
	}
}

// pkgCommand runs a package-manager command template with extra arguments
// appended, prepending sudo when required. Empty templates are a no-op so
// families without an equivalent operation skip it silently.
func (c *Context) pkgCommand(template []string, extra ...string) error {
	if len(template) == 0 {
		return nil
	}
	argv := append(append([]string{}, template...), extra...)
	if c.UseSudo {
		argv = append([]string{"sudo"}, argv...)
	}
	return c.Runner.Run(c.Profile.Env, argv[0], argv[1:]...)
}

// Step is a named idempotent unit of work. Re-running a step must not
// error when its artifacts already exist.
type Step struct {
	Name      string
	Flag      string // long CLI flag selecting this step
	Shorthand string // single-letter flag alias
	Summary   string
	Run       func(*Context) error
}

// steps is the ordered table shared by the CLI flags and the interactive
// menu. Running "all" is exactly this order.
var steps = []Step{
	{Name: "update", Flag: "update", Shorthand: "u", Summary: "Update and upgrade system packages", Run: stepUpdate},
	{Name: "core", Flag: "core", Shorthand: "c", Summary: "Install core developer tools", Run: stepCore},
	{Name: "zsh", Flag: "zsh", Shorthand: "z", Summary: "Install zsh, oh-my-zsh and plugins", Run: stepZsh},
	{Name: "neovim", Flag: "neovim", Shorthand: "n", Summary: "Install neovim from GitHub releases", Run: stepNeovim},
	{Name: "fonts", Flag: "fonts", Shorthand: "f", Summary: "Install Nerd Fonts", Run: stepFonts},
	{Name: "dotfiles", Flag: "dotfiles", Shorthand: "d", Summary: "Sync dotfiles with timestamped backups", Run: stepDotfiles},
	{Name: "rust", Flag: "rust", Shorthand: "r", Summary: "Install the Rust toolchain via rustup", Run: stepRust},
	{Name: "openvpn", Flag: "openvpn", Shorthand: "o", Summary: "Install OpenVPN packages", Run: stepOpenVPN},
	{Name: "snap", Flag: "snap", Shorthand: "s", Summary: "Install snapd and snap packages", Run: stepSnap},
	{Name: "git-repos", Flag: "git-repos", Shorthand: "g", Summary: "Clone configured git repositories", Run: stepGitRepos},
}

// Steps returns the ordered step table.
func Steps() []Step {
	return steps
}

// Names returns the step names in execution order.
func Names() []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}

// Resolve maps step names to their table entries, preserving the given
// order. Unknown names are an error.
func Resolve(names []string) ([]Step, error) {
	byName := make(map[string]Step, len(steps))
	for _, s := range steps {
		byName[s.Name] = s
	}

	resolved := make([]Step, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStep, name)
		}
		resolved = append(resolved, s)
	}
	return resolved, nil
}

// RunSteps executes the given steps in order, aborting on the first
// failure.
func RunSteps(ctx *Context, toRun []Step) error {
	for _, s := range toRun {
		logger.Info("[INFO] ==> %s: %s\n", s.Name, s.Summary)
		if err := s.Run(ctx); err != nil {
			return fmt.Errorf("step %s: %w", s.Name, err)
		}
	}
	return nil
}

// CheckPrerequisites verifies the external commands every run depends on.
// Missing prerequisites are fatal before any step mutates the system.
func CheckPrerequisites(r Runner) error {
	for _, tool := range []string{"git", "curl"} {
		if !r.LookPath(tool) {
			return fmt.Errorf("required command %q not found on PATH", tool)
		}
	}
	return nil
}
