package installer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setup-station/internal/config"
	"setup-station/internal/distro"
	"setup-station/internal/state"
)

// fakeRunner records commands instead of executing them.
type fakeRunner struct {
	commands  [][]string
	failOn    string          // fail any Run whose argv contains this substring
	missing   map[string]bool // LookPath results; absent keys are present
	installed map[string]bool // snaps reported as installed by Output
}

func (f *fakeRunner) Run(env []string, name string, args ...string) error {
	argv := append([]string{name}, args...)
	f.commands = append(f.commands, argv)
	if f.failOn != "" && strings.Contains(strings.Join(argv, " "), f.failOn) {
		return errors.New("command failed")
	}
	return nil
}

func (f *fakeRunner) Output(name string, args ...string) (string, error) {
	if name == "snap" && len(args) == 2 && args[0] == "list" && f.installed[args[1]] {
		return args[1], nil
	}
	return "", errors.New("not found")
}

func (f *fakeRunner) LookPath(name string) bool {
	return !f.missing[name]
}

func (f *fakeRunner) joined() []string {
	out := make([]string, len(f.commands))
	for i, argv := range f.commands {
		out[i] = strings.Join(argv, " ")
	}
	return out
}

func testProfile(fam distro.Family) *distro.Profile {
	switch fam {
	case distro.FamilyArch:
		return &distro.Profile{
			Family:  fam,
			Name:    "Arch Linux",
			Install: []string{"pacman", "-S", "--noconfirm", "--needed"},
			Remove:  []string{"pacman", "-Rns", "--noconfirm"},
			Update:  []string{"pacman", "-Sy", "--noconfirm"},
			Upgrade: []string{"pacman", "-Su", "--noconfirm"},
		}
	case distro.FamilySuse:
		return &distro.Profile{
			Family:  fam,
			Name:    "openSUSE",
			Install: []string{"zypper", "--non-interactive", "install"},
			Remove:  []string{"zypper", "--non-interactive", "remove"},
			Update:  []string{"zypper", "--non-interactive", "refresh"},
			Upgrade: []string{"zypper", "--non-interactive", "update"},
		}
	default:
		return &distro.Profile{
			Family:        distro.FamilyDebian,
			Name:          "Debian",
			Env:           []string{"DEBIAN_FRONTEND=noninteractive"},
			Install:       []string{"apt-get", "install", "-y", "-q"},
			Remove:        []string{"apt-get", "purge", "-y"},
			Update:        []string{"apt-get", "update"},
			Upgrade:       []string{"apt-get", "upgrade", "-y"},
			Autoremove:    []string{"apt-get", "autoremove", "-y"},
			Autoclean:     []string{"apt-get", "autoclean"},
			SnapSupported: true,
		}
	}
}

func testContext(t *testing.T, fam distro.Family) (*Context, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{}
	cfg := config.Defaults()
	cfg.DotfilesDir = t.TempDir()
	return &Context{
		Profile:  testProfile(fam),
		Config:   cfg,
		State:    state.Load(filepath.Join(t.TempDir(), "state.json")),
		Runner:   runner,
		UseSudo:  false,
		FontsDir: t.TempDir(),
	}, runner
}

func TestStepOrder(t *testing.T) {
	want := []string{
		"update", "core", "zsh", "neovim", "fonts",
		"dotfiles", "rust", "openvpn", "snap", "git-repos",
	}
	assert.Equal(t, want, Names(), "running all must equal this exact composition")
}

func TestResolvePreservesOrder(t *testing.T) {
	resolved, err := Resolve([]string{"core", "update"})
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "core", resolved[0].Name)
	assert.Equal(t, "update", resolved[1].Name)
}

func TestResolveUnknownStep(t *testing.T) {
	_, err := Resolve([]string{"update", "wat"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestRunStepsFailFast(t *testing.T) {
	ctx, _ := testContext(t, distro.FamilyDebian)

	var ran []string
	record := func(name string, err error) Step {
		return Step{Name: name, Run: func(*Context) error {
			ran = append(ran, name)
			return err
		}}
	}

	err := RunSteps(ctx, []Step{
		record("first", nil),
		record("second", errors.New("boom")),
		record("third", nil),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step second")
	assert.Equal(t, []string{"first", "second"}, ran, "third step must not run after a failure")
}

func TestPkgCommandSudo(t *testing.T) {
	ctx, runner := testContext(t, distro.FamilyDebian)
	ctx.UseSudo = true

	require.NoError(t, ctx.pkgCommand(ctx.Profile.Install, "git"))
	require.Len(t, runner.commands, 1)
	assert.Equal(t, []string{"sudo", "apt-get", "install", "-y", "-q", "git"}, runner.commands[0])
}

func TestPkgCommandWithoutSudo(t *testing.T) {
	ctx, runner := testContext(t, distro.FamilyDebian)

	require.NoError(t, ctx.pkgCommand(ctx.Profile.Install, "git"))
	assert.Equal(t, []string{"apt-get", "install", "-y", "-q", "git"}, runner.commands[0])
}

func TestPkgCommandEmptyTemplateIsNoop(t *testing.T) {
	ctx, runner := testContext(t, distro.FamilyArch)

	require.NoError(t, ctx.pkgCommand(ctx.Profile.Autoremove))
	assert.Empty(t, runner.commands)
}

func TestStepUpdateDebian(t *testing.T) {
	ctx, runner := testContext(t, distro.FamilyDebian)

	require.NoError(t, stepUpdate(ctx))
	assert.Equal(t, []string{
		"apt-get update",
		"apt-get upgrade -y",
		"apt-get autoremove -y",
		"apt-get autoclean",
	}, runner.joined())
}

func TestStepUpdateArchSkipsMissingOperations(t *testing.T) {
	ctx, runner := testContext(t, distro.FamilyArch)

	require.NoError(t, stepUpdate(ctx))
	assert.Equal(t, []string{
		"pacman -Sy --noconfirm",
		"pacman -Su --noconfirm",
	}, runner.joined())
}

func TestStepUpdateFailFast(t *testing.T) {
	ctx, runner := testContext(t, distro.FamilyDebian)
	runner.failOn = "upgrade"

	require.Error(t, stepUpdate(ctx))
	assert.Len(t, runner.commands, 2, "autoremove must not run after upgrade fails")
}

func TestStepCore(t *testing.T) {
	ctx, runner := testContext(t, distro.FamilyDebian)
	ctx.Config.CorePackages = []string{"git", "tmux", "ripgrep"}

	require.NoError(t, stepCore(ctx))
	require.Len(t, runner.commands, 1)
	assert.Equal(t, "apt-get install -y -q git tmux ripgrep", runner.joined()[0])
}

func TestStepSnapUnsupportedFamily(t *testing.T) {
	ctx, runner := testContext(t, distro.FamilySuse)

	err := stepSnap(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
	assert.Empty(t, runner.commands)
}

func TestStepSnapInstallsMissingSnaps(t *testing.T) {
	ctx, runner := testContext(t, distro.FamilyDebian)
	runner.missing = map[string]bool{"snap": true}
	runner.installed = map[string]bool{"spotify": true}
	ctx.Config.SnapPackages = []config.SnapPackage{
		{Name: "code", Classic: true},
		{Name: "spotify"},
	}

	require.NoError(t, stepSnap(ctx))
	assert.Equal(t, []string{
		"apt-get install -y -q snapd",
		"snap install code --classic",
	}, runner.joined(), "installed snaps are skipped")
}

func TestStepZshClonesMissingPlugins(t *testing.T) {
	ctx, runner := testContext(t, distro.FamilyDebian)
	dir := t.TempDir()
	present := filepath.Join(dir, "oh-my-zsh")
	require.NoError(t, os.MkdirAll(present, 0o755))

	ctx.Config.ZshPlugins = []config.Repo{
		{Name: "oh-my-zsh", URL: "https://example.com/omz.git", Target: present},
		{Name: "autosuggestions", URL: "https://example.com/as.git", Target: filepath.Join(dir, "as")},
	}

	require.NoError(t, stepZsh(ctx))
	joined := runner.joined()
	require.Len(t, joined, 2)
	assert.Equal(t, "apt-get install -y -q zsh", joined[0])
	assert.Equal(t, "git clone --depth 1 https://example.com/as.git "+filepath.Join(dir, "as"), joined[1])
}

func TestStepZshSyncsZshrc(t *testing.T) {
	ctx, _ := testContext(t, distro.FamilyDebian)
	home := t.TempDir()

	writeFile(t, filepath.Join(ctx.Config.DotfilesDir, "zshrc"), "export EDITOR=nvim\n")
	ctx.Config.ZshPlugins = nil
	ctx.Config.Dotfiles = []config.SyncRecord{
		{Source: "tmux.conf", Target: filepath.Join(home, ".tmux.conf")},
		{Source: "zshrc", Target: filepath.Join(home, ".zshrc")},
	}

	require.NoError(t, stepZsh(ctx))
	assert.FileExists(t, filepath.Join(home, ".zshrc"), "running the zsh step alone must leave a shell config")
	assert.NoFileExists(t, filepath.Join(home, ".tmux.conf"), "other dotfiles belong to the dotfiles step")
}

func TestStepGitRepos(t *testing.T) {
	ctx, runner := testContext(t, distro.FamilyDebian)
	base := t.TempDir()
	existing := filepath.Join(base, "dotfiles")
	require.NoError(t, os.MkdirAll(existing, 0o755))

	ctx.Config.RepoBaseDir = base
	ctx.Config.Repos = []config.Repo{
		{Name: "dotfiles", URL: "https://example.com/dotfiles.git", Target: "dotfiles"},
		{Name: "notes", URL: "https://example.com/notes.git", Target: "notes"},
	}

	require.NoError(t, stepGitRepos(ctx))
	joined := runner.joined()
	require.Len(t, joined, 1, "existing clone is skipped")
	assert.Equal(t, "git clone https://example.com/notes.git "+filepath.Join(base, "notes"), joined[0])
}

func TestStepRustSkipsWhenCargoPresent(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cargo := filepath.Join(home, ".cargo", "bin", "cargo")
	require.NoError(t, os.MkdirAll(filepath.Dir(cargo), 0o755))
	require.NoError(t, os.WriteFile(cargo, []byte("bin"), 0o755))

	ctx, runner := testContext(t, distro.FamilyDebian)
	require.NoError(t, stepRust(ctx))
	assert.Empty(t, runner.commands)
}

func TestStepRustBootstrapsWhenMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	ctx, runner := testContext(t, distro.FamilyDebian)
	require.NoError(t, stepRust(ctx))
	require.Len(t, runner.commands, 1)
	assert.Equal(t, "sh", runner.commands[0][0])
	assert.Contains(t, runner.commands[0][2], "sh.rustup.rs")
}

func TestStepDotfiles(t *testing.T) {
	ctx, runner := testContext(t, distro.FamilyDebian)
	dir := ctx.Config.DotfilesDir
	home := t.TempDir()

	writeFile(t, filepath.Join(dir, "tmux.conf"), "conf")
	ctx.Config.Dotfiles = []config.SyncRecord{
		{Source: "tmux.conf", Target: filepath.Join(home, ".tmux.conf")},
	}

	require.NoError(t, stepDotfiles(ctx))
	assert.FileExists(t, filepath.Join(home, ".tmux.conf"))
	assert.Empty(t, runner.commands, "dotfile sync never shells out")
}

func TestCheckPrerequisites(t *testing.T) {
	ok := &fakeRunner{}
	require.NoError(t, CheckPrerequisites(ok))

	missing := &fakeRunner{missing: map[string]bool{"curl": true}}
	err := CheckPrerequisites(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curl")
}
