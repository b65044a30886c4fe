package installer

import (
	"os"
	"strings"

	"setup-station/internal/config"
	"setup-station/internal/logger"
)

// stepZsh installs zsh, clones oh-my-zsh plus the configured plugin
// repositories and syncs the zsh dotfiles, so running this step alone
// leaves a working shell behind. Existing clone directories are left
// untouched, so the step is safe to re-run.
func stepZsh(c *Context) error {
	if err := c.pkgCommand(c.Profile.Install, "zsh"); err != nil {
		return err
	}

	for _, plugin := range c.Config.ZshPlugins {
		if err := cloneIfAbsent(c, plugin); err != nil {
			return err
		}
	}

	_, err := SyncFiles(zshDotfiles(c.Config), c.Config.DotfilesDir)
	return err
}

// zshDotfiles selects the tracked dotfiles belonging to the zsh setup.
// The remaining records are the dotfiles step's business.
func zshDotfiles(cfg *config.Config) []config.SyncRecord {
	var records []config.SyncRecord
	for _, rec := range cfg.Dotfiles {
		if strings.HasSuffix(rec.Target, ".zshrc") {
			records = append(records, rec)
		}
	}
	return records
}

// cloneIfAbsent clones a repository when its target directory does not
// exist yet.
func cloneIfAbsent(c *Context, repo config.Repo) error {
	target := config.ExpandPath(repo.Target)
	if _, err := os.Stat(target); err == nil {
		logger.Info("[INFO] %s already present at %s. Skipping.\n", repo.Name, target)
		return nil
	}
	logger.Info("[INFO] Cloning %s into %s\n", repo.Name, target)
	return c.Runner.Run(nil, "git", "clone", "--depth", "1", repo.URL, target)
}
