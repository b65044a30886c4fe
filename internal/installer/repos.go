package installer

import (
	"os"
	"path/filepath"
	"strings"

	"setup-station/internal/config"
	"setup-station/internal/logger"
)

// stepGitRepos clones the configured project repositories under the base
// directory, skipping any that are already checked out.
func stepGitRepos(c *Context) error {
	base := config.ExpandPath(c.Config.RepoBaseDir)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return err
	}

	for _, repo := range c.Config.Repos {
		target := repoTarget(repo, base)
		if _, err := os.Stat(target); err == nil {
			logger.Info("[INFO] %s already cloned at %s. Skipping.\n", repo.Name, target)
			continue
		}
		logger.Info("[INFO] Cloning %s into %s\n", repo.URL, target)
		if err := c.Runner.Run(nil, "git", "clone", repo.URL, target); err != nil {
			return err
		}
	}
	return nil
}

// repoTarget resolves a repo's checkout directory: absolute and
// home-relative targets stand alone, everything else lands under base.
// An empty target defaults to the repo name.
func repoTarget(repo config.Repo, base string) string {
	target := repo.Target
	if target == "" {
		target = repo.Name
	}
	if filepath.IsAbs(target) || strings.HasPrefix(target, "~") {
		return config.ExpandPath(target)
	}
	return filepath.Join(base, target)
}
