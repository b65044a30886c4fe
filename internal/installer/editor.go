package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"setup-station/internal/logger"
)

// stepNeovim is the composed editor step: purge the distro-packaged
// editor, install the configured neovim release from GitHub, and sync its
// configuration. The purge may fail when the packages were never
// installed; that is the one tolerated failure in the whole run.
func stepNeovim(c *Context) error {
	ed := c.Config.Editor

	for _, pkg := range ed.Purge {
		if err := c.pkgCommand(c.Profile.Remove, pkg); err != nil {
			logger.Warn("[WARN] Purge of %s failed (likely not installed): %v\n", pkg, err)
		}
	}

	if c.State.Current("neovim", ed.Version) {
		logger.Info("[INFO] neovim %s already installed at %s. Skipping download.\n",
			ed.Version, c.State.Artifacts["neovim"].InstallPath)
	} else {
		installPath, err := installEditorRelease(c)
		if err != nil {
			return err
		}
		c.State.Record("neovim", ed.Version, installPath)
		logger.Info("[INFO] Installed neovim %s at %s\n", ed.Version, installPath)
	}

	copied, err := SyncFiles(ed.Config, c.Config.DotfilesDir)
	if err != nil {
		return err
	}
	logger.Info("[INFO] Editor config in sync (%d copied)\n", copied)
	return nil
}

// installEditorRelease resolves, downloads and extracts the configured
// neovim release asset for the local architecture.
func installEditorRelease(c *Context) (string, error) {
	ed := c.Config.Editor
	release, err := FetchRelease(ed.Repo, releaseTag(ed.Version))
	if err != nil {
		return "", err
	}

	asset, ok := MatchAsset(release.Assets, linuxAssetPatterns())
	if !ok {
		return "", fmt.Errorf("no linux asset found in %s release %s", ed.Repo, release.TagName)
	}

	workDir, err := os.MkdirTemp("", "setup-station-nvim-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(workDir)

	archive := filepath.Join(workDir, asset.Name)
	if err := downloadFile(asset.BrowserDownloadURL, archive); err != nil {
		return "", err
	}

	binDirs := []string{"/usr/local/bin"}
	if home, err := os.UserHomeDir(); err == nil {
		binDirs = append(binDirs, filepath.Join(home, "bin"))
	}
	return ExtractAndInstall(archive, workDir, "nvim", binDirs)
}

// releaseTag turns a configured version into a release tag, tolerating
// versions written with a leading v.
func releaseTag(version string) string {
	return "v" + strings.TrimPrefix(version, "v")
}
