package installer

import (
	"fmt"
	"os"
	"path/filepath"

	"setup-station/internal/logger"
)

// stepFonts downloads the configured Nerd Font release archives, unpacks
// them into the user fonts directory and refreshes the font cache. Fonts
// already recorded in state at the configured tag are skipped.
func stepFonts(c *Context) error {
	installed := 0
	for _, font := range c.Config.Fonts {
		if c.State.Current(font.Name, font.Tag) {
			logger.Info("[INFO] Font %s %s already installed. Skipping.\n", font.Name, font.Tag)
			continue
		}
		if err := installFont(c, font.Name, font.Repo, font.Tag); err != nil {
			return err
		}
		installed++
	}

	if installed > 0 {
		if err := c.Runner.Run(nil, "fc-cache", "-f"); err != nil {
			return fmt.Errorf("refresh font cache: %w", err)
		}
	}
	return nil
}

func installFont(c *Context, name, repo, tag string) error {
	release, err := FetchRelease(repo, tag)
	if err != nil {
		return err
	}

	// Nerd Font releases attach one zip per font family, named after it.
	asset, ok := MatchAsset(release.Assets, []string{name + ".zip"})
	if !ok {
		return fmt.Errorf("no %s.zip asset in %s release %s", name, repo, tag)
	}

	workDir, err := os.MkdirTemp("", "setup-station-font-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	archive := filepath.Join(workDir, asset.Name)
	if err := downloadFile(asset.BrowserDownloadURL, archive); err != nil {
		return err
	}

	fontDir := filepath.Join(c.FontsDir, name)
	if err := os.MkdirAll(fontDir, 0o755); err != nil {
		return err
	}
	if _, err := ExtractArchive(archive, fontDir); err != nil {
		return err
	}

	c.State.Record(name, tag, fontDir)
	logger.Info("[INFO] Installed font %s %s to %s\n", name, tag, fontDir)
	return nil
}
