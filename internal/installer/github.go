package installer

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strings"

	"setup-station/internal/logger"
)

// apiBase is the GitHub API root; tests point it at a local server.
var apiBase = "https://api.github.com"

// ReleaseAsset is one downloadable file attached to a GitHub release.
type ReleaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Release is the subset of the GitHub release JSON the installer needs.
type Release struct {
	TagName string         `json:"tag_name"`
	Assets  []ReleaseAsset `json:"assets"`
}

// FetchRelease fetches release metadata for a repo ("owner/name") at tag.
func FetchRelease(repo, tag string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/tags/%s", apiBase, repo, tag)
	logger.Debug("[DEBUG] Fetching GitHub release from %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch release %s@%s: %w", repo, tag, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close HTTP response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch release %s@%s: HTTP status %d", repo, tag, resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release JSON for %s@%s: %w", repo, tag, err)
	}
	logger.Debug("[DEBUG] Release %s has %d assets\n", release.TagName, len(release.Assets))
	return &release, nil
}

// archiveSuffixes are the asset formats the extractor can handle.
var archiveSuffixes = []string{".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".zip", ".7z"}

// MatchAsset returns the first archive asset whose lowercase name contains
// one of the patterns, in pattern preference order.
func MatchAsset(assets []ReleaseAsset, patterns []string) (ReleaseAsset, bool) {
	for _, pattern := range patterns {
		for _, asset := range assets {
			name := strings.ToLower(asset.Name)
			if strings.Contains(name, strings.ToLower(pattern)) && hasArchiveSuffix(name) {
				logger.Debug("[DEBUG] Matched asset %s for pattern %s\n", asset.Name, pattern)
				return asset, true
			}
		}
	}
	return ReleaseAsset{}, false
}

func hasArchiveSuffix(name string) bool {
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// linuxAssetPatterns returns the asset naming variants release authors use
// for the local architecture, most specific first.
func linuxAssetPatterns() []string {
	switch runtime.GOARCH {
	case "arm64":
		return []string{
			"linux-arm64", "linux_arm64", "linux-aarch64", "linux_aarch64",
			"aarch64-unknown-linux", "aarch64-linux",
		}
	default:
		return []string{
			"linux-x86_64", "linux_x86_64", "linux-amd64", "linux_amd64",
			"x86_64-unknown-linux", "linux64",
		}
	}
}

// downloadFile saves the content at url to destPath.
func downloadFile(url, destPath string) error {
	logger.Debug("[DEBUG] Downloading %s to %s\n", url, destPath)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to GET %s: HTTP status %d", url, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close destination file: %v\n", cerr)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write response to file: %w", err)
	}
	return nil
}
