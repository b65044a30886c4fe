package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"setup-station/internal/config"
	"setup-station/internal/logger"
)

// ShouldCopy reports whether src must be copied over dst: the source has
// to exist and the destination must be absent or older than the source.
func ShouldCopy(src, dst string) bool {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return true
	}
	return srcInfo.ModTime().After(dstInfo.ModTime())
}

// ShouldBackup reports whether a backup of dst must be taken before a
// copy: only when the destination exists and the copy will happen.
func ShouldBackup(src, dst string) bool {
	if _, err := os.Stat(dst); err != nil {
		return false
	}
	return ShouldCopy(src, dst)
}

// SyncFile copies one tracked dotfile into place if the source is newer
// than the destination or the destination is absent. An existing
// destination is first preserved as <dst>.bak.<timestamp>; the suffix
// has nanosecond resolution so rapid consecutive syncs never overwrite
// an earlier backup. Returns whether a copy happened.
func SyncFile(rec config.SyncRecord, baseDir string) (bool, error) {
	src := rec.Source
	if !filepath.IsAbs(src) {
		src = filepath.Join(baseDir, src)
	}
	dst := config.ExpandPath(rec.Target)

	if _, err := os.Stat(src); err != nil {
		logger.Warn("[WARN] Skipping %s: source missing\n", src)
		return false, nil
	}

	if !ShouldCopy(src, dst) {
		logger.Debug("[DEBUG] %s is up to date\n", dst)
		return false, nil
	}

	if ShouldBackup(src, dst) {
		backup := dst + ".bak." + strconv.FormatInt(time.Now().UnixNano(), 10)
		if err := copyFile(dst, backup); err != nil {
			return false, fmt.Errorf("backup %s: %w", dst, err)
		}
		logger.Info("[INFO] Backed up %s to %s\n", dst, backup)
	}

	if err := copyFile(src, dst); err != nil {
		return false, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	logger.Info("[INFO] Synced %s -> %s\n", src, dst)
	return true, nil
}

// SyncFiles runs SyncFile over a record list and returns how many copies
// happened. A second run with unchanged sources performs zero copies.
func SyncFiles(records []config.SyncRecord, baseDir string) (int, error) {
	copied := 0
	for _, rec := range records {
		did, err := SyncFile(rec, baseDir)
		if err != nil {
			return copied, err
		}
		if did {
			copied++
		}
	}
	return copied, nil
}

// stepDotfiles synchronizes every tracked dotfile.
func stepDotfiles(c *Context) error {
	copied, err := SyncFiles(c.Config.Dotfiles, c.Config.DotfilesDir)
	if err != nil {
		return err
	}
	logger.Info("[INFO] Dotfiles in sync (%d copied)\n", copied)
	return nil
}

// copyFile copies src to dst preserving the source file mode, creating
// missing destination directories.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source failed: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create target failed: %w", err)
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}

	if stat, serr := os.Stat(src); serr == nil {
		err = os.Chmod(dst, stat.Mode())
	}
	return err
}
