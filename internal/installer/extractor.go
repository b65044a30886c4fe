package installer

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/xi2/xz"

	"setup-station/internal/logger"
)

// ExtractArchive unpacks src into dest and returns the top-level entry
// path. The format is picked from the filename suffix.
func ExtractArchive(src, dest string) (string, error) {
	switch {
	case strings.HasSuffix(src, ".zip"):
		return extractZip(src, dest)
	case strings.HasSuffix(src, ".7z"):
		return extract7z(src, dest)
	case strings.HasSuffix(src, ".tar"), strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"),
		strings.HasSuffix(src, ".tar.bz2"), strings.HasSuffix(src, ".tar.xz"):
		return extractTarArchive(src, dest)
	default:
		return "", fmt.Errorf("unsupported archive format: %s", src)
	}
}

// ExtractAndInstall extracts an archive under workDir and copies the
// executable(s) named after toolName into the first writable directory of
// binDirs. Returns the installed path of the first binary.
func ExtractAndInstall(src, workDir, toolName string, binDirs []string) (string, error) {
	extractedPath, err := ExtractArchive(src, workDir)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(extractedPath)
	if err != nil {
		return "", err
	}

	var binaries []string
	if info.IsDir() {
		binaries, err = findExecutables(extractedPath, toolName)
		if err != nil {
			return "", fmt.Errorf("no binary found in %s: %w", extractedPath, err)
		}
	} else {
		binaries = []string{extractedPath}
	}

	var installed string
	for _, binaryPath := range binaries {
		dest, err := installBinary(binaryPath, binDirs)
		if err != nil {
			return "", err
		}
		if installed == "" {
			installed = dest
		}
	}
	return installed, nil
}

// installBinary copies a binary into the first directory of binDirs that
// accepts it, creating fallback directories as needed.
func installBinary(src string, binDirs []string) (string, error) {
	var lastErr error
	for _, dir := range binDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			lastErr = err
			continue
		}
		dst := filepath.Join(dir, filepath.Base(src))
		if err := copyExecutable(src, dst); err != nil {
			lastErr = err
			continue
		}
		logger.Info("[INFO] Installed %s\n", dst)
		return dst, nil
	}
	return "", fmt.Errorf("no writable install directory in %v: %w", binDirs, lastErr)
}

// safeJoin joins an archive entry name onto dest, rejecting entries that
// would escape the destination directory.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return target, nil
}

// topLevelOf captures the first path component of an archive entry.
func topLevelOf(current, name string) string {
	if current != "" {
		return current
	}
	parts := strings.Split(filepath.ToSlash(name), "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return name
}

// extractTarArchive handles tar and its gzip, bzip2 and xz compressed
// variants.
func extractTarArchive(src, dest string) (string, error) {
	logger.Debug("[DEBUG] Extracting %s to %s\n", src, dest)
	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return "", err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(src, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(src, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return "", err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	var topLevel string

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		topLevel = topLevelOf(topLevel, hdr.Name)
		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return "", err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return "", err
			}
			outFile, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fs.FileMode(hdr.Mode))
			if err != nil {
				return "", err
			}
			if _, err := io.Copy(outFile, tr); err != nil {
				outFile.Close()
				return "", err
			}
			outFile.Close()
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return "", err
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return "", err
			}
		}
	}
	return filepath.Join(dest, topLevel), nil
}

// extractZip extracts a .zip archive.
func extractZip(src, dest string) (string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var topLevel string
	for _, f := range r.File {
		topLevel = topLevelOf(topLevel, f.Name)
		path, err := safeJoin(dest, f.Name)
		if err != nil {
			return "", err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return "", err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return "", err
		}
		rc, err := f.Open()
		if err != nil {
			outFile.Close()
			return "", err
		}
		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dest, topLevel), nil
}

// extract7z handles .7z archives via the sevenzip library.
func extract7z(src, dest string) (string, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	var topLevel string
	for _, f := range r.File {
		topLevel = topLevelOf(topLevel, f.Name)
		path, err := safeJoin(dest, f.Name)
		if err != nil {
			return "", err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return "", err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		outFile, err := os.Create(path)
		if err != nil {
			rc.Close()
			return "", err
		}
		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dest, topLevel), nil
}

// findExecutables scans a directory tree for executable files whose name
// starts with toolName.
func findExecutables(root, toolName string) ([]string, error) {
	var executables []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !strings.HasPrefix(filepath.Base(path), toolName) {
			return nil
		}
		if info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0 {
			logger.Debug("[DEBUG] Found executable: %s\n", path)
			executables = append(executables, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(executables) == 0 {
		return nil, fmt.Errorf("no executables named %s* under %s", toolName, root)
	}
	return executables, nil
}

// copyExecutable copies a file with 0755 permissions.
func copyExecutable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
