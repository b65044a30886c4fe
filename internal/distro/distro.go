// Package distro resolves the running distribution into an immutable
// package-manager command profile. Detection happens once at startup;
// every installer step receives the resolved profile and never re-detects.
package distro

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"setup-station/internal/logger"
)

// Family identifies one of the supported distribution families.
type Family string

const (
	FamilyDebian Family = "debian" // ubuntu, debian, mint, pop
	FamilyFedora Family = "fedora" // fedora, rhel, centos, rocky, alma
	FamilySuse   Family = "suse"   // opensuse, sles
	FamilyArch   Family = "arch"   // arch, manjaro, endeavouros
)

// OSReleasePath is the standard location of the os-release file.
const OSReleasePath = "/etc/os-release"

// Profile holds the package-manager command templates for a detected
// family. Empty slices mean the family has no equivalent operation and
// the step skips it. The struct is built once by Detect and treated as
// read-only afterwards.
type Profile struct {
	Family  Family
	Name    string   // human readable, e.g. "Ubuntu"
	Env     []string // extra env for package commands, e.g. DEBIAN_FRONTEND
	Install []string
	Remove  []string
	Update  []string
	Upgrade []string

	Autoremove []string
	Autoclean  []string

	// SnapSupported reports whether snapd is available from the family's
	// default repositories.
	SnapSupported bool
}

// profiles maps each family to its command templates. The templates match
// what the corresponding distribution documents for unattended use.
var profiles = map[Family]Profile{
	FamilyDebian: {
		Family:        FamilyDebian,
		Env:           []string{"DEBIAN_FRONTEND=noninteractive"},
		Install:       []string{"apt-get", "install", "-y", "-q"},
		Remove:        []string{"apt-get", "purge", "-y"},
		Update:        []string{"apt-get", "update"},
		Upgrade:       []string{"apt-get", "upgrade", "-y"},
		Autoremove:    []string{"apt-get", "autoremove", "-y"},
		Autoclean:     []string{"apt-get", "autoclean"},
		SnapSupported: true,
	},
	FamilyFedora: {
		Family:        FamilyFedora,
		Install:       []string{"dnf", "install", "-y"},
		Remove:        []string{"dnf", "remove", "-y"},
		Update:        []string{"dnf", "makecache"},
		Upgrade:       []string{"dnf", "upgrade", "-y"},
		Autoremove:    []string{"dnf", "autoremove", "-y"},
		Autoclean:     []string{"dnf", "clean", "all"},
		SnapSupported: true,
	},
	FamilySuse: {
		Family:  FamilySuse,
		Install: []string{"zypper", "--non-interactive", "install"},
		Remove:  []string{"zypper", "--non-interactive", "remove"},
		Update:  []string{"zypper", "--non-interactive", "refresh"},
		Upgrade: []string{"zypper", "--non-interactive", "update"},
		// zypper has no autoremove equivalent
		Autoclean: []string{"zypper", "clean"},
	},
	FamilyArch: {
		Family:  FamilyArch,
		Install: []string{"pacman", "-S", "--noconfirm", "--needed"},
		Remove:  []string{"pacman", "-Rns", "--noconfirm"},
		Update:  []string{"pacman", "-Sy", "--noconfirm"},
		Upgrade: []string{"pacman", "-Su", "--noconfirm"},
		// pacman prompts on -Sc cache cleans; cleaning is left to the user
	},
}

// families maps os-release ID (and ID_LIKE tokens) to a Family.
var families = map[string]Family{
	"ubuntu":      FamilyDebian,
	"debian":      FamilyDebian,
	"linuxmint":   FamilyDebian,
	"pop":         FamilyDebian,
	"raspbian":    FamilyDebian,
	"fedora":      FamilyFedora,
	"rhel":        FamilyFedora,
	"centos":      FamilyFedora,
	"rocky":       FamilyFedora,
	"almalinux":   FamilyFedora,
	"opensuse":    FamilySuse,
	"sles":        FamilySuse,
	"suse":        FamilySuse,
	"arch":        FamilyArch,
	"archarm":     FamilyArch,
	"manjaro":     FamilyArch,
	"endeavouros": FamilyArch,
}

// Detect reads /etc/os-release and resolves the package-manager profile
// for the running distribution. Unrecognized distributions are an error;
// there is no retry, detection is deterministic and local.
func Detect() (*Profile, error) {
	return DetectFrom(OSReleasePath)
}

// DetectFrom resolves a profile from an os-release file at the given path.
func DetectFrom(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read os-release %s: %w", path, err)
	}
	defer f.Close()

	fields := parseOSRelease(f)
	id := fields["ID"]
	logger.Debug("[DEBUG] os-release ID=%q ID_LIKE=%q PRETTY_NAME=%q\n",
		id, fields["ID_LIKE"], fields["PRETTY_NAME"])

	fam, ok := match(id, fields["ID_LIKE"])
	if !ok {
		return nil, fmt.Errorf("unsupported distribution %q (ID_LIKE=%q): supported families are debian, fedora, suse and arch", id, fields["ID_LIKE"])
	}

	p := profiles[fam]
	p.Name = fields["PRETTY_NAME"]
	if p.Name == "" {
		p.Name = id
	}
	return &p, nil
}

// match resolves a family from the ID, falling back to ID_LIKE tokens.
// opensuse variants ship IDs like "opensuse-leap", so a prefix match is
// tried before the token lookups.
func match(id, idLike string) (Family, bool) {
	if strings.HasPrefix(id, "opensuse") {
		return FamilySuse, true
	}
	if fam, ok := families[id]; ok {
		return fam, true
	}
	for _, like := range strings.Fields(idLike) {
		if fam, ok := families[like]; ok {
			return fam, true
		}
	}
	return "", false
}

// parseOSRelease reads KEY=value lines, stripping quotes and comments.
func parseOSRelease(f *os.File) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[key] = strings.Trim(value, `"'`)
	}
	return fields
}
