package main

import (
	"os"

	"setup-station/cmd"
)

// main is the program entry point. It delegates to cmd.Execute(), which
// handles command line parsing, distribution detection, and step dispatch.
//
// setup-station provisions a Linux developer workstation:
//   - Detects the distribution's package manager from /etc/os-release
//     (apt-get, dnf, zypper or pacman) and resolves it into an immutable
//     command profile used by every step
//   - Runs a fixed menu of idempotent setup steps: system update, core
//     tool installation, zsh + plugin setup, neovim from GitHub releases,
//     Nerd Font installation, dotfile synchronization with timestamped
//     backups, rustup bootstrap, openvpn, snap packages and repo cloning
//   - Steps are selected by CLI flags or through an interactive numbered
//     menu; both entry points dispatch through the same ordered step table
//   - Maintains a JSON state file so release downloads are skipped when
//     the recorded version already matches the configured one
//
// Error handling is fail-fast: the first failing external command aborts
// the run and the process exits non-zero, matching shell `set -e`
// semantics. The only tolerated failures are the editor purge commands,
// which may fail when the package was never installed.
func main() {
	os.Exit(cmd.Execute())
}
