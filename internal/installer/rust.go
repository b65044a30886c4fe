package installer

import (
	"os"
	"path/filepath"

	"setup-station/internal/logger"
)

// rustupURL is the official rustup bootstrap script location.
const rustupURL = "https://sh.rustup.rs"

// stepRust bootstraps the Rust toolchain via rustup. A present cargo
// binary means the toolchain is already installed and the step is a no-op.
func stepRust(c *Context) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	cargo := filepath.Join(home, ".cargo", "bin", "cargo")
	if _, err := os.Stat(cargo); err == nil {
		logger.Info("[INFO] Rust toolchain already installed at %s. Skipping.\n", cargo)
		return nil
	}

	logger.Info("[INFO] Bootstrapping Rust toolchain via rustup...\n")
	script := "curl --proto '=https' --tlsv1.2 -fsSL " + rustupURL + " | sh -s -- -y"
	return c.Runner.Run(nil, "sh", "-c", script)
}
