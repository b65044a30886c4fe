package installer

import (
	"fmt"
	"strings"

	"setup-station/internal/logger"
)

// stepUpdate refreshes the package index, upgrades installed packages and
// cleans up, skipping operations the detected family has no template for.
func stepUpdate(c *Context) error {
	for _, template := range [][]string{
		c.Profile.Update,
		c.Profile.Upgrade,
		c.Profile.Autoremove,
		c.Profile.Autoclean,
	} {
		if err := c.pkgCommand(template); err != nil {
			return err
		}
	}
	logger.Info("[INFO] System packages updated on %s\n", c.Profile.Name)
	return nil
}

// stepCore installs the configured core developer tools. Package managers
// treat already-installed packages as a no-op, so the step is idempotent.
func stepCore(c *Context) error {
	if len(c.Config.CorePackages) == 0 {
		logger.Warn("[WARN] No core packages configured. Skipping.\n")
		return nil
	}
	logger.Info("[INFO] Installing core tools: %s\n", strings.Join(c.Config.CorePackages, ", "))
	return c.pkgCommand(c.Profile.Install, c.Config.CorePackages...)
}

// stepOpenVPN installs the OpenVPN packages.
func stepOpenVPN(c *Context) error {
	if len(c.Config.OpenVPNPackages) == 0 {
		logger.Warn("[WARN] No OpenVPN packages configured. Skipping.\n")
		return nil
	}
	return c.pkgCommand(c.Profile.Install, c.Config.OpenVPNPackages...)
}

// stepSnap installs snapd and the configured snaps. Families whose default
// repositories do not ship snapd fail with a clear error; there is no AUR
// or third-party repo fallback.
func stepSnap(c *Context) error {
	if !c.Profile.SnapSupported {
		return fmt.Errorf("snap is not supported on the %s family", c.Profile.Family)
	}

	if !c.Runner.LookPath("snap") {
		if err := c.pkgCommand(c.Profile.Install, "snapd"); err != nil {
			return err
		}
	}

	for _, pkg := range c.Config.SnapPackages {
		if _, err := c.Runner.Output("snap", "list", pkg.Name); err == nil {
			logger.Info("[INFO] Snap %s already installed. Skipping.\n", pkg.Name)
			continue
		}
		args := []string{"snap", "install", pkg.Name}
		if pkg.Classic {
			args = append(args, "--classic")
		}
		if c.UseSudo {
			args = append([]string{"sudo"}, args...)
		}
		if err := c.Runner.Run(nil, args[0], args[1:]...); err != nil {
			return err
		}
		logger.Info("[INFO] Installed snap %s\n", pkg.Name)
	}
	return nil
}
