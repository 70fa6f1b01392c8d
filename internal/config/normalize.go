package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCUPS(); err != nil {
		return err
	}
	c.normalizeConformance()
	if err := c.normalizeDrivers(); err != nil {
		return err
	}
	c.normalizePackageKit()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	defaults := Default()
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaults.Paths.WorkDir
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaults.Paths.StateDir
	}
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCUPS() error {
	c.CUPS.Server = strings.TrimSpace(c.CUPS.Server)
	if c.CUPS.Server == "" {
		if value, ok := os.LookupEnv("CUPS_SERVER"); ok {
			c.CUPS.Server = strings.TrimSpace(value)
		}
	}
	if strings.HasPrefix(c.CUPS.Server, "~") {
		expanded, err := expandPath(c.CUPS.Server)
		if err != nil {
			return fmt.Errorf("cups.server: %w", err)
		}
		c.CUPS.Server = expanded
	}
	c.CUPS.User = strings.TrimSpace(c.CUPS.User)
	if c.CUPS.User == "" {
		if value, ok := os.LookupEnv("CUPS_USER"); ok {
			c.CUPS.User = strings.TrimSpace(value)
		}
	}
	if c.CUPS.TimeoutSeconds <= 0 {
		c.CUPS.TimeoutSeconds = defaultCUPSTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeConformance() {
	c.Conformance.Binary = strings.TrimSpace(c.Conformance.Binary)
	if c.Conformance.Binary == "" {
		c.Conformance.Binary = defaultConformanceBinary
	}
	if len(c.Conformance.Args) == 0 {
		c.Conformance.Args = append([]string(nil), defaultConformanceArgs...)
	}
	if c.Conformance.TimeoutSeconds <= 0 {
		c.Conformance.TimeoutSeconds = defaultConformanceTimeoutSeconds
	}
}

func (c *Config) normalizeDrivers() error {
	c.Drivers.SearchPath = strings.TrimSpace(c.Drivers.SearchPath)
	if c.Drivers.SearchPath == "" {
		c.Drivers.SearchPath = defaultSearchPath
	}
	dirs := make([]string, 0, len(c.Drivers.FilterDirs))
	seen := make(map[string]struct{}, len(c.Drivers.FilterDirs))
	for _, dir := range c.Drivers.FilterDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	if len(dirs) == 0 {
		dirs = append(dirs, defaultFilterDirs...)
	}
	c.Drivers.FilterDirs = dirs

	c.Drivers.Provider = strings.ToLower(strings.TrimSpace(c.Drivers.Provider))
	if c.Drivers.Provider == "" {
		c.Drivers.Provider = defaultProvider
	}
	var err error
	if c.Drivers.CatalogPath, err = expandPath(strings.TrimSpace(c.Drivers.CatalogPath)); err != nil {
		return fmt.Errorf("drivers.catalog_path: %w", err)
	}
	if c.Drivers.CacheTTLHours < 0 {
		c.Drivers.CacheTTLHours = 0
	}
	if c.Drivers.LookupTimeoutSeconds <= 0 {
		c.Drivers.LookupTimeoutSeconds = defaultLookupTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizePackageKit() {
	c.PackageKit.Bus = strings.ToLower(strings.TrimSpace(c.PackageKit.Bus))
	if c.PackageKit.Bus == "" {
		c.PackageKit.Bus = defaultPackageKitBus
	}
	c.PackageKit.Interaction = strings.TrimSpace(c.PackageKit.Interaction)
	if c.PackageKit.Interaction == "" {
		c.PackageKit.Interaction = defaultPackageKitInteraction
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("PRINTDOCTOR_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
