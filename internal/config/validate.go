package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCUPS(); err != nil {
		return err
	}
	if err := c.validateConformance(); err != nil {
		return err
	}
	if err := c.validateDrivers(); err != nil {
		return err
	}
	if err := c.validatePackageKit(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCUPS() error {
	if c.CUPS.TimeoutSeconds <= 0 {
		return errors.New("cups.timeout_seconds must be positive")
	}
	server := c.CUPS.Server
	if strings.HasPrefix(server, "/") && c.CUPS.TLS {
		return errors.New("cups.tls cannot be used with a domain socket server")
	}
	if strings.ContainsAny(server, " \t") {
		return fmt.Errorf("cups.server %q must not contain whitespace", server)
	}
	return nil
}

func (c *Config) validateConformance() error {
	if strings.TrimSpace(c.Conformance.Binary) == "" {
		return errors.New("conformance.binary must be set")
	}
	if c.Conformance.TimeoutSeconds <= 0 {
		return errors.New("conformance.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDrivers() error {
	switch c.Drivers.Provider {
	case "auto", "dnf", "apt", "none":
	default:
		return fmt.Errorf("drivers.provider must be one of auto, dnf, apt, none (got %q)", c.Drivers.Provider)
	}
	for _, dir := range c.Drivers.FilterDirs {
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("drivers.filter_dirs entry %q must be absolute", dir)
		}
	}
	if c.Drivers.LookupTimeoutSeconds <= 0 {
		return errors.New("drivers.lookup_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePackageKit() error {
	switch c.PackageKit.Bus {
	case "session", "system":
		return nil
	default:
		return fmt.Errorf("packagekit.bus must be session or system (got %q)", c.PackageKit.Bus)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}
