package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	defaultCUPSTimeoutSeconds        = 10
	defaultConformanceBinary         = "cupstestppd"
	defaultConformanceTimeoutSeconds = 60
	defaultSearchPath                = "/usr/bin:/bin"
	defaultProvider                  = "auto"
	defaultCacheTTLHours             = 24 * 7
	defaultLookupTimeoutSeconds      = 30
	defaultPackageKitBus             = "session"
	defaultPackageKitInteraction     = "hide-finished"
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
)

var defaultFilterDirs = []string{
	"/usr/lib/cups/filter",
	"/usr/lib64/cups/filter",
}

var defaultConformanceArgs = []string{"-rvv"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  filepath.Join(xdg.CacheHome, AppName, "ppd"),
			StateDir: filepath.Join(xdg.StateHome, AppName),
		},
		CUPS: CUPS{
			TimeoutSeconds: defaultCUPSTimeoutSeconds,
		},
		Conformance: Conformance{
			Binary:         defaultConformanceBinary,
			Args:           append([]string(nil), defaultConformanceArgs...),
			TimeoutSeconds: defaultConformanceTimeoutSeconds,
		},
		Drivers: Drivers{
			SearchPath:           defaultSearchPath,
			FilterDirs:           append([]string(nil), defaultFilterDirs...),
			Provider:             defaultProvider,
			CacheTTLHours:        defaultCacheTTLHours,
			LookupTimeoutSeconds: defaultLookupTimeoutSeconds,
		},
		PackageKit: PackageKit{
			Enabled:     true,
			Bus:         defaultPackageKitBus,
			Interaction: defaultPackageKitInteraction,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
