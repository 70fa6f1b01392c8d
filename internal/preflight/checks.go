package preflight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"printdoctor/internal/config"
	"printdoctor/internal/cups"
	"printdoctor/internal/deps"
	"printdoctor/internal/packagekit"
	"printdoctor/internal/pkgdb"
)

// CheckPrintServer verifies the CUPS scheduler answers HTTP requests.
func CheckPrintServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) Result {
	const name = "Print server"

	client, err := cups.New(cfg, logger)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(checkCtx); err != nil {
		var protoErr *cups.ProtocolError
		if errors.As(err, &protoErr) {
			// Any HTTP answer means the scheduler is up.
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", client.Server(), protoErr.Status)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", client.Server(), err)}
	}
	return Result{Name: name, Passed: true, Detail: client.Server() + " (reachable)"}
}

// CheckPackageKit verifies PackageKit is owned or activatable on the bus.
func CheckPackageKit(ctx context.Context, cfg config.PackageKit, logger *slog.Logger) Result {
	const name = "PackageKit"

	client, err := packagekit.Connect(ctx, cfg, logger)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	_ = client.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("available on %s bus", cfg.Bus)}
}

// CheckPackageCache opens the package lookup cache and reports its size.
func CheckPackageCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) Result {
	const name = "Package cache"

	db, err := pkgdb.Open(ctx, cfg, logger, pkgdb.Options{})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer db.Close()

	entries, err := db.Entries(ctx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d cached, provider %s)", db.CachePath(), len(entries), db.ProviderName()),
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external programs used by the troubleshooter.
// The package query tool matching the configured provider is optional since
// lookups fall back to the catalogs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "cupstestppd",
			Command:     cfg.Conformance.Binary,
			Description: "Explains why a PPD was rejected",
		},
	}
	switch cfg.Drivers.Provider {
	case pkgdb.ProviderDNF, pkgdb.ProviderAuto:
		requirements = append(requirements, deps.Requirement{
			Name:        "dnf",
			Command:     "dnf",
			Description: "Finds the RPM package providing a driver program",
			Optional:    true,
		})
	}
	switch cfg.Drivers.Provider {
	case pkgdb.ProviderApt, pkgdb.ProviderAuto:
		requirements = append(requirements, deps.Requirement{
			Name:        "apt-file",
			Command:     "apt-file",
			Description: "Finds the Debian package providing a driver program",
			Optional:    true,
		})
	}
	if cfg.PackageKit.Enabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "pkcon",
			Command:     "pkcon",
			Description: "PackageKit command-line client, for installing suggested packages by hand",
			Optional:    true,
		})
	}
	return deps.CheckBinaries(requirements)
}
