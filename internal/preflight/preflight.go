package preflight

import (
	"context"
	"log/slog"

	"printdoctor/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
	Detail string `json:"detail" yaml:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// The PackageKit check is skipped when PackageKit is disabled.
func RunAll(ctx context.Context, cfg *config.Config, logger *slog.Logger) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckPrintServer(ctx, cfg, logger))
	results = append(results, CheckPackageCache(ctx, cfg, logger))
	if cfg.PackageKit.Enabled {
		results = append(results, CheckPackageKit(ctx, cfg.PackageKit, logger))
	}
	return results
}
