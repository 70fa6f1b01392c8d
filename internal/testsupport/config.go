package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"printdoctor/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Package lookups never shell out and PackageKit is disabled unless an option
// turns them back on.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = ""
	cfgVal.CUPS.Server = "127.0.0.1:1"
	cfgVal.CUPS.TimeoutSeconds = 2
	cfgVal.Drivers.Provider = "none"
	cfgVal.Drivers.CatalogPath = filepath.Join(base, "catalog.toml")
	cfgVal.Drivers.FilterDirs = []string{filepath.Join(base, "filter")}
	cfgVal.PackageKit.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCUPSServer points the config at a test print server.
func WithCUPSServer(server string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.CUPS.Server = server
	}
}

// WithUserCatalog writes contents to the user catalog path.
func WithUserCatalog(contents string) ConfigOption {
	return func(b *configBuilder) {
		if err := os.WriteFile(b.cfg.Drivers.CatalogPath, []byte(contents), 0o644); err != nil {
			b.t.Fatalf("write catalog: %v", err)
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default printdoctor external
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"cupstestppd"}
		}
		binDir := StubBinaries(b.t, filepath.Join(b.baseDir, "bin"), "#!/bin/sh\nexit 0\n", names...)

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
