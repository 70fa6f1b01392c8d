package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"printdoctor/internal/config"
)

func isolateXDG(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))
	t.Setenv("CUPS_SERVER", "")
	t.Setenv("CUPS_USER", "")
	t.Setenv("PRINTDOCTOR_LOG_LEVEL", "")
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return home
}

func TestLoadDefaultConfigUsesXDGDirectories(t *testing.T) {
	home := isolateXDG(t)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(home, "config", "printdoctor", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if want := filepath.Join(home, "cache", "printdoctor", "ppd"); cfg.Paths.WorkDir != want {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, want)
	}
	if want := filepath.Join(home, "state", "printdoctor"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if cfg.Conformance.Binary != "cupstestppd" {
		t.Fatalf("unexpected conformance binary %q", cfg.Conformance.Binary)
	}
	if strings.Join(cfg.Conformance.Args, " ") != "-rvv" {
		t.Fatalf("unexpected conformance args %v", cfg.Conformance.Args)
	}
	if cfg.Drivers.SearchPath != "/usr/bin:/bin" {
		t.Fatalf("unexpected search path %q", cfg.Drivers.SearchPath)
	}
	if !cfg.PackageKit.Enabled || cfg.PackageKit.Bus != "session" {
		t.Fatalf("unexpected packagekit defaults %+v", cfg.PackageKit)
	}
	if cfg.LogFile() != "" {
		t.Fatalf("expected file logging disabled by default, got %q", cfg.LogFile())
	}
}

func TestLoadHonoursCUPSServerEnv(t *testing.T) {
	isolateXDG(t)
	t.Setenv("CUPS_SERVER", "print.example.com:8631")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CUPS.Server != "print.example.com:8631" {
		t.Fatalf("expected CUPS_SERVER fallback, got %q", cfg.CUPS.Server)
	}
}

func TestLoadFileOverridesAndNormalizes(t *testing.T) {
	home := isolateXDG(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"work_dir": "~/ppd-work",
			"log_dir":  "~/logs",
		},
		"drivers": map[string]any{
			"provider":    " DNF ",
			"filter_dirs": []string{"/opt/filters", "/opt/filters", " "},
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "Debug",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config %q to be loaded, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Paths.WorkDir != filepath.Join(home, "ppd-work") {
		t.Fatalf("unexpected work dir %q", cfg.Paths.WorkDir)
	}
	if cfg.LogFile() != filepath.Join(home, "logs", "printdoctor.log") {
		t.Fatalf("unexpected log file %q", cfg.LogFile())
	}
	if cfg.Drivers.Provider != "dnf" {
		t.Fatalf("expected provider normalized to dnf, got %q", cfg.Drivers.Provider)
	}
	if len(cfg.Drivers.FilterDirs) != 1 || cfg.Drivers.FilterDirs[0] != "/opt/filters" {
		t.Fatalf("expected deduplicated filter dirs, got %v", cfg.Drivers.FilterDirs)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"provider", func(c *config.Config) { c.Drivers.Provider = "yum" }, "drivers.provider"},
		{"relative filter dir", func(c *config.Config) { c.Drivers.FilterDirs = []string{"filters"} }, "must be absolute"},
		{"bus", func(c *config.Config) { c.PackageKit.Bus = "user" }, "packagekit.bus"},
		{"tls socket", func(c *config.Config) {
			c.CUPS.Server = "/run/cups/cups.sock"
			c.CUPS.TLS = true
		}, "cups.tls"},
		{"binary", func(c *config.Config) { c.Conformance.Binary = " " }, "conformance.binary"},
		{"level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolateXDG(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cups]\nhostname = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	isolateXDG(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Drivers.CacheTTLHours != 168 {
		t.Fatalf("unexpected cache ttl %d", cfg.Drivers.CacheTTLHours)
	}
}
