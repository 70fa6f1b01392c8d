package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"printdoctor/internal/config"
	"printdoctor/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	server     *httptest.Server
	configPath string
	baseDir    string
	ppds       map[string]string
}

// setupCLITestEnv starts a fake print server serving env.ppds and writes a
// config pointing at it.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{ppds: map[string]string{}}
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/printers/")
		if name == r.URL.Path {
			w.WriteHeader(http.StatusOK)
			return
		}
		queue := strings.TrimSuffix(name, ".ppd")
		body, ok := env.ppds[queue]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(name, ".ppd") {
			_, _ = w.Write([]byte(body))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(env.server.Close)

	opts = append([]testsupport.ConfigOption{
		testsupport.WithCUPSServer(strings.TrimPrefix(env.server.URL, "http://")),
	}, opts...)
	env.cfg = testsupport.NewConfig(t, opts...)
	env.cfg.Logging.Level = "error"
	env.baseDir = testsupport.BaseDir(env.cfg)

	homeDir := filepath.Join(env.baseDir, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("CUPS_SERVER", "")
	t.Setenv("LC_ALL", "C")

	env.configPath = filepath.Join(env.baseDir, "printdoctor.toml")
	writeTestConfig(t, env.configPath, env.cfg)
	return env
}

// stubChecker replaces the conformance checker with a script.
func (e *cliTestEnv) stubChecker(t *testing.T, script string) {
	t.Helper()
	dir := testsupport.StubBinaries(t, filepath.Join(e.baseDir, "checker"), script, "cupstestppd")
	e.cfg.Conformance.Binary = filepath.Join(dir, "cupstestppd")
	writeTestConfig(t, e.configPath, e.cfg)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
