package conformance_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"printdoctor/internal/config"
	"printdoctor/internal/conformance"
	"printdoctor/internal/logging"
)

type exitError struct{ code int }

func (e exitError) Error() string { return "exit status" }
func (e exitError) ExitCode() int { return e.code }

type stubExecutor struct {
	stdout, stderr string
	err            error

	binary string
	args   []string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	s.binary = binary
	s.args = append([]string(nil), args...)
	return []byte(s.stdout), []byte(s.stderr), s.err
}

func newChecker(exec conformance.Executor) *conformance.Checker {
	cfg := config.Conformance{Binary: "cupstestppd", TimeoutSeconds: 5}
	return conformance.NewWithExecutor(cfg, exec, logging.NewNop())
}

func TestCheckPassesDefaultArgsAndPath(t *testing.T) {
	stub := &stubExecutor{stdout: "/tmp/x.ppd: PASS\n"}
	report, err := newChecker(stub).Check(context.Background(), "/tmp/x.ppd")
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if stub.binary != "cupstestppd" {
		t.Fatalf("unexpected binary %q", stub.binary)
	}
	if want := []string{"-rvv", "/tmp/x.ppd"}; !reflect.DeepEqual(stub.args, want) {
		t.Fatalf("args = %v, want %v", stub.args, want)
	}
	if !report.Passed() || len(report.Failures) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestCheckTreatsNonZeroExitAsResult(t *testing.T) {
	stub := &stubExecutor{
		stdout: "/tmp/x.ppd: FAIL\n      **FAIL**  REQUIRED DefaultImageableArea\n      **FAIL**  Bad LanguageEncoding\n",
		stderr: "warning\n",
		err:    exitError{code: 2},
	}
	report, err := newChecker(stub).Check(context.Background(), "/tmp/x.ppd")
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if report.Passed() || report.ExitCode != 2 {
		t.Fatalf("unexpected exit code %d", report.ExitCode)
	}
	if report.Stdout != stub.stdout || report.Stderr != "warning\n" {
		t.Fatalf("output not captured verbatim: %+v", report)
	}
	want := []string{"**FAIL**  REQUIRED DefaultImageableArea", "**FAIL**  Bad LanguageEncoding"}
	if !reflect.DeepEqual(report.Failures, want) {
		t.Fatalf("failures = %v, want %v", report.Failures, want)
	}
}

func TestCheckReportsStartFailureAsUnavailable(t *testing.T) {
	stub := &stubExecutor{err: errors.New("exec: not found")}
	_, err := newChecker(stub).Check(context.Background(), "/tmp/x.ppd")
	if !errors.Is(err, conformance.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCheckRequiresBinary(t *testing.T) {
	checker := conformance.NewWithExecutor(config.Conformance{}, &stubExecutor{}, nil)
	if _, err := checker.Check(context.Background(), "/tmp/x.ppd"); !errors.Is(err, conformance.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCheckUsesConfiguredArgs(t *testing.T) {
	stub := &stubExecutor{}
	cfg := config.Conformance{Binary: "cupstestppd", Args: []string{"-W", "none"}}
	if _, err := conformance.NewWithExecutor(cfg, stub, nil).Check(context.Background(), "a.ppd"); err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if want := []string{"-W", "none", "a.ppd"}; !reflect.DeepEqual(stub.args, want) {
		t.Fatalf("args = %v, want %v", stub.args, want)
	}
}

func TestCheckRunsRealProcess(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "cupstestppd")
	body := "#!/bin/sh\nread line && echo unexpected-stdin\necho \"$2: FAIL\"\necho '  **FAIL**  Missing header'\necho oops >&2\nexit 1\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	checker := conformance.New(config.Conformance{Binary: script, TimeoutSeconds: 10}, nil)
	report, err := checker.Check(context.Background(), "/tmp/p.ppd")
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if report.ExitCode != 1 {
		t.Fatalf("exit code = %d, want 1", report.ExitCode)
	}
	if report.Stdout != "/tmp/p.ppd: FAIL\n  **FAIL**  Missing header\n" {
		t.Fatalf("unexpected stdout %q", report.Stdout)
	}
	if report.Stderr != "oops\n" {
		t.Fatalf("unexpected stderr %q", report.Stderr)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("unexpected failures %v", report.Failures)
	}
}

func TestCheckMissingBinaryIsUnavailable(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "cupstestppd")
	checker := conformance.New(config.Conformance{Binary: missing}, nil)
	if _, err := checker.Check(context.Background(), "/tmp/p.ppd"); !errors.Is(err, conformance.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
