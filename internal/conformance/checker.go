package conformance

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"printdoctor/internal/config"
	"printdoctor/internal/logging"
)

// ErrUnavailable reports that the conformance tool could not be started.
var ErrUnavailable = errors.New("conformance checker unavailable")

// DefaultArgs are passed before the PPD path when none are configured.
var DefaultArgs = []string{"-rvv"}

// Report is the captured outcome of one checker run.
type Report struct {
	Stdout   string   `json:"stdout" yaml:"stdout"`
	Stderr   string   `json:"stderr" yaml:"stderr"`
	ExitCode int      `json:"exit_code" yaml:"exit_code"`
	Failures []string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Passed reports whether the tool accepted the file.
func (r Report) Passed() bool {
	return r.ExitCode == 0
}

// Executor abstracts command execution for the checker. Stdin is the null
// device; stdout and stderr are returned separately.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stdout, stderr []byte, err error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Checker runs cupstestppd against PPD files.
type Checker struct {
	binary  string
	args    []string
	timeout time.Duration
	exec    Executor
	logger  *slog.Logger
}

// New constructs a Checker from configuration.
func New(cfg config.Conformance, logger *slog.Logger) *Checker {
	return NewWithExecutor(cfg, commandExecutor{}, logger)
}

// NewWithExecutor allows injecting a custom executor for testing.
func NewWithExecutor(cfg config.Conformance, exec Executor, logger *slog.Logger) *Checker {
	if exec == nil {
		exec = commandExecutor{}
	}
	args := cfg.Args
	if len(args) == 0 {
		args = DefaultArgs
	}
	return &Checker{
		binary:  strings.TrimSpace(cfg.Binary),
		args:    append([]string(nil), args...),
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		exec:    exec,
		logger:  logging.NewComponentLogger(logger, "conformance"),
	}
}

// Binary returns the configured tool name.
func (c *Checker) Binary() string {
	return c.binary
}

// Check runs the tool on path. A non-zero exit is a normal result describing a
// rejected file; only failure to start the tool is an error.
func (c *Checker) Check(ctx context.Context, path string) (Report, error) {
	if c.binary == "" {
		return Report{}, fmt.Errorf("%w: binary not configured", ErrUnavailable)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string(nil), c.args...), path)
	stdout, stderr, err := c.exec.Run(ctx, c.binary, args)
	report := Report{
		Stdout:   string(stdout),
		Stderr:   string(stderr),
		Failures: failureLines(stdout),
	}

	if err != nil {
		type exitCoder interface{ ExitCode() int }
		var exitErr exitCoder
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			report.ExitCode = exitErr.ExitCode()
			logging.WithContext(ctx, c.logger).Debug("conformance check rejected file",
				logging.String("path", path),
				logging.Int("exit_code", report.ExitCode),
				logging.Int("failures", len(report.Failures)),
			)
			return report, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, fmt.Errorf("%w: %s: %w", ErrUnavailable, c.binary, ctxErr)
		}
		return report, fmt.Errorf("%w: %s: %w", ErrUnavailable, c.binary, err)
	}

	logging.WithContext(ctx, c.logger).Debug("conformance check passed", logging.String("path", path))
	return report, nil
}

func failureLines(stdout []byte) []string {
	var out []string
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, "**FAIL**") {
			out = append(out, line)
		}
	}
	return out
}
