package pkgdb

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Provider names accepted by configuration.
const (
	ProviderAuto = "auto"
	ProviderDNF  = "dnf"
	ProviderApt  = "apt"
	ProviderNone = "none"
)

// ErrProviderUnavailable reports that the query tool is not installed.
var ErrProviderUnavailable = errors.New("package provider unavailable")

// Executor abstracts command execution for provider queries.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.Output()
}

// Provider asks the distribution which package ships a file.
type Provider interface {
	Name() string
	Family() Family
	WhatProvides(ctx context.Context, path string) (string, bool, error)
}

// NewProvider returns the provider for name. "auto" picks dnf or apt-file by
// whichever is installed; "none" and an undetectable system return nil.
func NewProvider(name string, exec Executor, lookPath func(string) (string, error)) Provider {
	if exec == nil {
		exec = commandExecutor{}
	}
	if lookPath == nil {
		lookPath = execLookPath
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderDNF:
		return &dnfProvider{exec: exec}
	case ProviderApt:
		return &aptProvider{exec: exec}
	case ProviderNone:
		return nil
	default:
		if _, err := lookPath("dnf"); err == nil {
			return &dnfProvider{exec: exec}
		}
		if _, err := lookPath("apt-file"); err == nil {
			return &aptProvider{exec: exec}
		}
		return nil
	}
}

// DetectFamily guesses the packaging family of the running system.
func DetectFamily(lookPath func(string) (string, error)) Family {
	if lookPath == nil {
		lookPath = execLookPath
	}
	if _, err := lookPath("dpkg"); err == nil {
		return FamilyDeb
	}
	return FamilyRPM
}

func execLookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// queryPath turns a bare program name into a path the package tools index.
func queryPath(exe string) string {
	if strings.HasPrefix(exe, "/") {
		return exe
	}
	return "/usr/bin/" + exe
}

type dnfProvider struct {
	exec Executor
}

func (p *dnfProvider) Name() string   { return ProviderDNF }
func (p *dnfProvider) Family() Family { return FamilyRPM }

func (p *dnfProvider) WhatProvides(ctx context.Context, exe string) (string, bool, error) {
	args := []string{"repoquery", "--quiet", "--whatprovides", queryPath(exe), "--qf", "%{name}\n"}
	out, err := p.exec.Run(ctx, "dnf", args)
	if err != nil {
		return "", false, providerError("dnf", err)
	}
	return firstLine(out)
}

type aptProvider struct {
	exec Executor
}

func (p *aptProvider) Name() string   { return ProviderApt }
func (p *aptProvider) Family() Family { return FamilyDeb }

func (p *aptProvider) WhatProvides(ctx context.Context, exe string) (string, bool, error) {
	args := []string{"search", "--fixed-string", "--package-only", queryPath(exe)}
	out, err := p.exec.Run(ctx, "apt-file", args)
	if err != nil {
		// apt-file exits 1 when nothing matches.
		type exitCoder interface{ ExitCode() int }
		var exitErr exitCoder
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && len(strings.TrimSpace(string(out))) == 0 {
			return "", false, nil
		}
		return "", false, providerError("apt-file", err)
	}
	return firstLine(out)
}

func providerError(tool string, err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, tool, err)
	}
	return fmt.Errorf("%s query failed: %w", tool, err)
}

func firstLine(out []byte) (string, bool, error) {
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, true, nil
		}
	}
	return "", false, nil
}
