package ppdcheck

import (
	"context"
	"io"
	"log/slog"

	"printdoctor/internal/config"
	"printdoctor/internal/conformance"
	"printdoctor/internal/drivers"
	"printdoctor/internal/packagekit"
	"printdoctor/internal/ppd"
)

// PPDFetcher downloads a queue's PPD to a temporary file the caller owns.
type PPDFetcher interface {
	GetPPD(ctx context.Context, queue string) (string, error)
}

// PPDParser opens a PPD file.
type PPDParser interface {
	Open(path string) (*ppd.File, error)
}

// ParserFunc adapts a function to PPDParser.
type ParserFunc func(path string) (*ppd.File, error)

// Open calls f(path).
func (f ParserFunc) Open(path string) (*ppd.File, error) { return f(path) }

// DefaultParser reads PPDs with the ppd package.
var DefaultParser PPDParser = ParserFunc(ppd.Open)

// ConformanceChecker explains why a PPD was rejected.
type ConformanceChecker interface {
	Check(ctx context.Context, path string) (conformance.Report, error)
}

// DriverResolver lists missing driver packages and programs.
type DriverResolver interface {
	Missing(ctx context.Context, file *ppd.File) (drivers.Missing, error)
}

// Installer triggers package installation.
type Installer interface {
	InstallPackageName(ctx context.Context, name string) error
}

// InstallerConnector reaches the installation service. An error means the
// service is unavailable.
type InstallerConnector interface {
	Connect(ctx context.Context) (Installer, error)
}

// PackageKitConnector connects to PackageKit over D-Bus.
type PackageKitConnector struct {
	Config config.PackageKit
	Logger *slog.Logger
}

// Connect implements InstallerConnector.
func (p PackageKitConnector) Connect(ctx context.Context) (Installer, error) {
	client, err := packagekit.Connect(ctx, p.Config, p.Logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Deps are the collaborators of the page.
type Deps struct {
	Fetcher    PPDFetcher
	Parser     PPDParser
	Checker    ConformanceChecker
	Resolver   DriverResolver
	Installers InstallerConnector
}

func closeInstaller(inst Installer) {
	if closer, ok := inst.(io.Closer); ok {
		_ = closer.Close()
	}
}
