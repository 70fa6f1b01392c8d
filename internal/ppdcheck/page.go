package ppdcheck

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"printdoctor/internal/drivers"
	"printdoctor/internal/i18n"
	"printdoctor/internal/logging"
	"printdoctor/internal/ppd"
	"printdoctor/internal/services"
	"printdoctor/internal/troubleshoot"
)

// Name identifies the page in logs and reports.
const Name = "check-ppd-sanity"

// ActionInstall is the ID of the install button.
const ActionInstall = "install"

// CheckerOutput is the cupstestppd_output answer.
type CheckerOutput struct {
	Stdout string `json:"stdout" yaml:"stdout"`
	Stderr string `json:"stderr" yaml:"stderr"`
}

// Page is the "Check PPD sanity" question.
type Page struct {
	deps   Deps
	loc    *i18n.Localizer
	logger *slog.Logger

	answers   troubleshoot.Answers
	title     string
	text      string
	pkg       string
	installer Installer
}

// New constructs the page. A nil parser uses DefaultParser and a nil
// localizer uses English.
func New(deps Deps, loc *i18n.Localizer, logger *slog.Logger) *Page {
	if deps.Parser == nil {
		deps.Parser = DefaultParser
	}
	if loc == nil {
		loc = i18n.FromEnvironment()
	}
	return &Page{
		deps:    deps,
		loc:     loc,
		logger:  logging.NewComponentLogger(logger, "ppdcheck"),
		answers: troubleshoot.Answers{},
	}
}

func (p *Page) Name() string { return Name }

func (p *Page) reset() {
	if p.installer != nil {
		closeInstaller(p.installer)
	}
	p.answers = troubleshoot.Answers{}
	p.title = ""
	p.text = ""
	p.pkg = ""
	p.installer = nil
}

// Display runs the checks and reports whether there is a problem to show.
func (p *Page) Display(ctx context.Context, answers troubleshoot.Answers) bool {
	p.reset()

	if listed, _ := answers.Bool(troubleshoot.KeyQueueListed); !listed {
		return false
	}
	name, _ := answers.String(troubleshoot.KeyQueue)
	remote, _ := answers.Bool(troubleshoot.KeyPrinterRemote)
	ctx = services.WithQueue(ctx, name)
	logger := logging.WithContext(ctx, p.logger)

	if p.deps.Fetcher == nil {
		return false
	}
	path, err := p.deps.Fetcher.GetPPD(ctx, name)
	if err != nil {
		logging.WarnWithContext(logger, "ppd fetch failed", "ppd_fetch",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the print server is running"),
			logging.String(logging.FieldImpact, "ppd check skipped"),
		)
		return false
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("temporary ppd not removed", logging.String("path", path), logging.Error(err))
		}
	}()

	file, err := p.deps.Parser.Open(path)
	if err != nil {
		p.reportInvalid(ctx, logger, name, path, err)
	} else {
		p.answers[troubleshoot.KeyPPDValid] = true
		p.answers[troubleshoot.KeyPPDDefaults] = file.Defaults()
	}

	if p.title == "" && !remote {
		p.checkDrivers(ctx, logger, name, file)
	}

	logger.Info("ppd check finished",
		logging.Args(logging.DecisionAttrs("ppd_page", pageDecision(p.title != ""), p.title)...)...)
	return p.title != ""
}

func (p *Page) reportInvalid(ctx context.Context, logger *slog.Logger, name, path string, parseErr error) {
	p.title = p.loc.Sprintf(i18n.MsgInvalidPPDTitle)
	p.answers[troubleshoot.KeyPPDValid] = false
	logger.Info("ppd rejected", logging.Error(parseErr))

	if p.deps.Checker == nil {
		p.text = p.loc.Sprintf(i18n.MsgPPDProblem, name)
		return
	}
	report, err := p.deps.Checker.Check(ctx, path)
	if err != nil {
		logging.WarnWithContext(logger, "conformance checker failed", "conformance_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install cupstestppd for a detailed diagnosis"),
			logging.String(logging.FieldImpact, "generic message shown"),
		)
		p.text = p.loc.Sprintf(i18n.MsgPPDProblem, name)
		return
	}
	p.answers[troubleshoot.KeyCupstestppdOutput] = CheckerOutput{Stdout: report.Stdout, Stderr: report.Stderr}
	p.text = p.loc.Sprintf(i18n.MsgInvalidPPDText, name) + "\n" + report.Stdout
}

func (p *Page) checkDrivers(ctx context.Context, logger *slog.Logger, name string, file *ppd.File) {
	if p.deps.Resolver == nil || file == nil {
		return
	}
	missing, err := p.deps.Resolver.Missing(ctx, file)
	if err != nil {
		logging.WarnWithContext(logger, "driver check failed", "driver_check",
			logging.Error(err),
			logging.String(logging.FieldImpact, "missing drivers not reported"),
		)
		return
	}
	p.answers[troubleshoot.KeyMissingPkgsAndExes] = missing
	if missing.Empty() {
		return
	}

	p.title = p.loc.Sprintf(i18n.MsgMissingDriverTitle)
	if len(missing.Packages) > 0 && p.deps.Installers != nil {
		installer, err := p.deps.Installers.Connect(ctx)
		if err != nil {
			logger.Info("package installation unavailable", logging.Error(err))
		} else {
			p.installer = installer
		}
	}

	switch {
	case p.installer != nil:
		p.pkg = missing.Packages[0]
		p.text = p.loc.Sprintf(i18n.MsgRequiresPackage, name, p.pkg)
	case len(missing.Executables) > 0:
		p.text = p.loc.Sprintf(i18n.MsgRequiresProgram, name, missing.Executables[0])
	default:
		p.text = p.loc.Sprintf(i18n.MsgRequiresPackage, name, missing.Packages[0])
	}
}

func pageDecision(shown bool) string {
	if shown {
		return "shown"
	}
	return "skipped"
}

// CollectAnswer returns the facts gathered by the last Display.
func (p *Page) CollectAnswer() troubleshoot.Answers {
	return p.answers
}

// Page returns the title, text and install button, if offered.
func (p *Page) Page() troubleshoot.Page {
	page := troubleshoot.Page{Title: p.title, Text: p.text}
	if p.InstallOffered() {
		page.Actions = []troubleshoot.Action{{ID: ActionInstall, Label: p.loc.Sprintf(i18n.MsgInstall)}}
	}
	return page
}

// InstallOffered reports whether the install button is shown.
func (p *Page) InstallOffered() bool {
	return p.pkg != "" && p.installer != nil
}

// Package returns the package the install button installs.
func (p *Page) Package() string {
	return p.pkg
}

// Install handles the install button. The request is fire-and-forget; a
// failure to send it is logged and otherwise ignored.
func (p *Page) Install(ctx context.Context) {
	if !p.InstallOffered() {
		return
	}
	installed, _ := p.answers.Strings(troubleshoot.KeyPackagesInstalled)
	p.answers[troubleshoot.KeyPackagesInstalled] = append(append([]string(nil), installed...), p.pkg)

	if err := p.installer.InstallPackageName(ctx, p.pkg); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "package install request failed", "package_install",
			logging.String("package", p.pkg),
			logging.Error(err),
			logging.String(logging.FieldImpact, "package not installed"),
		)
	}
}

// Close releases the installation service connection.
func (p *Page) Close() {
	if p.installer != nil {
		closeInstaller(p.installer)
		p.installer = nil
	}
}

var _ troubleshoot.Question = (*Page)(nil)
var _ DriverResolver = (*drivers.Resolver)(nil)
