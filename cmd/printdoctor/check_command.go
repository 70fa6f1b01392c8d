package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"printdoctor/internal/conformance"
	"printdoctor/internal/cups"
	"printdoctor/internal/drivers"
	"printdoctor/internal/i18n"
	"printdoctor/internal/logging"
	"printdoctor/internal/pkgdb"
	"printdoctor/internal/ppdcheck"
	"printdoctor/internal/report"
	"printdoctor/internal/services"
	"printdoctor/internal/troubleshoot"
)

type checkOptions struct {
	queue   string
	remote  bool
	listed  bool
	install bool
	format  string
	locale  string
}

func newCheckPPDCommand(ctx *commandContext) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check-ppd",
		Short: "Check a queue's PPD and driver programs",
		Long: `Fetch the PPD of a print queue, validate it and look for missing driver
programs. Problems are reported the way the troubleshooting wizard shows them.

--listed skips asking the print server whether the queue exists.
--install sends the suggested package to PackageKit when one is offered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.queue = strings.TrimSpace(opts.queue)
			if opts.queue == "" {
				return services.Wrap(services.ErrConfiguration, "check-ppd", "arguments", "--queue is required", nil)
			}
			return runCheckPPD(cmd, ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.queue, "queue", "q", "", "Print queue to check")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "Treat the queue as remote (skip driver checks)")
	cmd.Flags().BoolVar(&opts.listed, "listed", false, "Assume the queue is listed by the print server")
	cmd.Flags().BoolVar(&opts.install, "install", false, "Request installation of the suggested package")
	cmd.Flags().StringVarP(&opts.format, "format", "f", report.FormatConsole, "Output format: "+strings.Join(report.Formats, ", "))
	cmd.Flags().StringVar(&opts.locale, "locale", "", "Message locale (default from LC_ALL, LC_MESSAGES or LANG)")
	return cmd
}

func runCheckPPD(cmd *cobra.Command, ctx *commandContext, opts checkOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	writer, err := report.New(opts.format, cmd.OutOrStdout())
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "check-ppd", "arguments", "", err)
	}

	runCtx, sessionID := ctx.session(cmd)
	runCtx = services.WithQueue(runCtx, opts.queue)
	logger = logging.WithContext(runCtx, logger)

	client, err := cups.New(cfg, logger)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "check-ppd", "print server", "", err)
	}
	var packages drivers.PackageLookup
	db, err := pkgdb.Open(runCtx, cfg, logger, pkgdb.Options{})
	if err != nil {
		logging.WarnWithContext(logger, "package database unavailable", "pkgdb_open",
			logging.String("path", cfg.PkgDBPath()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the cache file; it is rebuilt on the next run"),
			logging.String(logging.FieldImpact, "programs reported without packages"),
		)
	} else {
		defer db.Close()
		packages = db
	}

	loc := i18n.FromEnvironment()
	if strings.TrimSpace(opts.locale) != "" {
		loc = i18n.New(i18n.ParseLocale(opts.locale))
	}

	page := ppdcheck.New(ppdcheck.Deps{
		Fetcher:    client,
		Checker:    conformance.New(cfg.Conformance, logger),
		Resolver:   drivers.New(cfg.Drivers, packages, logger),
		Installers: ppdcheck.PackageKitConnector{Config: cfg.PackageKit, Logger: logger},
	}, loc, logger)
	defer page.Close()

	facts := &troubleshoot.QueueFacts{
		Queue:   opts.queue,
		Remote:  opts.remote,
		Checker: client,
		Logger:  logger,
	}

	initial := troubleshoot.Answers{}
	if cmd.Flags().Changed("listed") {
		initial[troubleshoot.KeyQueueListed] = opts.listed
	}

	result := troubleshoot.New(logger, facts, page).Run(runCtx, initial)
	if opts.install && page.InstallOffered() {
		page.Install(runCtx)
		result.Answers = result.Answers.Merge(page.CollectAnswer())
		fmt.Fprintf(cmd.ErrOrStderr(), "Requested installation of %s\n", page.Package())
	}

	if err := writer.Write(report.FromResult(opts.queue, sessionID, result)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if listed, _ := result.Answers.Bool(troubleshoot.KeyQueueListed); !listed {
		return services.Wrap(services.ErrNotFound, "check-ppd", "queue",
			fmt.Sprintf("queue %q is not listed by %s", opts.queue, client.Server()), nil)
	}
	return runCtx.Err()
}
