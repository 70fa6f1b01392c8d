package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"printdoctor/internal/config"
	"printdoctor/internal/conformance"
	"printdoctor/internal/drivers"
	"printdoctor/internal/ppd"
	"printdoctor/internal/report"
	"printdoctor/internal/services"
)

var errLintFailed = errors.New("ppd failed checks")

func newDefaultsCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "defaults FILE",
		Short: "Print the default choices of a local PPD file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			writer, err := report.New(format, cmd.OutOrStdout())
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "defaults", "arguments", "", err)
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			file, err := openPPD("defaults", path)
			if err != nil {
				return err
			}
			return writer.Write(&report.Report{Defaults: file.Defaults()})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", report.FormatConsole, "Output format: "+strings.Join(report.Formats, ", "))
	return cmd
}

func newLintCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lint FILE",
		Short: "Parse a local PPD, run the conformance checker and list missing programs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			runCtx, _ := ctx.session(cmd)
			out := cmd.OutOrStdout()
			colorize := report.ShouldColorize(out)
			failed := false

			file, parseErr := ppd.Open(path)
			switch {
			case errors.Is(parseErr, fs.ErrNotExist):
				return services.Wrap(services.ErrNotFound, "lint", "open", path, parseErr)
			case parseErr != nil:
				failed = true
				fmt.Fprintln(out, renderStatusLine("Parse", statusError, parseErr.Error(), colorize))
			default:
				fmt.Fprintln(out, renderStatusLine("Parse", statusOK, fmt.Sprintf("%s (%d groups)", nickOrPath(file, path), len(file.OptionGroups)), colorize))
			}

			checker := conformance.New(cfg.Conformance, logger)
			checked, err := checker.Check(runCtx, path)
			switch {
			case errors.Is(err, conformance.ErrUnavailable):
				fmt.Fprintln(out, renderStatusLine("Conformance", statusWarn, err.Error(), colorize))
			case err != nil:
				return err
			case checked.Passed():
				fmt.Fprintln(out, renderStatusLine("Conformance", statusOK, "PASS", colorize))
			default:
				failed = true
				fmt.Fprintln(out, renderStatusLine("Conformance", statusError, fmt.Sprintf("%d failures (exit %d)", len(checked.Failures), checked.ExitCode), colorize))
				for _, line := range checked.Failures {
					fmt.Fprintf(out, "%s%s\n", statusIndent, strings.TrimSpace(line))
				}
			}

			if file == nil {
				fmt.Fprintln(out, renderStatusLine("Driver programs", statusInfo, "skipped (PPD did not parse)", colorize))
			} else {
				missing := drivers.New(cfg.Drivers, nil, logger).MissingExecutables(file)
				if len(missing) == 0 {
					fmt.Fprintln(out, renderStatusLine("Driver programs", statusOK, "all present", colorize))
				} else {
					failed = true
					fmt.Fprintln(out, renderStatusLine("Driver programs", statusError, "missing "+strings.Join(missing, ", "), colorize))
				}
			}

			if failed {
				return errLintFailed
			}
			return nil
		},
	}
}

func openPPD(check, path string) (*ppd.File, error) {
	file, err := ppd.Open(path)
	if err == nil {
		return file, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, services.Wrap(services.ErrNotFound, check, "open", path, err)
	}
	return nil, fmt.Errorf("%s: %w", path, err)
}

func nickOrPath(file *ppd.File, path string) string {
	if nick := strings.TrimSpace(file.NickName()); nick != "" {
		return nick
	}
	return path
}
