package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"printdoctor/internal/deps"
	"printdoctor/internal/preflight"
	"printdoctor/internal/report"
)

type statusOutput struct {
	Checks       []preflight.Result `json:"checks"`
	Dependencies []deps.Status      `json:"dependencies"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON *jsonOutput

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the print server, PackageKit and required programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx, _ := ctx.session(cmd)

			results := preflight.RunAll(runCtx, cfg, logger)
			statuses := preflight.CheckSystemDeps(cfg)

			if asJSON.enabled {
				return asJSON.write(cmd, statusOutput{Checks: results, Dependencies: statuses})
			}

			out := cmd.OutOrStdout()
			colorize := report.ShouldColorize(out)
			lines := renderSectionHeader("Environment", colorize)
			for _, result := range results {
				lines = append(lines, checkStatusLine(result, colorize))
			}
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Programs", colorize)...)
			lines = append(lines, dependencyLines(statuses, colorize)...)
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}

	asJSON = addJSONFlag(cmd)
	return cmd
}
