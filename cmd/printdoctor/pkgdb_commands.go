package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"printdoctor/internal/pkgdb"
	"printdoctor/internal/report"
	"printdoctor/internal/services"
)

func newPkgDBCommand(ctx *commandContext) *cobra.Command {
	pkgCmd := &cobra.Command{
		Use:   "pkgdb",
		Short: "Inspect the executable to package lookup cache",
	}

	pkgCmd.AddCommand(newPkgDBLookupCommand(ctx))
	pkgCmd.AddCommand(newPkgDBSetCommand(ctx))
	pkgCmd.AddCommand(newPkgDBListCommand(ctx))
	pkgCmd.AddCommand(newPkgDBPurgeCommand(ctx))
	return pkgCmd
}

func (c *commandContext) withPkgDB(cmd *cobra.Command, fn func(*pkgdb.DB) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	runCtx, _ := c.session(cmd)
	db, err := pkgdb.Open(runCtx, cfg, logger, pkgdb.Options{})
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "pkgdb", "open", "", err)
	}
	defer db.Close()
	cmd.SetContext(runCtx)
	return fn(db)
}

func newPkgDBLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup EXECUTABLE",
		Short: "Find the package providing an executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exe := strings.TrimSpace(args[0])
			return ctx.withPkgDB(cmd, func(db *pkgdb.DB) error {
				pkg, found, err := db.Lookup(cmd.Context(), exe)
				if err != nil {
					return err
				}
				if !found {
					return services.Wrap(services.ErrNotFound, "pkgdb", "lookup",
						fmt.Sprintf("no %s package provides %s", db.Family(), exe), nil)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", exe, pkg)
				return nil
			})
		},
	}
}

func newPkgDBSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set EXECUTABLE PACKAGE",
		Short: "Record the package providing an executable",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exe := strings.TrimSpace(args[0])
			pkg := strings.TrimSpace(args[1])
			return ctx.withPkgDB(cmd, func(db *pkgdb.DB) error {
				if err := db.Put(cmd.Context(), exe, pkg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s: %s\n", exe, pkg)
				return nil
			})
		},
	}
}

func newPkgDBListCommand(ctx *commandContext) *cobra.Command {
	var asJSON *jsonOutput

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPkgDB(cmd, func(db *pkgdb.DB) error {
				entries, err := db.Entries(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON.enabled {
					if entries == nil {
						entries = []pkgdb.Entry{}
					}
					return asJSON.write(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintf(out, "No cached lookups in %s\n", db.CachePath())
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					pkg := e.Package
					if pkg == "" {
						pkg = "-"
					}
					rows = append(rows, []string{e.Executable, pkg, e.Source, e.LookedUpAt.Local().Format(time.DateTime)})
				}
				fmt.Fprintln(out, report.Table([]report.Column{
					{Header: "Executable"},
					{Header: "Package"},
					{Header: "Source"},
					{Header: "Looked up", AlignRight: true},
				}, rows))
				return nil
			})
		},
	}

	asJSON = addJSONFlag(cmd)
	return cmd
}

func newPkgDBPurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove all cached lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPkgDB(cmd, func(db *pkgdb.DB) error {
				removed, err := db.Purge(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached lookups\n", removed)
				return nil
			})
		},
	}
}
