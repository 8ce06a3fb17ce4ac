package main

import (
	"fmt"
	"strings"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/spf13/cobra"
)

func kindNames() string {
	names := make([]string, 0, len(model.ImportKinds))
	for _, k := range model.ImportKinds {
		names = append(names, string(k))
	}
	return strings.Join(names, "|")
}

func newImportCmd(c *cli) *cobra.Command {
	var (
		opts     model.ImportOptions
		semester string
	)

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("import <%s> <file>", kindNames()),
		Short: "Import a CSV, XLSX or JSON file synchronously",
		Long: "Rows are upserted by natural key. Assignment rows are validated and conflicting rows are " +
			"reported and skipped. With --dry-run nothing is written.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := model.ImportKind(args[0])
			if !kind.Valid() {
				return fmt.Errorf("unknown import kind %q (want %s)", args[0], kindNames())
			}

			ctx := cmd.Context()
			a, err := c.connect(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if kind == model.ImportAssignments {
				id, err := semesterFlag(semester)
				if err != nil {
					return err
				}
				resolved, err := a.Services.Calendar.ResolveSemester(ctx, id)
				if err != nil {
					return fmt.Errorf("resolve semester: %w", err)
				}
				opts.SemesterID = &resolved
			}

			report, err := a.Services.Imports.ImportFile(ctx, actor, kind, args[1], opts)
			if err != nil {
				return err
			}
			c.log.Info().
				Str("kind", string(kind)).
				Int("inserted", report.Inserted).
				Int("updated", report.Updated).
				Int("skipped", report.Skipped).
				Bool("dry_run", report.DryRun).
				Msg("Import finished")
			return c.printJSON(report)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.DryRun, "dry-run", false, "validate and count without writing")
	f.StringVar(&opts.Sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	f.StringVar(&opts.Encoding, "encoding", "", "CSV encoding: utf-8 or latin1 (default: detect)")
	f.StringVar(&opts.Delimiter, "delimiter", "", "CSV delimiter (default: detect , or ;)")
	f.IntVar(&opts.SkipRows, "skip-rows", 0, "rows to skip before the header")
	f.StringVar(&semester, "semester", "", "semester id for assignment imports (default: current)")
	return cmd
}
