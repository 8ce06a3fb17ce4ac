package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/spf13/cobra"
)

func newExportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export catalogue ids or timetables",
	}
	cmd.AddCommand(newExportIDsCmd(c), newExportTimetableCmd(c))
	return cmd
}

func newExportIDsCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ids",
		Short: "Write every catalogue row keyed by id as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := c.connect(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			ids, err := a.Services.Exports.IDs(ctx)
			if err != nil {
				return err
			}
			if output == "" {
				return c.printJSON(ids)
			}
			data, err := json.MarshalIndent(ids, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			c.log.Info().Str("file", output).Msg("Id export written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newExportTimetableCmd(c *cli) *cobra.Command {
	var (
		semester, group, teacher, classroom string
		format, output                      string
	)

	cmd := &cobra.Command{
		Use:   "timetable",
		Short: "Export one student group, teacher or classroom timetable as XLSX or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req service.TimetableRequest
			var err error
			if req.Format, err = service.ParseExportFormat(format); err != nil {
				return err
			}
			if req.StudentGroupID, err = optionalID("group", group); err != nil {
				return err
			}
			if req.TeacherID, err = optionalID("teacher", teacher); err != nil {
				return err
			}
			if req.ClassroomID, err = optionalID("classroom", classroom); err != nil {
				return err
			}
			semesterID, err := semesterFlag(semester)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := c.connect(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if req.SemesterID, err = a.Services.Calendar.ResolveSemester(ctx, semesterID); err != nil {
				return fmt.Errorf("resolve semester: %w", err)
			}
			file, err := a.Services.Exports.Timetable(ctx, req)
			if err != nil {
				return err
			}
			if output == "" {
				output = file.Filename
			}
			if err := os.WriteFile(output, file.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			c.log.Info().Str("file", output).Int("bytes", len(file.Data)).Msg("Timetable written")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&semester, "semester", "", "semester id (default: current)")
	f.StringVar(&group, "group", "", "student group id")
	f.StringVar(&teacher, "teacher", "", "teacher id")
	f.StringVar(&classroom, "classroom", "", "classroom id")
	f.StringVar(&format, "format", "xlsx", "xlsx or pdf")
	f.StringVarP(&output, "output", "o", "", "output file (default: generated name)")
	cmd.MarkFlagsOneRequired("group", "teacher", "classroom")
	cmd.MarkFlagsMutuallyExclusive("group", "teacher", "classroom")
	return cmd
}
