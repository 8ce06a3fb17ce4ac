package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newConflictsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Scheduling conflict report",
	}

	var semester string
	scan := &cobra.Command{
		Use:   "scan",
		Short: "Re-validate every assignment of a semester and store the findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := semesterFlag(semester)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := c.connect(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			semesterID, err := a.Services.Calendar.ResolveSemester(ctx, id)
			if err != nil {
				return err
			}
			result, err := a.Services.Assignments.ScanConflicts(ctx, semesterID)
			if err != nil {
				return err
			}
			c.log.Info().
				Int("assignments", result.Assignments).
				Int("conflicts", len(result.Conflicts)).
				Msg("Conflict scan finished")
			return c.printJSON(result)
		},
	}
	scan.Flags().StringVar(&semester, "semester", "", "semester id (default: current)")

	cmd.AddCommand(scan)
	return cmd
}

func newLicensesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "licenses",
		Short: "Software licence expiry",
	}

	notify := &cobra.Command{
		Use:   "notify",
		Short: "E-mail the licences that expired or expire soon",
		Long:  "Sends through SendGrid when SENDGRID_API_KEY is set and only logs the message otherwise.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := c.connect(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Services.Licenses.Notify(ctx)
			if err != nil {
				return err
			}
			c.log.Info().Int("alerts", n).Msg("Licence notification done")
			return nil
		},
	}

	cmd.AddCommand(notify)
	return cmd
}

func newSeedCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed reference data",
	}

	var (
		startYear int
		current   bool
	)
	calendar := &cobra.Command{
		Use:   "calendar",
		Short: "Create an academic year and its two semesters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if startYear == 0 {
				now := time.Now()
				startYear = now.Year()
				if now.Month() < time.September {
					startYear--
				}
			}

			ctx := cmd.Context()
			a, err := c.connect(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			year, semesters, err := a.Services.Calendar.SeedYear(ctx, startYear, current)
			if err != nil {
				return err
			}
			return c.printJSON(map[string]interface{}{
				"academic_year": year,
				"semesters":     semesters,
			})
		},
	}
	calendar.Flags().IntVar(&startYear, "start-year", 0, "first calendar year of the course (default: the running course)")
	calendar.Flags().BoolVar(&current, "current", false, "mark the year as current")

	cmd.AddCommand(calendar)
	return cmd
}
