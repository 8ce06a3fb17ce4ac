// Command bauctl runs administrative tasks against the BAU Assist database:
// bulk imports, duplicate detection, exports, conflict scans, licence
// notifications, API tokens and calendar seeding.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Josepmarimon/bau-assist-sub002/internal/app"
	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/logger"
	"github.com/Josepmarimon/bau-assist-sub002/internal/validator"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const actor = "bauctl"

// cli carries what every subcommand needs.
type cli struct {
	cfg *config.Config
	log zerolog.Logger
	out io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}
	var logLevel string

	root := &cobra.Command{
		Use:          "bauctl",
		Short:        "Administrative tasks for BAU Assist",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			c.cfg = config.Load()
			if logLevel == "" {
				logLevel = c.cfg.LogLevel
			}
			c.log = logger.SetupTo(os.Stderr, logLevel, c.cfg.LogFormat)
			validator.Setup(c.cfg.SemesterWeeks)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (defaults to LOG_LEVEL)")

	root.AddCommand(
		newImportCmd(c),
		newDedupeCmd(c),
		newExportCmd(c),
		newConflictsCmd(c),
		newLicensesCmd(c),
		newTokenCmd(c),
		newSeedCmd(c),
	)
	return root
}

// connect opens the database and Redis and wires the services.
func (c *cli) connect(ctx context.Context) (*app.App, error) {
	return app.New(ctx, c.cfg, c.log)
}

func (c *cli) printJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// semesterFlag parses an optional --semester value; empty means the current semester.
func semesterFlag(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid semester id %q: %w", raw, err)
	}
	return &id, nil
}

// optionalID parses an optional uuid flag.
func optionalID(name, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", name, raw, err)
	}
	return &id, nil
}
