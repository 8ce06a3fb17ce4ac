package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Josepmarimon/bau-assist-sub002/internal/matching"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/spf13/cobra"
)

func newDedupeCmd(c *cli) *cobra.Command {
	var (
		min   string
		names string
	)

	cmd := &cobra.Command{
		Use:   "dedupe <subjects|teachers>",
		Short: "List likely duplicates, or match a list of names against the catalogue",
		Long: "Without --names, prints candidate duplicate pairs at or above --min. With --names, reads one " +
			"name per line and prints the closest catalogue entry for each.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := service.ParseDedupeTarget(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := c.connect(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if names == "" {
				pairs, err := a.Services.Dedupe.Candidates(ctx, target, matching.ParseMatchType(min))
				if err != nil {
					return err
				}
				c.log.Info().Int("candidates", len(pairs)).Msg("Duplicate scan finished")
				return c.printJSON(pairs)
			}

			list, err := readNames(names)
			if err != nil {
				return err
			}
			matches, err := a.Services.Dedupe.MatchNames(ctx, target, list)
			if err != nil {
				return err
			}
			return c.printJSON(matches)
		},
	}

	cmd.Flags().StringVar(&min, "min", string(matching.MatchMedium), "lowest match type: exact|high|medium|partial")
	cmd.Flags().StringVar(&names, "names", "", "file with one name per line (- for stdin)")
	return cmd
}

func readNames(path string) ([]string, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, fmt.Errorf("open names: %w", err)
		}
		defer f.Close()
	}

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read names: %w", err)
	}
	return names, nil
}
