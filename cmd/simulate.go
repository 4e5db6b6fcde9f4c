// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/seriesingest/config"
	"github.com/cardinalhq/seriesingest/internal/seriestype"
	"github.com/cardinalhq/seriesingest/internal/simulate"
)

func init() {
	var (
		dataset     string
		count       int
		cleanOutput bool
	)

	cmd := &cobra.Command{
		Use:       "simulate <labeled|unlabeled>",
		Short:     "Fill an input directory with series taken from a dataset",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"labeled", "unlabeled"},
		RunE: func(c *cobra.Command, args []string) error {
			kind, err := seriestype.ParseKind(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := cfg.SeriesType(kind)
			if err != nil {
				return err
			}

			doneCtx, doneFx, err := setupTelemetry(config.ServiceName, cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to setup telemetry: %w", err)
			}
			defer func() {
				if err := doneFx(); err != nil {
					slog.Error("Error shutting down telemetry", slog.Any("error", err))
				}
			}()

			n, err := simulate.Run(doneCtx, st, dataset, simulate.Options{
				Count:       count,
				CleanOutput: cleanOutput,
			})
			if err != nil {
				return fmt.Errorf("simulation failed after %d series: %w", n, err)
			}
			fmt.Fprintf(c.OutOrStdout(), "%s: %d series written to %s\n", kind, n, st.InputDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "canonical table the series are taken from")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of series to write")
	cmd.Flags().BoolVar(&cleanOutput, "clean-output", false, "reset the output store to its header")
	_ = cmd.MarkFlagRequired("dataset")

	rootCmd.AddCommand(cmd)
}
