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

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/cardinalhq/seriesingest/config"
	"github.com/cardinalhq/seriesingest/internal/ingest"
	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

// kindsFor maps the ingest argument to the series kinds to run, in order.
func kindsFor(arg string) ([]seriestype.Kind, error) {
	if arg == "" || arg == "all" {
		return seriestype.Kinds, nil
	}
	kind, err := seriestype.ParseKind(arg)
	if err != nil {
		return nil, err
	}
	return []seriestype.Kind{kind}, nil
}

func init() {
	var maxSeries int

	cmd := &cobra.Command{
		Use:       "ingest [labeled|unlabeled|all]",
		Short:     "Ingest the raw series waiting in the input directories",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"labeled", "unlabeled", "all"},
		RunE: func(c *cobra.Command, args []string) error {
			var arg string
			if len(args) > 0 {
				arg = args[0]
			}
			kinds, err := kindsFor(arg)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
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

			var runOpts []ingest.RunOption
			if c.Flags().Changed("max-series") {
				runOpts = append(runOpts, ingest.WithMaxSeries(maxSeries))
			}

			coord, err := ingest.New(doneCtx, cfg)
			if err != nil {
				return fmt.Errorf("failed to start ingestion: %w", err)
			}
			defer func() {
				if err := coord.Close(); err != nil {
					slog.Error("Error stopping the worker pool", slog.Any("error", err))
				}
			}()

			var errs *multierror.Error
			for _, kind := range kinds {
				if doneCtx.Err() != nil {
					break
				}
				summary, err := coord.Ingest(doneCtx, kind, runOpts...)
				if err != nil {
					errs = multierror.Append(errs, fmt.Errorf("%s ingestion failed: %w", kind, err))
					continue
				}
				fmt.Fprintf(c.OutOrStdout(), "%s: ingested=%d valid=%d malformed=%d duplicate=%d failed=%d\n",
					kind, summary.Ingested, summary.Valid, summary.Malformed, summary.Duplicate, summary.Failed)
			}
			return errs.ErrorOrNil()
		},
	}
	cmd.Flags().IntVar(&maxSeries, "max-series", 0,
		"maximum number of valid series per run (single-core mode only)")

	rootCmd.AddCommand(cmd)
}
