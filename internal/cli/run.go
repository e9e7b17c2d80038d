package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/carelog/internal/adapters/export"
	"github.com/okian/carelog/internal/adapters/stream"
	"github.com/okian/carelog/internal/domain/types"
	"github.com/okian/carelog/pkg/logger"
	"github.com/spf13/cobra"
)

type runOptions struct {
	input   string
	outDir  string
	format  string
	table   string
	weights map[string]string
}

func newRunCmd() *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once over a message stream file",
		Long: `Decode a message stream (.json, .yaml/.yml or .csv), run every extraction
stage once and write the resulting tables.

Examples:
  # All tables as JSON on stdout
  carelog run --input chat.json

  # One CSV file per table
  carelog run --input chat.csv --out ./tables --format csv

  # One table as CSV on stdout, with weight overrides
  carelog run -i chat.yaml --table effort --format csv --weights "Physician=15,Concierge Lead=9"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), o)
		},
	}

	cmd.Flags().StringVarP(&o.input, "input", "i", "", "message stream file")
	cmd.Flags().StringVarP(&o.outDir, "out", "o", "", "directory for one file per table (default stdout)")
	cmd.Flags().StringVarP(&o.format, "format", "f", export.FormatJSON, "output format: json or csv")
	cmd.Flags().StringVarP(&o.table, "table", "t", "", "write only this table to stdout")
	cmd.Flags().StringToStringVarP(&o.weights, "weights", "w", nil, "role weight overrides, role=minutes")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runOnce(ctx context.Context, stdout, stderr io.Writer, o runOptions) error {
	if o.format != export.FormatJSON && o.format != export.FormatCSV {
		return fmt.Errorf("unsupported format %q", o.format)
	}
	if o.table != "" && !slices.Contains(types.TableNames(), o.table) {
		return fmt.Errorf("%w: %q", export.ErrUnknownTable, o.table)
	}
	if o.outDir == "" && o.format == export.FormatCSV && o.table == "" {
		return errors.New("csv on stdout needs --table")
	}
	overrides, err := parseWeights(o.weights)
	if err != nil {
		return err
	}

	cfg, log, err := setup(ctx, logger.WithWriter(stderr))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	records, err := stream.ReadFile(o.input)
	if err != nil {
		return err
	}
	msgs := stream.Messages(records)

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	out, err := svc.Run(ctx, msgs, overrides)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}
	tables := types.FromResult(out.Result)
	log.Info(ctx, "pipeline run complete",
		logger.String("run_id", out.RunID),
		logger.Int("messages", len(msgs)),
		logger.Int("events", len(tables.Events)),
		logger.Int("decisions", len(tables.Decisions)),
	)

	switch {
	case o.outDir != "":
		paths, err := export.WriteAll(o.outDir, tables, o.format)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(stdout, p)
		}
		return nil
	case o.table != "" && o.format == export.FormatCSV:
		return export.WriteCSV(stdout, tables, o.table)
	case o.table != "":
		rows, err := export.Table(tables, o.table)
		if err != nil {
			return err
		}
		return export.WriteJSON(stdout, rows)
	default:
		return export.WriteJSON(stdout, tables)
	}
}

// parseWeights converts role=minutes flag pairs.
func parseWeights(in map[string]string) (map[string]float64, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(in))
	for role, raw := range in {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid weight for %q: %q", role, raw)
		}
		out[strings.TrimSpace(role)] = v
	}
	return out, nil
}
