package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"betedge/engine/internal/config"
	"betedge/engine/internal/logging"
	"betedge/engine/internal/models"
	"betedge/engine/internal/query"
	"betedge/engine/internal/rating"
	"betedge/engine/internal/repository"
	"betedge/engine/internal/ui"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newStageCmd() *cobra.Command {
	var (
		file   string
		domain string
		date   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "stage",
		Short: "load observed metrics from a CSV into the warehouse",
		Long: `Load a CSV in the export format into the staged_metrics warehouse table.

Only observed values are staged. Every metric needs a "<Metric> Source" column
(written by "betedge run --export --debug"); cells without one are treated as
imputed. Cells marked imputed or simulated are skipped, as are values the
metric does not accept. The
rows are copied in one transaction, so a failed load leaves the table unchanged.
Runs read staged values dated before their slate date.`,
		Example: `  $ betedge stage --file barrels.csv --domain mlb-precision --date 2024-07-03
  $ betedge stage --file picks.csv --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.AppEnv, cfg.LogLevel, os.Stderr)

			if !cmd.Flags().Changed("domain") {
				domain = cfg.Domain
			}
			d, err := rating.Lookup(domain)
			if err != nil {
				return err
			}

			asOf := cfg.Date(time.Now())
			if date != "" {
				asOf, err = time.ParseInLocation(config.DateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("--date must be formatted as %s: %w", config.DateLayout, err)
				}
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file, err)
			}
			defer f.Close()

			table, err := query.ReadCSVAs(f, d.Layout(), models.ProvenanceImputed)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			staged, skipped := repository.StagedFromTable(d, table, asOf)
			for _, s := range skipped {
				ui.PrintWarning("%s", s)
			}
			if len(staged) == 0 {
				ui.PrintInfo("Nothing to stage from %s (no observed values with a provenance column)", file)
				return nil
			}
			if dryRun {
				ui.PrintInfo("Would stage %d metrics for %d players", len(staged), table.Len())
				return nil
			}

			return stage(cmd.Context(), cfg, staged)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&file, "file", "f", "", "CSV file in the export format")
	fl.StringVarP(&domain, "domain", "d", "", "domain of the metrics (default DOMAIN)")
	fl.StringVar(&date, "date", "", "as-of date of the values as "+config.DateLayout+" (default today)")
	fl.BoolVar(&dryRun, "dry-run", false, "validate the file without writing")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func stage(ctx context.Context, cfg *config.Config, staged []*models.StagedMetric) error {
	db, err := repository.NewDatabase(ctx, repository.ConfigFrom(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info().Msg("Validating warehouse health...")
	if err := db.Health(ctx); err != nil {
		return err
	}
	if err := db.StagedMetrics.EnsureSchema(ctx); err != nil {
		return err
	}

	n, err := db.StagedMetrics.StageAll(ctx, staged)
	if err != nil {
		return err
	}
	ui.PrintSuccess("Staged %d metrics", n)
	return nil
}
