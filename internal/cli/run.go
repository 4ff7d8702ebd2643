package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"betedge/engine/internal/config"
	"betedge/engine/internal/logging"
	"betedge/engine/internal/notify"
	"betedge/engine/internal/pipeline"
	"betedge/engine/internal/query"
	"betedge/engine/internal/ui"

	"github.com/spf13/cobra"
)

// runFlags mirror the run settings of the environment; set flags win
type runFlags struct {
	domain        string
	simulate      bool
	minRating     float64
	teams         []string
	favorableOnly bool
	date          string
	top           int
	export        string
	notify        bool
	debug         bool
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "rate the slate and print the leaderboard",
		Long: `Run the pipeline once for a domain and date.

The roster source decides who is rated. Every other source only adds metrics; a
source that fails is reported as a warning and its metrics are imputed. Flags
override the matching environment settings (DOMAIN, SIMULATE, MIN_RATING, TEAMS,
FAVORABLE_ONLY, RUN_DATE, TOP_N, EXPORT_PATH, NOTIFY_ENABLED, DEBUG).`,
		Example: `  $ betedge run --simulate
  $ betedge run --domain mlb-precision --date 2024-07-04 --top 10
  $ betedge run --export picks.csv --debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}

			logging.Setup(cfg.AppEnv, cfg.LogLevel, os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runOnce(ctx, cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.domain, "domain", "d", "", "rating domain (see 'betedge domains')")
	fl.BoolVar(&f.simulate, "simulate", false, "use simulated fixtures instead of live sources")
	fl.Float64Var(&f.minRating, "min-rating", 0, "hide athletes rated below this value")
	fl.StringSliceVarP(&f.teams, "team", "t", nil, "only show these teams (repeatable)")
	fl.BoolVar(&f.favorableOnly, "favorable-only", false, "only show hitters facing an opposite-hand pitcher")
	fl.StringVar(&f.date, "date", "", "slate date as "+config.DateLayout+" (default today)")
	fl.IntVarP(&f.top, "top", "n", 0, "show only the best N athletes")
	fl.StringVarP(&f.export, "export", "o", "", "write the leaderboard to this CSV file")
	fl.BoolVar(&f.notify, "notify", false, "post the leaderboard to WEBHOOK_URL")
	fl.BoolVar(&f.debug, "debug", false, "show every metric and where it came from")

	return cmd
}

// apply copies the flags the user set onto cfg and validates the result
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("domain") {
		cfg.Domain = f.domain
	}
	if changed("simulate") {
		cfg.Simulate = f.simulate
	}
	if changed("min-rating") {
		cfg.MinRating = f.minRating
	}
	if changed("team") {
		cfg.Teams = nil
		for _, t := range f.teams {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Teams = append(cfg.Teams, t)
			}
		}
	}
	if changed("favorable-only") {
		cfg.FavorableOnly = f.favorableOnly
	}
	if changed("date") {
		cfg.RunDate = f.date
	}
	if changed("top") {
		cfg.TopN = f.top
	}
	if changed("export") {
		cfg.ExportPath = f.export
	}
	if changed("notify") {
		cfg.NotifyEnabled = f.notify
	}
	if changed("debug") {
		cfg.Debug = f.debug
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func runOnce(ctx context.Context, cfg *config.Config) error {
	opts, err := pipeline.OptionsFromConfig(cfg, time.Now())
	if err != nil {
		return err
	}

	runner, err := pipeline.NewRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	mode := "live"
	if opts.Simulate {
		mode = "simulated"
	}
	subtitle := fmt.Sprintf("%s · %s", opts.Date.Format(config.DateLayout), mode)

	result, err := runner.Run(ctx, opts)
	if errors.Is(err, pipeline.ErrNoData) {
		ui.PrintWarning("%v", err)
		ui.Println(ui.RenderLeaderboard(opts.Domain, nil, ui.LeaderboardOptions{Subtitle: subtitle}))
		return nil
	}
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		ui.PrintWarning("%s", w)
	}

	ui.Println(ui.RenderLeaderboard(opts.Domain, result.Leaderboard, ui.LeaderboardOptions{
		Debug:    cfg.Debug,
		Subtitle: subtitle,
	}))
	ui.Println(ui.RenderSummary(result.Rated.Len(), result.Leaderboard.Len(), result.Report.ImputedTotal(), len(result.Warnings)))

	if cfg.ExportPath != "" {
		if err := query.Export(cfg.ExportPath, result.Leaderboard, cfg.Debug); err != nil {
			return err
		}
		ui.PrintSuccess("Exported %d rows to %s", result.Leaderboard.Len(), cfg.ExportPath)
	}

	if cfg.NotifyEnabled {
		n := notify.NewNotifier(runner.Client(), cfg.WebhookURL, cfg.NotifyTop)
		if err := n.Post(ctx, opts.Domain, result.Leaderboard); err != nil {
			return err
		}
		ui.PrintSuccess("Posted leaderboard to webhook")
	}

	return nil
}
