// Package cli holds the betedge command tree.
package cli

import (
	"fmt"

	"betedge/engine/internal/ui"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

// NewRootCmd builds the betedge command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "betedge",
		Short:   "Rate athletes for today's slate",
		Version: version,
		Long: `BetEdge pulls roster, statistics, weather and odds data for a slate, reconciles
them into one row per athlete and ranks the athletes with a weighted rating from 0 to 10.
Missing values are imputed so every athlete on the roster is rated.`,
		Example: `  # Rate today's MLB slate
  $ betedge run

  # Simulated NBA run, top five, exported to CSV
  $ betedge run --domain nba-shot --simulate --top 5 --export picks.csv

  # Only Yankees and Dodgers rated 5 or better, facing opposite-hand pitchers
  $ betedge run --team NYY --team LAD --min-rating 5 --favorable-only

  # Show every domain and its weights
  $ betedge domains`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Disable default completion command
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newRunCmd())
	root.AddCommand(newDomainsCmd())
	root.AddCommand(newStageCmd())

	root.SetUsageTemplate(usageTemplate())
	root.SetHelpTemplate(usageTemplate())
	root.SetVersionTemplate(fmt.Sprintf("betedge version %s\n", version))
	return root
}

// Execute executes the root command
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		ui.PrintError("%v", err)
	}
	return err
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}
