package cli

import (
	"fmt"

	"betedge/engine/internal/rating"
	"betedge/engine/internal/ui"

	"github.com/spf13/cobra"
)

func newDomainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "list rating domains and their weights",
		Long: `List every rating domain with its weighted terms, divisor, boosts, floor and
the sources a live run reads.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			domains := make([]*rating.Domain, 0, len(rating.Domains))
			for _, key := range rating.Keys() {
				d, err := rating.Lookup(key)
				if err != nil {
					return fmt.Errorf("failed to load domain: %w", err)
				}
				domains = append(domains, d)
			}
			ui.Println(ui.RenderDomains(domains))
			return nil
		},
	}
}
