package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shivamgupta214/outfox-health-assessment/internal/client"
	"github.com/shivamgupta214/outfox-health-assessment/internal/domain"
)

func newProvidersCmd(a *app) *cobra.Command {
	var q domain.ProviderQuery

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Search providers by ZIP code, radius and DRG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pc := client.NewProviderClient(a.cfg.API.BaseURL, a.cfg.HTTP.Timeout)
			providers, err := pc.Search(cmd.Context(), q)

			fmt.Fprintln(cmd.OutOrStdout(), client.RenderProviders(providers, err))
			if err != nil {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&q.ZipCode, "zip", "", "ZIP code to search around.")
	cmd.Flags().Float64Var(&q.RadiusKM, "radius", 0, "Search radius in kilometers.")
	cmd.Flags().StringVar(&q.MSDRG, "drg", "", "MS-DRG definition to match, e.g. \"chest pain\".")
	return cmd
}
