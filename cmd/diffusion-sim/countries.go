package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"diffusion-sim/internal/country"
	"diffusion-sim/internal/sim"
)

var (
	countriesRegion string
	countriesJSON   bool
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the country registry",
	Long:  "countries prints every country with its ISO code, region and drawn resistance.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := sim.NewSimulator(cfg)
		if err != nil {
			return err
		}
		list := s.Countries()
		if countriesRegion != "" {
			region := country.Region(countriesRegion)
			if !region.Valid() {
				return fmt.Errorf("unknown region %q", countriesRegion)
			}
			list = s.Registry().InRegion(region)
		}
		if countriesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tISO\tREGION\tRESISTANCE")
		for _, c := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", c.Name, c.ISO, c.Region, c.Resistance)
		}
		return tw.Flush()
	},
}

func init() {
	countriesCmd.Flags().StringVar(&countriesRegion, "region", "", "Only list countries in this region")
	countriesCmd.Flags().BoolVar(&countriesJSON, "json", false, "Print JSON instead of a table")
}
