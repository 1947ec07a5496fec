package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	appconfig "github.com/wolfman30/salon-call-agent/internal/config"
)

func newCheckCmd(opts *options, cfg *appconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate salon data, FAQs and the dialogue configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, engine, err := opts.load(cfg, cmd)
			if err != nil {
				return err
			}
			info := catalog.BusinessInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Salon:          %s\n", info.Name)
			fmt.Fprintf(out, "Zeitzone:       %s\n", catalog.Location())
			fmt.Fprintf(out, "Öffnungszeiten: %s\n", info.OpeningHours)
			fmt.Fprintf(out, "Services:       %s\n", strings.Join(catalog.ServiceNames(), ", "))
			fmt.Fprintf(out, "FAQ-Einträge:   %d\n", catalog.FAQCount())
			fmt.Fprintf(out, "Pflichtfelder:  %s\n", strings.Join(engine.Extractor().RequiredSlots(), ", "))
			fmt.Fprintln(out, "OK")
			return nil
		},
	}
}
