package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wolfman30/salon-call-agent/internal/business"
)

func newFAQCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "faq <question>",
		Short: "Look up the FAQ answer for a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := business.LoadCatalog(opts.dataPath, opts.faqPath)
			if err != nil {
				return err
			}
			question := strings.Join(args, " ")
			id, answer, ok := catalog.MatchFAQ(question)
			if !ok {
				return fmt.Errorf("no FAQ entry matches %q", question)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", id, answer)
			return nil
		},
	}
}
