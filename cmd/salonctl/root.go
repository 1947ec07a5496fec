package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wolfman30/salon-call-agent/internal/app/bootstrap"
	"github.com/wolfman30/salon-call-agent/internal/business"
	appconfig "github.com/wolfman30/salon-call-agent/internal/config"
	"github.com/wolfman30/salon-call-agent/internal/dialogue"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

type options struct {
	dataPath string
	faqPath  string
	seed     uint64
	verbose  bool
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	opts := &options{dataPath: cfg.BusinessDataPath, faqPath: cfg.FAQPath, seed: cfg.ReplySeed}

	root := &cobra.Command{
		Use:           "salonctl",
		Short:         "Local tools for the salon call agent",
		Long:          `salonctl chats with the dialogue engine, looks up FAQ answers and validates the salon data without starting the API server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataPath, "data", opts.dataPath, "Salon data file (JSON or YAML)")
	root.PersistentFlags().StringVar(&opts.faqPath, "faqs", opts.faqPath, "FAQ file (JSON or YAML)")
	root.PersistentFlags().Uint64Var(&opts.seed, "seed", opts.seed, "Reply variant seed, 0 picks one from the clock")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level to stderr")

	root.AddCommand(newChatCmd(opts, cfg), newFAQCmd(opts), newCheckCmd(opts, cfg))
	return root
}

func (o *options) load(cfg *appconfig.Config, cmd *cobra.Command) (*business.Catalog, *dialogue.Engine, error) {
	level := "error"
	if o.verbose {
		level = "debug"
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)

	local := *cfg
	local.BusinessDataPath = o.dataPath
	local.FAQPath = o.faqPath
	local.ReplySeed = o.seed

	catalog, err := bootstrap.LoadCatalog(&local)
	if err != nil {
		return nil, nil, err
	}
	engine, err := bootstrap.BuildEngine(&local, catalog, logger)
	if err != nil {
		return nil, nil, err
	}
	return catalog, engine, nil
}
