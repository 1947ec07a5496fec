package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/salon-call-agent/internal/business"
	appconfig "github.com/wolfman30/salon-call-agent/internal/config"
	"github.com/wolfman30/salon-call-agent/internal/dialogue"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

// DialogueConfig derives the engine rule set from the environment and the
// salon's services.
func DialogueConfig(cfg *appconfig.Config, catalog *business.Catalog) dialogue.Config {
	dc := dialogue.DefaultConfig()
	if cfg != nil {
		if len(cfg.RequiredSlots) > 0 {
			dc.RequiredSlots = dialogue.ParseSlotList(strings.Join(cfg.RequiredSlots, ","))
		}
		if cfg.ContactMode != "" {
			dc.ContactMode = dialogue.ContactMode(cfg.ContactMode)
		}
	}
	if catalog != nil {
		dc.Services = catalog.ServiceNames()
	}
	return dc
}

// BuildEngine wires the catalog into a validated engine. REPLY_SEED=0 seeds the reply chooser from the clock.
func BuildEngine(cfg *appconfig.Config, catalog *business.Catalog, logger *logging.Logger) (*dialogue.Engine, error) {
	if logger == nil {
		logger = logging.Default()
	}
	seed := uint64(time.Now().UnixNano())
	if cfg != nil && cfg.ReplySeed != 0 {
		seed = cfg.ReplySeed
	}
	dc := DialogueConfig(cfg, catalog)
	engine, err := dialogue.NewEngine(dc, catalog,
		dialogue.WithChooser(dialogue.NewSeededChooser(seed)),
		dialogue.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: dialogue config: %w", err)
	}
	logger.Info("dialogue engine ready",
		"required_slots", dc.RequiredSlots,
		"contact_mode", dc.ContactMode,
		"services", len(dc.Services),
	)
	return engine, nil
}

// LoadCatalog reads the salon data and FAQ file named in cfg.
func LoadCatalog(cfg *appconfig.Config) (*business.Catalog, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	catalog, err := business.LoadCatalog(cfg.BusinessDataPath, cfg.FAQPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return catalog, nil
}
