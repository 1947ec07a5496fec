package bootstrap

import (
	"fmt"

	appconfig "github.com/wolfman30/salon-call-agent/internal/config"
	"github.com/wolfman30/salon-call-agent/internal/notify"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

// BuildEmailSender selects the sender named by EMAIL_PROVIDER. ses must be
// set for the "ses" provider.
func BuildEmailSender(cfg *appconfig.Config, ses notify.SESAPI, logger *logging.Logger) (notify.EmailSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.FromAddress,
			FromName:  cfg.FromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return sender, nil
	case "ses":
		sender := notify.NewSESSender(ses, notify.SESConfig{FromEmail: cfg.FromAddress, FromName: cfg.FromName}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: ses client is required for the ses provider")
		}
		return sender, nil
	case "", "stub":
		if cfg.IsProduction() {
			logger.Warn("stub email sender in production, appointment mails are only logged")
		}
		return notify.NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown email provider %q", cfg.EmailProvider)
	}
}
