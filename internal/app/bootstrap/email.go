package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/sports-travel-platform/internal/awsconfig"
	appconfig "github.com/wolfman30/sports-travel-platform/internal/config"
	"github.com/wolfman30/sports-travel-platform/internal/notify"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

// BuildEmailSender picks the email transport named by EMAIL_PROVIDER. The
// sender address comes from SENDGRID_FROM_EMAIL for every provider.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch provider := strings.ToLower(strings.TrimSpace(cfg.EmailProvider)); provider {
	case "", "stub":
		logger.Info("email delivery stubbed")
		return notify.NewStubEmailSender(logger), nil
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return sender, nil
	case "ses":
		awsCfg, err := awsconfig.Load(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		return notify.NewSESSender(awsconfig.NewSESClient(awsCfg), notify.SESConfig{
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown email provider %q", provider)
	}
}
