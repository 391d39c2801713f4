package notify

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/scormpack/pkg/domain/interfaces"
	"github.com/m-mizutani/scormpack/pkg/domain/model"
)

// Settings holds delivery configuration for completion notifications.
// Loaded from CLI flags, env vars or a TOML file.
type Settings struct {
	EnableEmail bool   `toml:"enable_email"`
	SMTPHost    string `toml:"smtp_host"`
	SMTPPort    int    `toml:"smtp_port"`
	Username    string `toml:"smtp_username"`
	Password    string `toml:"smtp_password" masq:"secret"`
	Sender      string `toml:"sender"`
	Recipient   string `toml:"recipient"`

	SlackWebhookURL string `toml:"slack_webhook_url" masq:"secret"`
}

// NewService builds a notifier from settings. When nothing is enabled a noop
// implementation is returned.
func NewService(settings Settings) interfaces.Notifier {
	var targets []interfaces.Notifier
	if settings.EnableEmail {
		targets = append(targets, newMailer(settings))
	}
	if settings.SlackWebhookURL != "" {
		targets = append(targets, newSlackNotifier(settings.SlackWebhookURL))
	}
	if len(targets) == 0 {
		return noopNotifier{}
	}
	return multiNotifier(targets)
}

type noopNotifier struct{}

func (noopNotifier) NotifySessionComplete(context.Context, model.Snapshot) error {
	return nil
}

// multiNotifier fans out to all configured targets. A failing target is
// logged and does not stop the others.
type multiNotifier []interfaces.Notifier

func (m multiNotifier) NotifySessionComplete(ctx context.Context, snap model.Snapshot) error {
	logger := ctxlog.From(ctx)
	for _, n := range m {
		if err := n.NotifySessionComplete(ctx, snap); err != nil {
			logger.Warn("Failed to deliver completion notification", "error", err)
		}
	}
	return nil
}
