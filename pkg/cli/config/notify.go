package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scormpack/pkg/infra/notify"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Notify holds notification configuration. Settings come from flags and env
// vars; a TOML file can override them so SMTP credentials can live outside
// the process environment.
type Notify struct {
	File     string
	settings notify.Settings
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "notify-config",
			Usage:       "Path to TOML file with notification settings",
			Destination: &c.File,
			Sources:     cli.EnvVars("SCORMPACK_NOTIFY_CONFIG"),
		},
		&cli.BoolFlag{
			Name:        "enable-email",
			Usage:       "Send an email summary when a session finishes",
			Value:       false,
			Destination: &c.settings.EnableEmail,
			Sources:     cli.EnvVars("SCORMPACK_ENABLE_EMAIL"),
		},
		&cli.StringFlag{
			Name:        "smtp-host",
			Usage:       "SMTP server host",
			Destination: &c.settings.SMTPHost,
			Sources:     cli.EnvVars("SCORMPACK_SMTP_HOST"),
		},
		&cli.IntFlag{
			Name:        "smtp-port",
			Usage:       "SMTP server port",
			Value:       587,
			Destination: &c.settings.SMTPPort,
			Sources:     cli.EnvVars("SCORMPACK_SMTP_PORT"),
		},
		&cli.StringFlag{
			Name:        "smtp-username",
			Usage:       "SMTP username",
			Destination: &c.settings.Username,
			Sources:     cli.EnvVars("SCORMPACK_SMTP_USERNAME"),
		},
		&cli.StringFlag{
			Name:        "smtp-password",
			Usage:       "SMTP password",
			Destination: &c.settings.Password,
			Sources:     cli.EnvVars("SCORMPACK_SMTP_PASSWORD"),
		},
		&cli.StringFlag{
			Name:        "mail-sender",
			Usage:       "Summary email sender address",
			Destination: &c.settings.Sender,
			Sources:     cli.EnvVars("SCORMPACK_MAIL_SENDER"),
		},
		&cli.StringFlag{
			Name:        "mail-recipient",
			Usage:       "Summary email recipient address",
			Destination: &c.settings.Recipient,
			Sources:     cli.EnvVars("SCORMPACK_MAIL_RECIPIENT"),
		},
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for summaries",
			Destination: &c.settings.SlackWebhookURL,
			Sources:     cli.EnvVars("SCORMPACK_SLACK_WEBHOOK_URL"),
		},
	}
}

// Settings resolves the effective notification settings, applying the TOML
// file when configured.
func (c *Notify) Settings() (notify.Settings, error) {
	settings := c.settings
	if c.File == "" {
		return settings, nil
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return settings, goerr.Wrap(err, "failed to read notify config", goerr.V("path", c.File))
	}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return settings, goerr.Wrap(err, "failed to parse notify config", goerr.V("path", c.File))
	}
	return settings, nil
}
