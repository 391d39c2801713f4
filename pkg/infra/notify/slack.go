package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scormpack/pkg/domain/model"
	"github.com/slack-go/slack"
)

type slackNotifier struct {
	webhookURL string
}

func newSlackNotifier(webhookURL string) *slackNotifier {
	return &slackNotifier{webhookURL: webhookURL}
}

// NotifySessionComplete posts a one-line summary to the configured webhook.
func (s *slackNotifier) NotifySessionComplete(ctx context.Context, snap model.Snapshot) error {
	text := fmt.Sprintf("SCORM download %s: %d/%d courses completed, %d files downloaded, %d failed",
		snap.State, snap.Completed, snap.TotalCourses, snap.FilesDownloaded, snap.Failed)
	if snap.ArchiveName != "" {
		text += fmt.Sprintf(" (archive: %s)", snap.ArchiveName)
	}

	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack summary")
	}
	return nil
}
