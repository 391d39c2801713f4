package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scormpack/pkg/domain/model"
	"github.com/wneessen/go-mail"
)

const maxErrorsInSummary = 10

type mailer struct {
	settings Settings
}

func newMailer(settings Settings) *mailer {
	return &mailer{settings: settings}
}

// NotifySessionComplete sends an HTML summary of the finished session.
func (m *mailer) NotifySessionComplete(ctx context.Context, snap model.Snapshot) error {
	msg := mail.NewMsg()
	if err := msg.From(m.settings.Sender); err != nil {
		return goerr.Wrap(err, "invalid sender address", goerr.V("sender", m.settings.Sender))
	}
	if err := msg.To(m.settings.Recipient); err != nil {
		return goerr.Wrap(err, "invalid recipient address", goerr.V("recipient", m.settings.Recipient))
	}
	msg.Subject(fmt.Sprintf("SCORM download complete - %s", time.Now().Format("2006-01-02 15:04")))
	msg.SetBodyString(mail.TypeTextHTML, summaryHTML(snap))

	client, err := mail.NewClient(m.settings.SMTPHost,
		mail.WithPort(m.settings.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.settings.Username),
		mail.WithPassword(m.settings.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create SMTP client", goerr.V("host", m.settings.SMTPHost))
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return goerr.Wrap(err, "failed to send summary email", goerr.V("recipient", m.settings.Recipient))
	}
	return nil
}

func summaryHTML(snap model.Snapshot) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h2>SCORM Download Summary</h2>")
	fmt.Fprintf(&b, "<p>Session %s finished in state <b>%s</b>.</p>", snap.SessionID, snap.State)
	b.WriteString("<ul>")
	fmt.Fprintf(&b, "<li>Courses processed: %d/%d</li>", snap.Completed, snap.TotalCourses)
	fmt.Fprintf(&b, "<li>SCORM files found: %d</li>", snap.SCORMFound)
	fmt.Fprintf(&b, "<li>Successfully downloaded: %d</li>", snap.FilesDownloaded)
	fmt.Fprintf(&b, "<li>Failed courses: %d</li>", snap.Failed)
	if snap.ArchiveName != "" {
		fmt.Fprintf(&b, "<li>Archive: %s</li>", snap.ArchiveName)
	}
	b.WriteString("</ul>")

	if len(snap.Errors) > 0 {
		fmt.Fprintf(&b, "<h3>Errors (%d)</h3><ul>", len(snap.Errors))
		for i, e := range snap.Errors {
			if i >= maxErrorsInSummary {
				fmt.Fprintf(&b, "<li>... and %d more</li>", len(snap.Errors)-maxErrorsInSummary)
				break
			}
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(e))
		}
		b.WriteString("</ul>")
	}

	b.WriteString("</body></html>")
	return b.String()
}
