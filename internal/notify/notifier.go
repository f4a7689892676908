package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/feed"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/normalize"
)

// Payload is one fully-rendered outbound notification.
type Payload struct {
	Recipient string
	Subject   string
	HTMLBody  string
}

// Sender delivers a notification payload. Delivery failures are the
// sender's to report and the caller's to log; nothing here retries across
// passes.
type Sender interface {
	Send(ctx context.Context, p Payload) error
	Close() error
}

// Notifier renders incident entries into mail payloads and hands each one to
// the sender exactly once.
type Notifier struct {
	sender        Sender
	recipient     string
	subjectPrefix string
	dashboardURL  string
	timezoneName  string
}

// NewNotifier creates a notifier delivering to the given recipient.
func NewNotifier(sender Sender, recipient, subjectPrefix, dashboardURL, timezoneName string) *Notifier {
	return &Notifier{
		sender:        sender,
		recipient:     recipient,
		subjectPrefix: subjectPrefix,
		dashboardURL:  dashboardURL,
		timezoneName:  timezoneName,
	}
}

// Notify builds and sends the notification for one entry with its already
// normalized summary.
func (n *Notifier) Notify(ctx context.Context, entry feed.Entry, summaryHTML string) error {
	payload := n.buildPayload(entry, summaryHTML)

	if err := n.sender.Send(ctx, payload); err != nil {
		return fmt.Errorf("failed to send notification for incident %s: %w", entry.ID, err)
	}
	return nil
}

func (n *Notifier) buildPayload(entry feed.Entry, summaryHTML string) Payload {
	title := normalize.StripTitleSuffix(entry.Title)

	subject := title
	if n.subjectPrefix != "" {
		subject = n.subjectPrefix + " " + title
	}

	link := entry.CanonicalLink
	if link == "" {
		link = n.dashboardURL
	}

	var body strings.Builder
	body.WriteString("<html><body>")
	body.WriteString(fmt.Sprintf("<h2>%s</h2>", title))
	body.WriteString(summaryHTML)
	body.WriteString(fmt.Sprintf("<p>Reported at: %s (times shown in %s)</p>", entry.UpdatedAt, n.timezoneName))
	body.WriteString(fmt.Sprintf(`<p><a href="%s">View incident details</a></p>`, link))
	body.WriteString("</body></html>")

	return Payload{
		Recipient: n.recipient,
		Subject:   subject,
		HTMLBody:  body.String(),
	}
}
