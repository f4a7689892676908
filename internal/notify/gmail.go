package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSender delivers notifications via the Gmail API using a send-only
// OAuth2 scope and a long-lived refresh token.
type GmailSender struct {
	service     *gmail.Service
	senderEmail string
}

// GmailCredentials holds the OAuth2 material for the sending account.
type GmailCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	SenderEmail  string
}

// NewGmailSender creates a Gmail API sender.
func NewGmailSender(ctx context.Context, creds GmailCredentials) (*GmailSender, error) {
	oauth2Config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		RefreshToken: creds.RefreshToken,
	}

	tokenSource := oauth2Config.TokenSource(ctx, token)

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &GmailSender{
		service:     service,
		senderEmail: creds.SenderEmail,
	}, nil
}

// Send delivers one payload. Rate-limit rejections are retried with backoff;
// any other rejection is final.
func (s *GmailSender) Send(ctx context.Context, p Payload) error {
	raw, err := s.buildMessage(p)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := s.service.Users.Messages.Send(s.senderEmail, message).Context(ctx).Do()
		if err == nil {
			logrus.Infof("Notification sent to %s: %s", p.Recipient, p.Subject)
			return nil
		}

		lastErr = err
		logrus.Warnf("Failed to send notification (attempt %d/%d): %v", attempt, 3, err)

		if strings.Contains(err.Error(), "quota") || strings.Contains(err.Error(), "rate") {
			waitTime := time.Duration(attempt*attempt) * time.Second
			logrus.Infof("Rate limited, waiting %v before retry", waitTime)
			time.Sleep(waitTime)
		} else {
			break
		}
	}

	return fmt.Errorf("failed to send after 3 attempts: %w", lastErr)
}

// buildMessage renders the payload as an RFC 5322 message.
func (s *GmailSender) buildMessage(p Payload) ([]byte, error) {
	var buf bytes.Buffer

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: s.senderEmail}})
	h.SetAddressList("To", []*mail.Address{{Address: p.Recipient}})
	h.SetSubject(p.Subject)
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})

	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, p.HTMLBody); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Close releases the sender. The Gmail client holds no persistent
// connection, so this is a no-op kept for the Sender contract.
func (s *GmailSender) Close() error {
	return nil
}
