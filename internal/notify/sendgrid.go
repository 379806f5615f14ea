package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type mailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridConfig struct {
	APIKey      string
	FromName    string
	FromAddress string
	FrontendURL string
}

// SendGridNotifier delivers codes through the SendGrid v3 API.
type SendGridNotifier struct {
	client      mailClient
	from        *mail.Email
	frontendURL string
}

func NewSendGridNotifier(cfg SendGridConfig) *SendGridNotifier {
	return &SendGridNotifier{
		client:      sendgrid.NewSendClient(cfg.APIKey),
		from:        mail.NewEmail(cfg.FromName, cfg.FromAddress),
		frontendURL: cfg.FrontendURL,
	}
}

func (n *SendGridNotifier) SendConfirmation(ctx context.Context, name, email, code string) error {
	msg, err := ConfirmationMessage(n.frontendURL, name, email, code)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func (n *SendGridNotifier) SendPasswordReset(ctx context.Context, name, email, code string) error {
	msg, err := PasswordResetMessage(n.frontendURL, name, email, code)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func (n *SendGridNotifier) send(ctx context.Context, msg Message) error {
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	m := mail.NewSingleEmail(n.from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := n.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
