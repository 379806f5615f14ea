package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes codes to the log instead of sending mail. It is used
// when no mail provider is configured.
type LogNotifier struct {
	logger      *logrus.Logger
	frontendURL string
}

func NewLogNotifier(logger *logrus.Logger, frontendURL string) *LogNotifier {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogNotifier{logger: logger, frontendURL: frontendURL}
}

func (n *LogNotifier) SendConfirmation(_ context.Context, name, email, code string) error {
	msg, err := ConfirmationMessage(n.frontendURL, name, email, code)
	if err != nil {
		return err
	}
	n.log(msg)
	return nil
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, name, email, code string) error {
	msg, err := PasswordResetMessage(n.frontendURL, name, email, code)
	if err != nil {
		return err
	}
	n.log(msg)
	return nil
}

func (n *LogNotifier) log(msg Message) {
	n.logger.WithFields(logrus.Fields{
		"to":      msg.ToEmail,
		"subject": msg.Subject,
	}).Info(msg.Text)
}
