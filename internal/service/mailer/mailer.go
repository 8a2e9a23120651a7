package mailer

import (
	"context"

	"github.com/nkiryanov/authservice/internal/logger"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// E-mail delivery
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Sender for development: message is written to log and never delivered
// Body carries codes and passwords, so it is logged at debug level only
type LogSender struct {
	Logger logger.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	s.Logger.Info("email not sent, logged only", "to", msg.To, "subject", msg.Subject)
	s.Logger.Debug("email body", "to", msg.To, "body", msg.Body)
	return nil
}
