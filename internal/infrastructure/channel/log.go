package channel

import (
	"context"

	"go.uber.org/zap"

	"eventrelay/internal/domain/notify"
)

type LogSender struct {
	channel string
	log     *zap.Logger
}

func NewLogSender(channel string, log *zap.Logger) *LogSender {
	return &LogSender{
		channel: channel,
		log:     log,
	}
}

func (s *LogSender) Send(_ context.Context, n notify.Notification) error {
	s.log.Info("notification delivered (simulated)",
		zap.String("channel", s.channel),
		zap.String("recipient", n.Recipient),
		zap.String("subject", n.Subject),
	)
	return nil
}
