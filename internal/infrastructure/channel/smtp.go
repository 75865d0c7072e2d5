package channel

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"eventrelay/internal/domain/notify"
)

type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
	log  *zap.Logger
}

func NewSMTPSender(addr, username, password, from string, log *zap.Logger) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		host := addr
		if h, _, err := net.SplitHostPort(addr); err == nil {
			host = h
		}
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPSender{
		addr: addr,
		from: from,
		auth: auth,
		log:  log,
	}
}

func (s *SMTPSender) Send(_ context.Context, n notify.Notification) error {
	if n.Recipient == "" {
		return fmt.Errorf("empty recipient")
	}

	msg := buildMessage(s.from, n.Recipient, n.Subject, n.Content)
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{n.Recipient}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.log.Debug("email sent", zap.String("recipient", n.Recipient))
	return nil
}

func buildMessage(from, to, subject, content string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(content)
	return []byte(b.String())
}
