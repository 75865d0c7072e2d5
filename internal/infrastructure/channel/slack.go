package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"eventrelay/internal/domain/notify"
)

type slackPayload struct {
	Text string `json:"text"`
}

type SlackSender struct {
	webhookURL string
	client     *http.Client
	log        *zap.Logger
}

func NewSlackSender(webhookURL string, client *http.Client, log *zap.Logger) *SlackSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SlackSender{
		webhookURL: webhookURL,
		client:     client,
		log:        log,
	}
}

func (s *SlackSender) Send(ctx context.Context, n notify.Notification) error {
	text := n.Content
	if n.Subject != "" {
		text = n.Subject + "\n" + n.Content
	}

	body, err := json.Marshal(slackPayload{Text: text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack send: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack send: unexpected status %d", resp.StatusCode)
	}

	s.log.Debug("slack message sent", zap.String("recipient", n.Recipient))
	return nil
}
