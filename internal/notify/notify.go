// Package notify posts job completion notices to chat channels.
//
// Notifiers are optional: a nil Notifier is valid and the server simply
// skips notification when none is configured.
package notify

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/slack-go/slack"

	"github.com/docugen/docugen/internal/job"
)

// Notifier delivers a finished-job notice to one destination.
type Notifier interface {
	NotifyJobDone(ctx context.Context, j *job.Job) error
}

// Message renders the notification text for a finished job.
func Message(j *job.Job) string {
	switch j.Status {
	case job.StatusComplete:
		return fmt.Sprintf("Documentation ready for %s: %d files analyzed, %d chars generated.",
			j.Target, j.FileCount, j.CharCount)
	case job.StatusError:
		return fmt.Sprintf("Documentation for %s failed: %s", j.Target, j.Error)
	default:
		return fmt.Sprintf("Documentation job for %s is %s.", j.Target, j.Status)
	}
}

// NotifyAll fans a job notice out to every notifier, logging failures
// instead of propagating them. Notification never fails the job.
func NotifyAll(ctx context.Context, notifiers []Notifier, j *job.Job) {
	for _, n := range notifiers {
		if n == nil {
			continue
		}
		if err := n.NotifyJobDone(ctx, j); err != nil {
			log.Printf("notify: %v", err)
		}
	}
}

// --- Slack ---

// SlackNotifier posts job notices to a Slack channel.
type SlackNotifier struct {
	api     *slack.Client
	channel string
}

// NewSlackNotifier creates a Slack notifier. Returns nil when the token or
// channel is empty.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	if token == "" || channel == "" {
		return nil
	}
	return &SlackNotifier{api: slack.New(token), channel: channel}
}

func (s *SlackNotifier) NotifyJobDone(ctx context.Context, j *job.Job) error {
	_, _, err := s.api.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(Message(j), false),
	)
	if err != nil {
		return fmt.Errorf("posting to slack: %w", err)
	}
	return nil
}

// --- Telegram ---

// TelegramNotifier posts job notices to a Telegram chat.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier creates a Telegram notifier. Returns nil when the
// token is empty or the chat ID is zero.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

func (t *TelegramNotifier) NotifyJobDone(ctx context.Context, j *job.Job) error {
	msg := tgbotapi.NewMessage(t.chatID, Message(j))
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("sending to telegram: %w", err)
	}
	return nil
}
