// Package notify publishes accuracy reports to Telegram chats.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/PredictionMetrics/models"
)

// Telegram allows about 30 messages per second for bots.
const sendDelay = 50 * time.Millisecond

// Sender is the part of tgbotapi.BotAPI used to deliver messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends report summaries to a fixed set of chats.
type Telegram struct {
	sender  Sender
	chatIDs []int64
	delay   time.Duration
	logger  zerolog.Logger
}

// NewTelegram authorizes the bot token and returns a notifier for chatIDs.
func NewTelegram(token string, chatIDs []int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}
	n := NewTelegramWithSender(bot, chatIDs)
	n.logger.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")
	return n, nil
}

func NewTelegramWithSender(sender Sender, chatIDs []int64) *Telegram {
	return &Telegram{
		sender:  sender,
		chatIDs: chatIDs,
		delay:   sendDelay,
		logger:  log.With().Str("component", "telegram_notifier").Logger(),
	}
}

// Notify sends the formatted reports to every chat. It fails only when no
// chat received the message.
func (t *Telegram) Notify(ctx context.Context, reports []models.AccuracyReport) error {
	if len(reports) == 0 || len(t.chatIDs) == 0 {
		return nil
	}

	text := FormatReports(reports)
	sent, failed := 0, 0
	var lastErr error

	for i, chatID := range t.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown

		if _, err := t.sender.Send(msg); err != nil {
			t.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send report")
			failed++
			lastErr = err
		} else {
			sent++
		}

		if i < len(t.chatIDs)-1 && t.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(t.delay):
			}
		}
	}

	t.logger.Info().Int("sent", sent).Int("failed", failed).Msg("Report broadcast completed")

	if sent == 0 {
		return errors.Join(fmt.Errorf("report not delivered to any of %d chats", failed), lastErr)
	}
	return nil
}

// FormatReports renders reports as a Telegram Markdown message.
func FormatReports(reports []models.AccuracyReport) string {
	var b strings.Builder
	b.WriteString("📊 *Forecast accuracy report*\n")

	for _, r := range reports {
		fmt.Fprintf(&b, "\n📈 *%s* (%s, %s, %d predictions)\n", escapeMarkdown(r.Symbol), escapeMarkdown(r.Method), escapeMarkdown(r.Interval), r.Samples)
		fmt.Fprintf(&b, "MAE: %.4f | RMSE: %.4f\n", r.MAE, r.RMSE)
		fmt.Fprintf(&b, "MAPE: %.2f%% | Accuracy: %.2f%%\n", r.MAPE, 100-r.MAPE)
		fmt.Fprintf(&b, "Direction: %.0f%%\n", r.DirectionAccuracy)
	}

	return b.String()
}

// escapeMarkdown escapes the legacy Markdown control characters.
func escapeMarkdown(s string) string {
	return strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[").Replace(s)
}
