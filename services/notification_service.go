package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gatherly-api/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier receives plan lifecycle events. Failures are logged by the caller
// and never undo the transition.
type Notifier interface {
	VotingStarted(ctx context.Context, e models.VotingStartedEvent) error
	PlanClosed(ctx context.Context, e models.PlanClosedEvent) error
	PlanCancelled(ctx context.Context, e models.PlanCancelledEvent) error
}

// NoopNotifier drops every event.
type NoopNotifier struct{}

func (NoopNotifier) VotingStarted(context.Context, models.VotingStartedEvent) error { return nil }
func (NoopNotifier) PlanClosed(context.Context, models.PlanClosedEvent) error       { return nil }
func (NoopNotifier) PlanCancelled(context.Context, models.PlanCancelledEvent) error { return nil }

// MultiNotifier fans an event out to every notifier, even when some fail.
type MultiNotifier []Notifier

func (m MultiNotifier) VotingStarted(ctx context.Context, e models.VotingStartedEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.VotingStarted(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiNotifier) PlanClosed(ctx context.Context, e models.PlanClosedEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.PlanClosed(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiNotifier) PlanCancelled(ctx context.Context, e models.PlanCancelledEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.PlanCancelled(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ChatSender is the part of *tgbotapi.BotAPI the announcer needs.
type ChatSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier announces lifecycle changes in the plan's chat. Plans
// without a chat are ignored.
type TelegramNotifier struct {
	bot ChatSender
}

func NewTelegramNotifier(bot ChatSender) *TelegramNotifier {
	return &TelegramNotifier{bot: bot}
}

// NewTelegramBot connects to the Bot API with the given token.
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	return bot, nil
}

func (n *TelegramNotifier) VotingStarted(_ context.Context, e models.VotingStartedEvent) error {
	text := fmt.Sprintf("🗳 Voting is open until %s UTC. %d venues on the shortlist.",
		e.VotingEndsAt.UTC().Format("2006-01-02 15:04"), len(e.VenueIDs))
	return n.send(e.ChatID, text)
}

func (n *TelegramNotifier) PlanClosed(_ context.Context, e models.PlanClosedEvent) error {
	return n.send(e.ChatID, winnerAnnouncement(e))
}

func (n *TelegramNotifier) PlanCancelled(_ context.Context, e models.PlanCancelledEvent) error {
	return n.send(e.ChatID, "❌ The plan was cancelled: "+e.Reason)
}

func (n *TelegramNotifier) send(chatID int64, text string) error {
	if chatID == 0 {
		return nil
	}
	if _, err := n.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram send to %d: %w", chatID, err)
	}
	return nil
}

func winnerAnnouncement(e models.PlanClosedEvent) string {
	name := venueName(e.Winner)

	var b strings.Builder
	fmt.Fprintf(&b, "🎉 We're going to %s!\n", name)
	if e.Winner.Address != "" {
		fmt.Fprintf(&b, "📍 %s\n", e.Winner.Address)
	}
	fmt.Fprintf(&b, "📅 %s at %s\n", e.Date, e.Time)
	fmt.Fprintf(&b, "✅ %d vote(s)", e.VoteCount)
	if e.AutoClosed {
		b.WriteString(" (voting deadline reached)")
	}
	return b.String()
}

// venueName falls back to the id for venues missing from the catalog.
func venueName(v models.VenueView) string {
	if v.Name == "" {
		return v.ID
	}
	return v.Name
}
