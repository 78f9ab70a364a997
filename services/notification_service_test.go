package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gatherly-api/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gopkg.in/gomail.v2"
)

type fakeChat struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeChat) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

type fakeMailer struct {
	messages []*gomail.Message
}

func (f *fakeMailer) DialAndSend(m ...*gomail.Message) error {
	f.messages = append(f.messages, m...)
	return nil
}

func closedEvent() models.PlanClosedEvent {
	return models.PlanClosedEvent{
		PlanID:    "p1",
		ChatID:    -100123,
		Date:      "2026-06-05",
		Time:      "19:30",
		Winner:    models.VenueView{ID: "v-oaza", Name: "Oaza", Address: "Str. Stefan cel Mare 1"},
		VoteCount: 3,
	}
}

func TestTelegramNotifierAnnouncesWinner(t *testing.T) {
	chat := &fakeChat{}
	n := NewTelegramNotifier(chat)

	e := closedEvent()
	e.AutoClosed = true
	if err := n.PlanClosed(context.Background(), e); err != nil {
		t.Fatal(err)
	}
	if len(chat.sent) != 1 || chat.sent[0].ChatID != -100123 {
		t.Fatalf("sent = %+v", chat.sent)
	}
	text := chat.sent[0].Text
	for _, want := range []string{"Oaza", "Str. Stefan cel Mare 1", "2026-06-05 at 19:30", "3 vote(s)", "deadline"} {
		if !strings.Contains(text, want) {
			t.Errorf("announcement %q lacks %q", text, want)
		}
	}
}

func TestTelegramNotifierSkipsPlansWithoutChat(t *testing.T) {
	chat := &fakeChat{}
	n := NewTelegramNotifier(chat)

	err := n.VotingStarted(context.Background(), models.VotingStartedEvent{PlanID: "p1", VotingEndsAt: time.Now()})
	if err != nil || len(chat.sent) != 0 {
		t.Fatalf("err = %v, sent = %d", err, len(chat.sent))
	}
}

func TestWinnerAnnouncementFallsBackToID(t *testing.T) {
	e := closedEvent()
	e.Winner = models.VenueView{ID: "v-gone"}
	if got := winnerAnnouncement(e); !strings.Contains(got, "v-gone") {
		t.Fatalf("announcement = %q", got)
	}
}

func TestMultiNotifierFansOutAndJoinsErrors(t *testing.T) {
	ok := &recordingNotifier{}
	broken := &recordingNotifier{fail: true}
	multi := MultiNotifier{broken, ok}

	err := multi.PlanCancelled(context.Background(), models.PlanCancelledEvent{PlanID: "p1"})
	if !errors.Is(err, errNotifierDown) {
		t.Fatalf("err = %v", err)
	}
	if len(ok.cancelled) != 1 || len(broken.cancelled) != 1 {
		t.Fatal("every notifier must be called")
	}
}

func TestEmailNotifier(t *testing.T) {
	mailer := &fakeMailer{}
	n := newEmailNotifier(mailer, "Gatherly <noreply@gatherly.app>", "ops@example.com")
	ctx := context.Background()

	if err := n.VotingStarted(ctx, models.VotingStartedEvent{PlanID: "p1"}); err != nil || len(mailer.messages) != 0 {
		t.Fatalf("voting start should not mail: %v", err)
	}

	if err := n.PlanClosed(ctx, closedEvent()); err != nil {
		t.Fatal(err)
	}
	if err := n.PlanCancelled(ctx, models.PlanCancelledEvent{PlanID: "p2", Reason: "rain"}); err != nil {
		t.Fatal(err)
	}

	if len(mailer.messages) != 2 {
		t.Fatalf("messages = %d", len(mailer.messages))
	}
	if got := mailer.messages[0].GetHeader("To"); len(got) != 1 || got[0] != "ops@example.com" {
		t.Fatalf("To = %v", got)
	}
	if got := mailer.messages[1].GetHeader("Subject"); len(got) != 1 || got[0] != "Plan p2 cancelled" {
		t.Fatalf("Subject = %v", got)
	}
}
