package services

import (
	"context"
	"fmt"
	"html"

	"gatherly-api/config"
	"gatherly-api/models"

	"gopkg.in/gomail.v2"
)

// MailSender is satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier mails a digest of closed plans to an operator address.
// Voting starts are not mailed.
type EmailNotifier struct {
	sender MailSender
	from   string
	to     string
}

func NewEmailNotifier(cfg *config.Config) *EmailNotifier {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return newEmailNotifier(dialer, fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail), cfg.NotifyEmailTo)
}

func newEmailNotifier(sender MailSender, from, to string) *EmailNotifier {
	return &EmailNotifier{sender: sender, from: from, to: to}
}

func (n *EmailNotifier) VotingStarted(context.Context, models.VotingStartedEvent) error {
	return nil
}

// PlanClosed sends the winner digest
func (n *EmailNotifier) PlanClosed(_ context.Context, e models.PlanClosedEvent) error {
	how := "closed by the initiator"
	if e.AutoClosed {
		how = "closed at the voting deadline"
	}

	m := n.newMessage(fmt.Sprintf("Plan %s on %s: venue picked", e.PlanID, e.Date))

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .venue { background: #f8f9fa; padding: 20px; border-radius: 8px; border-left: 4px solid #28a745; }
    </style>
</head>
<body>
    <div class="container">
        <h2>🎉 A venue was picked</h2>
        <div class="venue">
            <h3>%s</h3>
            <p>%s</p>
            <p><strong>%s at %s</strong> · %d vote(s)</p>
        </div>
        <p>Plan %s (chat %d) was %s.</p>
    </div>
</body>
</html>`, html.EscapeString(venueName(e.Winner)), html.EscapeString(e.Winner.Address), e.Date, e.Time, e.VoteCount, e.PlanID, e.ChatID, how)

	textBody := fmt.Sprintf(`A venue was picked

%s
%s
%s at %s, %d vote(s)

Plan %s (chat %d) was %s.
`, venueName(e.Winner), e.Winner.Address, e.Date, e.Time, e.VoteCount, e.PlanID, e.ChatID, how)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send plan digest: %w", err)
	}
	return nil
}

// PlanCancelled sends a short cancellation notice
func (n *EmailNotifier) PlanCancelled(_ context.Context, e models.PlanCancelledEvent) error {
	m := n.newMessage(fmt.Sprintf("Plan %s cancelled", e.PlanID))
	m.SetBody("text/plain", fmt.Sprintf("Plan %s (chat %d) was cancelled: %s\n", e.PlanID, e.ChatID, e.Reason))

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send cancellation notice: %w", err)
	}
	return nil
}

func (n *EmailNotifier) newMessage(subject string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", subject)
	return m
}
