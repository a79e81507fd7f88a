package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"time"

	"github.com/domodwyer/mailyak/v3"

	"github.com/eventick/eventick/internal/models"
	"github.com/eventick/eventick/internal/ticketing"
)

// SMTPConfig carries the mail transport settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Mailer sends ticket confirmations over SMTP. It implements
// ticketing.Notifier.
type Mailer struct {
	cfg SMTPConfig
}

func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) newMessage() (*mailyak.MailYak, error) {
	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	mail, err := mailyak.NewWithTLS(addr, auth, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return nil, fmt.Errorf("smtp connection: %w", err)
	}
	mail.From(m.cfg.From)
	if m.cfg.FromName != "" {
		mail.FromName(m.cfg.FromName)
	}
	return mail, nil
}

func (m *Mailer) SendTicketConfirmation(ctx context.Context, to ticketing.ContactInfo, ticket *models.Ticket, event *models.Event) error {
	if to.Email == "" {
		return fmt.Errorf("recipient email is required")
	}
	if m.cfg.Username == "" || m.cfg.Password == "" {
		return fmt.Errorf("smtp credentials not configured")
	}

	mail, err := m.newMessage()
	if err != nil {
		return err
	}

	mail.To(to.Email)
	mail.Subject(fmt.Sprintf("Your tickets for %s", event.Title))

	start := event.StartDate.Format("Monday, 2 January 2006 15:04 MST")
	mail.Plain().Set(fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your booking is confirmed.\n\n"+
			"Ticket number: %s\n"+
			"Event: %s\n"+
			"Starts: %s\n"+
			"Location: %s\n"+
			"Type: %s x%d\n"+
			"Total paid: %d\n\n"+
			"Show this link at the door:\n%s\n",
		to.Name, ticket.TicketNumber, event.Title, start, event.Location,
		ticket.TicketType, ticket.Quantity, ticket.TotalAmount, ticket.QRCode))

	mail.HTML().Set(fmt.Sprintf(
		`<h2>Your booking is confirmed</h2>
<p>Hi %s,</p>
<table>
<tr><td>Ticket number</td><td><strong>%s</strong></td></tr>
<tr><td>Event</td><td>%s</td></tr>
<tr><td>Starts</td><td>%s</td></tr>
<tr><td>Location</td><td>%s</td></tr>
<tr><td>Type</td><td>%s &times; %d</td></tr>
<tr><td>Total paid</td><td>%d</td></tr>
</table>
<p><a href="%s">Open your ticket</a></p>`,
		to.Name, ticket.TicketNumber, event.Title, start, event.Location,
		ticket.TicketType, ticket.Quantity, ticket.TotalAmount, ticket.QRCode))

	return m.send(ctx, mail)
}

// SendPasswordResetOTP mails a one-time reset code.
func (m *Mailer) SendPasswordResetOTP(ctx context.Context, toEmail, code string) error {
	mail, err := m.newMessage()
	if err != nil {
		return err
	}
	mail.To(toEmail)
	mail.Subject("Your password reset code")
	mail.Plain().Set(fmt.Sprintf("Your password reset code is %s. It expires in 10 minutes.", code))
	mail.HTML().Set(fmt.Sprintf("<p>Your password reset code is <strong>%s</strong>. It expires in 10 minutes.</p>", code))
	return m.send(ctx, mail)
}

func (m *Mailer) send(ctx context.Context, mail *mailyak.MailYak) error {
	done := make(chan error, 1)
	go func() { done <- mail.Send() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(30 * time.Second):
		return fmt.Errorf("smtp send timed out")
	}
}
