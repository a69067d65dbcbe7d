// Package notify delivers booking confirmations. Delivery is best effort:
// callers log failures and never undo the booking.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"clinic-booking/api"

	"gopkg.in/gomail.v2"
)

type Notifier interface {
	BookingCreated(ctx context.Context, to string, booking *api.BookingResponse) error
}

type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(host string, port int, user, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (n *SMTPNotifier) BookingCreated(ctx context.Context, to string, booking *api.BookingResponse) error {
	const op = "notify.SMTPNotifier.BookingCreated"

	if to == "" {
		return fmt.Errorf("%s: recipient has no email", op)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := n.dialer.DialAndSend(bookingMessage(n.from, to, booking)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func bookingMessage(from, to string, b *api.BookingResponse) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Booking %s received", b.Reference))

	amount := fmt.Sprintf("%.2f", b.TotalAmount)
	if b.IsFreeCheckup {
		amount = "free checkup"
	}

	m.SetBody("text/plain", fmt.Sprintf(
		"Your booking %s on %s at %s-%s is %s.\nAmount: %s\n",
		b.Reference, b.Date, b.StartTime, b.EndTime, b.Status, amount,
	))

	return m
}

// LogNotifier only logs; used when SMTP is disabled.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) BookingCreated(_ context.Context, to string, b *api.BookingResponse) error {
	n.log.Info("Booking confirmation",
		slog.String("to", to),
		slog.String("reference", b.Reference),
		slog.String("date", b.Date),
		slog.String("start_time", b.StartTime),
	)

	return nil
}
