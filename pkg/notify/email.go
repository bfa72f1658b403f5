package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/pujana-systems/stockwatch/pkg/model"
	"gopkg.in/gomail.v2"
)

// sendTimeout bounds a single SMTP dial-and-send, matching the
// WhatsApp channel's HTTP client timeout.
const sendTimeout = 10 * time.Second

// EmailChannel delivers notifications over SMTP.
type EmailChannel struct {
	host     string
	port     int
	sender   string
	password string
}

// NewEmailChannel creates an SMTP email channel. Missing sender or
// password credentials make Send report ErrNotConfigured.
func NewEmailChannel(host string, port int, sender, password string) *EmailChannel {
	return &EmailChannel{
		host:     host,
		port:     port,
		sender:   sender,
		password: password,
	}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Target(user *model.User) string { return user.NotificationEmail }

func (e *EmailChannel) Send(ctx context.Context, target string, msg Message) error {
	if e.sender == "" || e.password == "" {
		return ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	m := gomail.NewMessage()
	m.SetHeader("From", e.sender)
	m.SetHeader("To", target)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.Body)

	d := gomail.NewDialer(e.host, e.port, e.sender, e.password)

	// gomail has no context support, so the dial-and-send runs in its
	// own goroutine and the deadline is enforced here.
	errCh := make(chan error, 1)
	go func() { errCh <- d.DialAndSend(m) }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("send email to %s: %w", target, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email to %s: %w", target, ctx.Err())
	}
}
