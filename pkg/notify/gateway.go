package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pujana-systems/stockwatch/pkg/model"
)

// Gateway fans a rendered message out to every channel a user has an
// address for. Delivery is synchronous and best-effort: each channel is
// attempted exactly once and failures are logged, never propagated.
type Gateway struct {
	channels []Channel
	logger   *slog.Logger
}

// NewGateway creates a gateway over the given channels.
func NewGateway(channels []Channel, logger *slog.Logger) *Gateway {
	return &Gateway{channels: channels, logger: logger}
}

// Deliver sends msg to the user on each channel with a configured
// address and returns how many deliveries succeeded.
func (g *Gateway) Deliver(ctx context.Context, user *model.User, msg Message) int {
	sent := 0
	for _, ch := range g.channels {
		target := ch.Target(user)
		if target == "" {
			continue
		}
		if g.send(ctx, ch, target, msg) {
			sent++
		}
	}
	return sent
}

// SendEmail sends a single email and reports success. Missing email
// channel or credentials yield false without an error.
func (g *Gateway) SendEmail(ctx context.Context, recipient, subject, body string) bool {
	ch := g.channel("email")
	if ch == nil {
		g.logger.Warn("no email channel available")
		return false
	}
	return g.send(ctx, ch, recipient, Message{Subject: subject, Body: body})
}

// SendWhatsApp sends a single WhatsApp message and reports success.
func (g *Gateway) SendWhatsApp(ctx context.Context, phoneNumber, text string) bool {
	ch := g.channel("whatsapp")
	if ch == nil {
		g.logger.Warn("no whatsapp channel available")
		return false
	}
	return g.send(ctx, ch, phoneNumber, Message{Text: text})
}

func (g *Gateway) send(ctx context.Context, ch Channel, target string, msg Message) bool {
	if err := ch.Send(ctx, target, msg); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			g.logger.Warn("channel credentials not configured, skipping",
				"channel", ch.Name(),
			)
		} else {
			g.logger.Error("notification send failed",
				"channel", ch.Name(),
				"target", target,
				"error", err,
			)
		}
		return false
	}
	g.logger.Info("notification sent", "channel", ch.Name(), "target", target)
	return true
}

func (g *Gateway) channel(name string) Channel {
	for _, ch := range g.channels {
		if ch.Name() == name {
			return ch
		}
	}
	return nil
}
