package notify

import (
	"context"
	"errors"

	"github.com/pujana-systems/stockwatch/pkg/model"
)

// ErrNotConfigured is returned by a channel whose transport credentials
// are absent. It marks a skip, not a delivery failure.
var ErrNotConfigured = errors.New("channel not configured")

// Message is rendered notification content. Channels pick the parts
// they can carry: email uses Subject and Body, WhatsApp uses Text.
type Message struct {
	Subject string
	Body    string
	Text    string
}

// Channel is one delivery medium for notifications.
type Channel interface {
	// Name returns the channel identifier.
	Name() string

	// Target returns the user's address on this channel, or "" when the
	// user has none configured.
	Target(user *model.User) string

	// Send delivers a message to the target. Exactly one attempt is
	// made; there is no retry. Implementations must be safe for
	// concurrent use.
	Send(ctx context.Context, target string, msg Message) error
}
