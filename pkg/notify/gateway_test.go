package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pujana-systems/stockwatch/pkg/model"
	"github.com/pujana-systems/stockwatch/pkg/notify"
)

// fakeChannel records sends and optionally fails every attempt.
type fakeChannel struct {
	name    string
	err     error
	targets []string
	msgs    []notify.Message
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Target(user *model.User) string {
	if f.name == "email" {
		return user.NotificationEmail
	}
	return user.PhoneNumber
}

func (f *fakeChannel) Send(_ context.Context, target string, msg notify.Message) error {
	if f.err != nil {
		return f.err
	}
	f.targets = append(f.targets, target)
	f.msgs = append(f.msgs, msg)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGateway_Deliver_AllChannels(t *testing.T) {
	email := &fakeChannel{name: "email"}
	whatsapp := &fakeChannel{name: "whatsapp"}
	gw := notify.NewGateway([]notify.Channel{email, whatsapp}, testLogger())

	user := &model.User{
		NotificationEmail: "owner@example.com",
		PhoneNumber:       "+15550001111",
	}
	sent := gw.Deliver(context.Background(), user, notify.Message{Subject: "s", Body: "b", Text: "t"})

	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"owner@example.com"}, email.targets)
	assert.Equal(t, []string{"+15550001111"}, whatsapp.targets)
}

func TestGateway_Deliver_SkipsMissingTargets(t *testing.T) {
	email := &fakeChannel{name: "email"}
	whatsapp := &fakeChannel{name: "whatsapp"}
	gw := notify.NewGateway([]notify.Channel{email, whatsapp}, testLogger())

	user := &model.User{NotificationEmail: "owner@example.com"} // no phone
	sent := gw.Deliver(context.Background(), user, notify.Message{Text: "t"})

	assert.Equal(t, 1, sent)
	assert.Empty(t, whatsapp.targets)
}

func TestGateway_Deliver_CountsOnlySuccesses(t *testing.T) {
	email := &fakeChannel{name: "email", err: errors.New("smtp down")}
	whatsapp := &fakeChannel{name: "whatsapp"}
	gw := notify.NewGateway([]notify.Channel{email, whatsapp}, testLogger())

	user := &model.User{
		NotificationEmail: "owner@example.com",
		PhoneNumber:       "+15550001111",
	}
	sent := gw.Deliver(context.Background(), user, notify.Message{Text: "t"})

	assert.Equal(t, 1, sent)
}

func TestGateway_SendEmail(t *testing.T) {
	email := &fakeChannel{name: "email"}
	gw := notify.NewGateway([]notify.Channel{email}, testLogger())

	ok := gw.SendEmail(context.Background(), "dest@example.com", "subject", "<p>body</p>")
	assert.True(t, ok)
	assert.Equal(t, []string{"dest@example.com"}, email.targets)
	assert.Equal(t, "subject", email.msgs[0].Subject)
}

func TestGateway_SendEmail_NoChannel(t *testing.T) {
	gw := notify.NewGateway(nil, testLogger())

	ok := gw.SendEmail(context.Background(), "dest@example.com", "subject", "body")
	assert.False(t, ok)
}

func TestGateway_SendWhatsApp_NotConfigured(t *testing.T) {
	whatsapp := &fakeChannel{name: "whatsapp", err: notify.ErrNotConfigured}
	gw := notify.NewGateway([]notify.Channel{whatsapp}, testLogger())

	ok := gw.SendWhatsApp(context.Background(), "+15550001111", "text")
	assert.False(t, ok)
}
