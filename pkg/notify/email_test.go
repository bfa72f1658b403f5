package notify_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pujana-systems/stockwatch/pkg/model"
	"github.com/pujana-systems/stockwatch/pkg/notify"
)

func TestEmailChannel_Send_NotConfigured(t *testing.T) {
	ch := notify.NewEmailChannel("smtp.example.com", 587, "", "")

	err := ch.Send(context.Background(), "dest@example.com", notify.Message{Subject: "s", Body: "b"})
	assert.ErrorIs(t, err, notify.ErrNotConfigured)
}

func TestEmailChannel_Send_DeadlineBounded(t *testing.T) {
	// An SMTP "server" that accepts connections but never sends a
	// greeting, so the dial blocks until the deadline fires.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	ch := notify.NewEmailChannel("127.0.0.1", port, "alerts@example.com", "secret")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = ch.Send(ctx, "dest@example.com", notify.Message{Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestEmailChannel_Target(t *testing.T) {
	ch := notify.NewEmailChannel("smtp.example.com", 587, "alerts@example.com", "secret")

	assert.Equal(t, "email", ch.Name())
	assert.Equal(t, "owner@example.com", ch.Target(&model.User{NotificationEmail: "owner@example.com"}))
	assert.Empty(t, ch.Target(&model.User{}))
}
