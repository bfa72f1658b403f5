package alerting_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pujana-systems/stockwatch/pkg/model"
)

func TestSweeper_RemindsAfterCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "owner@example.com", true)
	item := f.createItem(t, "fuse", 1)

	_, err := f.evaluator.Evaluate(ctx, item.ID, user.ID, 1, user.AlertThreshold)
	require.NoError(t, err)
	require.Len(t, f.email.targets, 1)

	alert, err := f.store.FindUnresolvedAlert(ctx, item.ID, user.ID)
	require.NoError(t, err)
	f.backdate(t, alert, 25*time.Hour)

	sent, err := f.sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Len(t, f.email.targets, 2)

	refreshed, err := f.store.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), *refreshed.LastSentAt, 5*time.Second)
	assert.WithinDuration(t, refreshed.LastSentAt.Add(24*time.Hour), *refreshed.NextAlertAt, time.Second)
}

func TestSweeper_RespectsCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "owner@example.com", true)
	item := f.createItem(t, "socket", 1)

	_, err := f.evaluator.Evaluate(ctx, item.ID, user.ID, 1, user.AlertThreshold)
	require.NoError(t, err)

	// Alert fired just now, so the sweep has nothing to re-send.
	sent, err := f.sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, f.email.targets, 1)
}

func TestSweeper_ResolvesRecoveredStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "owner@example.com", true)
	item := f.createItem(t, "cable", 1)

	_, err := f.evaluator.Evaluate(ctx, item.ID, user.ID, 1, user.AlertThreshold)
	require.NoError(t, err)

	alert, err := f.store.FindUnresolvedAlert(ctx, item.ID, user.ID)
	require.NoError(t, err)
	f.backdate(t, alert, 25*time.Hour)

	// Restock happened since the alert was raised.
	require.NoError(t, f.store.UpdateItemQuantity(ctx, item.ID, 30))

	sent, err := f.sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, f.email.targets, 1)

	resolved, err := f.store.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved)
}

func TestSweeper_SkipsDisabledUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "owner@example.com", true)
	item := f.createItem(t, "tape", 1)

	_, err := f.evaluator.Evaluate(ctx, item.ID, user.ID, 1, user.AlertThreshold)
	require.NoError(t, err)

	alert, err := f.store.FindUnresolvedAlert(ctx, item.ID, user.ID)
	require.NoError(t, err)
	f.backdate(t, alert, 25*time.Hour)

	off := false
	require.NoError(t, f.store.UpdatePreferences(ctx, user.ID, model.PreferencesUpdate{
		NotificationEnabled: &off,
	}))

	sent, err := f.sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, f.email.targets, 1)
}

func TestSweeper_SweepsAllUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.createUser(t, "alice@example.com", true)
	bob := f.createUser(t, "bob@example.com", true)
	item := f.createItem(t, "breaker", 1)

	for _, user := range []*model.User{alice, bob} {
		_, err := f.evaluator.Evaluate(ctx, item.ID, user.ID, 1, user.AlertThreshold)
		require.NoError(t, err)
		alert, err := f.store.FindUnresolvedAlert(ctx, item.ID, user.ID)
		require.NoError(t, err)
		f.backdate(t, alert, 25*time.Hour)
	}

	sent, err := f.sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Len(t, f.email.targets, 4) // initial pair plus one reminder each
}

func TestSweeper_EmptyDatabase(t *testing.T) {
	f := newFixture(t)

	sent, err := f.sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}
