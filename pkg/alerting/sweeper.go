package alerting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pujana-systems/stockwatch/pkg/model"
	"github.com/pujana-systems/stockwatch/pkg/notify"
	"github.com/pujana-systems/stockwatch/pkg/storage"
)

// Sweeper reconciles every open alert against current stock: it
// re-sends reminders once their cooldown has elapsed and resolves
// alerts whose stock has recovered. One failing alert never aborts the
// sweep for the others.
type Sweeper struct {
	store   storage.Store
	gateway *notify.Gateway
	logger  *slog.Logger
}

// NewSweeper creates a sweeper with the given dependencies.
func NewSweeper(store storage.Store, gateway *notify.Gateway, logger *slog.Logger) *Sweeper {
	return &Sweeper{store: store, gateway: gateway, logger: logger}
}

// Run executes one reconciliation pass and returns the number of
// reminder notifications dispatched.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	alerts, err := s.store.ListUnresolvedAlerts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unresolved alerts: %w", err)
	}

	s.logger.Info("low stock sweep started", "open_alerts", len(alerts))
	now := time.Now().UTC()

	sent := 0
	for i := range alerts {
		reminded, err := s.sweepAlert(ctx, &alerts[i], now)
		if err != nil {
			s.logger.Error("sweep alert failed", "alert_id", alerts[i].ID, "error", err)
			continue
		}
		if reminded {
			sent++
		}
	}

	s.logger.Info("low stock sweep completed", "notifications_sent", sent)
	return sent, nil
}

func (s *Sweeper) sweepAlert(ctx context.Context, alert *model.StockAlert, now time.Time) (bool, error) {
	item, err := s.store.GetItem(ctx, alert.ItemID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	user, err := s.store.GetUser(ctx, alert.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if item.Quantity >= user.AlertThreshold {
		// Stock recovered since the alert was raised.
		if err := s.store.ResolveAlert(ctx, alert.ID); err != nil {
			return false, fmt.Errorf("auto-resolve: %w", err)
		}
		s.logger.Info("alert auto-resolved",
			"alert_id", alert.ID,
			"item_id", item.ID,
			"user_id", user.ID,
			"quantity", item.Quantity,
		)
		return false, nil
	}

	if !user.NotificationEnabled {
		return false, nil
	}

	if alert.NextAlertAt == nil || now.Before(*alert.NextAlertAt) {
		// Still within the cooldown window.
		return false, nil
	}

	alert.QuantityAtAlert = item.Quantity
	alert.LastSentAt = &now
	next := now.Add(Cooldown)
	alert.NextAlertAt = &next
	if err := s.store.UpdateAlert(ctx, alert); err != nil {
		return false, fmt.Errorf("refresh alert: %w", err)
	}

	deliveries := s.gateway.Deliver(ctx, user, lowStockMessage(item, user, item.Quantity, user.AlertThreshold))
	s.logger.Info("reminder dispatched",
		"alert_id", alert.ID,
		"item_id", item.ID,
		"user_id", user.ID,
		"quantity", item.Quantity,
		"deliveries", deliveries,
	)
	return true, nil
}
