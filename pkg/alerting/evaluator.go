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

// Evaluator decides whether a stock observation creates, refreshes,
// throttles, or resolves a low stock alert, and dispatches the
// notification when it acts.
type Evaluator struct {
	store   storage.Store
	gateway *notify.Gateway
	logger  *slog.Logger
}

// NewEvaluator creates an evaluator with the given dependencies.
func NewEvaluator(store storage.Store, gateway *notify.Gateway, logger *slog.Logger) *Evaluator {
	return &Evaluator{store: store, gateway: gateway, logger: logger}
}

// Evaluate applies the alert decision for one (item, user) pair given
// the item's current quantity and the user's threshold. It returns
// whether an alert action (create or refresh plus dispatch attempt)
// occurred. A throttled observation is a normal no-op, not an error.
func (e *Evaluator) Evaluate(ctx context.Context, itemID, userID int64, currentQuantity, threshold int) (bool, error) {
	now := time.Now().UTC()

	if currentQuantity >= threshold {
		// Stock is healthy. Resolve any open alert so a later drop
		// starts a fresh record instead of reviving this one.
		alert, err := e.store.FindUnresolvedAlert(ctx, itemID, userID)
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if err := e.store.ResolveAlert(ctx, alert.ID); err != nil {
			return false, fmt.Errorf("resolve recovered alert: %w", err)
		}
		e.logger.Info("alert resolved on recovery",
			"alert_id", alert.ID,
			"item_id", itemID,
			"user_id", userID,
			"quantity", currentQuantity,
		)
		return false, nil
	}

	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	if !user.NotificationEnabled {
		e.logger.Debug("notifications disabled", "user_id", userID)
		return false, nil
	}

	item, err := e.store.GetItem(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("load item: %w", err)
	}

	alert, err := e.store.FindUnresolvedAlert(ctx, itemID, userID)
	switch {
	case err == nil:
		if alert.LastSentAt != nil && now.Sub(*alert.LastSentAt) < Cooldown {
			e.logger.Debug("alert throttled",
				"alert_id", alert.ID,
				"item_id", itemID,
				"user_id", userID,
				"last_sent_at", *alert.LastSentAt,
			)
			return false, nil
		}
		alert.QuantityAtAlert = currentQuantity
		alert.LastSentAt = &now
		next := now.Add(Cooldown)
		alert.NextAlertAt = &next
		if err := e.store.UpdateAlert(ctx, alert); err != nil {
			return false, fmt.Errorf("refresh alert: %w", err)
		}

	case errors.Is(err, model.ErrNotFound):
		next := now.Add(Cooldown)
		alert = &model.StockAlert{
			ItemID:          itemID,
			UserID:          userID,
			QuantityAtAlert: currentQuantity,
			Channel:         model.ChannelBoth,
			LastSentAt:      &now,
			NextAlertAt:     &next,
		}
		if err := e.store.CreateAlert(ctx, alert); err != nil {
			return false, fmt.Errorf("create alert: %w", err)
		}

	default:
		return false, err
	}

	sent := e.gateway.Deliver(ctx, user, lowStockMessage(item, user, currentQuantity, threshold))
	e.logger.Info("low stock alert dispatched",
		"alert_id", alert.ID,
		"item_id", itemID,
		"user_id", userID,
		"quantity", currentQuantity,
		"threshold", threshold,
		"deliveries", sent,
	)
	return true, nil
}

// CheckUser re-runs the low stock check over every item below the
// user's threshold, as triggered manually from the API or CLI. It
// returns how many items were checked and how many alerts acted.
func (e *Evaluator) CheckUser(ctx context.Context, userID int64) (checked, acted int, err error) {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("load user: %w", err)
	}

	items, err := e.store.ListLowStockItems(ctx, user.AlertThreshold)
	if err != nil {
		return 0, 0, fmt.Errorf("list low stock items: %w", err)
	}

	for _, item := range items {
		ok, err := e.Evaluate(ctx, item.ID, user.ID, item.Quantity, user.AlertThreshold)
		if err != nil {
			e.logger.Error("check item failed", "item_id", item.ID, "user_id", userID, "error", err)
			continue
		}
		if ok {
			acted++
		}
	}
	return len(items), acted, nil
}
