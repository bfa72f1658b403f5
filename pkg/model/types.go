package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint would be violated.
var ErrConflict = errors.New("already exists")

// DefaultAlertThreshold is the stock level below which alerts fire
// unless a user configures their own.
const DefaultAlertThreshold = 5

// AlertChannel selects the delivery medium for a low stock alert.
type AlertChannel string

const (
	ChannelEmail    AlertChannel = "EMAIL"
	ChannelWhatsApp AlertChannel = "WHATSAPP"
	ChannelBoth     AlertChannel = "BOTH"
)

// Category groups items (e.g. switches, cables, fittings).
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Item is a stocked product. Quantity is the current stock level and is
// only mutated through transactions or explicit quantity updates.
type Item struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	ModelNumber string    `json:"model_number" db:"model_number"`
	CategoryID  int64     `json:"category_id,omitempty" db:"category_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// User is a registered operator of the system together with their
// notification preferences.
type User struct {
	ID                  int64     `json:"id" db:"id"`
	Email               string    `json:"email" db:"email"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationEmail   string    `json:"notification_email,omitempty" db:"notification_email"`
	PhoneNumber         string    `json:"phone_number,omitempty" db:"phone_number"`
	AlertThreshold      int       `json:"alert_threshold" db:"alert_threshold"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// PreferencesUpdate carries a partial update of a user's notification
// preferences. Nil fields are left unchanged.
type PreferencesUpdate struct {
	NotificationEnabled *bool   `json:"notification_enabled,omitempty"`
	NotificationEmail   *string `json:"notification_email,omitempty"`
	PhoneNumber         *string `json:"phone_number,omitempty"`
	AlertThreshold      *int    `json:"alert_threshold,omitempty"`
}

// Validate rejects preference values the alert machinery cannot honor.
func (p PreferencesUpdate) Validate() error {
	if p.AlertThreshold != nil && *p.AlertThreshold < 0 {
		return fmt.Errorf("alert threshold must be >= 0, got %d", *p.AlertThreshold)
	}
	return nil
}

// StockAlert is the persisted state of a low stock notification for one
// (item, user) pair. At most one unresolved alert exists per pair;
// resolved alerts are kept as history.
type StockAlert struct {
	ID              int64        `json:"id" db:"id"`
	ItemID          int64        `json:"item_id" db:"item_id"`
	UserID          int64        `json:"user_id" db:"user_id"`
	QuantityAtAlert int          `json:"quantity_at_alert" db:"quantity_at_alert"`
	Channel         AlertChannel `json:"channel" db:"channel"`
	IsResolved      bool         `json:"is_resolved" db:"is_resolved"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	LastSentAt      *time.Time   `json:"last_sent_at,omitempty" db:"last_sent_at"`
	NextAlertAt     *time.Time   `json:"next_alert_at,omitempty" db:"next_alert_at"`
}

// AlertStats summarizes a user's alert history.
type AlertStats struct {
	TotalAlerts    int64 `json:"total_alerts"`
	ActiveAlerts   int64 `json:"active_alerts"`
	ResolvedAlerts int64 `json:"resolved_alerts"`
	LowStockItems  int64 `json:"low_stock_items"`
}

// BillType distinguishes purchase bills from sale bills.
type BillType string

const (
	BillBuy  BillType = "buy"
	BillSell BillType = "sell"
)

// Bill is an open buy or sell session that transactions attach to.
// Number is the human-facing identifier printed on the receipt.
type Bill struct {
	ID        int64     `json:"id" db:"id"`
	Number    string    `json:"number" db:"number"`
	Type      BillType  `json:"type" db:"type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TransactionType mirrors BillType at the line-item level.
type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// InventoryTransaction records a single buy or sell of an item.
type InventoryTransaction struct {
	ID           int64           `json:"id" db:"id"`
	BillID       int64           `json:"bill_id" db:"bill_id"`
	ItemID       int64           `json:"item_id" db:"item_id"`
	Type         TransactionType `json:"type" db:"type"`
	Quantity     int             `json:"quantity" db:"quantity"`
	BuyingPrice  float64         `json:"buying_price" db:"buying_price"`
	SellingPrice float64         `json:"selling_price" db:"selling_price"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
