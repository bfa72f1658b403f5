package storage

import (
	"context"

	"github.com/pujana-systems/stockwatch/pkg/model"
)

// Store defines the persistence layer for the inventory and the alert
// lifecycle. All methods return model.ErrNotFound (possibly wrapped) when
// the requested row does not exist.
type Store interface {
	// CreateCategory persists a new category.
	CreateCategory(ctx context.Context, category *model.Category) error

	// GetCategory retrieves a category by id.
	GetCategory(ctx context.Context, id int64) (*model.Category, error)

	// ListCategories returns all categories ordered by name.
	ListCategories(ctx context.Context) ([]model.Category, error)

	// CreateItem persists a new item.
	CreateItem(ctx context.Context, item *model.Item) error

	// GetItem retrieves an item by id.
	GetItem(ctx context.Context, id int64) (*model.Item, error)

	// GetItemByModelNumber retrieves an item by model number,
	// case-insensitively.
	GetItemByModelNumber(ctx context.Context, modelNumber string) (*model.Item, error)

	// ListItems returns all items ordered by name.
	ListItems(ctx context.Context) ([]model.Item, error)

	// ListLowStockItems returns items with quantity below the threshold.
	ListLowStockItems(ctx context.Context, threshold int) ([]model.Item, error)

	// UpdateItemQuantity sets the current stock level of an item.
	UpdateItemQuantity(ctx context.Context, id int64, quantity int) error

	// LastModelNumber returns the highest generated model number for the
	// given year, or "" when none exists yet.
	LastModelNumber(ctx context.Context, year int) (string, error)

	// CreateUser persists a new user with default preferences.
	CreateUser(ctx context.Context, user *model.User) error

	// GetUser retrieves a user by id.
	GetUser(ctx context.Context, id int64) (*model.User, error)

	// GetUserByEmail retrieves a user by login email.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// ListUsers returns all users ordered by id.
	ListUsers(ctx context.Context) ([]model.User, error)

	// ListNotifiableUsers returns all users with notifications enabled.
	ListNotifiableUsers(ctx context.Context) ([]model.User, error)

	// UpdatePreferences applies a partial preferences update.
	UpdatePreferences(ctx context.Context, userID int64, prefs model.PreferencesUpdate) error

	// FindUnresolvedAlert returns the single unresolved alert for the
	// (item, user) pair, or ErrNotFound.
	FindUnresolvedAlert(ctx context.Context, itemID, userID int64) (*model.StockAlert, error)

	// CreateAlert persists a new stock alert.
	CreateAlert(ctx context.Context, alert *model.StockAlert) error

	// UpdateAlert persists the mutable fields of an existing alert
	// (snapshot quantity, send timestamps, resolved flag).
	UpdateAlert(ctx context.Context, alert *model.StockAlert) error

	// ResolveAlert marks an alert resolved.
	ResolveAlert(ctx context.Context, id int64) error

	// DeleteAlert removes an alert record.
	DeleteAlert(ctx context.Context, id int64) error

	// GetAlert retrieves an alert by id.
	GetAlert(ctx context.Context, id int64) (*model.StockAlert, error)

	// ListAlerts returns a user's alerts, newest first. Resolved alerts
	// are included only when includeResolved is set.
	ListAlerts(ctx context.Context, userID int64, includeResolved bool) ([]model.StockAlert, error)

	// ListUnresolvedAlerts returns every open alert across all users.
	ListUnresolvedAlerts(ctx context.Context) ([]model.StockAlert, error)

	// CountAlerts computes alert statistics for a user. The threshold is
	// used to count currently low stock items.
	CountAlerts(ctx context.Context, userID int64, threshold int) (*model.AlertStats, error)

	// CreateBill persists a new bill.
	CreateBill(ctx context.Context, bill *model.Bill) error

	// GetBillByNumber retrieves a bill by its printed number.
	GetBillByNumber(ctx context.Context, number string) (*model.Bill, error)

	// RecordTransaction persists a single buy/sell line.
	RecordTransaction(ctx context.Context, tx *model.InventoryTransaction) error

	// ListTransactions returns all transactions for an item, newest first.
	ListTransactions(ctx context.Context, itemID int64) ([]model.InventoryTransaction, error)

	// Close releases resources.
	Close() error
}
