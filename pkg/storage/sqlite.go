package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pujana-systems/stockwatch/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Store interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// mapErr converts driver-level errors into the store's error taxonomy.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return model.ErrNotFound
	case strings.Contains(err.Error(), "UNIQUE constraint"):
		return model.ErrConflict
	default:
		return err
	}
}

func (s *SQLite) CreateCategory(ctx context.Context, category *model.Category) error {
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, description, created_at) VALUES (?, ?, ?)`,
		category.Name, category.Description, category.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", mapErr(err))
	}
	category.ID, err = res.LastInsertId()
	return err
}

func (s *SQLite) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, mapErr(err))
	}
	return &c, nil
}

func (s *SQLite) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *SQLite) CreateItem(ctx context.Context, item *model.Item) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	var categoryID any
	if item.CategoryID != 0 {
		categoryID = item.CategoryID
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO items (name, description, model_number, category_id, quantity, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.ModelNumber, categoryID, item.Quantity, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", mapErr(err))
	}
	item.ID, err = res.LastInsertId()
	return err
}

const itemColumns = `id, name, description, model_number, COALESCE(category_id, 0), quantity, created_at`

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	var i model.Item
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.ModelNumber, &i.CategoryID, &i.Quantity, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *SQLite) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, mapErr(err))
	}
	return item, nil
}

func (s *SQLite) GetItemByModelNumber(ctx context.Context, modelNumber string) (*model.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE model_number = ? COLLATE NOCASE`, modelNumber))
	if err != nil {
		return nil, fmt.Errorf("get item by model number %q: %w", modelNumber, mapErr(err))
	}
	return item, nil
}

func (s *SQLite) ListItems(ctx context.Context) ([]model.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name`)
}

func (s *SQLite) ListLowStockItems(ctx context.Context, threshold int) ([]model.Item, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE quantity < ? ORDER BY quantity, name`, threshold)
}

func (s *SQLite) queryItems(ctx context.Context, query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *SQLite) UpdateItemQuantity(ctx context.Context, id int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET quantity = ? WHERE id = ?`, quantity, id)
	if err != nil {
		return fmt.Errorf("update item quantity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("update item %d: %w", id, model.ErrNotFound)
	}
	return nil
}

func (s *SQLite) LastModelNumber(ctx context.Context, year int) (string, error) {
	var number string
	err := s.db.QueryRowContext(ctx,
		`SELECT model_number FROM items WHERE model_number LIKE ? ORDER BY model_number DESC LIMIT 1`,
		fmt.Sprintf("MDL-%d-%%", year),
	).Scan(&number)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last model number: %w", err)
	}
	return number, nil
}

func (s *SQLite) CreateUser(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, notification_enabled, notification_email, phone_number, alert_threshold, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.Email, user.NotificationEnabled, user.NotificationEmail,
		user.PhoneNumber, user.AlertThreshold, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapErr(err))
	}
	user.ID, err = res.LastInsertId()
	return err
}

const userColumns = `id, email, notification_enabled, notification_email, phone_number, alert_threshold, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.NotificationEnabled, &u.NotificationEmail,
		&u.PhoneNumber, &u.AlertThreshold, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLite) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, mapErr(err))
	}
	return user, nil
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", email, mapErr(err))
	}
	return user, nil
}

func (s *SQLite) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

func (s *SQLite) ListNotifiableUsers(ctx context.Context) ([]model.User, error) {
	return s.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE notification_enabled = 1 ORDER BY id`)
}

func (s *SQLite) queryUsers(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (s *SQLite) UpdatePreferences(ctx context.Context, userID int64, prefs model.PreferencesUpdate) error {
	if err := prefs.Validate(); err != nil {
		return err
	}

	var sets []string
	var args []any
	if prefs.NotificationEnabled != nil {
		sets = append(sets, "notification_enabled = ?")
		args = append(args, *prefs.NotificationEnabled)
	}
	if prefs.NotificationEmail != nil {
		sets = append(sets, "notification_email = ?")
		args = append(args, *prefs.NotificationEmail)
	}
	if prefs.PhoneNumber != nil {
		sets = append(sets, "phone_number = ?")
		args = append(args, *prefs.PhoneNumber)
	}
	if prefs.AlertThreshold != nil {
		sets = append(sets, "alert_threshold = ?")
		args = append(args, *prefs.AlertThreshold)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, userID)
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("update preferences for user %d: %w", userID, model.ErrNotFound)
	}
	return nil
}

const alertColumns = `id, item_id, user_id, quantity_at_alert, channel, is_resolved, created_at, last_sent_at, next_alert_at`

func scanAlert(row interface{ Scan(...any) error }) (*model.StockAlert, error) {
	var a model.StockAlert
	var lastSent, nextAlert sql.NullTime
	err := row.Scan(&a.ID, &a.ItemID, &a.UserID, &a.QuantityAtAlert, &a.Channel,
		&a.IsResolved, &a.CreatedAt, &lastSent, &nextAlert)
	if err != nil {
		return nil, err
	}
	if lastSent.Valid {
		a.LastSentAt = &lastSent.Time
	}
	if nextAlert.Valid {
		a.NextAlertAt = &nextAlert.Time
	}
	return &a, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (s *SQLite) FindUnresolvedAlert(ctx context.Context, itemID, userID int64) (*model.StockAlert, error) {
	alert, err := scanAlert(s.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM low_stock_alerts
		 WHERE item_id = ? AND user_id = ? AND is_resolved = 0`, itemID, userID))
	if err != nil {
		return nil, fmt.Errorf("find unresolved alert item=%d user=%d: %w", itemID, userID, mapErr(err))
	}
	return alert, nil
}

func (s *SQLite) CreateAlert(ctx context.Context, alert *model.StockAlert) error {
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	if alert.Channel == "" {
		alert.Channel = model.ChannelBoth
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO low_stock_alerts (item_id, user_id, quantity_at_alert, channel, is_resolved, created_at, last_sent_at, next_alert_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ItemID, alert.UserID, alert.QuantityAtAlert, alert.Channel,
		alert.IsResolved, alert.CreatedAt, nullTime(alert.LastSentAt), nullTime(alert.NextAlertAt),
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", mapErr(err))
	}
	alert.ID, err = res.LastInsertId()
	return err
}

func (s *SQLite) UpdateAlert(ctx context.Context, alert *model.StockAlert) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE low_stock_alerts
		 SET quantity_at_alert = ?, channel = ?, is_resolved = ?, last_sent_at = ?, next_alert_at = ?
		 WHERE id = ?`,
		alert.QuantityAtAlert, alert.Channel, alert.IsResolved,
		nullTime(alert.LastSentAt), nullTime(alert.NextAlertAt), alert.ID,
	)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("update alert %d: %w", alert.ID, model.ErrNotFound)
	}
	return nil
}

func (s *SQLite) ResolveAlert(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE low_stock_alerts SET is_resolved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("resolve alert %d: %w", id, model.ErrNotFound)
	}
	return nil
}

func (s *SQLite) DeleteAlert(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM low_stock_alerts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("delete alert %d: %w", id, model.ErrNotFound)
	}
	return nil
}

func (s *SQLite) GetAlert(ctx context.Context, id int64) (*model.StockAlert, error) {
	alert, err := scanAlert(s.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM low_stock_alerts WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get alert %d: %w", id, mapErr(err))
	}
	return alert, nil
}

func (s *SQLite) ListAlerts(ctx context.Context, userID int64, includeResolved bool) ([]model.StockAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM low_stock_alerts WHERE user_id = ?`
	if !includeResolved {
		query += ` AND is_resolved = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	return s.queryAlerts(ctx, query, userID)
}

func (s *SQLite) ListUnresolvedAlerts(ctx context.Context) ([]model.StockAlert, error) {
	return s.queryAlerts(ctx,
		`SELECT `+alertColumns+` FROM low_stock_alerts WHERE is_resolved = 0 ORDER BY id`)
}

func (s *SQLite) queryAlerts(ctx context.Context, query string, args ...any) ([]model.StockAlert, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.StockAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

func (s *SQLite) CountAlerts(ctx context.Context, userID int64, threshold int) (*model.AlertStats, error) {
	stats := &model.AlertStats{}
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN is_resolved = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_resolved = 1 THEN 1 ELSE 0 END), 0)
		 FROM low_stock_alerts WHERE user_id = ?`, userID,
	).Scan(&stats.TotalAlerts, &stats.ActiveAlerts, &stats.ResolvedAlerts)
	if err != nil {
		return nil, fmt.Errorf("count alerts: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE quantity < ?`, threshold,
	).Scan(&stats.LowStockItems)
	if err != nil {
		return nil, fmt.Errorf("count low stock items: %w", err)
	}
	return stats, nil
}

func (s *SQLite) CreateBill(ctx context.Context, bill *model.Bill) error {
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (number, type, created_at) VALUES (?, ?, ?)`,
		bill.Number, bill.Type, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bill: %w", mapErr(err))
	}
	bill.ID, err = res.LastInsertId()
	return err
}

func (s *SQLite) GetBillByNumber(ctx context.Context, number string) (*model.Bill, error) {
	var b model.Bill
	err := s.db.QueryRowContext(ctx,
		`SELECT id, number, type, created_at FROM bills WHERE number = ?`, number,
	).Scan(&b.ID, &b.Number, &b.Type, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get bill %q: %w", number, mapErr(err))
	}
	return &b, nil
}

func (s *SQLite) RecordTransaction(ctx context.Context, tx *model.InventoryTransaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory_transactions (bill_id, item_id, type, quantity, buying_price, selling_price, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.BillID, tx.ItemID, tx.Type, tx.Quantity, tx.BuyingPrice, tx.SellingPrice, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", mapErr(err))
	}
	tx.ID, err = res.LastInsertId()
	return err
}

func (s *SQLite) ListTransactions(ctx context.Context, itemID int64) ([]model.InventoryTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bill_id, item_id, type, quantity, buying_price, selling_price, created_at
		 FROM inventory_transactions WHERE item_id = ? ORDER BY created_at DESC, id DESC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.InventoryTransaction
	for rows.Next() {
		var t model.InventoryTransaction
		if err := rows.Scan(&t.ID, &t.BillID, &t.ItemID, &t.Type, &t.Quantity,
			&t.BuyingPrice, &t.SellingPrice, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
