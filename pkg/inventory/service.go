package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pujana-systems/stockwatch/pkg/alerting"
	"github.com/pujana-systems/stockwatch/pkg/model"
	"github.com/pujana-systems/stockwatch/pkg/storage"
)

// Service implements inventory mutations: items, categories, bills and
// buy/sell transactions. Every stock change triggers alert evaluation
// for all notification-enabled users; evaluation problems are logged
// and never fail the mutation itself.
type Service struct {
	store     storage.Store
	evaluator *alerting.Evaluator
	logger    *slog.Logger
}

// NewService creates an inventory service with the given dependencies.
func NewService(store storage.Store, evaluator *alerting.Evaluator, logger *slog.Logger) *Service {
	return &Service{store: store, evaluator: evaluator, logger: logger}
}

// CreateCategory registers a new item category.
func (s *Service) CreateCategory(ctx context.Context, name, description string) (*model.Category, error) {
	category := &model.Category{Name: name, Description: description}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// CreateItem registers a new item. An empty model number is filled with
// the next generated one; a taken model number is a conflict.
func (s *Service) CreateItem(ctx context.Context, item *model.Item) (*model.Item, error) {
	if item.ModelNumber == "" {
		number, err := s.NextModelNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("generate model number: %w", err)
		}
		item.ModelNumber = number
	} else {
		_, err := s.store.GetItemByModelNumber(ctx, item.ModelNumber)
		if err == nil {
			return nil, fmt.Errorf("item with model number %q: %w", item.ModelNumber, model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// NextModelNumber generates the next model number for the current year
// in the form MDL-<year>-<5 digit sequence>.
func (s *Service) NextModelNumber(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	last, err := s.store.LastModelNumber(ctx, year)
	if err != nil {
		return "", err
	}

	sequence := 1
	if last != "" {
		parts := strings.Split(last, "-")
		if len(parts) == 3 {
			if n, err := strconv.Atoi(parts[2]); err == nil {
				sequence = n + 1
			}
		}
	}
	return fmt.Sprintf("MDL-%d-%05d", year, sequence), nil
}

// SetQuantity sets an item's stock level directly (manual stocktake)
// and re-evaluates alerts against the new level.
func (s *Service) SetQuantity(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must be >= 0, got %d", quantity)
	}
	if err := s.store.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		return err
	}
	s.evaluateForAllUsers(ctx, itemID, quantity)
	return nil
}

// StartBill opens a new buy or sell bill with a generated number.
func (s *Service) StartBill(ctx context.Context, billType model.BillType) (*model.Bill, error) {
	if billType != model.BillBuy && billType != model.BillSell {
		return nil, fmt.Errorf("invalid bill type %q", billType)
	}
	bill := &model.Bill{
		Number: GenerateBillNumber(billType),
		Type:   billType,
	}
	if err := s.store.CreateBill(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// RecordTransaction attaches a buy or sell line to a bill, adjusts the
// item's stock and re-evaluates alerts. A sell that would drive stock
// negative is rejected.
func (s *Service) RecordTransaction(ctx context.Context, billNumber string, itemID int64,
	txType model.TransactionType, quantity int, buyingPrice, sellingPrice float64) (*model.InventoryTransaction, error) {

	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be > 0, got %d", quantity)
	}

	bill, err := s.store.GetBillByNumber(ctx, billNumber)
	if err != nil {
		return nil, err
	}
	if string(bill.Type) != string(txType) {
		return nil, fmt.Errorf("%s transaction does not match %s bill %s", txType, bill.Type, bill.Number)
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	newQuantity := item.Quantity
	switch txType {
	case model.TransactionBuy:
		newQuantity += quantity
	case model.TransactionSell:
		newQuantity -= quantity
		if newQuantity < 0 {
			return nil, fmt.Errorf("insufficient stock for item %d: have %d, want %d", itemID, item.Quantity, quantity)
		}
	default:
		return nil, fmt.Errorf("invalid transaction type %q", txType)
	}

	if err := s.store.UpdateItemQuantity(ctx, itemID, newQuantity); err != nil {
		return nil, err
	}

	tx := &model.InventoryTransaction{
		BillID:       bill.ID,
		ItemID:       itemID,
		Type:         txType,
		Quantity:     quantity,
		BuyingPrice:  buyingPrice,
		SellingPrice: sellingPrice,
	}
	if err := s.store.RecordTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	s.logger.Info("transaction recorded",
		"bill", bill.Number,
		"item_id", itemID,
		"type", txType,
		"quantity", quantity,
		"new_stock", newQuantity,
	)

	s.evaluateForAllUsers(ctx, itemID, newQuantity)
	return tx, nil
}

// evaluateForAllUsers runs alert evaluation against every user with
// notifications enabled. Inventory mutations must succeed regardless of
// notification health, so every error here is logged and swallowed.
func (s *Service) evaluateForAllUsers(ctx context.Context, itemID int64, quantity int) {
	users, err := s.store.ListNotifiableUsers(ctx)
	if err != nil {
		s.logger.Error("list notifiable users", "error", err)
		return
	}
	for _, user := range users {
		if _, err := s.evaluator.Evaluate(ctx, itemID, user.ID, quantity, user.AlertThreshold); err != nil {
			s.logger.Error("alert evaluation failed",
				"item_id", itemID,
				"user_id", user.ID,
				"error", err,
			)
		}
	}
}
