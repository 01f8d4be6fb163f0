package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperr"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type ledgerUseCase struct {
	repo   ledger.Repository
	sizes  model.TruckSizes
	logger logger.ZapLogger
	now    func() time.Time
}

func NewLedgerUseCase(repo ledger.Repository, sizes model.TruckSizes, log logger.ZapLogger) ledger.UseCase {
	return &ledgerUseCase{
		repo:   repo,
		sizes:  sizes,
		logger: log,
		now:    time.Now,
	}
}

func (uc *ledgerUseCase) GetSnapshot(ctx context.Context) (*dto.Snapshot, error) {
	locations, err := uc.repo.ListLocations(ctx)
	if err != nil {
		return nil, classify("list locations", err)
	}
	lines, err := uc.repo.ListInventory(ctx)
	if err != nil {
		return nil, classify("list inventory", err)
	}
	txs, err := uc.repo.ListTransactions(ctx, &dto.TransactionFilters{})
	if err != nil {
		return nil, classify("list transactions", err)
	}
	return BuildSnapshot(locations, lines, txs), nil
}

func (uc *ledgerUseCase) ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]dto.TransactionView, error) {
	if filters == nil {
		filters = &dto.TransactionFilters{}
	}
	if filters.Type != "" && !model.TransactionType(filters.Type).Valid() {
		return nil, apperr.Validation("type", "must be add or sell")
	}
	if filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
		return nil, apperr.Validation("to", "must not be before from")
	}
	if filters.Limit < 0 {
		return nil, apperr.Validation("limit", "must not be negative")
	}

	txs, err := uc.repo.ListTransactions(ctx, filters)
	if err != nil {
		return nil, classify("list transactions", err)
	}
	views := make([]dto.TransactionView, len(txs))
	for i := range txs {
		views[i] = toTransactionView(&txs[i])
	}
	return views, nil
}

func (uc *ledgerUseCase) AddFullTruck(ctx context.Context, input *dto.AddFullTruckInput) (*dto.ActionResult, error) {
	load := dto.TruckLoadFor(input.TruckType)
	if full, ok := load.(model.FullTruck); ok && !full.SKU.Valid() {
		return nil, apperr.Validation("truck_type", fmt.Sprintf("unknown truck type %q", full.SKU))
	}
	return uc.addTruck(ctx, input.LocationID, load, input.TransactionDate)
}

func (uc *ledgerUseCase) AddSplitTruck(ctx context.Context, input *dto.AddSplitTruckInput) (*dto.ActionResult, error) {
	return uc.addTruck(ctx, input.LocationID, model.SplitTruck{}, input.TransactionDate)
}

func (uc *ledgerUseCase) addTruck(ctx context.Context, locationID int64, load model.TruckLoad, rawDate string) (*dto.ActionResult, error) {
	date, err := uc.validateCommon(locationID, rawDate)
	if err != nil {
		return nil, err
	}

	quantities, err := load.Quantities(uc.sizes)
	if err != nil {
		return nil, apperr.Validation("truck_type", err.Error())
	}

	entries := make([]*model.Transaction, 0, len(quantities))
	for _, q := range quantities {
		if q.Quantity > 0 {
			entries = append(entries, newEntry(locationID, q.SKU, q.Quantity, model.TransactionAdd, date))
		}
	}

	uc.logger.Info("Adding truck",
		zap.Int64("location_id", locationID),
		zap.String("load", load.String()),
		zap.String("transaction_date", date.Format(dateLayout)),
	)
	return uc.apply(ctx, "Truck added", entries)
}

func (uc *ledgerUseCase) AddCustom(ctx context.Context, input *dto.AddCustomInput) (*dto.ActionResult, error) {
	date, err := uc.validateCommon(input.LocationID, input.TransactionDate)
	if err != nil {
		return nil, err
	}
	if input.Qty4x5 < 0 {
		return nil, apperr.Validation("qty_4x5", "must not be negative")
	}
	if input.Qty4x8 < 0 {
		return nil, apperr.Validation("qty_4x8", "must not be negative")
	}

	var entries []*model.Transaction
	for _, q := range []model.SKUQuantity{
		{SKU: model.SKU4x5, Quantity: input.Qty4x5},
		{SKU: model.SKU4x8, Quantity: input.Qty4x8},
	} {
		if q.Quantity > 0 {
			entries = append(entries, newEntry(input.LocationID, q.SKU, q.Quantity, model.TransactionAdd, date))
		}
	}

	return uc.apply(ctx, "Custom amounts added", entries)
}

func (uc *ledgerUseCase) Sell(ctx context.Context, input *dto.SellInput) (*dto.ActionResult, error) {
	date, err := uc.validateCommon(input.LocationID, input.TransactionDate)
	if err != nil {
		return nil, err
	}
	sku := model.SKU(input.ItemType)
	if !sku.Valid() {
		return nil, apperr.Validation("item_type", fmt.Sprintf("unknown item type %q", input.ItemType))
	}
	if input.Quantity <= 0 {
		return nil, apperr.Validation("quantity", "must be positive")
	}

	res, err := uc.apply(ctx, "Sale recorded", []*model.Transaction{
		newEntry(input.LocationID, sku, input.Quantity, model.TransactionSell, date),
	})
	if err != nil {
		return nil, err
	}

	// Overselling is allowed; the dashboard shows the negative balance.
	for _, b := range res.Balances {
		if b.Quantity < 0 {
			res.Oversold = true
			uc.logger.Warn("Inventory oversold",
				zap.Int64("location_id", b.LocationID),
				zap.String("sku", b.SKU),
				zap.Int64("quantity", b.Quantity),
			)
		}
	}
	return res, nil
}

func (uc *ledgerUseCase) Ping(ctx context.Context) error {
	return uc.repo.Ping(ctx)
}

func (uc *ledgerUseCase) apply(ctx context.Context, message string, entries []*model.Transaction) (*dto.ActionResult, error) {
	res := &dto.ActionResult{
		Message:      message,
		Transactions: []dto.TransactionView{},
		Balances:     []dto.BalanceView{},
	}
	if len(entries) == 0 {
		return res, nil
	}

	balances, err := uc.repo.ApplyEntries(ctx, entries)
	if err != nil {
		err = classify("apply entries", err)
		if apperr.IsKind(err, apperr.KindStore) {
			uc.logger.Error("Failed to apply ledger entries", zap.Error(err))
		}
		return nil, err
	}

	for _, e := range entries {
		res.Transactions = append(res.Transactions, toTransactionView(e))
	}
	for _, b := range balances {
		res.Balances = append(res.Balances, dto.BalanceView{
			LocationID: b.LocationID,
			SKU:        string(b.SKU),
			Quantity:   b.Quantity,
		})
	}
	return res, nil
}

func (uc *ledgerUseCase) validateCommon(locationID int64, rawDate string) (time.Time, error) {
	if locationID <= 0 {
		return time.Time{}, apperr.Validation("location_id", "must be positive")
	}
	return uc.transactionDate(rawDate)
}

// transactionDate parses YYYY-MM-DD or falls back to today's UTC date.
func (uc *ledgerUseCase) transactionDate(raw string) (time.Time, error) {
	if raw == "" {
		now := uc.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("transaction_date", "must be formatted as YYYY-MM-DD")
	}
	return d, nil
}

func newEntry(locationID int64, sku model.SKU, qty int64, typ model.TransactionType, date time.Time) *model.Transaction {
	return &model.Transaction{
		LocationID:      locationID,
		SKU:             sku,
		Quantity:        qty,
		Type:            typ,
		TransactionDate: date,
	}
}

func toTransactionView(t *model.Transaction) dto.TransactionView {
	return dto.TransactionView{
		ID:         t.ID,
		LocationID: t.LocationID,
		SKU:        string(t.SKU),
		Quantity:   t.Quantity,
		Type:       string(t.Type),
		Date:       t.TransactionDate.Format(dateLayout),
		CreatedAt:  t.CreatedAt,
	}
}

func classify(op string, err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout(op+" timed out", err)
	}
	return apperr.Store(op, err)
}
