package ledger

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

type Repository interface {
	// Reference data and current state
	ListLocations(ctx context.Context) ([]model.Location, error)
	ListInventory(ctx context.Context) ([]model.InventoryLine, error)

	// Ledger history, newest first
	ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]model.Transaction, error)

	// ApplyEntries applies every entry's delta and appends it to the log in a
	// single database transaction. Entries get their ID, ItemID and CreatedAt
	// filled in; the returned balances are in entry order.
	ApplyEntries(ctx context.Context, entries []*model.Transaction) ([]model.Balance, error)

	Ping(ctx context.Context) error
}
