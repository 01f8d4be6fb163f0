package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/apperr"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

type invKey struct {
	locationID int64
	itemID     int64
}

// memoryRepo mirrors the PostgreSQL repository's semantics in memory:
// relative updates, all-or-nothing ApplyEntries, newest-first history.
type memoryRepo struct {
	mu        sync.Mutex
	locations []model.Location
	items     map[model.SKU]model.Item
	inventory map[invKey]int64
	txs       []model.Transaction
	nextID    int64
	clock     time.Time
	applyErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		items: map[model.SKU]model.Item{
			model.SKU4x5: {ID: 1, Type: model.SKU4x5, Price: 2500, Profit: 700},
			model.SKU4x8: {ID: 2, Type: model.SKU4x8, Price: 3900, Profit: 1100},
		},
		inventory: map[invKey]int64{},
		clock:     time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

// seedLocation adds a location with zeroed inventory rows for every item.
func (r *memoryRepo) seedLocation(id int64, name string) {
	r.seedBareLocation(id, name)
	for _, it := range r.items {
		r.inventory[invKey{id, it.ID}] = 0
	}
}

// seedBareLocation adds a location without inventory rows.
func (r *memoryRepo) seedBareLocation(id int64, name string) {
	r.locations = append(r.locations, model.Location{ID: id, Name: name})
}

func (r *memoryRepo) quantity(locationID int64, sku model.SKU) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inventory[invKey{locationID, r.items[sku].ID}]
}

func (r *memoryRepo) transactions() []model.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Transaction, len(r.txs))
	copy(out, r.txs)
	return out
}

func (r *memoryRepo) ListLocations(ctx context.Context) ([]model.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Location, len(r.locations))
	copy(out, r.locations)
	return out, nil
}

func (r *memoryRepo) ListInventory(ctx context.Context) ([]model.InventoryLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.InventoryLine
	for k, qty := range r.inventory {
		for _, it := range r.items {
			if it.ID == k.itemID {
				out = append(out, model.InventoryLine{
					LocationID: k.locationID,
					ItemID:     it.ID,
					SKU:        it.Type,
					Quantity:   qty,
					Price:      it.Price,
					Profit:     it.Profit,
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LocationID != out[j].LocationID {
			return out[i].LocationID < out[j].LocationID
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

func (r *memoryRepo) ListTransactions(ctx context.Context, f *dto.TransactionFilters) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Transaction
	for i := len(r.txs) - 1; i >= 0; i-- {
		t := r.txs[i]
		if f.LocationID != 0 && t.LocationID != f.LocationID {
			continue
		}
		if f.Type != "" && string(t.Type) != f.Type {
			continue
		}
		if f.From != nil && t.TransactionDate.Before(*f.From) {
			continue
		}
		if f.To != nil && t.TransactionDate.After(*f.To) {
			continue
		}
		out = append(out, t)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (r *memoryRepo) ApplyEntries(ctx context.Context, entries []*model.Transaction) ([]model.Balance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applyErr != nil {
		return nil, r.applyErr
	}

	// Validate everything before touching state.
	for _, e := range entries {
		if !r.hasLocation(e.LocationID) {
			return nil, apperr.NotFound("location_id", "location does not exist")
		}
		it, ok := r.items[e.SKU]
		if !ok {
			return nil, apperr.NotFound("item_type", "item does not exist")
		}
		if _, ok := r.inventory[invKey{e.LocationID, it.ID}]; !ok {
			return nil, apperr.NotFound("inventory", "inventory row does not exist")
		}
	}

	balances := make([]model.Balance, 0, len(entries))
	for _, e := range entries {
		it := r.items[e.SKU]
		k := invKey{e.LocationID, it.ID}
		r.inventory[k] += e.Delta()

		r.nextID++
		r.clock = r.clock.Add(time.Second)
		e.ID = r.nextID
		e.ItemID = it.ID
		e.CreatedAt = r.clock

		stored := *e
		stored.ItemProfit = it.Profit
		r.txs = append(r.txs, stored)

		balances = append(balances, model.Balance{LocationID: e.LocationID, SKU: e.SKU, Quantity: r.inventory[k]})
	}
	return balances, nil
}

func (r *memoryRepo) Ping(ctx context.Context) error {
	return nil
}

func (r *memoryRepo) hasLocation(id int64) bool {
	for _, l := range r.locations {
		if l.ID == id {
			return true
		}
	}
	return false
}
