package model

import "time"

type Location struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Item struct {
	ID     int64 `db:"id"`
	Type   SKU   `db:"type"`
	Price  int64 `db:"price"`  // cents per unit
	Profit int64 `db:"profit"` // cents per unit sold
}

// InventoryLine is one inventory row joined with its item.
type InventoryLine struct {
	LocationID int64 `db:"location_id"`
	ItemID     int64 `db:"item_id"`
	SKU        SKU   `db:"sku"`
	Quantity   int64 `db:"quantity"`
	Price      int64 `db:"price"`
	Profit     int64 `db:"profit"`
}

// Transaction is an append-only ledger row. Quantity is always a magnitude;
// Type carries the direction.
type Transaction struct {
	ID              int64           `db:"id"`
	LocationID      int64           `db:"location_id"`
	ItemID          int64           `db:"item_id"`
	SKU             SKU             `db:"sku"`
	Quantity        int64           `db:"quantity"`
	Type            TransactionType `db:"type"`
	TransactionDate time.Time       `db:"transaction_date"`
	CreatedAt       time.Time       `db:"created_at"`
	ItemProfit      int64           `db:"item_profit"`
}

// Delta returns the signed change this transaction applies to inventory.
func (t *Transaction) Delta() int64 {
	if t.Type == TransactionSell {
		return -t.Quantity
	}
	return t.Quantity
}

// Balance is the inventory quantity left after an entry was applied.
type Balance struct {
	LocationID int64
	SKU        SKU
	Quantity   int64
}
