package dto

import "time"

type TransactionFilters struct {
	LocationID int64  // 0 for every location
	Type       string // "add", "sell" or empty
	From       *time.Time
	To         *time.Time
	Limit      int
}

type Snapshot struct {
	Locations []LocationView `json:"locations"`
}

type LocationView struct {
	ID                  int64                `json:"id"`
	Name                string               `json:"name"`
	Items               []ItemView           `json:"items"`
	InventoryValueCents int64                `json:"inventory_value_cents"`
	ProfitCents         int64                `json:"profit_cents"`
	Transactions        []TransactionRowView `json:"transactions"`
}

type ItemView struct {
	SKU      string `json:"sku"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
	Profit   int64  `json:"profit"`
}

// TransactionRowView spreads a single-SKU movement over one column per SKU.
type TransactionRowView struct {
	ID        int64     `json:"id"`
	Qty4x5    int64     `json:"qty4x5"`
	Qty4x8    int64     `json:"qty4x8"`
	Type      string    `json:"type"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

type TransactionView struct {
	ID         int64     `json:"id"`
	LocationID int64     `json:"location_id"`
	SKU        string    `json:"sku"`
	Quantity   int64     `json:"quantity"`
	Type       string    `json:"type"`
	Date       string    `json:"date"`
	CreatedAt  time.Time `json:"created_at"`
}

type BalanceView struct {
	LocationID int64  `json:"location_id"`
	SKU        string `json:"sku"`
	Quantity   int64  `json:"quantity"`
}

type ActionResult struct {
	Message      string            `json:"message"`
	Transactions []TransactionView `json:"transactions"`
	Balances     []BalanceView     `json:"balances"`
	Oversold     bool              `json:"oversold,omitempty"`
}
