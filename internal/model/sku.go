package model

type SKU string

const (
	SKU4x5 SKU = "4x5"
	SKU4x8 SKU = "4x8"
)

// SKUs lists every sheet type in display order.
var SKUs = []SKU{SKU4x5, SKU4x8}

func (s SKU) Valid() bool {
	return s == SKU4x5 || s == SKU4x8
}

type TransactionType string

const (
	TransactionAdd  TransactionType = "add"
	TransactionSell TransactionType = "sell"
)

func (t TransactionType) Valid() bool {
	return t == TransactionAdd || t == TransactionSell
}
