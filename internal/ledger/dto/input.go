package dto

import "github.com/fekuna/omnipos-ledger-service/internal/model"

// AddFullTruckInput adds a full truck of TruckType. A nil or empty TruckType
// means a split truck was delivered instead.
type AddFullTruckInput struct {
	LocationID      int64
	TruckType       *string
	TransactionDate string // YYYY-MM-DD, empty for today
}

type AddSplitTruckInput struct {
	LocationID      int64
	TransactionDate string
}

type AddCustomInput struct {
	LocationID      int64
	Qty4x5          int64
	Qty4x8          int64
	TransactionDate string
}

type SellInput struct {
	LocationID      int64
	ItemType        string
	Quantity        int64
	TransactionDate string
}

// TruckLoadFor picks the delivery variant for an optional truck type.
func TruckLoadFor(truckType *string) model.TruckLoad {
	if truckType == nil || *truckType == "" {
		return model.SplitTruck{}
	}
	return model.FullTruck{SKU: model.SKU(*truckType)}
}
