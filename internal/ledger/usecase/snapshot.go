package usecase

import (
	"github.com/fekuna/omnipos-ledger-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

// BuildSnapshot folds raw rows into one view per location. Every location is
// present even without inventory or history. Transactions are expected newest
// first and keep that order.
//
// ProfitCents is cumulative over the whole sell history, not the current day.
func BuildSnapshot(locations []model.Location, lines []model.InventoryLine, txs []model.Transaction) *dto.Snapshot {
	views := make([]dto.LocationView, len(locations))
	index := make(map[int64]int, len(locations))
	for i, loc := range locations {
		views[i] = dto.LocationView{
			ID:           loc.ID,
			Name:         loc.Name,
			Items:        []dto.ItemView{},
			Transactions: []dto.TransactionRowView{},
		}
		index[loc.ID] = i
	}

	for _, line := range lines {
		i, ok := index[line.LocationID]
		if !ok {
			continue
		}
		v := &views[i]
		v.Items = append(v.Items, dto.ItemView{
			SKU:      string(line.SKU),
			Quantity: line.Quantity,
			Price:    line.Price,
			Profit:   line.Profit,
		})
		v.InventoryValueCents += line.Quantity * line.Price
	}

	for _, t := range txs {
		i, ok := index[t.LocationID]
		if !ok {
			continue
		}
		v := &views[i]
		if t.Type == model.TransactionSell {
			v.ProfitCents += t.Quantity * t.ItemProfit
		}
		v.Transactions = append(v.Transactions, toRowView(&t))
	}

	return &dto.Snapshot{Locations: views}
}

func toRowView(t *model.Transaction) dto.TransactionRowView {
	row := dto.TransactionRowView{
		ID:        t.ID,
		Type:      string(t.Type),
		Date:      t.TransactionDate.Format(dateLayout),
		CreatedAt: t.CreatedAt,
	}
	switch t.SKU {
	case model.SKU4x5:
		row.Qty4x5 = t.Quantity
	case model.SKU4x8:
		row.Qty4x8 = t.Quantity
	}
	return row
}
