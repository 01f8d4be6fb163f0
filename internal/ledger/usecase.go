package ledger

import (
	"context"

	"github.com/fekuna/omnipos-ledger-service/internal/ledger/dto"
)

type UseCase interface {
	GetSnapshot(ctx context.Context) (*dto.Snapshot, error)
	ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]dto.TransactionView, error)

	AddFullTruck(ctx context.Context, input *dto.AddFullTruckInput) (*dto.ActionResult, error)
	AddSplitTruck(ctx context.Context, input *dto.AddSplitTruckInput) (*dto.ActionResult, error)
	AddCustom(ctx context.Context, input *dto.AddCustomInput) (*dto.ActionResult, error)
	Sell(ctx context.Context, input *dto.SellInput) (*dto.ActionResult, error)

	Ping(ctx context.Context) error
}
