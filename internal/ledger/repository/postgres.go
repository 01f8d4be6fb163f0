package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-ledger-service/internal/apperr"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostgreSQL error codes the ledger reacts to.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ListLocations(ctx context.Context) ([]model.Location, error) {
	locations := []model.Location{}
	err := r.DB.SelectContext(ctx, &locations, `SELECT id, name FROM locations ORDER BY id`)
	if err != nil {
		return nil, mapError("list locations", err)
	}
	return locations, nil
}

func (r *PGRepository) ListInventory(ctx context.Context) ([]model.InventoryLine, error) {
	lines := []model.InventoryLine{}
	query := `
        SELECT inv.location_id, inv.item_id, it.type AS sku, inv.quantity, it.price, it.profit
        FROM inventory inv
        JOIN items it ON it.id = inv.item_id
        ORDER BY inv.location_id, it.type
    `
	if err := r.DB.SelectContext(ctx, &lines, query); err != nil {
		return nil, mapError("list inventory", err)
	}
	return lines, nil
}

func (r *PGRepository) ListTransactions(ctx context.Context, f *dto.TransactionFilters) ([]model.Transaction, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.LocationID != 0 {
		conditions = append(conditions, "t.location_id = :location_id")
		args["location_id"] = f.LocationID
	}
	if f.Type != "" {
		conditions = append(conditions, "t.type = :type")
		args["type"] = f.Type
	}
	if f.From != nil {
		conditions = append(conditions, "t.transaction_date >= :from_date")
		args["from_date"] = *f.From
	}
	if f.To != nil {
		conditions = append(conditions, "t.transaction_date <= :to_date")
		args["to_date"] = *f.To
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
        SELECT t.id, t.location_id, t.item_id, it.type AS sku, t.quantity, t.type,
               t.transaction_date, t.created_at, it.profit AS item_profit
        FROM transactions t
        JOIN items it ON it.id = t.item_id` + whereClause + `
        ORDER BY t.created_at DESC, t.id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, mapError("prepare list transactions", err)
	}
	defer nstmt.Close()

	txs := []model.Transaction{}
	if err := nstmt.SelectContext(ctx, &txs, args); err != nil {
		return nil, mapError("list transactions", err)
	}
	return txs, nil
}

func (r *PGRepository) ApplyEntries(ctx context.Context, entries []*model.Transaction) ([]model.Balance, error) {
	if len(entries) == 0 {
		return []model.Balance{}, nil
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, mapError("begin", err)
	}
	defer tx.Rollback()

	checked := map[int64]bool{}
	itemIDs := map[model.SKU]int64{}
	balances := make([]model.Balance, 0, len(entries))

	for _, e := range entries {
		if !checked[e.LocationID] {
			var exists bool
			err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1)`, e.LocationID)
			if err != nil {
				return nil, mapError("check location", err)
			}
			if !exists {
				return nil, apperr.NotFound("location_id", fmt.Sprintf("location %d does not exist", e.LocationID))
			}
			checked[e.LocationID] = true
		}

		itemID, ok := itemIDs[e.SKU]
		if !ok {
			err := tx.GetContext(ctx, &itemID, `SELECT id FROM items WHERE type = $1`, string(e.SKU))
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.NotFound("item_type", fmt.Sprintf("item %q does not exist", e.SKU))
			}
			if err != nil {
				return nil, mapError("resolve item", err)
			}
			itemIDs[e.SKU] = itemID
		}
		e.ItemID = itemID

		// Relative update so concurrent writers serialize on the row lock.
		var quantity int64
		err = tx.GetContext(ctx, &quantity, `
            UPDATE inventory
            SET quantity = quantity + $1
            WHERE location_id = $2 AND item_id = $3
            RETURNING quantity
        `, e.Delta(), e.LocationID, itemID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("inventory", fmt.Sprintf("no inventory row for location %d item %q", e.LocationID, e.SKU))
		}
		if err != nil {
			return nil, mapError("update inventory", err)
		}

		err = tx.QueryRowxContext(ctx, `
            INSERT INTO transactions (location_id, item_id, quantity, type, transaction_date)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id, created_at
        `, e.LocationID, itemID, e.Quantity, string(e.Type), e.TransactionDate).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return nil, mapError("insert transaction", err)
		}

		balances = append(balances, model.Balance{LocationID: e.LocationID, SKU: e.SKU, Quantity: quantity})
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError("commit", err)
	}
	return balances, nil
}

func (r *PGRepository) Ping(ctx context.Context) error {
	return mapError("ping", r.DB.PingContext(ctx))
}

// mapError translates driver errors into apperr kinds.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout(op+" timed out", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return apperr.Conflict("concurrent update, retry the action", errors.Wrap(err, op))
		case codeForeignKeyViolation:
			return &apperr.Error{Kind: apperr.KindNotFound, Field: pgErr.ConstraintName, Message: "referenced row does not exist", Err: err}
		case codeCheckViolation:
			return &apperr.Error{Kind: apperr.KindValidation, Field: pgErr.ConstraintName, Message: "value out of range", Err: err}
		}
	}
	return apperr.Store(op, errors.Wrap(err, op))
}
