package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo kardex en la tabla stock_ledger. Solo INSERT y SELECT: la tabla no tiene
// UPDATE ni DELETE desde la aplicación.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `seq, id, product_id, location_id, document_type, document_id, document_number,
	quantity_delta, balance_after, created_at, created_by`

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	err := row.Scan(&e.Seq, &e.ID, &e.ProductID, &e.LocationID, &e.DocumentType, &e.DocumentID,
		&e.DocumentNumber, &e.QuantityDelta, &e.BalanceAfter, &e.CreatedAt, &e.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Append valida la cadena contra el último saldo de la partición e inserta. Seq lo asigna la secuencia.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	prev, err := r.LastBalance(ctx, e.Key())
	if err != nil {
		return err
	}
	if err := inventory.CheckChain(prev, e); err != nil {
		return err
	}
	query := `
		INSERT INTO stock_ledger (id, product_id, location_id, document_type, document_id, document_number,
			quantity_delta, balance_after, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`
	err = r.q.QueryRow(ctx, query,
		e.ID, e.ProductID, e.LocationID, e.DocumentType, e.DocumentID, e.DocumentNumber,
		e.QuantityDelta, e.BalanceAfter, e.CreatedAt, e.CreatedBy,
	).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// LastBalance saldo del último asiento de la partición.
func (r *LedgerRepo) LastBalance(ctx context.Context, key entity.StockKey) (decimal.Decimal, error) {
	query := `
		SELECT balance_after FROM stock_ledger
		WHERE product_id = $1 AND location_id = $2
		ORDER BY seq DESC LIMIT 1`
	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, query, key.ProductID, key.LocationID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("last balance %s: %w", key, err)
	}
	return balance, nil
}

// Query recorre los asientos por seq ascendente. El cursor se abre al empezar a iterar
// y se cierra al terminar o cuando el consumidor corta.
func (r *LedgerRepo) Query(ctx context.Context, f entity.LedgerFilter) iter.Seq2[*entity.LedgerEntry, error] {
	return func(yield func(*entity.LedgerEntry, error) bool) {
		var w where
		if f.ProductID != "" {
			w.add("product_id = $%d", f.ProductID)
		}
		if f.LocationID != "" {
			w.add("location_id = $%d", f.LocationID)
		}
		if f.DocumentType != "" {
			w.add("document_type = $%d", f.DocumentType)
		}
		if f.DocumentID != "" {
			w.add("document_id = $%d", f.DocumentID)
		}
		if f.From != nil {
			w.add("created_at >= $%d", *f.From)
		}
		if f.To != nil {
			w.add("created_at <= $%d", *f.To)
		}
		query := `SELECT ` + ledgerColumns + ` FROM stock_ledger` + w.String() + ` ORDER BY seq`
		if f.Limit > 0 {
			query += " LIMIT " + w.next(f.Limit)
		}

		rows, err := r.q.Query(ctx, query, w.args...)
		if err != nil {
			yield(nil, fmt.Errorf("query ledger: %w", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			e, err := scanLedgerEntry(rows)
			if err != nil {
				yield(nil, fmt.Errorf("scan ledger entry: %w", err))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("query ledger: %w", err))
		}
	}
}

// Keys particiones con al menos un asiento.
func (r *LedgerRepo) Keys(ctx context.Context) ([]entity.StockKey, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT product_id, location_id FROM stock_ledger ORDER BY product_id, location_id`)
	if err != nil {
		return nil, fmt.Errorf("ledger keys: %w", err)
	}
	defer rows.Close()
	var keys []entity.StockKey
	for rows.Next() {
		var k entity.StockKey
		if err := rows.Scan(&k.ProductID, &k.LocationID); err != nil {
			return nil, fmt.Errorf("scan ledger key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
