package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo documentos de inventario. Las columnas indexadas (tipo, estado, bodegas, fechas)
// se usan para filtrar; el documento completo viaja en body (JSONB).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

func destinationOf(doc entity.Document) *string {
	if ws := doc.Warehouses(); len(ws) > 1 {
		return &ws[1]
	}
	return nil
}

// Create inserta el documento con version 1.
func (r *DocumentRepo) Create(ctx context.Context, doc entity.Document) error {
	h := doc.Header()
	h.Version = 1
	body, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO documents (id, kind, number, status, warehouse_id, destination_warehouse_id,
			version, created_by, created_at, updated_at, body)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.q.Exec(ctx, query,
		h.ID, doc.Kind(), h.Number, doc.StatusName(), h.WarehouseID, destinationOf(doc),
		h.Version, h.CreatedBy, h.CreatedAt, h.UpdatedAt, body,
	)
	if err != nil {
		h.Version = 0
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: documento %s", domain.ErrDuplicate, h.Number)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID obtiene un documento; nil, nil si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (entity.Document, error) {
	var (
		kind    entity.DocumentKind
		version int64
		body    []byte
	)
	err := r.q.QueryRow(ctx, `SELECT kind, version, body FROM documents WHERE id = $1`, id).Scan(&kind, &version, &body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc, err := decodeDocument(kind, body)
	if err != nil {
		return nil, err
	}
	doc.Header().Version = version
	return doc, nil
}

// Update compare-and-swap por versión.
func (r *DocumentRepo) Update(ctx context.Context, doc entity.Document, expectedVersion int64) error {
	h := doc.Header()
	next := expectedVersion + 1
	h.Version = next
	body, err := encodeDocument(doc)
	if err != nil {
		h.Version = expectedVersion
		return err
	}
	query := `
		UPDATE documents SET status = $3, version = $4, updated_at = $5, body = $6
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query, h.ID, expectedVersion, doc.StatusName(), next, h.UpdatedAt, body)
	if err != nil {
		h.Version = expectedVersion
		return fmt.Errorf("update document: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	h.Version = expectedVersion

	var current int64
	err = r.q.QueryRow(ctx, `SELECT version FROM documents WHERE id = $1`, h.ID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return fmt.Errorf("%w: %s cambió (versión %d, esperada %d)", domain.ErrConflict, h.Number, current, expectedVersion)
}

// List filtra y pagina por fecha de creación y número. Limit 0 = sin límite.
func (r *DocumentRepo) List(ctx context.Context, f entity.DocumentFilter) ([]entity.Document, error) {
	var w where
	if f.Kind != "" {
		w.add("kind = $%d", f.Kind)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.WarehouseID != "" {
		w.add("$%[1]d IN (warehouse_id, destination_warehouse_id)", f.WarehouseID)
	}
	if f.From != nil {
		w.add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= $%d", *f.To)
	}
	query := `SELECT kind, version, body FROM documents` + w.String() + ` ORDER BY created_at, number`
	if f.Limit > 0 {
		query += " LIMIT " + w.next(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + w.next(f.Offset)
	}

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	list := make([]entity.Document, 0)
	for rows.Next() {
		var (
			kind    entity.DocumentKind
			version int64
			body    []byte
		)
		if err := rows.Scan(&kind, &version, &body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, err := decodeDocument(kind, body)
		if err != nil {
			return nil, err
		}
		doc.Header().Version = version
		list = append(list, doc)
	}
	return list, rows.Err()
}

// NextSequence consecutivo por prefijo y año con un upsert atómico sobre document_sequences.
func (r *DocumentRepo) NextSequence(ctx context.Context, prefix string, year int) (int64, error) {
	query := `
		INSERT INTO document_sequences (prefix, year, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, prefix, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence %s-%d: %w", prefix, year, err)
	}
	return n, nil
}
