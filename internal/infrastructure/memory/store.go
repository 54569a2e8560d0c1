package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Store backend en memoria. Un solo escritor a la vez: Run toma el lock exclusivo durante toda
// la transacción y los cambios se acumulan en un tx que solo se publica en Commit.
// Las lecturas fuera de transacción toman el lock compartido.
type Store struct {
	mu         sync.RWMutex
	stocks     map[entity.StockKey]entity.Stock
	ledger     []*entity.LedgerEntry
	balances   map[entity.StockKey]decimal.Decimal
	lastSeq    int64
	docs       map[string]entity.Document
	sequences  map[string]int64
	warehouses map[string]*entity.Warehouse
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		stocks:     make(map[entity.StockKey]entity.Stock),
		balances:   make(map[entity.StockKey]decimal.Decimal),
		docs:       make(map[string]entity.Document),
		sequences:  make(map[string]int64),
		warehouses: make(map[string]*entity.Warehouse),
	}
}

// tx cambios pendientes de una transacción.
type tx struct {
	stocks   map[entity.StockKey]entity.Stock
	ledger   []*entity.LedgerEntry
	balances map[entity.StockKey]decimal.Decimal
	lastSeq  int64
	docs     map[string]entity.Document
}

func (s *Store) begin() *tx {
	return &tx{
		stocks:   make(map[entity.StockKey]entity.Stock),
		balances: make(map[entity.StockKey]decimal.Decimal),
		lastSeq:  s.lastSeq,
		docs:     make(map[string]entity.Document),
	}
}

func (s *Store) commit(t *tx) {
	for k, v := range t.stocks {
		s.stocks[k] = v
	}
	s.ledger = append(s.ledger, t.ledger...)
	for k, v := range t.balances {
		s.balances[k] = v
	}
	s.lastSeq = t.lastSeq
	for id, d := range t.docs {
		s.docs[id] = d
	}
}

// Run implementa inventory.TxRunner: Commit si fn no devuelve error; si no, se descartan los cambios.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	ledgerRepo repository.LedgerRepository,
	docRepo repository.DocumentRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.begin()
	if err := fn(&StockRepo{s: s, tx: t}, &LedgerRepo{s: s, tx: t}, &DocumentRepo{s: s, tx: t}); err != nil {
		return err
	}
	s.commit(t)
	return nil
}

// Stocks repositorio de stock fuera de transacción.
func (s *Store) Stocks() *StockRepo { return &StockRepo{s: s} }

// Ledger repositorio del kardex fuera de transacción.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{s: s} }

// Documents repositorio de documentos fuera de transacción.
func (s *Store) Documents() *DocumentRepo { return &DocumentRepo{s: s} }

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s} }

// read ejecuta fn con el lock compartido si el repositorio no está dentro de una tx
// (dentro de una tx el lock exclusivo ya lo tiene Run).
func (s *Store) read(t *tx, fn func()) {
	if t == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn()
}

// write ejecuta fn con el lock exclusivo si no hay tx (autocommit).
func (s *Store) write(t *tx, fn func()) {
	if t == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}
