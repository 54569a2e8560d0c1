package lock

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// KeyMutex locks por (producto, ubicación) dentro del proceso. Claves distintas no se bloquean
// entre sí. Las entradas se eliminan del mapa cuando nadie las usa.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[entity.StockKey]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyMutex construye el mapa de locks vacío.
func NewKeyMutex() *KeyMutex {
	return &KeyMutex{locks: make(map[entity.StockKey]*keyLock)}
}

// Lock toma las claves en el orden recibido (el llamador las entrega ordenadas).
// Si ctx se cancela libera lo que alcanzó a tomar y devuelve ctx.Err().
func (m *KeyMutex) Lock(ctx context.Context, keys []entity.StockKey) (func(), error) {
	held := make([]entity.StockKey, 0, len(keys))
	for _, k := range keys {
		l := m.acquireRef(k)
		select {
		case l.ch <- struct{}{}:
			held = append(held, k)
		case <-ctx.Done():
			m.releaseRef(k)
			m.unlock(held)
			return nil, ctx.Err()
		}
	}
	var once sync.Once
	return func() { once.Do(func() { m.unlock(held) }) }, nil
}

func (m *KeyMutex) unlock(keys []entity.StockKey) {
	for i := len(keys) - 1; i >= 0; i-- {
		m.mu.Lock()
		l := m.locks[keys[i]]
		m.mu.Unlock()
		<-l.ch
		m.releaseRef(keys[i])
	}
}

func (m *KeyMutex) acquireRef(k entity.StockKey) *keyLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[k]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		m.locks[k] = l
	}
	l.refs++
	return l
}

func (m *KeyMutex) releaseRef(k entity.StockKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.locks[k]
	l.refs--
	if l.refs == 0 {
		delete(m.locks, k)
	}
}

// Size cantidad de claves con locks vivos.
func (m *KeyMutex) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
