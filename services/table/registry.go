package table

import (
	redis_models "Vega/models/redis"
	"log"
	"sync"
)

// Manager owns one Engine per active table. Engines are started
// lazily on first access to a table and keep ticking until shutdown;
// the Redis document is seeded on first access with phase=waiting.
type Manager struct {
	mu      sync.Mutex
	engines map[string]*Engine

	store    Store
	ledger   Ledger
	recorder RoundRecorder
}

func NewManager(store Store, ledger Ledger, recorder RoundRecorder) *Manager {
	return &Manager{
		engines:  make(map[string]*Engine),
		store:    store,
		ledger:   ledger,
		recorder: recorder,
	}
}

// EnsureTable makes sure the table document exists and its engine is
// running, and returns the current state.
func (m *Manager) EnsureTable(tableId string) (*redis_models.TableState, error) {
	state, err := m.store.GetTableState(tableId)
	if err != nil {
		return nil, err
	}

	if state == nil {
		seed := redis_models.NewTableState(tableId)
		created, err := m.store.CreateTableStateIfAbsent(seed)
		if err != nil {
			return nil, err
		}
		if created {
			log.Printf("[TABLE-INIT] Seeded table state for %s", tableId)
			state = seed
		} else {
			// Someone else created it between our read and our SETNX
			state, err = m.store.GetTableState(tableId)
			if err != nil {
				return nil, err
			}
		}
	}

	m.startEngine(tableId)
	return state, nil
}

func (m *Manager) startEngine(tableId string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, running := m.engines[tableId]; running {
		return
	}
	engine := NewEngine(tableId, m.store, m.ledger, m.recorder)
	m.engines[tableId] = engine
	go engine.Run()
}

// StopAll stops every running engine (server shutdown)
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, engine := range m.engines {
		engine.Stop()
		delete(m.engines, id)
	}
}
