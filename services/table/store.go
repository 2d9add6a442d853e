package table

import (
	redis_models "Vega/models/redis"
)

// Store is the shared document store consumed by the engine and the
// player actions. Implemented by services/redis.RedisClient; tests use
// an in-memory fake.
type Store interface {
	// GetTableState returns (nil, nil) when the table does not exist
	GetTableState(tableId string) (*redis_models.TableState, error)
	// CreateTableStateIfAbsent seeds the document exactly once
	CreateTableStateIfAbsent(state *redis_models.TableState) (bool, error)
	// UpdateTableState applies mutate under optimistic locking and
	// bumps the document version. Mutate errors abort the write.
	UpdateTableState(tableId string, mutate func(*redis_models.TableState) error) (*redis_models.TableState, error)
	// PublishTableUpdate notifies the change feed subscribers
	PublishTableUpdate(tableId string, version int64) error
}

// Ledger is the external balance ledger. Implemented by
// services/ledger.PostgresLedger.
type Ledger interface {
	GetBalance(username string) (float64, error)
	Debit(username string, amount float64) error
	Credit(username string, amount float64) error
	CreditMany(payouts map[string]float64) error
}

// RoundRecorder persists the outcome of a settled round on the table
// registry row (rounds played counter + last round summary JSON).
type RoundRecorder interface {
	RecordRoundSummary(tableId string, summary []byte) error
}
