package redis

import (
	redis_models "Vega/models/redis"
	redis_utils "Vega/services/redis/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrVersionConflict is returned when a conditional table-state update
// loses the optimistic-lock race: another actor modified the document
// between our read and our write. Callers treat it as "the transition
// was already performed elsewhere" and do nothing.
var ErrVersionConflict = errors.New("table state version conflict")

// How many times UpdateTableState re-reads and retries after losing
// the WATCH race before giving up. Each attempt revalidates against
// the fresh document, so retrying is safe.
const maxCASRetries = 5

// Table documents expire if nobody touches them for a day
const tableTTL = 24 * time.Hour

// RedisClient handles Redis operations
type RedisClient struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		Client: client,
		Ctx:    context.Background(),
	}
}

// GetTableState retrieves a table state document from Redis.
// Key format: "table:{id}"
// Returns (nil, nil) if the table does not exist yet.
func (rc *RedisClient) GetTableState(tableId string) (*redis_models.TableState, error) {
	key := redis_utils.FormatTableKey(tableId)
	data, err := rc.Client.Get(rc.Ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting table state: %v", err)
	}

	var state redis_models.TableState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("error unmarshaling table state: %v", err)
	}
	return &state, nil
}

// CreateTableStateIfAbsent seeds the initial document for a table.
// Uses SET NX so concurrent first accesses create it exactly once.
// Returns true if this call created the document.
func (rc *RedisClient) CreateTableStateIfAbsent(state *redis_models.TableState) (bool, error) {
	key := redis_utils.FormatTableKey(state.Id)
	data, err := json.Marshal(state)
	if err != nil {
		return false, fmt.Errorf("error marshaling table state: %v", err)
	}

	created, err := rc.Client.SetNX(rc.Ctx, key, data, tableTTL).Result()
	if err != nil {
		return false, fmt.Errorf("error creating table state: %v", err)
	}
	return created, nil
}

// UpdateTableState applies mutate to the current table state document
// under optimistic locking (WATCH / MULTI / EXEC) and bumps Version.
// The mutate callback MUST revalidate its preconditions (phase, active
// seat, seat identity) against the state it receives: it may run
// against a fresher document than the one the caller originally read.
//
// If mutate returns an error nothing is written and the error is
// returned as-is, so typed rejections (wrong phase, not your turn...)
// pass through untouched. If every retry loses the WATCH race,
// ErrVersionConflict is returned.
func (rc *RedisClient) UpdateTableState(tableId string, mutate func(*redis_models.TableState) error) (*redis_models.TableState, error) {
	key := redis_utils.FormatTableKey(tableId)

	var updated *redis_models.TableState

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(rc.Ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				return fmt.Errorf("table %s does not exist", tableId)
			}
			return err
		}

		var state redis_models.TableState
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("error unmarshaling table state: %v", err)
		}

		if err := mutate(&state); err != nil {
			return err
		}
		state.Version++

		newData, err := json.Marshal(&state)
		if err != nil {
			return fmt.Errorf("error marshaling table state: %v", err)
		}

		// The write only lands if the watched key is untouched
		_, err = tx.TxPipelined(rc.Ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(rc.Ctx, key, newData, tableTTL)
			return nil
		})
		if err == nil {
			updated = &state
		}
		return err
	}

	for i := 0; i < maxCASRetries; i++ {
		err := rc.Client.Watch(rc.Ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if err == redis.TxFailedErr {
			// Lost the race, retry against the fresh document
			continue
		}
		return nil, err
	}

	return nil, ErrVersionConflict
}

// PublishTableUpdate notifies subscribers that the table document
// changed. The payload is the new version number; interested parties
// re-read the document (the socket layer pushes full snapshots).
func (rc *RedisClient) PublishTableUpdate(tableId string, version int64) error {
	channel := redis_utils.FormatTableUpdatesChannel(tableId)
	if err := rc.Client.Publish(rc.Ctx, channel, version).Err(); err != nil {
		return fmt.Errorf("error publishing table update: %v", err)
	}
	return nil
}

// SubscribeTableUpdates returns a pub/sub subscription for a table's
// change feed. The caller owns the subscription and must Close it.
func (rc *RedisClient) SubscribeTableUpdates(tableId string) *redis.PubSub {
	channel := redis_utils.FormatTableUpdatesChannel(tableId)
	return rc.Client.Subscribe(rc.Ctx, channel)
}
