package socketio_utils

import (
	redis_services "Vega/services/redis"
	socketio_types "Vega/services/socket_io/types"
	"Vega/services/table"
	"log"
	"sync"

	goredis "github.com/redis/go-redis/v9"
	"github.com/zishang520/socket.io/v2/socket"
)

// TableBroadcaster fans the Redis change feed of each table out to the
// table's socket.io room. Every engine transition and player action
// publishes on "table-updates:{id}"; on each message the broadcaster
// re-reads the document and pushes a fresh snapshot, so clients
// converge on server state without polling.
type TableBroadcaster struct {
	mu          sync.Mutex
	subs        map[string]*goredis.PubSub
	redisClient *redis_services.RedisClient
	sio         *socketio_types.SocketServer
}

func NewTableBroadcaster(redisClient *redis_services.RedisClient, sio *socketio_types.SocketServer) *TableBroadcaster {
	return &TableBroadcaster{
		subs:        make(map[string]*goredis.PubSub),
		redisClient: redisClient,
		sio:         sio,
	}
}

// EnsureSubscribed starts the fan-out goroutine for a table on first
// interest. Subsequent calls are no-ops.
func (b *TableBroadcaster) EnsureSubscribed(tableId string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, running := b.subs[tableId]; running {
		return
	}

	sub := b.redisClient.SubscribeTableUpdates(tableId)
	b.subs[tableId] = sub
	go b.fanOut(tableId, sub)
	log.Printf("[BROADCAST] Subscribed to updates for table %s", tableId)
}

func (b *TableBroadcaster) fanOut(tableId string, sub *goredis.PubSub) {
	for range sub.Channel() {
		state, err := b.redisClient.GetTableState(tableId)
		if err != nil {
			log.Printf("[BROADCAST-ERROR] Error reading table %s: %v", tableId, err)
			continue
		}
		if state == nil {
			continue
		}
		b.sio.Sio_server.To(socket.Room(tableId)).Emit("table_update", table.Snapshot(state))
	}
}

// Close tears down every subscription (server shutdown)
func (b *TableBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		if err := sub.Close(); err != nil {
			log.Printf("[BROADCAST-ERROR] Error closing subscription for table %s: %v", id, err)
		}
		delete(b.subs, id)
	}
}
