package handlers

import (
	"Vega/services/ledger"
	"Vega/services/redis"
	socketio_utils "Vega/services/socket_io/utils"
	"Vega/services/table"
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// parseTableArgs extracts the table_id from an event payload
func parseTableArgs(args ...interface{}) (map[string]interface{}, string, bool) {
	if len(args) == 0 {
		return nil, "", false
	}
	payload, ok := args[0].(map[string]interface{})
	if !ok {
		return nil, "", false
	}
	tableId, ok := payload["table_id"].(string)
	if !ok || tableId == "" {
		return nil, "", false
	}
	return payload, tableId, true
}

// emitActionError translates the typed rejections of the table service
// into client-facing messages.
func emitActionError(client *socket.Socket, err error) {
	var message string
	switch {
	case errors.Is(err, table.ErrTableNotFound):
		message = "Table not found"
	case errors.Is(err, table.ErrTableFull):
		message = "Table is full"
	case errors.Is(err, table.ErrWrongPhase):
		message = "Action not allowed in the current phase"
	case errors.Is(err, table.ErrNotYourTurn):
		message = "It is not your turn"
	case errors.Is(err, table.ErrAlreadySeated):
		message = "You are already seated at this table"
	case errors.Is(err, table.ErrNotSeated):
		message = "You are not seated at this table"
	case errors.Is(err, table.ErrWagerTooSmall):
		message = "Wager is below the table minimum"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		message = "Insufficient balance for that wager"
	default:
		log.Printf("[SIO-ERROR] Unexpected action error: %v", err)
		message = "Internal error"
	}
	client.Emit("error", gin.H{"error": message})
}

// HandleJoinTable seats the user at a table with a wager and joins the
// socket room that receives the table's snapshots.
func HandleJoinTable(redisClient *redis.RedisClient, client *socket.Socket, db *gorm.DB,
	username string, manager *table.Manager, broadcaster *socketio_utils.TableBroadcaster) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, tableId, ok := parseTableArgs(args...)
		if !ok {
			client.Emit("error", gin.H{"error": "table_id is required"})
			return
		}
		wager, ok := payload["wager"].(float64)
		if !ok {
			client.Emit("error", gin.H{"error": "wager is required"})
			return
		}

		// Make sure the document exists and the engine is ticking
		if _, err := manager.EnsureTable(tableId); err != nil {
			log.Printf("[JOIN-ERROR] Error ensuring table %s: %v", tableId, err)
			client.Emit("error", gin.H{"error": "Error accessing table"})
			return
		}

		state, err := table.JoinTable(redisClient, ledger.NewPostgresLedger(db), tableId, username, wager)
		if err != nil {
			emitActionError(client, err)
			return
		}

		client.Join(socket.Room(tableId))
		broadcaster.EnsureSubscribed(tableId)

		client.Emit("joined_table", table.Snapshot(state))
	}
}

// HandleLeaveTable removes the user's seat (waiting phase only) and
// leaves the socket room.
func HandleLeaveTable(redisClient *redis.RedisClient, client *socket.Socket, db *gorm.DB,
	username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		_, tableId, ok := parseTableArgs(args...)
		if !ok {
			client.Emit("error", gin.H{"error": "table_id is required"})
			return
		}

		state, err := table.LeaveTable(redisClient, ledger.NewPostgresLedger(db), tableId, username)
		if err != nil {
			emitActionError(client, err)
			return
		}

		client.Leave(socket.Room(tableId))
		client.Emit("left_table", table.Snapshot(state))
	}
}

// HandleHit draws a card for the user's seat
func HandleHit(redisClient *redis.RedisClient, client *socket.Socket,
	username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		_, tableId, ok := parseTableArgs(args...)
		if !ok {
			client.Emit("error", gin.H{"error": "table_id is required"})
			return
		}

		if _, err := table.Hit(redisClient, tableId, username); err != nil {
			emitActionError(client, err)
		}
	}
}

// HandleStand ends the user's turn
func HandleStand(redisClient *redis.RedisClient, client *socket.Socket,
	username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		_, tableId, ok := parseTableArgs(args...)
		if !ok {
			client.Emit("error", gin.H{"error": "table_id is required"})
			return
		}

		if _, err := table.Stand(redisClient, tableId, username); err != nil {
			emitActionError(client, err)
		}
	}
}

// HandleGetTableState replies with the current snapshot of a table.
// Useful on reconnection, before the next broadcast arrives.
func HandleGetTableState(redisClient *redis.RedisClient, client *socket.Socket,
	manager *table.Manager, broadcaster *socketio_utils.TableBroadcaster) func(args ...interface{}) {
	return func(args ...interface{}) {
		_, tableId, ok := parseTableArgs(args...)
		if !ok {
			client.Emit("error", gin.H{"error": "table_id is required"})
			return
		}

		state, err := manager.EnsureTable(tableId)
		if err != nil {
			log.Printf("[STATE-ERROR] Error reading table %s: %v", tableId, err)
			client.Emit("error", gin.H{"error": "Error reading table state"})
			return
		}

		client.Join(socket.Room(tableId))
		broadcaster.EnsureSubscribed(tableId)

		client.Emit("table_state", table.Snapshot(state))
	}
}
