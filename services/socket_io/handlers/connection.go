package handlers

import (
	socketio_types "Vega/services/socket_io/types"
	"log"
)

// HandleDisconnecting drops the username -> socket mapping when a
// client goes away. The seat is NOT removed: a committed wager plays
// the round out (auto-stand covers the missed turns) and the player
// sees the outcome on reconnection.
func HandleDisconnecting(username string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		sio.RemoveConnection(username)
		log.Printf("[DISCONNECT] User disconnected: %s", username)
	}
}
