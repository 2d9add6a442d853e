package socket_io

import (
	"Vega/services/redis"
	"Vega/services/socket_io/handlers"
	"Vega/services/table"

	socketio_types "Vega/services/socket_io/types"
	socketio_utils "Vega/services/socket_io/utils"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient, manager *table.Manager) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	sio.UserConnections = make(map[string]*socket.Socket)

	sio.Sio_server = socket.NewServer(nil, nil)

	broadcaster := socketio_utils.NewTableBroadcaster(redisClient, (*socketio_types.SocketServer)(sio))

	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Check if the client is authenticated
		success, username, _ := socketio_utils.VerifyUserConnection(client, db)
		if !success {
			return
		}

		// Add connection to map
		(*socketio_types.SocketServer)(sio).AddConnection(username, client)
		log.Printf("[SIO-CONNECT] User connected: %s", username)

		// Take a seat at a blackjack table with a wager
		client.On("join_table", handlers.HandleJoinTable(redisClient, client, db, username, manager, broadcaster))

		// Give the seat up during the waiting phase (wager refunded)
		client.On("leave_table", handlers.HandleLeaveTable(redisClient, client, db, username))

		// Draw one more card on the player's turn
		client.On("hit", handlers.HandleHit(redisClient, client, username))

		// End the player's turn
		client.On("stand", handlers.HandleStand(redisClient, client, username))

		// Fetch the current snapshot (reconnection / spectating)
		client.On("get_table_state", handlers.HandleGetTableState(redisClient, client, manager, broadcaster))

		// NOTE: will remove sio connection from map
		client.On("disconnecting", handlers.HandleDisconnecting(username, (*socketio_types.SocketServer)(sio)))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				broadcaster.Close()
				manager.StopAll()
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	log.Println("Socket server started")
}
