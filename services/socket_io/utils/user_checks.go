package socketio_utils

import (
	"Vega/middleware"
	models "Vega/models/postgres"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// VerifyUserConnection authenticates a socket.io client from the JWT
// in its handshake auth data and resolves the associated username.
func VerifyUserConnection(client *socket.Socket, db *gorm.DB) (success bool, username, email string) {
	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		log.Println("[SIO-AUTH] No auth data provided in handshake")
		client.Emit("error", gin.H{"error": "Authentication failed: missing auth data"})
		return false, "", ""
	}

	email, err := middleware.Socketio_JWT_decoder(authData)
	if err != nil {
		log.Printf("[SIO-AUTH] Error decoding JWT: %v", err)
		client.Emit("error", gin.H{
			"error": "Authentication failed: invalid JWT. Remember to set it on the 'authorization' field, with the 'Bearer ' prefix.",
		})
		return false, "", ""
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		log.Printf("[SIO-AUTH] Error fetching user from database: %v", err)
		client.Emit("error", gin.H{"error": "Authentication failed: could not find user"})
		return false, "", email
	}

	return true, user.Username, email
}
