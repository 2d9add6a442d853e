package middleware

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// GenerateSocketToken issues the JWT a client presents in the
// socket.io handshake auth data. The session cookie cannot travel
// over the websocket upgrade, so the REST API hands out this token
// after a normal session login.
func GenerateSocketToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(jwtSecret())
}

func decodeJWT(raw string) (string, error) {
	raw = strings.TrimPrefix(raw, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("token carries no email claim")
	}
	return email, nil
}

// JWT_decoder extracts the authenticated email from the request's
// Authorization header ("Bearer <token>").
func JWT_decoder(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	return decodeJWT(header)
}

// Socketio_JWT_decoder extracts the authenticated email from a
// socket.io handshake's auth data.
func Socketio_JWT_decoder(authData map[string]interface{}) (string, error) {
	raw, ok := authData["authorization"].(string)
	if !ok {
		return "", fmt.Errorf("missing authorization field in handshake auth")
	}
	return decodeJWT(raw)
}
