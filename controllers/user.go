package controllers

import (
	game_constants "Vega/constants/game"
	"Vega/middleware"
	models "Vega/models/postgres"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// @Summary Server health check
// @Description Returns pong
// @Tags health
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// @Summary Create a new account
// @Description Registers a user with the starting chip balance
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Public username"
// @Param email formData string true "Account email"
// @Param password formData string true "Password"
// @Success 201 {object} object{username=string,balance=number}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /signup [post]
func SignUp(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.PostForm("username"))
		email := strings.TrimSpace(c.PostForm("email"))
		password := c.PostForm("password")

		// Minimum input sanitizing
		if username == "" || email == "" || strings.TrimSpace(password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parameters can't be empty"})
			return
		}

		var existing models.User
		if err := db.Where("email = ? OR username = ?", email, username).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email or username already taken"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error hashing password"})
			return
		}

		user := models.User{
			Email:        email,
			Username:     username,
			PasswordHash: string(hash),
			Balance:      game_constants.StartingBalance,
			MemberSince:  time.Now(),
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"username": user.Username,
			"balance":  user.Balance,
		})
	}
}

// @Summary Log in
// @Description Starts a session for the given credentials
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Account email"
// @Param password formData string true "Password"
// @Success 200 {object} object{username=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /login [post]
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		email := c.PostForm("email")
		password := c.PostForm("password")

		// Minimum input sanitizing
		if strings.Trim(email, " ") == "" || strings.Trim(password, " ") == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parameters can't be empty"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password!"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password!"})
			return
		}

		session.Set("Email", user.Email)
		if err := session.Save(); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No session!"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	}
}

// @Summary Log out
// @Description Deletes the session associated with the Email key
// @Tags users
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Router /auth/logout [delete]
// @Security ApiKeyAuth
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	user := session.Get("Email")
	// There is no session for the user, won't delete nothing
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session token"})
		return
	}

	// Deletes the session associated with that userkey
	session.Delete("Email")
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// @Summary Get the logged-in user's profile
// @Description Returns the caller's username, email and current chip balance
// @Tags users
// @Produce json
// @Success 200 {object} object{username=string,email=string,balance=number,member_since=string}
// @Failure 401 {object} object{error=string}
// @Router /auth/me [get]
// @Security ApiKeyAuth
func Me(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		email, _ := session.Get("Email").(string)

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found: invalid email"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"username":     user.Username,
			"email":        user.Email,
			"balance":      user.Balance,
			"member_since": user.MemberSince,
		})
	}
}

// @Summary Get a socket.io token
// @Description Issues the JWT the client presents in the socket.io handshake auth data
// @Tags users
// @Produce json
// @Success 200 {object} object{token=string}
// @Failure 401 {object} object{error=string}
// @Router /auth/socket_token [get]
// @Security ApiKeyAuth
func SocketToken(c *gin.Context) {
	session := sessions.Default(c)
	email, _ := session.Get("Email").(string)

	token, err := middleware.GenerateSocketToken(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
