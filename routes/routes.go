package routes

import (
	"Vega/controllers"
	"Vega/middleware"
	"Vega/services/table"
	"Vega/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, manager *table.Manager) {
	tableController := &controllers.TableController{DB: db, Manager: manager}

	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/signup", controllers.SignUp(db))

	api.POST("/login", controllers.Login(db))

	api.GET("/tables", tableController.GetAllTables)

	api.GET("/tables/:table_id", tableController.GetTableInfo)

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.DELETE("/logout", controllers.Logout)

		authentication.GET("/me", controllers.Me(db))

		authentication.GET("/socket_token", controllers.SocketToken)

		authentication.POST("/tables", tableController.CreateTable)
	}
}
