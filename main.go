package main

import (
	"Vega/config"
	pgconfig "Vega/config/postgres"
	_ "Vega/config/swagger"
	"Vega/middleware"
	"Vega/routes"
	"Vega/services/ledger"
	"Vega/services/redis"
	"Vega/services/socket_io"
	"Vega/services/table"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// @title Vega API
// @version 1.0
// @description Gin-Gonic server for the "Vega" blackjack API
// @BasePath /
func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := pgconfig.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := pgconfig.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.Connect_redis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	log.Println("Connection to Redis successful")
	defer redis.CloseRedis(redisClient)

	// One manager owns every table engine in this process
	manager := table.NewManager(redisClient,
		ledger.NewPostgresLedger(gormDB),
		table.NewGormRecorder(gormDB))
	defer manager.StopAll()

	r := gin.Default()

	middleware.SetUpMiddleware(r)

	routes.SetupRoutes(r, gormDB, manager)

	sio := &socket_io.MySocketServer{}
	sio.Start(r, gormDB, redisClient, manager)

	// Configure port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
