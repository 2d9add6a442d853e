package utils

import (
	"Vega/models/postgres"
	"fmt"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
)

// ErrorHandler handles global errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

// CheckTableExists returns the registry row for a table id
func CheckTableExists(db *gorm.DB, tableId string) (*postgres.GameTable, error) {
	var gameTable postgres.GameTable
	result := db.Where("id = ?", tableId).First(&gameTable)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("table not found")
		}
		return nil, result.Error
	}

	return &gameTable, nil
}
