package table

import (
	"Vega/models/postgres"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormRecorder persists round outcomes on the game_tables registry row
type GormRecorder struct {
	DB *gorm.DB
}

func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{DB: db}
}

// RecordRoundSummary bumps the rounds-played counter and stores the
// summary JSON of the round that just settled.
func (r *GormRecorder) RecordRoundSummary(tableId string, summary []byte) error {
	result := r.DB.Model(&postgres.GameTable{}).
		Where("id = ?", tableId).
		Updates(map[string]interface{}{
			"rounds_played":      gorm.Expr("rounds_played + 1"),
			"last_round_summary": datatypes.JSON(summary),
		})
	if result.Error != nil {
		return fmt.Errorf("error recording round summary: %v", result.Error)
	}
	return nil
}
