package postgres

import (
	"math/rand"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GameTable is the registry row for a blackjack table. The live round
// state lives in Redis (models/redis.TableState); this row only tracks
// who created the table and the outcome of the last settled round.
type GameTable struct {
	ID               string         `gorm:"primaryKey;size:50;not null"`
	CreatorUsername  string         `gorm:"size:50;index:idx_game_tables_creator"`
	MinimumWager     float64        `gorm:"default:10"`
	RoundsPlayed     int            `gorm:"default:0"`
	LastRoundSummary datatypes.JSON // written by settlement, one round only
	CreatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
}

// Random table id generation
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateTableID(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// Ensure the id is truly unique. We won't have problems, reduced number of ids
func (t *GameTable) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID != "" {
		return nil
	}
	for {
		newID := generateTableID(4)
		var existing GameTable
		if err := tx.Where("id = ?", newID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				t.ID = newID
				return nil
			}
			return err
		}
	}
}
