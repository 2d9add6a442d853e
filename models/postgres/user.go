package postgres

import (
	"time"
)

/*
 * 'User' contains the blueprint definition of a User. The balance is
 * the virtual currency ledger mutated by the blackjack settlement.
 */
type User struct {
	Email        string    `gorm:"primaryKey;size:100;not null"`
	Username     string    `gorm:"size:50;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	Balance      float64   `gorm:"not null;default:1000"`
	MemberSince  time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}
