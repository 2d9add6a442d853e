package ledger

import (
	"Vega/models/postgres"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrInsufficientFunds is returned when a debit would take a balance
// below zero. The balance is left untouched.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrUnknownUser is returned when the participant has no ledger row
var ErrUnknownUser = errors.New("unknown user")

// PostgresLedger is the GORM-backed balance ledger. Debits and credits
// are single conditional UPDATEs, so each call is atomic on its own;
// settlement uses CreditMany to pay a whole round in one transaction.
type PostgresLedger struct {
	DB *gorm.DB
}

func NewPostgresLedger(db *gorm.DB) *PostgresLedger {
	return &PostgresLedger{DB: db}
}

// GetBalance returns the current virtual currency balance of a user
func (l *PostgresLedger) GetBalance(username string) (float64, error) {
	var user postgres.User
	if err := l.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUnknownUser
		}
		return 0, fmt.Errorf("error reading balance: %v", err)
	}
	return user.Balance, nil
}

// Debit subtracts amount from the user's balance. The balance check
// and the subtraction happen in one conditional UPDATE, so two
// concurrent debits can never overdraw the account.
func (l *PostgresLedger) Debit(username string, amount float64) error {
	result := l.DB.Model(&postgres.User{}).
		Where("username = ? AND balance >= ?", username, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))

	if result.Error != nil {
		return fmt.Errorf("error debiting balance: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		// Either the user does not exist or the balance is too low
		var count int64
		if err := l.DB.Model(&postgres.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return fmt.Errorf("error checking user: %v", err)
		}
		if count == 0 {
			return ErrUnknownUser
		}
		return ErrInsufficientFunds
	}
	return nil
}

// Credit adds amount to the user's balance
func (l *PostgresLedger) Credit(username string, amount float64) error {
	result := l.DB.Model(&postgres.User{}).
		Where("username = ?", username).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))

	if result.Error != nil {
		return fmt.Errorf("error crediting balance: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUnknownUser
	}
	return nil
}

// CreditMany applies all of a round's payouts in a single transaction
// so a crash mid-settlement cannot pay some seats and lose others.
func (l *PostgresLedger) CreditMany(payouts map[string]float64) error {
	if len(payouts) == 0 {
		return nil
	}
	return l.DB.Transaction(func(tx *gorm.DB) error {
		for username, amount := range payouts {
			if amount <= 0 {
				continue
			}
			result := tx.Model(&postgres.User{}).
				Where("username = ?", username).
				UpdateColumn("balance", gorm.Expr("balance + ?", amount))
			if result.Error != nil {
				return fmt.Errorf("error crediting %s: %v", username, result.Error)
			}
		}
		return nil
	})
}
