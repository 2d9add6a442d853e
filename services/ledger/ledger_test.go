package ledger

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*PostgresLedger, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewPostgresLedger(gormDB), mock
}

func TestGetBalance(t *testing.T) {
	ledger, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username =`).
		WithArgs("alice", 1).
		WillReturnRows(sqlmock.NewRows([]string{"email", "username", "balance"}).
			AddRow("alice@example.com", "alice", 980.0))

	balance, err := ledger.GetBalance("alice")
	require.NoError(t, err)
	assert.Equal(t, 980.0, balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBalanceUnknownUser(t *testing.T) {
	ledger, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username =`).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"email", "username", "balance"}))

	_, err := ledger.GetBalance("ghost")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestDebitSubtractsConditionally(t *testing.T) {
	ledger, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "balance"=balance - \$1 WHERE username = \$2 AND balance >= \$3`).
		WithArgs(25.0, "alice", 25.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := ledger.Debit("alice", 25)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitInsufficientFunds(t *testing.T) {
	ledger, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "balance"=balance - \$1 WHERE username = \$2 AND balance >= \$3`).
		WithArgs(500.0, "alice", 500.0).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// The user exists, so the zero rows mean the balance was too low
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE username =`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := ledger.Debit("alice", 500)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestDebitUnknownUser(t *testing.T) {
	ledger, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "balance"=balance - \$1 WHERE username = \$2 AND balance >= \$3`).
		WithArgs(25.0, "ghost", 25.0).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE username =`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := ledger.Debit("ghost", 25)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestCreditManySingleTransaction(t *testing.T) {
	ledger, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "balance"=balance \+ \$1 WHERE username = \$2`).
		WithArgs(25.0, "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := ledger.CreditMany(map[string]float64{"alice": 25})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditManyEmptyPayouts(t *testing.T) {
	ledger, mock := setupMockDB(t)

	// No SQL at all for an all-losing round
	err := ledger.CreditMany(map[string]float64{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
