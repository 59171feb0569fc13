package portfolio

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbomani/soulscout/internal/domain"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Store{db: sqlx.NewDb(db, "postgres")}, mock
}

func TestStore_CreateOrGetUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(int64(42), "owner").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	id, err := store.CreateOrGetUser(context.Background(), 42, domain.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AddWallet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO wallets`).
		WithArgs("SoLWaLLeT111", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := store.AddWallet(context.Background(), 1, "SoLWaLLeT111")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RemoveWallet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE wallets SET is_active`).
		WithArgs("SoLWaLLeT111").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.RemoveWallet(context.Background(), "SoLWaLLeT111")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ActiveWallets(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT address FROM wallets`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"address"}).
			AddRow("WalletA").AddRow("WalletB"))

	addrs, err := store.ActiveWallets(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"WalletA", "WalletB"}, addrs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveSnapshot(t *testing.T) {
	store, mock := newMockStore(t)

	summary := domain.PortfolioSummary{
		TotalUSD:      100,
		IncludedCount: 1,
		Holdings: []domain.Holding{
			{Mint: "MintA", Amount: 10, USDPrice: 10, USDValue: 100, Tag: domain.ValuationCG},
		},
	}

	mock.ExpectQuery(`INSERT INTO portfolio_snapshots`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectExec(`INSERT INTO holding_values`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := store.SaveSnapshot(context.Background(), 7, summary)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
