package portfolio

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/mbomani/soulscout/internal/domain"
)

// schema mirrors the teacher's postgres bootstrap pattern: idempotent
// CREATE TABLE IF NOT EXISTS run on startup rather than a migration
// tool, appropriate for a single-owner deployment.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	tg_user_id BIGINT UNIQUE NOT NULL,
	role TEXT NOT NULL CHECK (role IN ('owner','guest')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS wallets (
	id BIGSERIAL PRIMARY KEY,
	address TEXT UNIQUE NOT NULL,
	owner_user_id BIGINT NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS portfolio_snapshots (
	id BIGSERIAL PRIMARY KEY,
	wallet_id BIGINT NOT NULL REFERENCES wallets(id),
	ts TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	total_usd NUMERIC,
	included_count INT,
	excluded_count INT,
	haircut_subtotal_usd NUMERIC,
	notes TEXT
);

CREATE TABLE IF NOT EXISTS holding_values (
	snapshot_id BIGINT NOT NULL REFERENCES portfolio_snapshots(id) ON DELETE CASCADE,
	mint TEXT NOT NULL,
	amount NUMERIC NOT NULL,
	usd_price NUMERIC,
	usd_value NUMERIC,
	valuation_tag TEXT NOT NULL,
	PRIMARY KEY (snapshot_id, mint)
);
`

// Store is the Postgres-backed wallet/holdings persistence layer.
type Store struct {
	db *sqlx.DB
}

// Open connects to Postgres via dsn and verifies connectivity.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("portfolio store connect: %w", err)
	}
	return &Store{db: db}, nil
}

// InitSchema creates the store's tables if they don't already exist.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// CreateOrGetUser upserts a user row by tg_user_id, updating role on
// conflict, and returns its internal id.
func (s *Store) CreateOrGetUser(ctx context.Context, tgUserID int64, role domain.Role) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id,
		`INSERT INTO users (tg_user_id, role) VALUES ($1, $2)
		 ON CONFLICT (tg_user_id) DO UPDATE SET role = $2
		 RETURNING id`,
		tgUserID, string(role))
	if err != nil {
		return 0, fmt.Errorf("create or get user: %w", err)
	}
	return id, nil
}

// AddWallet registers (or reactivates) a wallet address for userID.
func (s *Store) AddWallet(ctx context.Context, userID int64, address string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id,
		`INSERT INTO wallets (address, owner_user_id, is_active) VALUES ($1, $2, TRUE)
		 ON CONFLICT (address) DO UPDATE SET is_active = TRUE
		 RETURNING id`,
		address, userID)
	if err != nil {
		return 0, fmt.Errorf("add wallet: %w", err)
	}
	return id, nil
}

// RemoveWallet deactivates a wallet address without deleting its
// history.
func (s *Store) RemoveWallet(ctx context.Context, address string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE wallets SET is_active = FALSE WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("remove wallet: %w", err)
	}
	return nil
}

// ActiveWallets returns userID's currently active wallet addresses.
func (s *Store) ActiveWallets(ctx context.Context, userID int64) ([]string, error) {
	var addrs []string
	err := s.db.SelectContext(ctx, &addrs,
		`SELECT address FROM wallets WHERE owner_user_id = $1 AND is_active = TRUE`, userID)
	if err != nil {
		return nil, fmt.Errorf("active wallets: %w", err)
	}
	return addrs, nil
}

// SaveSnapshot persists a PortfolioSummary and its holdings for wallet
// walletID, returning the new snapshot id.
func (s *Store) SaveSnapshot(ctx context.Context, walletID int64, summary domain.PortfolioSummary) (int64, error) {
	var snapshotID int64
	err := s.db.GetContext(ctx, &snapshotID,
		`INSERT INTO portfolio_snapshots
		 (wallet_id, total_usd, included_count, excluded_count, haircut_subtotal_usd, notes)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		walletID, summary.TotalUSD, summary.IncludedCount, summary.ExcludedCount,
		summary.HaircutSubtotalUSD, summary.Notes)
	if err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}

	for _, h := range summary.Holdings {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO holding_values (snapshot_id, mint, amount, usd_price, usd_value, valuation_tag)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			snapshotID, h.Mint, h.Amount, h.USDPrice, h.USDValue, string(h.Tag))
		if err != nil {
			return 0, fmt.Errorf("save holding %s: %w", h.Mint, err)
		}
	}
	return snapshotID, nil
}

// Ping verifies connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
