package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Credits store.
var Migrations = migrate.NewGroup("credits")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_credits_entries",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS credits_entries (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL DEFAULT '',
    order_id    TEXT NOT NULL DEFAULT '',
    amount      BIGINT NOT NULL DEFAULT 0,
    type        TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'locked',
    description TEXT NOT NULL DEFAULT '',
    unlock_date TIMESTAMPTZ,
    expiry_date TIMESTAMPTZ,
    metadata    JSONB NOT NULL DEFAULT '{}',
    version     BIGINT NOT NULL DEFAULT 1,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_credits_entries_user ON credits_entries (user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_credits_entries_user_status ON credits_entries (user_id, status);
CREATE INDEX IF NOT EXISTS idx_credits_entries_expiry ON credits_entries (status, expiry_date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS credits_entries`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_credits_wallets",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS credits_wallets (
    user_id             TEXT PRIMARY KEY,
    total_credits       BIGINT NOT NULL DEFAULT 0,
    locked_credits      BIGINT NOT NULL DEFAULT 0,
    is_premium          BOOLEAN NOT NULL DEFAULT FALSE,
    premium_expiry_date TIMESTAMPTZ,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_credits_wallets_premium ON credits_wallets (is_premium);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS credits_wallets`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_credits_transactions",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS credits_transactions (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL DEFAULT '',
    type            TEXT NOT NULL DEFAULT '',
    amount_cents    BIGINT NOT NULL DEFAULT 0,
    amount_currency TEXT NOT NULL DEFAULT 'inr',
    status          TEXT NOT NULL DEFAULT 'completed',
    payment_id      TEXT NOT NULL DEFAULT '',
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_credits_transactions_user ON credits_transactions (user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_credits_transactions_type_status ON credits_transactions (type, status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS credits_transactions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_credits_settings",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS credits_settings (
    key        TEXT PRIMARY KEY,
    value      JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS credits_settings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_credits_wallet_plans",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS credits_wallet_plans (
    id             TEXT PRIMARY KEY,
    slug           TEXT NOT NULL DEFAULT '',
    name           TEXT NOT NULL DEFAULT '',
    description    TEXT NOT NULL DEFAULT '',
    price_cents    BIGINT NOT NULL DEFAULT 0,
    price_currency TEXT NOT NULL DEFAULT 'inr',
    billing_cycle  TEXT NOT NULL DEFAULT '',
    features       JSONB NOT NULL DEFAULT '{}',
    is_active      BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_credits_wallet_plans_slug ON credits_wallet_plans (slug);
CREATE INDEX IF NOT EXISTS idx_credits_wallet_plans_active ON credits_wallet_plans (is_active);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS credits_wallet_plans`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_credits_promotions",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS credits_promotions (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    credits     BIGINT NOT NULL DEFAULT 0,
    condition   TEXT NOT NULL DEFAULT '',
    start_date  TIMESTAMPTZ,
    end_date    TIMESTAMPTZ,
    audience    TEXT NOT NULL DEFAULT 'all',
    status      TEXT NOT NULL DEFAULT 'draft',
    usage_count BIGINT NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_credits_promotions_status ON credits_promotions (status, start_date, end_date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS credits_promotions`)
				return err
			},
		},
	)
}
