package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer runs a statement without returning rows.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS coupons (
		id          TEXT PRIMARY KEY,
		title       VARCHAR(255) NOT NULL,
		code        VARCHAR(64)  NOT NULL UNIQUE,
		percent     INTEGER      NOT NULL CHECK (percent BETWEEN 1 AND 100),
		due_date    BIGINT       NOT NULL,
		is_enabled  SMALLINT     NOT NULL DEFAULT 0 CHECK (is_enabled IN (0, 1)),
		created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_coupons_created_at ON coupons (created_at DESC, id)`,
}

// EnsureSchema creates the coupon tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db Execer) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
