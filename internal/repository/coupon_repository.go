package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/coupon-admin/internal/model"
	"github.com/fairyhunter13/coupon-admin/internal/service"
	"github.com/fairyhunter13/coupon-admin/pkg/database"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint failure.
const uniqueViolation = "23505"

const couponColumns = `id, title, code, percent, due_date, is_enabled, created_at, updated_at`

// PoolInterface defines the database operations needed by the repository.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Insert inserts a new coupon.
// Returns service.ErrCouponExists if the code is already taken.
func (r *CouponRepository) Insert(ctx context.Context, c *model.Coupon) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (id, title, code, percent, due_date, is_enabled) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Title, c.Code, c.Percent, c.DueDate, c.IsEnabled)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrCouponExists
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// Count returns the total number of coupons.
func (r *CouponRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count coupons: %w", err)
	}
	return n, nil
}

// List returns one page of coupons, newest first.
// On success, returns an empty slice (not nil) when the page is empty.
func (r *CouponRepository) List(ctx context.Context, limit, offset int) ([]model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		var c model.Coupon
		if err := scanCoupon(rows, &c); err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}
	return coupons, nil
}

// GetForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE).
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1 FOR UPDATE`

	var c model.Coupon
	if err := scanCoupon(tx.QueryRow(ctx, query, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %s: %w", id, err)
	}
	return &c, nil
}

// Update overwrites every editable column of the coupon.
// Must be called within a transaction after locking the row.
func (r *CouponRepository) Update(ctx context.Context, tx database.TxQuerier, c *model.Coupon) error {
	query := `UPDATE coupons
		SET title = $2, code = $3, percent = $4, due_date = $5, is_enabled = $6, updated_at = NOW()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, c.ID, c.Title, c.Code, c.Percent, c.DueDate, c.IsEnabled)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrCouponExists
		}
		return fmt.Errorf("update coupon %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

// Delete removes a coupon by id.
// Returns service.ErrCouponNotFound if nothing was deleted.
func (r *CouponRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

func scanCoupon(row pgx.Row, c *model.Coupon) error {
	return row.Scan(
		&c.ID,
		&c.Title,
		&c.Code,
		&c.Percent,
		&c.DueDate,
		&c.IsEnabled,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}
