package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/coupon-admin/internal/cache"
	"github.com/fairyhunter13/coupon-admin/internal/model"
	"github.com/fairyhunter13/coupon-admin/pkg/couponapi"
	"github.com/fairyhunter13/coupon-admin/pkg/database"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, c *model.Coupon) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit, offset int) ([]model.Coupon, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Coupon, error)
	Update(ctx context.Context, tx database.TxQuerier, c *model.Coupon) error
	Delete(ctx context.Context, id string) error
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Options tunes listing behaviour.
type Options struct {
	PageSize int
	CacheTTL time.Duration
}

// CouponService provides business logic for coupon administration.
type CouponService struct {
	pool       TxBeginner
	couponRepo CouponRepositoryInterface
	cache      cache.Cache
	opts       Options
	tracer     trace.Tracer
	newID      func() string
}

// NewCouponService creates a new CouponService with the given pool, repository and cache.
func NewCouponService(pool *pgxpool.Pool, couponRepo CouponRepositoryInterface, c cache.Cache, opts Options) *CouponService {
	return NewCouponServiceWithTxBeginner(pool, couponRepo, c, opts)
}

// NewCouponServiceWithTxBeginner creates a CouponService with a custom TxBeginner.
// Primarily used for testing.
func NewCouponServiceWithTxBeginner(pool TxBeginner, couponRepo CouponRepositoryInterface, c cache.Cache, opts Options) *CouponService {
	if opts.PageSize < 1 {
		opts.PageSize = 10
	}
	return &CouponService{
		pool:       pool,
		couponRepo: couponRepo,
		cache:      c,
		opts:       opts,
		tracer:     otel.Tracer("github.com/fairyhunter13/coupon-admin/internal/service"),
		newID:      func() string { return uuid.NewString() },
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// List returns one page of coupons wrapped in the listing envelope.
// Pages outside the valid range are clamped to the nearest page.
func (s *CouponService) List(ctx context.Context, page int, category string) (resp *couponapi.GetCouponsResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "CouponService.List",
		trace.WithAttributes(attribute.Int("page", page), attribute.String("category", category)))
	defer func() { endSpan(span, err) }()

	key := cache.ListKey(page, category)
	if s.cache != nil {
		var cached couponapi.GetCouponsResponse
		cerr := cache.GetJSON(ctx, s.cache, key, &cached)
		if cerr == nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return &cached, nil
		}
		if !errors.Is(cerr, cache.ErrNotFound) {
			log.Warn().Err(cerr).Str("key", key).Msg("coupon list cache read failed")
		}
	}

	total, err := s.couponRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count coupons: %w", err)
	}

	pagination := couponapi.NewPagination(total, s.opts.PageSize, page, category)
	rows, err := s.couponRepo.List(ctx, s.opts.PageSize, pagination.Offset(s.opts.PageSize))
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	coupons := make([]couponapi.Coupon, 0, len(rows))
	for i := range rows {
		coupons = append(coupons, rows[i].ToAPI())
	}

	resp = &couponapi.GetCouponsResponse{
		Success:    true,
		Coupons:    coupons,
		Pagination: pagination,
		Messages:   []any{},
	}

	if s.cache != nil {
		if cerr := cache.SetJSON(ctx, s.cache, key, resp, s.opts.CacheTTL); cerr != nil {
			log.Warn().Err(cerr).Str("key", key).Msg("coupon list cache write failed")
		}
	}

	return resp, nil
}

// Create stores a new coupon and returns it with its assigned id.
// Returns ErrCouponExists if another coupon already uses the code.
// Returns ErrInvalidRequest if params are nil or incomplete.
func (s *CouponService) Create(ctx context.Context, params *couponapi.CreateCouponParams) (c *model.Coupon, err error) {
	ctx, span := s.tracer.Start(ctx, "CouponService.Create")
	defer func() { endSpan(span, err) }()

	// Apply dereferences every numeric pointer.
	if !complete(params) {
		return nil, ErrInvalidRequest
	}

	c = model.NewCoupon(s.newID(), params)
	if err = s.couponRepo.Insert(ctx, c); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("coupon_id", c.ID))

	s.invalidate(ctx)
	return c, nil
}

// Edit replaces every field of an existing coupon.
// Uses SELECT FOR UPDATE to lock the row during the transaction.
// Returns:
//   - ErrCouponNotFound if the coupon doesn't exist
//   - ErrCouponExists if the new code belongs to another coupon
//   - ErrInvalidRequest if params are nil or incomplete
func (s *CouponService) Edit(ctx context.Context, params *couponapi.EditCouponParams) (err error) {
	ctx, span := s.tracer.Start(ctx, "CouponService.Edit")
	defer func() { endSpan(span, err) }()

	if params == nil || params.ID == "" || !complete(&params.Data) {
		return ErrInvalidRequest
	}
	span.SetAttributes(attribute.String("coupon_id", params.ID))

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op once committed

	c, err := s.couponRepo.GetForUpdate(ctx, tx, params.ID)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("get coupon for update: %w", err)
	}

	c.Apply(&params.Data)
	if err = s.couponRepo.Update(ctx, tx, c); err != nil {
		if errors.Is(err, ErrCouponExists) || errors.Is(err, ErrCouponNotFound) {
			return err
		}
		return fmt.Errorf("update coupon: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

// Delete removes a coupon.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "CouponService.Delete",
		trace.WithAttributes(attribute.String("coupon_id", id)))
	defer func() { endSpan(span, err) }()

	if id == "" {
		return ErrInvalidRequest
	}
	if err = s.couponRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// invalidate drops every cached listing page after a mutation.
func (s *CouponService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("coupon list cache invalidation failed")
	}
}

func complete(p *couponapi.CreateCouponParams) bool {
	return p != nil && p.Percent != nil && p.DueDate != nil && p.IsEnabled != nil
}
