package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-admin/internal/model"
	"github.com/fairyhunter13/coupon-admin/internal/service"
	"github.com/fairyhunter13/coupon-admin/pkg/couponapi"
)

// Envelope messages returned to clients.
const (
	MsgCreated       = "Coupon created"
	MsgUpdated       = "Coupon updated"
	MsgDeleted       = "Coupon deleted"
	MsgInvalidBody   = "invalid request body"
	MsgCodeExists    = "Code already exists"
	MsgNotFound      = "Coupon not found"
	MsgInternalError = "internal server error"
)

// CouponServiceInterface defines the interface for coupon business logic.
type CouponServiceInterface interface {
	List(ctx context.Context, page int, category string) (*couponapi.GetCouponsResponse, error)
	Create(ctx context.Context, params *couponapi.CreateCouponParams) (*model.Coupon, error)
	Edit(ctx context.Context, params *couponapi.EditCouponParams) error
	Delete(ctx context.Context, id string) error
}

// CouponHandler handles HTTP requests for coupon administration.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// Register mounts the coupon routes on r.
func (h *CouponHandler) Register(r fiber.Router) {
	r.Get("/admin/coupons", h.ListCoupons)
	r.Post("/admin/coupon", h.CreateCoupon)
	r.Put("/admin/coupon/:id", h.EditCoupon)
	r.Delete("/admin/coupon/:id", h.DeleteCoupon)
}

func reply(c *fiber.Ctx, status int, success bool, message string) error {
	return c.Status(status).JSON(couponapi.MessageResponse{Success: success, Message: message})
}

// formatValidationError turns the first validator failure into a message
// naming the json field, e.g. "invalid request: percent must be at most 100".
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return "invalid request: " + field + " is required"
	case "notblank":
		return "invalid request: " + field + " cannot be blank"
	case "max":
		return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
	case "gte":
		return "invalid request: " + field + " must be at least " + fe.Param()
	case "lte":
		return "invalid request: " + field + " must be at most " + fe.Param()
	case "gt":
		return "invalid request: " + field + " must be greater than " + fe.Param()
	case "flag":
		return "invalid request: " + field + " must be 0 or 1"
	default:
		return "invalid request: " + field + " is invalid"
	}
}

// mutationError maps service errors onto the failure envelope.
func mutationError(c *fiber.Ctx, err error, op, id string) error {
	switch {
	case errors.Is(err, service.ErrCouponExists):
		return reply(c, fiber.StatusConflict, false, MsgCodeExists)
	case errors.Is(err, service.ErrCouponNotFound):
		return reply(c, fiber.StatusNotFound, false, MsgNotFound)
	case errors.Is(err, service.ErrInvalidRequest):
		return reply(c, fiber.StatusBadRequest, false, "invalid request")
	}
	log.Error().Err(err).Str("op", op).Str("coupon_id", id).Msg("coupon mutation failed")
	return reply(c, fiber.StatusInternalServerError, false, MsgInternalError)
}

// ListCoupons handles GET /admin/coupons?page=N&category=C.
// A missing or non-numeric page is treated as page 1.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	category := utils.CopyString(c.Query("category"))

	resp, err := h.service.List(c.UserContext(), page, category)
	if err != nil {
		log.Error().Err(err).Int("page", page).Str("category", category).Msg("failed to list coupons")
		return c.Status(fiber.StatusInternalServerError).JSON(couponapi.GetCouponsResponse{
			Success:  false,
			Coupons:  []couponapi.Coupon{},
			Messages: []any{MsgInternalError},
		})
	}

	return c.JSON(resp)
}

// CreateCoupon handles POST /admin/coupon with body {"data": {...}}.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var payload model.CouponPayload
	if err := c.BodyParser(&payload); err != nil {
		return reply(c, fiber.StatusBadRequest, false, MsgInvalidBody)
	}

	if err := h.validator.Struct(payload); err != nil {
		return reply(c, fiber.StatusBadRequest, false, formatValidationError(err))
	}

	coupon, err := h.service.Create(c.UserContext(), &payload.Data)
	if err != nil {
		return mutationError(c, err, "create", "")
	}

	log.Info().Str("coupon_id", coupon.ID).Str("code", coupon.Code).Msg("coupon created")
	return reply(c, fiber.StatusOK, true, MsgCreated)
}

// EditCoupon handles PUT /admin/coupon/:id with body {"data": {...}}.
// The payload replaces the whole record.
func (h *CouponHandler) EditCoupon(c *fiber.Ctx) error {
	var payload model.CouponPayload
	if err := c.BodyParser(&payload); err != nil {
		return reply(c, fiber.StatusBadRequest, false, MsgInvalidBody)
	}

	params := couponapi.EditCouponParams{ID: utils.CopyString(c.Params("id")), Data: payload.Data}
	if err := h.validator.Struct(params); err != nil {
		return reply(c, fiber.StatusBadRequest, false, formatValidationError(err))
	}

	if err := h.service.Edit(c.UserContext(), &params); err != nil {
		return mutationError(c, err, "edit", params.ID)
	}

	log.Info().Str("coupon_id", params.ID).Msg("coupon updated")
	return reply(c, fiber.StatusOK, true, MsgUpdated)
}

// DeleteCoupon handles DELETE /admin/coupon/:id.
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id := utils.CopyString(c.Params("id"))
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return mutationError(c, err, "delete", id)
	}

	log.Info().Str("coupon_id", id).Msg("coupon deleted")
	return reply(c, fiber.StatusOK, true, MsgDeleted)
}
