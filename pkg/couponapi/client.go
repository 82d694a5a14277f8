package couponapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	couponvalidator "github.com/fairyhunter13/coupon-admin/internal/validator"
)

const DefaultTimeout = 10 * time.Second

// Client talks to the coupon admin API.
type Client struct {
	rootURI  string
	apiPath  string
	token    string
	timeout  time.Duration
	validate *validator.Validate
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithToken sends token verbatim in the Authorization header.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the API mounted at rootURI/v2/api/apiPath.
func New(rootURI, apiPath string, opts ...Option) *Client {
	c := &Client{
		rootURI:  strings.TrimRight(rootURI, "/"),
		apiPath:  strings.Trim(apiPath, "/"),
		timeout:  DefaultTimeout,
		validate: couponvalidator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) uri(path string) string {
	return fmt.Sprintf("%s/v2/api/%s%s", c.rootURI, c.apiPath, path)
}

type couponPayload struct {
	Data CreateCouponParams `json:"data"`
}

// do sends the request and decodes the JSON body into decodeTarget,
// whatever the status code. Failure envelopes are returned by the API with
// non-2xx codes, so the status is handed back for the caller to report.
func (c *Client) do(a *fiber.Agent, decodeTarget any) (int, error) {
	a.Timeout(c.timeout)
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, c.token)
	}
	if err := a.Parse(); err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return code, fmt.Errorf("request failed: %w", errors.Join(errs...))
	}
	if err := json.Unmarshal(body, decodeTarget); err != nil {
		return code, fmt.Errorf("failed to decode payload (status %d): %w", code, err)
	}
	return code, nil
}

func (c *Client) mutate(a *fiber.Agent) (*MessageResponse, error) {
	var resp MessageResponse
	code, err := c.do(a, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return &resp, &APIError{StatusCode: code, Message: resp.Message}
	}
	return &resp, nil
}

// GetCoupons fetches one page of coupons. A page below 1 asks for the first page.
func (c *Client) GetCoupons(page int, category string) (*GetCouponsResponse, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if category != "" {
		query.Set("category", category)
	}

	a := fiber.Get(c.uri("/admin/coupons")).QueryString(query.Encode())

	var resp GetCouponsResponse
	code, err := c.do(a, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return &resp, &APIError{StatusCode: code, Message: firstMessage(resp.Messages)}
	}
	return &resp, nil
}

// CreateCoupon validates params locally and creates the coupon.
// On success:false the envelope is returned together with an *APIError.
func (c *Client) CreateCoupon(params CreateCouponParams) (*CreateCouponResponse, error) {
	if err := c.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return c.mutate(fiber.Post(c.uri("/admin/coupon")).JSON(couponPayload{Data: params}))
}

// EditCoupon replaces the whole coupon identified by params.ID.
func (c *Client) EditCoupon(params EditCouponParams) (*EditCouponResponse, error) {
	if err := c.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	a := fiber.Put(c.uri("/admin/coupon/" + url.PathEscape(params.ID))).JSON(couponPayload{Data: params.Data})
	return c.mutate(a)
}

// DeleteCoupon removes the coupon with the given id.
func (c *Client) DeleteCoupon(id string) (*DeleteCouponResponse, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidParams)
	}
	return c.mutate(fiber.Delete(c.uri("/admin/coupon/" + url.PathEscape(id))))
}

func firstMessage(messages []any) string {
	for _, m := range messages {
		if s, ok := m.(string); ok && s != "" {
			return s
		}
	}
	return "listing failed"
}
