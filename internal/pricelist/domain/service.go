package domain

import (
	"context"
	"errors"
	"time"

	"github.com/hoikulink/tsumugi/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Current(ctx context.Context) (*Response, error)
	List(ctx context.Context, page pagination.Pagination) ([]Response, *pagination.PageInfo, error)
}

type CreateRequest struct {
	Label        string           `json:"label"`
	BasicPrices  map[string]int64 `json:"basic_prices"`
	SpotPrices   map[string]int64 `json:"spot_prices"`
	OptionPrices map[string]int64 `json:"option_prices"`
}

type Response struct {
	ID           string           `json:"id"`
	Label        string           `json:"label"`
	BasicPrices  map[string]int64 `json:"basic_prices"`
	SpotPrices   map[string]int64 `json:"spot_prices"`
	OptionPrices map[string]int64 `json:"option_prices"`
	CreatedAt    time.Time        `json:"created_at"`
}

var (
	ErrInvalidLabel     = errors.New("invalid_label")
	ErrInvalidPrices    = errors.New("invalid_prices")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrDuplicateLabel   = errors.New("duplicate_label")
	ErrNotFound         = errors.New("price_list_not_found")
)
