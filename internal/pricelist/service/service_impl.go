package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hoikulink/tsumugi/internal/clock"
	pricelistdomain "github.com/hoikulink/tsumugi/internal/pricelist/domain"
	pkgdb "github.com/hoikulink/tsumugi/pkg/db"
	"github.com/hoikulink/tsumugi/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  pricelistdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  pricelistdomain.Repository
}

func New(p Params) pricelistdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pricelist.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req pricelistdomain.CreateRequest) (*pricelistdomain.Response, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, pricelistdomain.ErrInvalidLabel
	}
	if err := validatePrices(req.BasicPrices, req.SpotPrices, req.OptionPrices); err != nil {
		return nil, err
	}

	// Best-effort pre-check; the unique index on label is the actual guarantee.
	existing, err := s.repo.FindByLabel(ctx, s.db, label)
	if err != nil {
		s.log.Error("price list lookup failed", zap.String("label", label), zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, pricelistdomain.ErrDuplicateLabel
	}

	entity := &pricelistdomain.PriceList{
		ID:           s.genID.Generate(),
		Label:        label,
		BasicPrices:  toJSONMap(req.BasicPrices),
		SpotPrices:   toJSONMap(req.SpotPrices),
		OptionPrices: toJSONMap(req.OptionPrices),
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, pricelistdomain.ErrDuplicateLabel
		}
		s.log.Error("price list insert failed", zap.String("label", label), zap.Error(err))
		return nil, err
	}

	return toResponse(entity), nil
}

func (s *Service) Current(ctx context.Context) (*pricelistdomain.Response, error) {
	entity, err := s.repo.FindCurrent(ctx, s.db)
	if err != nil {
		s.log.Error("current price list lookup failed", zap.Error(err))
		return nil, err
	}
	if entity == nil {
		return nil, pricelistdomain.ErrNotFound
	}
	return toResponse(entity), nil
}

func (s *Service) List(ctx context.Context, page pagination.Pagination) ([]pricelistdomain.Response, *pagination.PageInfo, error) {
	cursor, err := decodePageToken(page.PageToken)
	if err != nil {
		return nil, nil, err
	}

	limit := page.Limit()
	items, err := s.repo.List(ctx, s.db, cursor, limit)
	if err != nil {
		s.log.Error("price list history lookup failed", zap.Error(err))
		return nil, nil, err
	}

	info := &pagination.PageInfo{}
	if len(items) > limit {
		info.HasMore = true
		items = items[:limit]
	}
	if info.HasMore && len(items) > 0 {
		last := items[len(items)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, nil, err
		}
		info.NextPageToken = token
	}

	resp := make([]pricelistdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}
	return resp, info, nil
}

func decodePageToken(token string) (*pricelistdomain.ListCursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := pagination.DecodeCursor(token)
	if err != nil {
		return nil, pricelistdomain.ErrInvalidPageToken
	}
	createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
	if err != nil {
		return nil, pricelistdomain.ErrInvalidPageToken
	}
	id, err := snowflake.ParseString(decoded.ID)
	if err != nil {
		return nil, pricelistdomain.ErrInvalidPageToken
	}
	return &pricelistdomain.ListCursor{CreatedAt: createdAt, ID: id}, nil
}

func validatePrices(maps ...map[string]int64) error {
	for _, m := range maps {
		if m == nil {
			return pricelistdomain.ErrInvalidPrices
		}
		for _, v := range m {
			if v < 0 {
				return pricelistdomain.ErrInvalidPrices
			}
		}
	}
	return nil
}

func toJSONMap(m map[string]int64) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func toResponse(p *pricelistdomain.PriceList) *pricelistdomain.Response {
	return &pricelistdomain.Response{
		ID:           p.ID.String(),
		Label:        p.Label,
		BasicPrices:  pricelistdomain.AmountMap(p.BasicPrices),
		SpotPrices:   pricelistdomain.AmountMap(p.SpotPrices),
		OptionPrices: pricelistdomain.AmountMap(p.OptionPrices),
		CreatedAt:    p.CreatedAt,
	}
}
