package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/hoikulink/tsumugi/internal/billing/domain"
	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
	"github.com/hoikulink/tsumugi/internal/month"
	pricelistdomain "github.com/hoikulink/tsumugi/internal/pricelist/domain"
	reservationdomain "github.com/hoikulink/tsumugi/internal/reservation/domain"
	usagedomain "github.com/hoikulink/tsumugi/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	ChildRepo       childdomain.Repository
	PriceListRepo   pricelistdomain.Repository
	ReservationRepo reservationdomain.Repository
	BasicUsageRepo  usagedomain.BasicUsageRepository
	OptionUsageRepo usagedomain.OptionUsageRepository
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	childRepo       childdomain.Repository
	priceListRepo   pricelistdomain.Repository
	reservationRepo reservationdomain.Repository
	basicUsageRepo  usagedomain.BasicUsageRepository
	optionUsageRepo usagedomain.OptionUsageRepository
}

func New(p Params) billingdomain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("billing.service"),
		childRepo:       p.ChildRepo,
		priceListRepo:   p.PriceListRepo,
		reservationRepo: p.ReservationRepo,
		basicUsageRepo:  p.BasicUsageRepo,
		optionUsageRepo: p.OptionUsageRepo,
	}
}

// Preview reads the current price list and the month's aggregates, then runs
// the pure calculator. No snapshot transaction wraps the reads; the small
// staleness window between them is accepted.
func (s *Service) Preview(ctx context.Context, actor childdomain.Actor, childID, monthValue string) (*billingdomain.Preview, error) {
	m, err := month.Parse(monthValue)
	if err != nil {
		return nil, err
	}
	id, err := snowflake.ParseString(strings.TrimSpace(childID))
	if err != nil {
		return nil, reservationdomain.ErrInvalidChildID
	}
	child, err := s.childRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, childdomain.ErrNotFound
	}
	if !actor.CanAccess(child) {
		return nil, childdomain.ErrForbidden
	}

	priceList, err := s.priceListRepo.FindCurrent(ctx, s.db)
	if err != nil {
		s.log.Error("price list read failed",
			zap.String("child_id", child.ID.String()),
			zap.String("month", m.String()),
			zap.String("op", "preview"),
			zap.Error(err),
		)
		return nil, err
	}
	if priceList == nil {
		return nil, pricelistdomain.ErrNotFound
	}

	basicUsage, err := s.basicUsageRepo.FindByChildMonth(ctx, s.db, child.ID, m.String())
	if err != nil {
		return nil, err
	}
	if basicUsage == nil {
		return nil, usagedomain.ErrBasicUsageNotFound
	}

	spotCount, err := s.reservationRepo.CountSpotByChildRange(ctx, s.db, child.ID, m.Start(), m.End())
	if err != nil {
		return nil, err
	}
	optionUsages, err := s.optionUsageRepo.ListByChildMonth(ctx, s.db, child.ID, m.String())
	if err != nil {
		return nil, err
	}

	breakdown := billingdomain.Compute(priceList, basicUsage, spotCount, optionUsages)

	return &billingdomain.Preview{
		ChildID:        child.ID.String(),
		Month:          m.String(),
		PriceListLabel: priceList.Label,
		WeeklyCount:    basicUsage.WeeklyCount,
		Breakdown:      breakdown,
		Total:          breakdown.Total,
	}, nil
}
