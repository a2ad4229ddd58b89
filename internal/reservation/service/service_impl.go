package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
	"github.com/hoikulink/tsumugi/internal/clock"
	"github.com/hoikulink/tsumugi/internal/config"
	"github.com/hoikulink/tsumugi/internal/month"
	reservationdomain "github.com/hoikulink/tsumugi/internal/reservation/domain"
	usagedomain "github.com/hoikulink/tsumugi/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	Repo            reservationdomain.Repository
	ChildRepo       childdomain.Repository
	BasicUsageRepo  usagedomain.BasicUsageRepository
	OptionUsageRepo usagedomain.OptionUsageRepository
	Portal          *config.PortalConfigHolder
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	clock           clock.Clock
	repo            reservationdomain.Repository
	childRepo       childdomain.Repository
	basicUsageRepo  usagedomain.BasicUsageRepository
	optionUsageRepo usagedomain.OptionUsageRepository
	portal          *config.PortalConfigHolder
}

func New(p Params) reservationdomain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("reservation.service"),
		genID:           p.GenID,
		clock:           p.Clock,
		repo:            p.Repo,
		childRepo:       p.ChildRepo,
		basicUsageRepo:  p.BasicUsageRepo,
		optionUsageRepo: p.OptionUsageRepo,
		portal:          p.Portal,
	}
}

// Replace swaps the whole child-month in one transaction: old reservations
// and options out, declared basic usage and the new set in, option
// aggregates re-derived from what was written. Any failure rolls the month
// back to exactly its previous state.
func (s *Service) Replace(ctx context.Context, actor childdomain.Actor, req reservationdomain.ReplaceRequest) (*reservationdomain.MonthResponse, error) {
	m, err := month.Parse(req.Month)
	if err != nil {
		return nil, err
	}
	child, err := s.authorizeChild(ctx, actor, req.ChildID)
	if err != nil {
		return nil, err
	}

	weekdays, err := validateBasicUsage(req.BasicUsage)
	if err != nil {
		return nil, err
	}

	items, err := s.buildReservations(child.ID, m, req.Reservations)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	basicUsage := &usagedomain.BasicUsage{
		ID:          s.genID.Generate(),
		ChildID:     child.ID,
		Month:       m.String(),
		WeeklyCount: req.BasicUsage.WeeklyCount,
		Weekdays:    weekdays,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteByChildRange(ctx, tx, child.ID, m.Start(), m.End()); err != nil {
			return err
		}
		if err := s.basicUsageRepo.Upsert(ctx, tx, basicUsage); err != nil {
			return err
		}
		if err := s.repo.BulkInsert(ctx, tx, items); err != nil {
			return err
		}
		return s.refreshAggregates(ctx, tx, child.ID, m)
	})
	if err != nil {
		s.log.Error("month replace failed",
			zap.String("child_id", child.ID.String()),
			zap.String("month", m.String()),
			zap.String("op", "replace"),
			zap.Error(err),
		)
		return nil, err
	}

	return s.monthResponse(ctx, child.ID, m)
}

// Create adds one reservation and re-derives the month's aggregates so they
// never drift from the true option set.
func (s *Service) Create(ctx context.Context, actor childdomain.Actor, req reservationdomain.CreateRequest) (*reservationdomain.Response, error) {
	child, err := s.authorizeChild(ctx, actor, req.ChildID)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	item, err := s.buildReservation(child.ID, date, req.Kind, req.Options)
	if err != nil {
		return nil, err
	}

	if err := s.checkCutoff(actor, date); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByChildDate(ctx, s.db, child.ID, date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, reservationdomain.ErrDuplicateDate
	}

	m := month.FromDate(date)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.BulkInsert(ctx, tx, []reservationdomain.Reservation{*item}); err != nil {
			return err
		}
		return s.refreshAggregates(ctx, tx, child.ID, m)
	})
	if err != nil {
		s.log.Error("reservation create failed",
			zap.String("child_id", child.ID.String()),
			zap.String("month", m.String()),
			zap.String("op", "create"),
			zap.Error(err),
		)
		return nil, err
	}

	return toResponse(item), nil
}

// Update edits or moves one reservation; aggregates are re-derived for the
// original month and, when the date crosses a month boundary, the new one.
func (s *Service) Update(ctx context.Context, actor childdomain.Actor, id string, req reservationdomain.UpdateRequest) (*reservationdomain.Response, error) {
	item, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	oldMonth := month.FromDate(item.Date)
	if err := s.checkCutoff(actor, item.Date); err != nil {
		return nil, err
	}

	if req.NewDate != nil {
		date, err := parseDate(*req.NewDate)
		if err != nil {
			return nil, err
		}
		if err := s.checkCutoff(actor, date); err != nil {
			return nil, err
		}
		if !date.Equal(item.Date) {
			exists, err := s.repo.ExistsByChildDate(ctx, s.db, item.ChildID, date)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, reservationdomain.ErrDuplicateDate
			}
			item.Date = date
		}
	}
	if req.Kind != nil {
		kind, err := parseKind(*req.Kind)
		if err != nil {
			return nil, err
		}
		item.Kind = kind
	}
	if req.Options != nil {
		options, err := s.buildOptions(item.ID, *req.Options)
		if err != nil {
			return nil, err
		}
		item.Options = options
	}
	item.UpdatedAt = s.clock.Now()

	newMonth := month.FromDate(item.Date)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, item); err != nil {
			return err
		}
		if err := s.refreshAggregates(ctx, tx, item.ChildID, oldMonth); err != nil {
			return err
		}
		if newMonth != oldMonth {
			return s.refreshAggregates(ctx, tx, item.ChildID, newMonth)
		}
		return nil
	})
	if err != nil {
		s.log.Error("reservation update failed",
			zap.String("child_id", item.ChildID.String()),
			zap.String("month", oldMonth.String()),
			zap.String("op", "update"),
			zap.Error(err),
		)
		return nil, err
	}

	return toResponse(item), nil
}

// Delete removes one reservation and re-derives its month's aggregates.
func (s *Service) Delete(ctx context.Context, actor childdomain.Actor, id string) error {
	item, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.checkCutoff(actor, item.Date); err != nil {
		return err
	}
	m := month.FromDate(item.Date)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteByID(ctx, tx, item.ID); err != nil {
			return err
		}
		return s.refreshAggregates(ctx, tx, item.ChildID, m)
	})
	if err != nil {
		s.log.Error("reservation delete failed",
			zap.String("child_id", item.ChildID.String()),
			zap.String("month", m.String()),
			zap.String("op", "delete"),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) ListMonth(ctx context.Context, actor childdomain.Actor, childID, monthValue string) (*reservationdomain.MonthResponse, error) {
	m, err := month.Parse(monthValue)
	if err != nil {
		return nil, err
	}
	child, err := s.authorizeChild(ctx, actor, childID)
	if err != nil {
		return nil, err
	}
	return s.monthResponse(ctx, child.ID, m)
}

func (s *Service) authorizeChild(ctx context.Context, actor childdomain.Actor, childID string) (*childdomain.Child, error) {
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
	return child, nil
}

// checkCutoff enforces the guardian change window on single-reservation
// edits. Admins and whole-month submissions are exempt.
func (s *Service) checkCutoff(actor childdomain.Actor, date time.Time) error {
	if actor.Admin {
		return nil
	}
	cutoff := s.portal.Get().Reservation.CutoffDays
	if cutoff <= 0 {
		return nil
	}
	deadline := s.clock.Now().AddDate(0, 0, cutoff)
	if date.Before(deadline) {
		return reservationdomain.ErrCutoffPassed
	}
	return nil
}

func (s *Service) loadOwned(ctx context.Context, actor childdomain.Actor, id string) (*reservationdomain.Reservation, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, reservationdomain.ErrNotFound
	}
	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, reservationdomain.ErrNotFound
	}
	child, err := s.childRepo.FindByID(ctx, s.db, item.ChildID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, childdomain.ErrNotFound
	}
	if !actor.CanAccess(child) {
		return nil, childdomain.ErrForbidden
	}
	return item, nil
}

// refreshAggregates re-scans every reservation in the month and rewrites the
// durable option totals. Deliberately a full re-scan, never an incremental
// adjustment.
func (s *Service) refreshAggregates(ctx context.Context, tx *gorm.DB, childID snowflake.ID, m month.Month) error {
	items, err := s.repo.ListByChildRange(ctx, tx, childID, m.Start(), m.End())
	if err != nil {
		return err
	}
	summary := usagedomain.Summarize(items)

	now := s.clock.Now()
	rows := make([]usagedomain.OptionUsage, 0, len(summary.Options))
	for _, t := range reservationdomain.KnownOptionTypes() {
		rows = append(rows, usagedomain.OptionUsage{
			ID:         s.genID.Generate(),
			ChildID:    childID,
			Month:      m.String(),
			OptionType: string(t),
			Count:      summary.Options[t],
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return s.optionUsageRepo.ReplaceForMonth(ctx, tx, rows)
}

func (s *Service) buildReservations(childID snowflake.ID, m month.Month, inputs []reservationdomain.ReservationInput) ([]reservationdomain.Reservation, error) {
	items := make([]reservationdomain.Reservation, 0, len(inputs))
	seen := make(map[time.Time]struct{}, len(inputs))
	for _, input := range inputs {
		date, err := parseDate(input.Date)
		if err != nil {
			return nil, err
		}
		if !m.Contains(date) {
			return nil, reservationdomain.ErrDateOutsideMonth
		}
		if _, dup := seen[date]; dup {
			return nil, reservationdomain.ErrDuplicateDate
		}
		seen[date] = struct{}{}

		item, err := s.buildReservation(childID, date, input.Kind, input.Options)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (s *Service) buildReservation(childID snowflake.ID, date time.Time, kindValue string, options []reservationdomain.OptionInput) (*reservationdomain.Reservation, error) {
	kind, err := parseKind(kindValue)
	if err != nil {
		return nil, err
	}
	id := s.genID.Generate()
	opts, err := s.buildOptions(id, options)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	return &reservationdomain.Reservation{
		ID:        id,
		ChildID:   childID,
		Date:      date,
		Kind:      kind,
		Options:   opts,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Service) buildOptions(reservationID snowflake.ID, inputs []reservationdomain.OptionInput) ([]reservationdomain.Option, error) {
	options := make([]reservationdomain.Option, 0, len(inputs))
	for _, input := range inputs {
		optionType := reservationdomain.OptionType(strings.TrimSpace(input.Type))
		if !optionType.Known() {
			return nil, reservationdomain.ErrInvalidOption
		}
		if input.Count < 0 {
			return nil, reservationdomain.ErrInvalidOption
		}
		count := input.Count
		if count == 0 {
			count = 1
		}
		options = append(options, reservationdomain.Option{
			ID:            s.genID.Generate(),
			ReservationID: reservationID,
			OptionType:    optionType,
			Count:         count,
			PickupTime:    input.Time,
			Label:         input.Label,
			CreatedAt:     s.clock.Now(),
		})
	}
	return options, nil
}

func (s *Service) monthResponse(ctx context.Context, childID snowflake.ID, m month.Month) (*reservationdomain.MonthResponse, error) {
	items, err := s.repo.ListByChildRange(ctx, s.db, childID, m.Start(), m.End())
	if err != nil {
		return nil, err
	}
	basicUsage, err := s.basicUsageRepo.FindByChildMonth(ctx, s.db, childID, m.String())
	if err != nil {
		return nil, err
	}

	resp := &reservationdomain.MonthResponse{
		ChildID:      childID.String(),
		Month:        m.String(),
		Weekdays:     []string{},
		Reservations: make([]reservationdomain.Response, 0, len(items)),
	}
	if basicUsage != nil {
		resp.WeeklyCount = basicUsage.WeeklyCount
		var weekdays []string
		if err := json.Unmarshal(basicUsage.Weekdays, &weekdays); err == nil {
			resp.Weekdays = weekdays
		}
	}
	for i := range items {
		resp.Reservations = append(resp.Reservations, *toResponse(&items[i]))
	}
	return resp, nil
}

func toResponse(item *reservationdomain.Reservation) *reservationdomain.Response {
	options := make([]reservationdomain.OptionResponse, 0, len(item.Options))
	for _, opt := range item.Options {
		options = append(options, reservationdomain.OptionResponse{
			Type:  opt.OptionType,
			Count: opt.Count,
			Time:  opt.PickupTime,
			Label: opt.Label,
		})
	}
	return &reservationdomain.Response{
		ID:        item.ID.String(),
		ChildID:   item.ChildID.String(),
		Date:      item.Date.Format(reservationdomain.DateLayout),
		Kind:      item.Kind,
		Options:   options,
		CreatedAt: item.CreatedAt,
	}
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(reservationdomain.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, reservationdomain.ErrInvalidDate
	}
	return t.UTC(), nil
}

func parseKind(value string) (reservationdomain.Kind, error) {
	switch reservationdomain.Kind(strings.ToLower(strings.TrimSpace(value))) {
	case reservationdomain.KindBasic:
		return reservationdomain.KindBasic, nil
	case reservationdomain.KindSpot:
		return reservationdomain.KindSpot, nil
	default:
		return "", reservationdomain.ErrInvalidKind
	}
}

func validateBasicUsage(input reservationdomain.BasicUsageInput) (datatypes.JSON, error) {
	if input.WeeklyCount < 0 || input.WeeklyCount > 7 {
		return nil, usagedomain.ErrInvalidWeeklyCount
	}
	weekdays := input.Weekdays
	if weekdays == nil {
		weekdays = []string{}
	}
	for _, day := range weekdays {
		if !usagedomain.ValidWeekday(day) {
			return nil, usagedomain.ErrInvalidWeekday
		}
	}
	raw, err := json.Marshal(weekdays)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
