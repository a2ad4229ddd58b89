package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
	"github.com/hoikulink/tsumugi/internal/clock"
	"github.com/hoikulink/tsumugi/internal/config"
	invoicedomain "github.com/hoikulink/tsumugi/internal/invoice/domain"
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

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           invoicedomain.Repository
	ChildRepo      childdomain.Repository
	BasicUsageRepo usagedomain.BasicUsageRepository
	Portal         *config.PortalConfigHolder
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	repo           invoicedomain.Repository
	childRepo      childdomain.Repository
	basicUsageRepo usagedomain.BasicUsageRepository
	portal         *config.PortalConfigHolder
}

func New(p Params) invoicedomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("invoice.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		childRepo:      p.ChildRepo,
		basicUsageRepo: p.BasicUsageRepo,
		portal:         p.Portal,
	}
}

// Finalize upserts the frozen invoice in a single atomic write. Concurrent
// finalize calls for the same child-month cannot interleave: the last writer
// wins whole, never field by field.
func (s *Service) Finalize(ctx context.Context, req invoicedomain.FinalizeRequest) (*invoicedomain.Response, error) {
	m, err := month.Parse(req.Month)
	if err != nil {
		return nil, err
	}
	childID, err := snowflake.ParseString(strings.TrimSpace(req.ChildID))
	if err != nil {
		return nil, reservationdomain.ErrInvalidChildID
	}
	if strings.TrimSpace(req.PriceListLabel) == "" {
		return nil, invoicedomain.ErrInvalidLabel
	}
	if req.Total < 0 || req.Total != req.Breakdown.Total {
		return nil, invoicedomain.ErrInvalidTotal
	}

	child, err := s.childRepo.FindByID(ctx, s.db, childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, childdomain.ErrNotFound
	}

	raw, err := json.Marshal(req.Breakdown)
	if err != nil {
		return nil, err
	}

	note := req.Note
	if strings.TrimSpace(note) == "" {
		note = s.portal.Get().Invoice.DefaultNote
	}

	now := s.clock.Now()
	entity := &invoicedomain.Invoice{
		ID:             s.genID.Generate(),
		ChildID:        childID,
		Month:          m.String(),
		PriceListLabel: req.PriceListLabel,
		Breakdown:      datatypes.JSON(raw),
		Subtotal:       req.Breakdown.Subtotal,
		Tax:            req.Breakdown.Tax,
		Total:          req.Total,
		Note:           note,
		WeeklyCount:    req.WeeklyCount,
		FinalizedAt:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Upsert(ctx, s.db, entity); err != nil {
		s.log.Error("invoice finalize failed",
			zap.String("child_id", childID.String()),
			zap.String("month", m.String()),
			zap.String("op", "finalize"),
			zap.Error(err),
		)
		return nil, err
	}

	// Re-read so a re-finalization returns the surviving row's identity.
	stored, err := s.repo.FindByChildMonth(ctx, s.db, childID, m.String())
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, invoicedomain.ErrNotFound
	}
	return toResponse(stored)
}

func (s *Service) Get(ctx context.Context, actor childdomain.Actor, childID, monthValue string) (*invoicedomain.Response, error) {
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

	stored, err := s.repo.FindByChildMonth(ctx, s.db, id, m.String())
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, invoicedomain.ErrNotFound
	}
	return toResponse(stored)
}

func (s *Service) ListForGuardian(ctx context.Context, actor childdomain.Actor) ([]invoicedomain.ChildInvoices, error) {
	children, err := s.childRepo.ListByGuardian(ctx, s.db, actor.UserID)
	if err != nil {
		return nil, err
	}

	result := make([]invoicedomain.ChildInvoices, 0, len(children))
	for _, child := range children {
		invoices, err := s.repo.ListByChild(ctx, s.db, child.ID)
		if err != nil {
			return nil, err
		}
		summaries := make([]invoicedomain.InvoiceSummary, 0, len(invoices))
		for _, inv := range invoices {
			summaries = append(summaries, invoicedomain.InvoiceSummary{
				ID:          inv.ID.String(),
				Month:       inv.Month,
				Total:       inv.Total,
				FinalizedAt: inv.FinalizedAt,
			})
		}
		result = append(result, invoicedomain.ChildInvoices{
			ChildID:   child.ID.String(),
			ChildName: child.Name,
			Invoices:  summaries,
		})
	}
	return result, nil
}

// Overview joins children active in the month (those with a basic usage
// record) against finalized invoices, for the admin billing list.
func (s *Service) Overview(ctx context.Context, monthValue, name string) ([]invoicedomain.OverviewRow, error) {
	m, err := month.Parse(monthValue)
	if err != nil {
		return nil, err
	}

	children, err := s.childRepo.ListByName(ctx, s.db, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	usages, err := s.basicUsageRepo.ListByMonth(ctx, s.db, m.String())
	if err != nil {
		return nil, err
	}
	invoices, err := s.repo.ListByMonth(ctx, s.db, m.String())
	if err != nil {
		return nil, err
	}

	active := make(map[snowflake.ID]struct{}, len(usages))
	for _, u := range usages {
		active[u.ChildID] = struct{}{}
	}
	byChild := make(map[snowflake.ID]*invoicedomain.Invoice, len(invoices))
	for i := range invoices {
		byChild[invoices[i].ChildID] = &invoices[i]
	}

	rows := make([]invoicedomain.OverviewRow, 0, len(children))
	for _, child := range children {
		if _, ok := active[child.ID]; !ok {
			continue
		}
		row := invoicedomain.OverviewRow{
			ChildID:   child.ID.String(),
			ChildName: child.Name,
		}
		if inv, ok := byChild[child.ID]; ok {
			row.Confirmed = true
			total := inv.Total
			row.Total = &total
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func toResponse(inv *invoicedomain.Invoice) (*invoicedomain.Response, error) {
	resp := &invoicedomain.Response{
		ID:             inv.ID.String(),
		ChildID:        inv.ChildID.String(),
		Month:          inv.Month,
		PriceListLabel: inv.PriceListLabel,
		WeeklyCount:    inv.WeeklyCount,
		Note:           inv.Note,
		Total:          inv.Total,
		FinalizedAt:    inv.FinalizedAt,
	}
	if err := json.Unmarshal(inv.Breakdown, &resp.Breakdown); err != nil {
		return nil, err
	}
	return resp, nil
}
