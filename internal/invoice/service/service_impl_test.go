package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	billingdomain "github.com/hoikulink/tsumugi/internal/billing/domain"
	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
	childrepository "github.com/hoikulink/tsumugi/internal/child/repository"
	"github.com/hoikulink/tsumugi/internal/clock"
	"github.com/hoikulink/tsumugi/internal/config"
	invoicedomain "github.com/hoikulink/tsumugi/internal/invoice/domain"
	"github.com/hoikulink/tsumugi/internal/invoice/repository"
	usagedomain "github.com/hoikulink/tsumugi/internal/usage/domain"
	usagerepository "github.com/hoikulink/tsumugi/internal/usage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      invoicedomain.Service
	fake     *clock.FakeClock
	guardian childdomain.Actor
	admin    childdomain.Actor
	child    *childdomain.Child
	other    *childdomain.Child
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&childdomain.Child{},
		&usagedomain.BasicUsage{},
		&invoicedomain.Invoice{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))

	guardianID := node.Generate()
	child := &childdomain.Child{ID: node.Generate(), GuardianID: guardianID, Name: "Aoi"}
	other := &childdomain.Child{ID: node.Generate(), GuardianID: node.Generate(), Name: "Ren"}
	require.NoError(t, db.Create(child).Error)
	require.NoError(t, db.Create(other).Error)

	portal := config.DefaultPortalConfig()
	portal.Invoice.DefaultNote = "Bank transfer by the 27th."

	svc := New(Params{
		DB:             db,
		Log:            zap.NewNop(),
		GenID:          node,
		Clock:          fake,
		Repo:           repository.Provide(),
		ChildRepo:      childrepository.Provide(),
		BasicUsageRepo: usagerepository.ProvideBasicUsage(),
		Portal:         config.NewStaticPortalConfigHolder(portal),
	})

	return &fixture{
		db:       db,
		svc:      svc,
		fake:     fake,
		guardian: childdomain.Actor{UserID: guardianID},
		admin:    childdomain.Actor{UserID: node.Generate(), Admin: true},
		child:    child,
		other:    other,
	}
}

func aprilBreakdown() billingdomain.Breakdown {
	return billingdomain.Breakdown{
		Basic: billingdomain.Line{Quantity: 5, UnitPrice: 55000, Amount: 55000},
		Spot:  billingdomain.Line{Quantity: 3, UnitPrice: 8000, Amount: 24000},
		Options: map[string]billingdomain.Line{
			"lunch": {Quantity: 5, UnitPrice: 600, Amount: 3000},
		},
		Subtotal: 82000,
		Tax:      8200,
		Total:    90200,
	}
}

func finalizeRequest(childID snowflake.ID) invoicedomain.FinalizeRequest {
	return invoicedomain.FinalizeRequest{
		ChildID:        childID.String(),
		Month:          "2026-04",
		PriceListLabel: "2026_standard",
		Breakdown:      aprilBreakdown(),
		Total:          90200,
		WeeklyCount:    5,
	}
}

func TestFinalize_RoundTrip(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Finalize(context.Background(), finalizeRequest(f.child.ID))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "2026-04", resp.Month)
	assert.Equal(t, int64(90200), resp.Total)
	assert.Equal(t, int64(82000), resp.Breakdown.Subtotal)
	assert.WithinDuration(t, f.fake.Now(), resp.FinalizedAt, time.Second)
	// Blank note picks up the configured default.
	assert.Equal(t, "Bank transfer by the 27th.", resp.Note)
}

func TestFinalize_ReFinalizeKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Finalize(ctx, finalizeRequest(f.child.ID))
	require.NoError(t, err)

	f.fake.Advance(48 * time.Hour)

	req := finalizeRequest(f.child.ID)
	req.Breakdown.Spot = billingdomain.Line{Quantity: 4, UnitPrice: 8000, Amount: 32000}
	req.Breakdown.Subtotal = 90000
	req.Breakdown.Tax = 9000
	req.Breakdown.Total = 99000
	req.Total = 99000
	req.Note = "Corrected spot count."

	second, err := f.svc.Finalize(ctx, req)
	require.NoError(t, err)

	// Same row survives: identity kept, content and finalized_at replaced.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(99000), second.Total)
	assert.Equal(t, "Corrected spot count.", second.Note)
	assert.True(t, second.FinalizedAt.After(first.FinalizedAt))

	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFinalize_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := finalizeRequest(f.child.ID)
	req.PriceListLabel = "  "
	_, err := f.svc.Finalize(ctx, req)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidLabel)

	req = finalizeRequest(f.child.ID)
	req.Total = 90201
	_, err = f.svc.Finalize(ctx, req)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidTotal)

	req = finalizeRequest(f.child.ID)
	req.Month = "2026-13"
	_, err = f.svc.Finalize(ctx, req)
	assert.Error(t, err)

	req = finalizeRequest(f.admin.UserID) // no such child
	_, err = f.svc.Finalize(ctx, req)
	assert.ErrorIs(t, err, childdomain.ErrNotFound)
}

func TestGet_ReturnsFrozenRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Finalize(ctx, finalizeRequest(f.child.ID))
	require.NoError(t, err)

	// Later data changes must not leak into the stored invoice.
	require.NoError(t, f.db.Create(&usagedomain.BasicUsage{
		ID: f.child.ID, ChildID: f.child.ID, Month: "2026-04", WeeklyCount: 3,
		Weekdays: datatypes.JSON(`["monday","wednesday","friday"]`),
	}).Error)

	got, err := f.svc.Get(ctx, f.guardian, f.child.ID.String(), "2026-04")
	require.NoError(t, err)
	assert.Equal(t, int64(90200), got.Total)
	assert.Equal(t, 5, got.WeeklyCount)
	assert.Equal(t, aprilBreakdown(), got.Breakdown)
}

func TestGet_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := finalizeRequest(f.other.ID)
	_, err := f.svc.Finalize(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.guardian, f.other.ID.String(), "2026-04")
	assert.ErrorIs(t, err, childdomain.ErrForbidden)

	_, err = f.svc.Get(ctx, f.admin, f.other.ID.String(), "2026-04")
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, f.admin, f.child.ID.String(), "2026-04")
	assert.ErrorIs(t, err, invoicedomain.ErrNotFound)
}

func TestListForGuardian(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Finalize(ctx, finalizeRequest(f.child.ID))
	require.NoError(t, err)
	march := finalizeRequest(f.child.ID)
	march.Month = "2026-03"
	_, err = f.svc.Finalize(ctx, march)
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, finalizeRequest(f.other.ID))
	require.NoError(t, err)

	result, err := f.svc.ListForGuardian(ctx, f.guardian)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Aoi", result[0].ChildName)
	require.Len(t, result[0].Invoices, 2)
	assert.Equal(t, "2026-04", result[0].Invoices[0].Month)
	assert.Equal(t, "2026-03", result[0].Invoices[1].Month)
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	// Both children were active in April; only Aoi has an invoice.
	for _, c := range []*childdomain.Child{f.child, f.other} {
		require.NoError(t, f.db.Create(&usagedomain.BasicUsage{
			ID: node.Generate(), ChildID: c.ID, Month: "2026-04", WeeklyCount: 5,
			Weekdays: datatypes.JSON(`["monday","tuesday","wednesday","thursday","friday"]`),
		}).Error)
	}
	_, err = f.svc.Finalize(ctx, finalizeRequest(f.child.ID))
	require.NoError(t, err)

	rows, err := f.svc.Overview(ctx, "2026-04", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byName := make(map[string]invoicedomain.OverviewRow, len(rows))
	for _, r := range rows {
		byName[r.ChildName] = r
	}
	require.True(t, byName["Aoi"].Confirmed)
	require.NotNil(t, byName["Aoi"].Total)
	assert.Equal(t, int64(90200), *byName["Aoi"].Total)
	assert.False(t, byName["Ren"].Confirmed)
	assert.Nil(t, byName["Ren"].Total)

	// Name filter narrows the listing.
	rows, err = f.svc.Overview(ctx, "2026-04", "Ren")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ren", rows[0].ChildName)
}
