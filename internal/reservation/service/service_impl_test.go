package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
	childrepository "github.com/hoikulink/tsumugi/internal/child/repository"
	"github.com/hoikulink/tsumugi/internal/clock"
	"github.com/hoikulink/tsumugi/internal/config"
	reservationdomain "github.com/hoikulink/tsumugi/internal/reservation/domain"
	"github.com/hoikulink/tsumugi/internal/reservation/repository"
	usagedomain "github.com/hoikulink/tsumugi/internal/usage/domain"
	usagerepository "github.com/hoikulink/tsumugi/internal/usage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	fake     *clock.FakeClock
	guardian childdomain.Actor
	admin    childdomain.Actor
	child    *childdomain.Child
	other    *childdomain.Child
}

func newFixture(t *testing.T, portal config.PortalConfig) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&childdomain.Child{},
		&reservationdomain.Reservation{},
		&reservationdomain.Option{},
		&usagedomain.BasicUsage{},
		&usagedomain.OptionUsage{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC))

	guardianID := node.Generate()
	otherGuardianID := node.Generate()
	child := &childdomain.Child{ID: node.Generate(), GuardianID: guardianID, Name: "Aoi"}
	other := &childdomain.Child{ID: node.Generate(), GuardianID: otherGuardianID, Name: "Ren"}
	require.NoError(t, db.Create(child).Error)
	require.NoError(t, db.Create(other).Error)

	svc := New(Params{
		DB:              db,
		Log:             zap.NewNop(),
		GenID:           node,
		Clock:           fake,
		Repo:            repository.Provide(),
		ChildRepo:       childrepository.Provide(),
		BasicUsageRepo:  usagerepository.ProvideBasicUsage(),
		OptionUsageRepo: usagerepository.ProvideOptionUsage(),
		Portal:          config.NewStaticPortalConfigHolder(portal),
	})

	return &fixture{
		db:       db,
		svc:      svc.(*Service),
		fake:     fake,
		guardian: childdomain.Actor{UserID: guardianID},
		admin:    childdomain.Actor{UserID: node.Generate(), Admin: true},
		child:    child,
		other:    other,
	}
}

func aprilReplaceRequest(childID snowflake.ID) reservationdomain.ReplaceRequest {
	return reservationdomain.ReplaceRequest{
		ChildID: childID.String(),
		Month:   "2026-04",
		BasicUsage: reservationdomain.BasicUsageInput{
			WeeklyCount: 5,
			Weekdays:    []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		},
		Reservations: []reservationdomain.ReservationInput{
			{Date: "2026-04-01", Kind: "basic", Options: []reservationdomain.OptionInput{
				{Type: "lunch"},
				{Type: "school_car", Count: 2},
			}},
			{Date: "2026-04-02", Kind: "spot", Options: []reservationdomain.OptionInput{
				{Type: "lunch"},
			}},
			{Date: "2026-04-03", Kind: "spot"},
		},
	}
}

func optionCounts(t *testing.T, f *fixture, childID snowflake.ID, month string) map[string]int64 {
	t.Helper()
	var rows []usagedomain.OptionUsage
	require.NoError(t, f.db.Where("child_id = ? AND month = ?", childID, month).Find(&rows).Error)
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.OptionType] = r.Count
	}
	return counts
}

func TestReplace_PersistsMonth(t *testing.T) {
	f := newFixture(t, config.DefaultPortalConfig())
	ctx := context.Background()

	resp, err := f.svc.Replace(ctx, f.guardian, aprilReplaceRequest(f.child.ID))
	require.NoError(t, err)
	assert.Equal(t, "2026-04", resp.Month)
	assert.Equal(t, 5, resp.WeeklyCount)
	assert.Len(t, resp.Reservations, 3)

	// One aggregate row per known option type, zeros included.
	counts := optionCounts(t, f, f.child.ID, "2026-04")
	assert.Len(t, counts, len(reservationdomain.KnownOptionTypes()))
	assert.Equal(t, int64(2), counts["lunch"])
	assert.Equal(t, int64(2), counts["school_car"])
	assert.Equal(t, int64(0), counts["dinner"])
	assert.Equal(t, int64(0), counts["home_car"])
	assert.Equal(t, int64(0), counts["lesson_car"])

	var usage usagedomain.BasicUsage
	require.NoError(t, f.db.Where("child_id = ? AND month = ?", f.child.ID, "2026-04").First(&usage).Error)
	assert.Equal(t, 5, usage.WeeklyCount)
}

func TestReplace_OverwritesPreviousSubmission(t *testing.T) {
	f := newFixture(t, config.DefaultPortalConfig())
	ctx := context.Background()

	_, err := f.svc.Replace(ctx, f.guardian, aprilReplaceRequest(f.child.ID))
	require.NoError(t, err)

	second := reservationdomain.ReplaceRequest{
		ChildID:    f.child.ID.String(),
		Month:      "2026-04",
		BasicUsage: reservationdomain.BasicUsageInput{WeeklyCount: 3, Weekdays: []string{"monday", "wednesday", "friday"}},
		Reservations: []reservationdomain.ReservationInput{
			{Date: "2026-04-10", Kind: "basic", Options: []reservationdomain.OptionInput{
				{Type: "dinner"},
			}},
		},
	}
	resp, err := f.svc.Replace(ctx, f.guardian, second)
	require.NoError(t, err)
	require.Len(t, resp.Reservations, 1)
	assert.Equal(t, "2026-04-10", resp.Reservations[0].Date)

	var count int64
	require.NoError(t, f.db.Model(&reservationdomain.Reservation{}).
		Where("child_id = ?", f.child.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	counts := optionCounts(t, f, f.child.ID, "2026-04")
	assert.Equal(t, int64(0), counts["lunch"])
	assert.Equal(t, int64(1), counts["dinner"])
}

func TestReplace_DuplicateDateInBatch(t *testing.T) {
	f := newFixture(t, config.DefaultPortalConfig())

	req := aprilReplaceRequest(f.child.ID)
	req.Reservations = append(req.Reservations, reservationdomain.ReservationInput{
		Date: "2026-04-01", Kind: "spot",
	})

	_, err := f.svc.Replace(context.Background(), f.guardian, req)
	assert.ErrorIs(t, err, reservationdomain.ErrDuplicateDate)

	var count int64
	require.NoError(t, f.db.Model(&reservationdomain.Reservation{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestReplace_Validation(t *testing.T) {
	f := newFixture(t, config.DefaultPortalConfig())
	ctx := context.Background()

	req := aprilReplaceRequest(f.child.ID)
	req.Month = "April 2026"
	_, err := f.svc.Replace(ctx, f.guardian, req)
	assert.Error(t, err)

	req = aprilReplaceRequest(f.child.ID)
	req.BasicUsage.WeeklyCount = 8
	_, err = f.svc.Replace(ctx, f.guardian, req)
	assert.ErrorIs(t, err, usagedomain.ErrInvalidWeeklyCount)

	req = aprilReplaceRequest(f.child.ID)
	req.BasicUsage.Weekdays = []string{"funday"}
	_, err = f.svc.Replace(ctx, f.guardian, req)
	assert.ErrorIs(t, err, usagedomain.ErrInvalidWeekday)

	req = aprilReplaceRequest(f.child.ID)
	req.Reservations[0].Date = "2026-05-01"
	_, err = f.svc.Replace(ctx, f.guardian, req)
	assert.ErrorIs(t, err, reservationdomain.ErrDateOutsideMonth)

	req = aprilReplaceRequest(f.child.ID)
	req.Reservations[0].Kind = "overnight"
	_, err = f.svc.Replace(ctx, f.guardian, req)
	assert.ErrorIs(t, err, reservationdomain.ErrInvalidKind)

	req = aprilReplaceRequest(f.child.ID)
	req.Reservations[0].Options[0].Type = "breakfast"
	_, err = f.svc.Replace(ctx, f.guardian, req)
	assert.ErrorIs(t, err, reservationdomain.ErrInvalidOption)
}

func TestReplace_Ownership(t *testing.T) {
	f := newFixture(t, config.DefaultPortalConfig())
	ctx := context.Background()

	_, err := f.svc.Replace(ctx, f.guardian, aprilReplaceRequest(f.other.ID))
	assert.ErrorIs(t, err, childdomain.ErrForbidden)

	// Admins can act on any child.
	_, err = f.svc.Replace(ctx, f.admin, aprilReplaceRequest(f.other.ID))
	assert.NoError(t, err)
}

type failingOptionUsageRepo struct {
	usagedomain.OptionUsageRepository
}

var errAggregateWrite = errors.New("aggregate write refused")

func (r *failingOptionUsageRepo) ReplaceForMonth(ctx context.Context, db *gorm.DB, rows []usagedomain.OptionUsage) error {
	return errAggregateWrite
}

func TestReplace_RollsBackOnAggregateFailure(t *testing.T) {
	f := newFixture(t, config.DefaultPortalConfig())
	ctx := context.Background()

	// Seed a good month first.
	_, err := f.svc.Replace(ctx, f.guardian, aprilReplaceRequest(f.child.ID))
	require.NoError(t, err)

	f.svc.optionUsageRepo = &failingOptionUsageRepo{}

	second := aprilReplaceRequest(f.child.ID)
	second.Reservations = second.Reservations[:1]
	_, err = f.svc.Replace(ctx, f.guardian, second)
	require.ErrorIs(t, err, errAggregateWrite)

	// The previous submission survives untouched.
	var count int64
	require.NoError(t, f.db.Model(&reservationdomain.Reservation{}).
		Where("child_id = ?", f.child.ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	counts := optionCounts(t, f, f.child.ID, "2026-04")
	assert.Equal(t, int64(2), counts["lunch"])
}

func TestCreate_DuplicateDate(t *testing.T) {
	f := newFixture(t, config.DefaultPortalConfig())
	ctx := context.Background()

	_, err := f.svc.Replace(ctx, f.guardian, aprilReplaceRequest(f.child.ID))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.guardian, reservationdomain.CreateRequest{
		ChildID: f.child.ID.String(),
		Date:    "2026-04-01",
		Kind:    "spot",
	})
	assert.ErrorIs(t, err, reservationdomain.ErrDuplicateDate)
}

func TestCreate_RefreshesAggregates(t *testing.T) {
	f := newFixture(t, config.DefaultPortalConfig())
	ctx := context.Background()

	_, err := f.svc.Replace(ctx, f.guardian, aprilReplaceRequest(f.child.ID))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.guardian, reservationdomain.CreateRequest{
		ChildID: f.child.ID.String(),
		Date:    "2026-04-20",
		Kind:    "basic",
		Options: []reservationdomain.OptionInput{{Type: "lunch"}},
	})
	require.NoError(t, err)

	counts := optionCounts(t, f, f.child.ID, "2026-04")
	assert.Equal(t, int64(3), counts["lunch"])
}

func TestUpdate_MoveAcrossMonths(t *testing.T) {
	f := newFixture(t, config.DefaultPortalConfig())
	ctx := context.Background()

	_, err := f.svc.Replace(ctx, f.guardian, aprilReplaceRequest(f.child.ID))
	require.NoError(t, err)

	created, err := f.svc.Create(ctx, f.guardian, reservationdomain.CreateRequest{
		ChildID: f.child.ID.String(),
		Date:    "2026-05-01",
		Kind:    "basic",
		Options: []reservationdomain.OptionInput{{Type: "dinner"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), optionCounts(t, f, f.child.ID, "2026-05")["dinner"])

	newDate := "2026-04-25"
	_, err = f.svc.Update(ctx, f.guardian, created.ID, reservationdomain.UpdateRequest{
		NewDate: &newDate,
	})
	require.NoError(t, err)

	// Both months were re-derived.
	assert.Equal(t, int64(0), optionCounts(t, f, f.child.ID, "2026-05")["dinner"])
	assert.Equal(t, int64(1), optionCounts(t, f, f.child.ID, "2026-04")["dinner"])
}

func TestDelete_RefreshesAggregates(t *testing.T) {
	f := newFixture(t, config.DefaultPortalConfig())
	ctx := context.Background()

	resp, err := f.svc.Replace(ctx, f.guardian, aprilReplaceRequest(f.child.ID))
	require.NoError(t, err)

	var target string
	for _, r := range resp.Reservations {
		if r.Date == "2026-04-01" {
			target = r.ID
		}
	}
	require.NotEmpty(t, target)

	require.NoError(t, f.svc.Delete(ctx, f.guardian, target))

	counts := optionCounts(t, f, f.child.ID, "2026-04")
	assert.Equal(t, int64(1), counts["lunch"])
	assert.Equal(t, int64(0), counts["school_car"])
}

func TestCutoff_BlocksLateGuardianEdits(t *testing.T) {
	portal := config.DefaultPortalConfig()
	portal.Reservation.CutoffDays = 3
	f := newFixture(t, portal)
	ctx := context.Background()

	// Clock is 2026-03-20; dates before 03-23 are inside the cutoff.
	_, err := f.svc.Create(ctx, f.guardian, reservationdomain.CreateRequest{
		ChildID: f.child.ID.String(),
		Date:    "2026-03-21",
		Kind:    "spot",
	})
	assert.ErrorIs(t, err, reservationdomain.ErrCutoffPassed)

	_, err = f.svc.Create(ctx, f.guardian, reservationdomain.CreateRequest{
		ChildID: f.child.ID.String(),
		Date:    "2026-03-25",
		Kind:    "spot",
	})
	assert.NoError(t, err)

	// Admins bypass the window.
	_, err = f.svc.Create(ctx, f.admin, reservationdomain.CreateRequest{
		ChildID: f.child.ID.String(),
		Date:    "2026-03-21",
		Kind:    "spot",
	})
	assert.NoError(t, err)
}
