package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/sports-travel-platform/internal/apperr"
	"github.com/wolfman30/sports-travel-platform/internal/money"
)

func newTestService(t *testing.T) (*Service, *Event) {
	t.Helper()
	svc := NewService(NewInMemoryRepository(), nil)
	ev, err := svc.CreateEvent(context.Background(), EventInput{
		Name:      "IPL Final",
		Location:  "Mumbai",
		StartDate: time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC),
		Category:  "Cricket",
	})
	require.NoError(t, err)
	return svc, ev
}

func packageInput(eventID string, tier Tier) PackageInput {
	return PackageInput{
		EventID:      eventID,
		Name:         string(tier) + " package",
		Description:  "Match tickets and hotel",
		Tier:         tier,
		BasePrice:    money.NewAmount(50000),
		MaxTravelers: 4,
		Features:     []string{"Tickets", "Hotel"},
	}
}

func TestCreatePackage_FourTiersThenFull(t *testing.T) {
	svc, ev := newTestService(t)
	ctx := context.Background()

	for _, tier := range Tiers() {
		_, err := svc.CreatePackage(ctx, packageInput(ev.ID, tier))
		require.NoError(t, err, "tier %s", tier)
	}

	_, err := svc.CreatePackage(ctx, packageInput(ev.ID, TierPremium))
	assert.True(t, errors.Is(err, ErrTierTaken), "got %v", err)

	free, err := svc.AvailableTiers(ctx, ev.ID)
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestCreatePackage_Validation(t *testing.T) {
	svc, ev := newTestService(t)
	ctx := context.Background()

	in := packageInput(ev.ID, TierBasic)
	in.Name = "x"
	_, err := svc.CreatePackage(ctx, in)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	in = packageInput(ev.ID, TierBasic)
	in.BasePrice = money.Zero
	_, err = svc.CreatePackage(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidBasePrice)

	in = packageInput("missing", TierBasic)
	_, err = svc.CreatePackage(ctx, in)
	assert.ErrorIs(t, err, ErrEventNotFound)

	in = packageInput(ev.ID, "Gold")
	_, err = svc.CreatePackage(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestUpdatePackage_KeepsOwnTier(t *testing.T) {
	svc, ev := newTestService(t)
	ctx := context.Background()

	premium, err := svc.CreatePackage(ctx, packageInput(ev.ID, TierPremium))
	require.NoError(t, err)
	_, err = svc.CreatePackage(ctx, packageInput(ev.ID, TierStandard))
	require.NoError(t, err)

	in := packageInput(ev.ID, TierPremium)
	in.Name = "Premium plus"
	updated, err := svc.UpdatePackage(ctx, premium.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Premium plus", updated.Name)

	_, err = svc.UpdatePackage(ctx, premium.ID, packageInput(ev.ID, TierStandard))
	assert.ErrorIs(t, err, ErrTierTaken)

	_, err = svc.UpdatePackage(ctx, "nope", packageInput(ev.ID, TierBasic))
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestResolvePackageForEvent(t *testing.T) {
	svc, ev := newTestService(t)
	ctx := context.Background()

	other, err := svc.CreateEvent(ctx, EventInput{
		Name:      "Wimbledon",
		Location:  "London",
		StartDate: time.Date(2026, 6, 29, 0, 0, 0, 0, time.UTC),
		Category:  "Tennis",
	})
	require.NoError(t, err)

	pkg, err := svc.CreatePackage(ctx, packageInput(ev.ID, TierPremium))
	require.NoError(t, err)

	got, err := svc.ResolvePackageForEvent(ctx, ev.ID, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, pkg.ID, got.ID)

	_, err = svc.ResolvePackageForEvent(ctx, other.ID, pkg.ID)
	assert.ErrorIs(t, err, ErrPackageEventMismatch)

	_, err = svc.ResolvePackageForEvent(ctx, "", pkg.ID)
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.ResolvePackageForEvent(ctx, ev.ID, "missing")
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestCreateEvent_EndBeforeStart(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil)
	_, err := svc.CreateEvent(context.Background(), EventInput{
		Name:      "Tour de France",
		Location:  "Paris",
		StartDate: time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Category:  "Cycling",
	})
	assert.True(t, apperr.IsInvalidDate(err), "got %v", err)
}

func TestDeleteEvent_CascadesPackages(t *testing.T) {
	svc, ev := newTestService(t)
	ctx := context.Background()

	pkg, err := svc.CreatePackage(ctx, packageInput(ev.ID, TierEconomy))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(ctx, ev.ID))
	_, err = svc.GetPackage(ctx, pkg.ID)
	assert.ErrorIs(t, err, ErrPackageNotFound)
	assert.ErrorIs(t, svc.DeleteEvent(ctx, ev.ID), ErrEventNotFound)
}

func TestListEvents_Filter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateEvent(ctx, EventInput{
		Name:      "Monaco Grand Prix",
		Location:  "Monte Carlo",
		StartDate: time.Date(2026, 5, 24, 0, 0, 0, 0, time.UTC),
		Category:  "Formula 1",
	})
	require.NoError(t, err)

	all, err := svc.ListEvents(ctx, EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Monaco Grand Prix", all[0].Name)

	cricket, err := svc.ListEvents(ctx, EventFilter{Category: "cricket"})
	require.NoError(t, err)
	require.Len(t, cricket, 1)
	assert.Equal(t, "IPL Final", cricket[0].Name)

	found, err := svc.ListEvents(ctx, EventFilter{Search: "monte"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestEventActive(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	past := Event{StartDate: now.AddDate(0, 0, -3), EndDate: now.AddDate(0, 0, -1)}
	running := Event{StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 0, 1)}
	upcoming := Event{StartDate: now.AddDate(0, 1, 0)}

	assert.False(t, past.Active(now))
	assert.True(t, running.Active(now))
	assert.True(t, upcoming.Active(now))
	assert.False(t, Event{}.Active(now))
}
