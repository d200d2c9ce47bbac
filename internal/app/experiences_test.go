package app_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property_listing/internal/app"
	"property_listing/internal/domain"
)

func TestExperiences_AttachOnlyOwned(t *testing.T) {
	store := newStore(t)
	props := app.NewPropertyService(store)
	svc := app.NewExperienceService(store)
	ana, eve := hostIdentity("ana"), hostIdentity("eve")
	ctx := context.Background()

	mine := mustCreate(t, props, ana, propertyInput("Ana's river cottage", 9000))
	theirs := mustCreate(t, props, eve, propertyInput("Eve's mountain hut", 9000))

	e, err := svc.Create(ctx, ana, app.ExperienceInput{
		Title:       "Sunset kayak tour",
		ImageURL:    "https://img.example.com/kayak.jpg",
		PropertyIDs: []uuid.UUID{mine.ID, theirs.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, e.MinNights)
	assert.True(t, e.IsActive)

	linked, err := svc.Properties(ctx, ana, e.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, mine.ID, linked[0].ID)

	res, err := svc.Attach(ctx, ana, e.ID, []uuid.UUID{mine.ID, theirs.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{mine.ID}, res.Attached)
	assert.Equal(t, []uuid.UUID{theirs.ID}, res.Skipped)

	got, err := svc.ForProperty(ctx, nil, mine.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)

	page, err := props.List(ctx, domain.PropertyFilter{HasExperiences: ptr(true)}, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	require.NoError(t, svc.Detach(ctx, ana, e.ID, mine.ID))
	got, err = svc.ForProperty(ctx, nil, mine.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExperiences_OwnershipAndListing(t *testing.T) {
	store := newStore(t)
	svc := app.NewExperienceService(store)
	ana := hostIdentity("ana")
	ctx := context.Background()

	_, err := svc.Create(ctx, guestIdentity("bob"), app.ExperienceInput{Title: "Wine tasting", ImageURL: "x"})
	assert.ErrorIs(t, err, domain.ErrNoHostIdentity)
	_, err = svc.Create(ctx, ana, app.ExperienceInput{Title: "Yo", ImageURL: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	e, err := svc.Create(ctx, ana, app.ExperienceInput{Title: "Wine tasting", ImageURL: "x", MinNights: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, e.MinNights)
	_, err = svc.Create(ctx, ana, app.ExperienceInput{Title: "Cooking class", ImageURL: "x", IsActive: ptr(false)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, hostIdentity("eve"), e.ID, app.ExperiencePatch{Title: ptr("Stolen tasting")})
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	upd, err := svc.Update(ctx, ana, e.ID, app.ExperiencePatch{MinNights: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, upd.MinNights)

	active, err := svc.ListActive(ctx, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, active.Total)
	mine, err := svc.Mine(ctx, ana, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.Total)

	require.NoError(t, svc.Delete(ctx, ana, e.ID))
	_, err = svc.Get(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExperiences_PropertiesOwnerOnly(t *testing.T) {
	store := newStore(t)
	props := app.NewPropertyService(store)
	svc := app.NewExperienceService(store)
	ana := hostIdentity("ana")
	ctx := context.Background()

	hidden := propertyInput("Ana's unpublished flat", 9000)
	hidden.IsActive = ptr(false)
	p := mustCreate(t, props, ana, hidden)
	e, err := svc.Create(ctx, ana, app.ExperienceInput{Title: "Tile painting", ImageURL: "x", PropertyIDs: []uuid.UUID{p.ID}})
	require.NoError(t, err)

	_, err = svc.Properties(ctx, hostIdentity("eve"), e.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = svc.Properties(ctx, guestIdentity("bob"), e.ID)
	assert.ErrorIs(t, err, domain.ErrNoHostIdentity)
	_, err = svc.Properties(ctx, ana, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	linked, err := svc.Properties(ctx, ana, e.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, p.ID, linked[0].ID)
}
