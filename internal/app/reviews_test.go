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

func TestReviews_RatingFollowsEveryMutation(t *testing.T) {
	store := newStore(t)
	props := app.NewPropertyService(store)
	svc := app.NewReviewService(store)
	host := hostIdentity("ana")
	ctx := context.Background()
	p := mustCreate(t, props, host, propertyInput("Rated listing by guests", 9000))

	rating := func() (float64, int) {
		t.Helper()
		got, err := props.Get(ctx, p.ID, nil)
		require.NoError(t, err)
		return got.AverageRating, got.TotalReviews
	}

	bob, cat := guestIdentity("bob"), guestIdentity("cat")
	rb, err := svc.Create(ctx, bob, p.ID, app.ReviewInput{Rating: 5, Comment: ptr("Lovely")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, cat, p.ID, app.ReviewInput{Rating: 2})
	require.NoError(t, err)
	avg, n := rating()
	assert.InDelta(t, 3.5, avg, 1e-9)
	assert.Equal(t, 2, n)

	_, err = svc.Update(ctx, bob, rb.ID, app.ReviewPatch{Rating: ptr(3)})
	require.NoError(t, err)
	avg, n = rating()
	assert.InDelta(t, 2.5, avg, 1e-9)
	assert.Equal(t, 2, n)

	require.NoError(t, svc.Delete(ctx, bob, rb.ID))
	avg, n = rating()
	assert.InDelta(t, 2.0, avg, 1e-9)
	assert.Equal(t, 1, n)

	page, err := svc.List(ctx, nil, p.ID, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NoError(t, svc.Delete(ctx, cat, page.Items[0].ID))
	avg, n = rating()
	assert.Zero(t, avg)
	assert.Zero(t, n)
}

func TestReviews_CreateFailures(t *testing.T) {
	store := newStore(t)
	props := app.NewPropertyService(store)
	svc := app.NewReviewService(store)
	host := hostIdentity("ana")
	ctx := context.Background()
	p := mustCreate(t, props, host, propertyInput("Reviewed only once", 9000))

	_, err := svc.Create(ctx, host, p.ID, app.ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, domain.ErrOwnPropertyReview)
	assert.Equal(t, "own_property_review", domain.Reason(err))

	bob := guestIdentity("bob")
	_, err = svc.Create(ctx, bob, p.ID, app.ReviewInput{Rating: 4})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, p.ID, app.ReviewInput{Rating: 1})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "duplicate_review", domain.Reason(err))

	_, err = svc.Create(ctx, bob, uuid.New(), app.ReviewInput{Rating: 4})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Create(ctx, guestIdentity("dan"), p.ID, app.ReviewInput{Rating: 6})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReviews_AuthorOnlyAndHelpful(t *testing.T) {
	store := newStore(t)
	props := app.NewPropertyService(store)
	svc := app.NewReviewService(store)
	ctx := context.Background()
	p := mustCreate(t, props, hostIdentity("ana"), propertyInput("Helpful votes counted", 9000))
	r, err := svc.Create(ctx, guestIdentity("bob"), p.ID, app.ReviewInput{Rating: 4})
	require.NoError(t, err)

	eve := guestIdentity("eve")
	_, err = svc.Update(ctx, eve, r.ID, app.ReviewPatch{Rating: ptr(1)})
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.ErrorIs(t, svc.Delete(ctx, eve, r.ID), domain.ErrForbidden)

	for i := 0; i < 3; i++ {
		r, err = svc.MarkHelpful(ctx, r.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, r.HelpfulCount)

	_, err = svc.MarkHelpful(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
