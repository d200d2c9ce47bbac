package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property_listing/internal/app"
	"property_listing/internal/domain"
)

func TestCreateProperty_DefaultsAndChildren(t *testing.T) {
	svc := app.NewPropertyService(newStore(t))
	host := hostIdentity("ana")

	in := propertyInput("Ocean View Loft in Lisbon", 12000)
	in.CancellationPolicy = ptr("Free cancellation up to 48 hours")
	p := mustCreate(t, svc, host, in)

	assert.Equal(t, "ocean-view-loft-in-lisbon", p.Slug)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, 1, p.Bedrooms)
	assert.Equal(t, 2, p.MaxGuests)
	assert.Equal(t, host.ID, p.HostID)
	assert.Equal(t, "ana Host", p.HostName)
	assert.True(t, p.IsActive)
	assert.NotNil(t, p.PublishedAt)
	assert.Equal(t, domain.VerificationPending, p.VerificationStatus)
	require.NotNil(t, p.Location)
	assert.Equal(t, "Lisbon", p.Location.City)
	require.Len(t, p.Images, 3)
	assert.Equal(t, []string{"No smoking", "No parties"}, p.HouseRules)
	assert.Equal(t, "Free cancellation up to 48 hours", deref(p.CancellationPolicy))
	assert.Nil(t, p.CheckInPolicy)
}

func TestCreateProperty_CoverPromotion(t *testing.T) {
	svc := app.NewPropertyService(newStore(t))
	host := hostIdentity("ana")

	p := mustCreate(t, svc, host, propertyInput("No cover chosen here", 9000))
	covers := 0
	for _, img := range p.Images {
		if img.IsCover {
			covers++
			assert.Equal(t, "https://img.example.com/0.jpg", img.ImageURL)
		}
	}
	assert.Equal(t, 1, covers)
	assert.Equal(t, "https://img.example.com/0.jpg", deref(p.CoverImage))

	in := propertyInput("Explicit cover on the third", 9000)
	in.Images[2].IsCover = true
	p = mustCreate(t, svc, host, in)
	assert.Equal(t, "https://img.example.com/2.jpg", deref(p.CoverImage))
	for _, img := range p.Images {
		assert.Equal(t, img.ImageURL == "https://img.example.com/2.jpg", img.IsCover)
	}
}

func TestCreateProperty_RejectsAndPersistsNothing(t *testing.T) {
	store := newStore(t)
	svc := app.NewPropertyService(store)
	host := hostIdentity("ana")
	ctx := context.Background()

	tooFew := propertyInput("Only two images here", 9000)
	tooFew.Images = images(2)
	_, err := svc.Create(ctx, host, tooFew)
	assert.ErrorIs(t, err, domain.ErrValidation)

	twoCovers := propertyInput("Two covers is too many", 9000)
	twoCovers.Images[0].IsCover = true
	twoCovers.Images[1].IsCover = true
	_, err = svc.Create(ctx, host, twoCovers)
	assert.ErrorIs(t, err, domain.ErrValidation)

	unknownAmenity := propertyInput("Unknown amenity given", 9000)
	unknownAmenity.AmenityIDs = []uuid.UUID{uuid.New()}
	_, err = svc.Create(ctx, host, unknownAmenity)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, guestIdentity("bob"), propertyInput("Guest cannot host this", 9000))
	assert.ErrorIs(t, err, domain.ErrNoHostIdentity)

	page, err := svc.List(ctx, domain.PropertyFilter{}, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)
}

func TestCreateProperty_SlugSuffix(t *testing.T) {
	svc := app.NewPropertyService(newStore(t))
	host := hostIdentity("ana")

	a := mustCreate(t, svc, host, propertyInput("Ocean View Loft", 9000))
	b := mustCreate(t, svc, host, propertyInput("Ocean View Loft", 9000))
	c := mustCreate(t, svc, host, propertyInput("Ocean View Loft", 9000))

	assert.Equal(t, "ocean-view-loft", a.Slug)
	assert.Equal(t, "ocean-view-loft-1", b.Slug)
	assert.Equal(t, "ocean-view-loft-2", c.Slug)
}

func TestCreateProperty_LinksCatalog(t *testing.T) {
	store := newStore(t)
	cat := app.NewCatalogService(store, nil, time.Minute)
	_, err := cat.Seed(context.Background(),
		[]domain.Amenity{{Name: "Wifi"}, {Name: "Kitchen", Category: domain.AmenityKitchen}},
		[]domain.SafetyFeature{{Name: "Smoke alarm"}})
	require.NoError(t, err)
	am, err := cat.Amenities(context.Background())
	require.NoError(t, err)
	sf, err := cat.SafetyFeatures(context.Background())
	require.NoError(t, err)

	svc := app.NewPropertyService(store)
	in := propertyInput("Catalog linked property", 9000)
	in.AmenityIDs = []uuid.UUID{am[0].ID, am[1].ID, am[0].ID}
	in.SafetyFeatureIDs = []uuid.UUID{sf[0].ID}
	p := mustCreate(t, svc, hostIdentity("ana"), in)

	assert.Len(t, p.Amenities, 2)
	assert.Len(t, p.SafetyFeatures, 1)
}

func TestListProperties_PriceRangeAndTotal(t *testing.T) {
	svc := app.NewPropertyService(newStore(t))
	host := hostIdentity("ana")
	for i, price := range []int64{5000, 10000, 15000, 20000, 25000} {
		mustCreate(t, svc, host, propertyInput(fmt.Sprintf("Priced property number %d", i), price))
	}

	f := domain.PropertyFilter{MinPrice: ptr(int64(10000)), MaxPrice: ptr(int64(20000)), Sort: domain.SortPriceAsc}
	page, err := svc.List(context.Background(), f, domain.PageQuery{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Items, 2)
	assert.EqualValues(t, 10000, page.Items[0].PricePerNight)
	assert.EqualValues(t, 15000, page.Items[1].PricePerNight)

	_, err = svc.List(context.Background(), domain.PropertyFilter{MinPrice: ptr(int64(5)), MaxPrice: ptr(int64(1))}, domain.PageQuery{Page: 1, PageSize: 2})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListProperties_Pagination(t *testing.T) {
	svc := app.NewPropertyService(newStore(t))
	host := hostIdentity("ana")
	for i := 0; i < 25; i++ {
		mustCreate(t, svc, host, propertyInput(fmt.Sprintf("Paginated listing %02d", i), 9000))
	}
	ctx := context.Background()
	seen := map[uuid.UUID]bool{}
	for page, want := range map[int]int{1: 10, 2: 10, 3: 5} {
		got, err := svc.List(ctx, domain.PropertyFilter{}, domain.PageQuery{Page: page, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 25, got.Total)
		assert.Equal(t, 3, got.Pages)
		require.Len(t, got.Items, want, "page %d", page)
		for _, it := range got.Items {
			assert.False(t, seen[it.ID], "property %s on two pages", it.ID)
			seen[it.ID] = true
		}
	}
	assert.Len(t, seen, 25)
}

func TestListProperties_LocationJoinDoesNotInflateCount(t *testing.T) {
	svc := app.NewPropertyService(newStore(t))
	host := hostIdentity("ana")
	mustCreate(t, svc, host, propertyInput("Lisbon flat near river", 9000))
	porto := propertyInput("Porto flat near river", 9000)
	porto.Location.City = "Porto"
	mustCreate(t, svc, host, porto)

	page, err := svc.List(context.Background(), domain.PropertyFilter{City: ptr("lis")}, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Lisbon", page.Items[0].City)

	page, err = svc.List(context.Background(), domain.PropertyFilter{Search: ptr("river")}, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
}

func TestGetProperty_InactiveVisibleToOwnerOnly(t *testing.T) {
	svc := app.NewPropertyService(newStore(t))
	host := hostIdentity("ana")
	in := propertyInput("Draft listing not yet live", 9000)
	in.IsActive = ptr(false)
	p := mustCreate(t, svc, host, in)
	assert.Nil(t, p.PublishedAt)

	ctx := context.Background()
	_, err := svc.Get(ctx, p.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	stranger := guestIdentity("bob")
	_, err = svc.Get(ctx, p.ID, &stranger)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := svc.Get(ctx, p.ID, &host)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.Get(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProperty_OwnerSlugAndPublish(t *testing.T) {
	svc := app.NewPropertyService(newStore(t))
	host := hostIdentity("ana")
	ctx := context.Background()
	mustCreate(t, svc, host, propertyInput("Sunny Garden House", 9000))
	in := propertyInput("Quiet Cabin Retreat", 9000)
	in.IsActive = ptr(false)
	p := mustCreate(t, svc, host, in)

	_, err := svc.Update(ctx, hostIdentity("eve"), p.ID, app.UpdatePropertyInput{Bedrooms: ptr(3)})
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	_, err = svc.Update(ctx, host, uuid.New(), app.UpdatePropertyInput{Bedrooms: ptr(3)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.Update(ctx, host, p.ID, app.UpdatePropertyInput{
		Title:      ptr("Sunny Garden House"),
		Bedrooms:   ptr(3),
		IsActive:   ptr(true),
		Location:   &app.LocationPatch{City: ptr("Sintra")},
		HouseRules: []string{"Quiet hours after 22:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sunny-garden-house-1", got.Slug)
	assert.Equal(t, 3, got.Bedrooms)
	assert.True(t, got.IsActive)
	assert.NotNil(t, got.PublishedAt)
	assert.Equal(t, "Sintra", got.Location.City)
	assert.Equal(t, []string{"Quiet hours after 22:00"}, got.HouseRules)
}

func TestDeleteProperty_Cascades(t *testing.T) {
	store := newStore(t)
	svc := app.NewPropertyService(store)
	reviews := app.NewReviewService(store)
	host := hostIdentity("ana")
	ctx := context.Background()
	p := mustCreate(t, svc, host, propertyInput("Soon to be removed", 9000))
	_, err := reviews.Create(ctx, guestIdentity("bob"), p.ID, app.ReviewInput{Rating: 4})
	require.NoError(t, err)

	err = svc.Delete(ctx, guestIdentity("bob"), p.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	require.NoError(t, svc.Delete(ctx, host, p.ID))
	_, err = svc.Get(ctx, p.ID, &host)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, total, err := store.Reviews().ListReviews(ctx, p.ID, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestSearch_GuestsAndBlockedDates(t *testing.T) {
	svc := app.NewPropertyService(newStore(t))
	host := hostIdentity("ana")
	ctx := context.Background()

	small := mustCreate(t, svc, host, propertyInput("Small studio in Lisbon", 9000))
	bigIn := propertyInput("Family house in Lisbon", 9000)
	bigIn.MaxGuests = ptr(6)
	big := mustCreate(t, svc, host, bigIn)

	page, err := svc.Search(ctx, app.SearchQuery{
		PropertyFilter: domain.PropertyFilter{Location: ptr("portugal")},
		Adults:         2,
		Children:       2,
	}, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, big.ID, page.Items[0].ID)

	_, err = svc.AddAvailability(ctx, host, small.ID, app.AvailabilityInput{
		StartDate: "2030-07-01", EndDate: "2030-07-10", IsAvailable: ptr(false),
	})
	require.NoError(t, err)

	in := time.Date(2030, 7, 5, 0, 0, 0, 0, time.UTC)
	out := time.Date(2030, 7, 8, 0, 0, 0, 0, time.UTC)
	page, err = svc.Search(ctx, app.SearchQuery{
		PropertyFilter: domain.PropertyFilter{CheckIn: &in, CheckOut: &out},
	}, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, big.ID, page.Items[0].ID)

	later := time.Date(2030, 8, 1, 0, 0, 0, 0, time.UTC)
	laterOut := later.AddDate(0, 0, 3)
	page, err = svc.Search(ctx, app.SearchQuery{
		PropertyFilter: domain.PropertyFilter{CheckIn: &later, CheckOut: &laterOut},
	}, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	_, err = svc.Search(ctx, app.SearchQuery{
		PropertyFilter: domain.PropertyFilter{CheckIn: &out, CheckOut: &in},
	}, domain.PageQuery{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAvailability_OwnerOnlyAndRange(t *testing.T) {
	svc := app.NewPropertyService(newStore(t))
	host := hostIdentity("ana")
	ctx := context.Background()
	p := mustCreate(t, svc, host, propertyInput("Availability managed", 9000))

	_, err := svc.AddAvailability(ctx, host, p.ID, app.AvailabilityInput{StartDate: "2030-01-10", EndDate: "2030-01-01"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.AddAvailability(ctx, hostIdentity("eve"), p.ID, app.AvailabilityInput{StartDate: "2030-01-01", EndDate: "2030-01-02"})
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	a, err := svc.AddAvailability(ctx, host, p.ID, app.AvailabilityInput{StartDate: "2030-01-01", EndDate: "2030-01-05", PriceOverride: ptr(int64(15000))})
	require.NoError(t, err)
	assert.True(t, a.IsAvailable)

	list, err := svc.ListAvailability(ctx, nil, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 15000, deref(list[0].PriceOverride))
}

func TestNearby_BoundingBox(t *testing.T) {
	svc := app.NewPropertyService(newStore(t))
	host := hostIdentity("ana")
	ctx := context.Background()
	near := mustCreate(t, svc, host, propertyInput("Right in the centre", 9000))
	farIn := propertyInput("Far away in Porto", 9000)
	farIn.Location.Latitude = ptr(41.1579)
	farIn.Location.Longitude = ptr(-8.6291)
	mustCreate(t, svc, host, farIn)

	got, err := svc.Nearby(ctx, domain.NearbyQuery{Lat: 38.72, Lng: -9.14, RadiusKm: 10, Limit: 20})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, near.ID, got[0].ID)

	_, err = svc.Nearby(ctx, domain.NearbyQuery{Lat: 38.72, Lng: -9.14, RadiusKm: 500, Limit: 20})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFeaturedAndHostListings(t *testing.T) {
	svc := app.NewPropertyService(newStore(t))
	host := hostIdentity("ana")
	ctx := context.Background()
	mustCreate(t, svc, host, propertyInput("Public listing one", 9000))
	hidden := propertyInput("Hidden listing two", 9000)
	hidden.IsActive = ptr(false)
	mustCreate(t, svc, host, hidden)

	pub, err := svc.HostProperties(ctx, host.ID, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, pub.Total)

	mine, err := svc.MyProperties(ctx, host, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.Total)

	featured, err := svc.Featured(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, featured)
	_, err = svc.Featured(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInactiveProperty_ChildrenHiddenFromOthers(t *testing.T) {
	store := newStore(t)
	props := app.NewPropertyService(store)
	reviews := app.NewReviewService(store)
	experiences := app.NewExperienceService(store)
	ana, bob := hostIdentity("ana"), guestIdentity("bob")
	ctx := context.Background()

	in := propertyInput("Draft listing not yet live", 9000)
	in.IsActive = ptr(false)
	p := mustCreate(t, props, ana, in)
	_, err := props.AddAvailability(ctx, ana, p.ID, app.AvailabilityInput{StartDate: "2030-01-01", EndDate: "2030-01-05"})
	require.NoError(t, err)
	_, err = experiences.Create(ctx, ana, app.ExperienceInput{Title: "Harbour walk", ImageURL: "x", PropertyIDs: []uuid.UUID{p.ID}})
	require.NoError(t, err)

	for name, caller := range map[string]*domain.Identity{"anonymous": nil, "stranger": &bob} {
		t.Run(name, func(t *testing.T) {
			_, err := reviews.List(ctx, caller, p.ID, domain.PageQuery{Page: 1, PageSize: 10})
			assert.ErrorIs(t, err, domain.ErrNotFound)
			_, err = props.ListAvailability(ctx, caller, p.ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
			_, err = experiences.ForProperty(ctx, caller, p.ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}

	_, err = reviews.Create(ctx, bob, p.ID, app.ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	t.Run("host", func(t *testing.T) {
		page, err := reviews.List(ctx, &ana, p.ID, domain.PageQuery{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Zero(t, page.Total)
		avail, err := props.ListAvailability(ctx, &ana, p.ID)
		require.NoError(t, err)
		assert.Len(t, avail, 1)
		exps, err := experiences.ForProperty(ctx, &ana, p.ID)
		require.NoError(t, err)
		assert.Len(t, exps, 1)
	})

	// going live opens everything up again
	_, err = props.Update(ctx, ana, p.ID, app.UpdatePropertyInput{IsActive: ptr(true)})
	require.NoError(t, err)
	_, err = reviews.Create(ctx, bob, p.ID, app.ReviewInput{Rating: 4})
	require.NoError(t, err)
	avail, err := props.ListAvailability(ctx, nil, p.ID)
	require.NoError(t, err)
	assert.Len(t, avail, 1)
}
