package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property_listing/internal/app"
	"property_listing/internal/domain"
)

func serviceInput() app.VendorServiceInput {
	return app.VendorServiceInput{
		Title:         "Surf lesson",
		Description:   "Two hours on the board with an instructor.",
		Category:      domain.ServiceTraining,
		Duration:      2,
		AllowedGuests: 4,
		Price:         4500,
		Image:         "https://img.example.com/surf.jpg",
		ServiceArea:   app.ServiceAreaInput{Name: "Costa da Caparica", Lat: 38.64, Lng: -9.23, Radius: 15},
	}
}

func couponInput(serviceID uuid.UUID, code string) app.CouponInput {
	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return app.CouponInput{
		ServiceID:     serviceID,
		Title:         "Winter deal",
		Code:          code,
		DiscountValue: 10,
		ValidFrom:     from,
		ValidTo:       from.AddDate(0, 3, 0),
		UsageLimit:    100,
	}
}

func TestVendorServices_CRUD(t *testing.T) {
	svc := app.NewVendorsService(newStore(t))
	ctx := context.Background()
	vendor := guestIdentity("vic")

	s, err := svc.CreateService(ctx, vendor, serviceInput())
	require.NoError(t, err)
	assert.Equal(t, vendor.ID, s.VendorID)
	assert.Equal(t, "vic", s.VendorName)
	assert.Equal(t, "Costa da Caparica", s.ServiceArea.Data().Name)

	bad := serviceInput()
	bad.Category = "Skydiving"
	_, err = svc.CreateService(ctx, vendor, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateService(ctx, guestIdentity("eve"), s.ID, app.VendorServicePatch{Price: ptr(int64(1))})
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	upd, err := svc.UpdateService(ctx, vendor, s.ID, app.VendorServicePatch{Price: ptr(int64(5000)), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.EqualValues(t, 5000, upd.Price)

	active, err := svc.ListServices(ctx, domain.ServiceFilter{ActiveOnly: true}, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, active.Total)
	mine, err := svc.MyServices(ctx, vendor, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, mine.Total)

	got, err := svc.GetService(ctx, s.ID)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, got.ServiceArea.Data().Radius, 1e-9)

	require.NoError(t, svc.DeleteService(ctx, vendor, s.ID))
	_, err = svc.GetService(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCoupons_Rules(t *testing.T) {
	svc := app.NewVendorsService(newStore(t))
	ctx := context.Background()
	vendor := guestIdentity("vic")
	s, err := svc.CreateService(ctx, vendor, serviceInput())
	require.NoError(t, err)

	c, err := svc.CreateCoupon(ctx, vendor, couponInput(s.ID, "WINTER10"))
	require.NoError(t, err)
	assert.Equal(t, domain.DiscountPercentage, c.DiscountType)
	assert.True(t, c.IsActive)

	_, err = svc.CreateCoupon(ctx, vendor, couponInput(s.ID, "WINTER10"))
	assert.ErrorIs(t, err, domain.ErrConflict)

	inverted := couponInput(s.ID, "BACKWARDS")
	inverted.ValidTo = inverted.ValidFrom
	_, err = svc.CreateCoupon(ctx, vendor, inverted)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateCoupon(ctx, vendor, couponInput(s.ID, "WAYTOOLONGCODE123"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateCoupon(ctx, guestIdentity("eve"), couponInput(s.ID, "NOTMINE"))
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	upd, err := svc.UpdateCoupon(ctx, vendor, c.ID, app.CouponPatch{UsageLimit: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, upd.UsageLimit)

	list, err := svc.ListCoupons(ctx, domain.CouponFilter{ServiceID: &s.ID}, domain.PageQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	require.NoError(t, svc.DeleteService(ctx, vendor, s.ID))
	_, err = svc.GetCoupon(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
