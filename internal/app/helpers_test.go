package app_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"property_listing/internal/app"
	"property_listing/internal/domain"
	"property_listing/internal/storage/sqlstore"
)

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// newStore opens a migrated SQLite database in the test's temp dir.
func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "listing.db")
	db, err := sqlstore.Open("sqlite", dsn, 1)
	require.NoError(t, err)
	require.NoError(t, sqlstore.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return sqlstore.New(db)
}

func hostIdentity(first string) domain.Identity {
	return domain.Identity{
		ID:        uuid.New(),
		Email:     first + "@example.com",
		FirstName: first,
		LastName:  "Host",
		IsActive:  true,
		Host:      &domain.HostInfo{Status: "active"},
	}
}

func guestIdentity(first string) domain.Identity {
	return domain.Identity{ID: uuid.New(), Email: first + "@example.com", FirstName: first, IsActive: true}
}

func images(n int) []app.ImageInput {
	out := make([]app.ImageInput, n)
	for i := range out {
		out[i] = app.ImageInput{ImageURL: fmt.Sprintf("https://img.example.com/%d.jpg", i)}
	}
	return out
}

func propertyInput(title string, price int64) app.CreatePropertyInput {
	return app.CreatePropertyInput{
		Title:         title,
		Description:   "A bright and quiet place close to the old town, with a balcony and fast wifi.",
		PropertyType:  domain.PropertyApartment,
		PlaceType:     domain.PlaceEntire,
		PricePerNight: price,
		Location: app.LocationInput{
			Address:   "12 Harbour Street",
			City:      "Lisbon",
			Country:   "Portugal",
			Latitude:  ptr(38.7223),
			Longitude: ptr(-9.1393),
		},
		Images:     images(3),
		HouseRules: []string{"No smoking", "No parties"},
	}
}

func mustCreate(t *testing.T, svc *app.PropertyService, host domain.Identity, in app.CreatePropertyInput) app.PropertyDetail {
	t.Helper()
	p, err := svc.Create(context.Background(), host, in)
	require.NoError(t, err)
	return p
}
