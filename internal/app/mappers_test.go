package app_test

import (
	"testing"

	"property_listing/internal/app"
	"property_listing/internal/domain"
)

func TestCoverImage(t *testing.T) {
	if got := app.CoverImage(nil); got != nil {
		t.Fatalf("no images: got %q", *got)
	}

	unflagged := []domain.PropertyImage{
		{ImageURL: "b", DisplayOrder: 2},
		{ImageURL: "a", DisplayOrder: 1},
		{ImageURL: "c", DisplayOrder: 3},
	}
	if got := deref(app.CoverImage(unflagged)); got != "a" {
		t.Fatalf("fallback cover = %q, want a", got)
	}

	flagged := append(unflagged, domain.PropertyImage{ImageURL: "d", DisplayOrder: 4, IsCover: true})
	if got := deref(app.CoverImage(flagged)); got != "d" {
		t.Fatalf("flagged cover = %q, want d", got)
	}
}
