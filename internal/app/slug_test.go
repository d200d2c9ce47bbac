package app_test

import (
	"testing"

	"property_listing/internal/app"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Ocean View Loft":        "ocean-view-loft",
		"  Café à la Plage!! ":   "cafe-a-la-plage",
		"São João -- 2 bedrooms": "sao-joao-2-bedrooms",
		"Über_cool   Flat #3":    "uber-cool-flat-3",
		"!!!":                    "property",
		"東京 apartment":           "apartment",
		"already-a-slug":         "already-a-slug",
	}
	for in, want := range cases {
		if got := app.Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
