package app

import (
	"time"

	"github.com/google/uuid"

	"property_listing/internal/domain"
)

// PropertySummary is the list-item shape for property listings.
type PropertySummary struct {
	ID            uuid.UUID           `json:"id"`
	Title         string              `json:"title"`
	Slug          string              `json:"slug"`
	PropertyType  domain.PropertyType `json:"property_type"`
	PlaceType     domain.PlaceType    `json:"place_type"`
	PricePerNight int64               `json:"price_per_night"`
	Currency      string              `json:"currency"`
	Bedrooms      int                 `json:"bedrooms"`
	Beds          int                 `json:"beds"`
	Bathrooms     float64             `json:"bathrooms"`
	MaxGuests     int                 `json:"max_guests"`
	City          string              `json:"city,omitempty"`
	Country       string              `json:"country,omitempty"`
	Latitude      *float64            `json:"latitude,omitempty"`
	Longitude     *float64            `json:"longitude,omitempty"`
	CoverImage    *string             `json:"cover_image"`
	AverageRating float64             `json:"average_rating"`
	TotalReviews  int                 `json:"total_reviews"`
	IsActive      bool                `json:"is_active"`
	IsFeatured    bool                `json:"is_featured"`
	InstantBook   bool                `json:"instant_book"`
	HostID        uuid.UUID           `json:"host_id"`
	HostName      string              `json:"host_name"`
	HostAvatar    *string             `json:"host_avatar,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// PropertyDetail is the full property with its derived presentation fields.
type PropertyDetail struct {
	domain.Property
	CoverImage         *string  `json:"cover_image"`
	HouseRules         []string `json:"house_rules"`
	CancellationPolicy *string  `json:"cancellation_policy,omitempty"`
	CheckInPolicy      *string  `json:"check_in_policy,omitempty"`
}

// CoverImage picks the flagged cover, else the first image by display order, else nil.
func CoverImage(images []domain.PropertyImage) *string {
	if len(images) == 0 {
		return nil
	}
	first := 0
	for i, img := range images {
		if img.IsCover {
			u := img.ImageURL
			return &u
		}
		if img.DisplayOrder < images[first].DisplayOrder {
			first = i
		}
	}
	u := images[first].ImageURL
	return &u
}

func toSummary(p domain.Property) PropertySummary {
	s := PropertySummary{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		PropertyType:  p.PropertyType,
		PlaceType:     p.PlaceType,
		PricePerNight: p.PricePerNight,
		Currency:      p.Currency,
		Bedrooms:      p.Bedrooms,
		Beds:          p.Beds,
		Bathrooms:     p.Bathrooms,
		MaxGuests:     p.MaxGuests,
		CoverImage:    CoverImage(p.Images),
		AverageRating: p.AverageRating,
		TotalReviews:  p.TotalReviews,
		IsActive:      p.IsActive,
		IsFeatured:    p.IsFeatured,
		InstantBook:   p.InstantBook,
		HostID:        p.HostID,
		HostName:      p.HostName,
		HostAvatar:    p.HostAvatar,
		CreatedAt:     p.CreatedAt,
	}
	if p.Location != nil {
		s.City = p.Location.City
		s.Country = p.Location.Country
		lat, lng := p.Location.Latitude, p.Location.Longitude
		s.Latitude, s.Longitude = &lat, &lng
	}
	return s
}

func toSummaries(ps []domain.Property) []PropertySummary {
	out := make([]PropertySummary, 0, len(ps))
	for _, p := range ps {
		out = append(out, toSummary(p))
	}
	return out
}

func toDetail(p domain.Property) PropertyDetail {
	d := PropertyDetail{Property: p, CoverImage: CoverImage(p.Images), HouseRules: []string{}}
	if d.Images == nil {
		d.Images = []domain.PropertyImage{}
	}
	if d.Amenities == nil {
		d.Amenities = []domain.Amenity{}
	}
	if d.SafetyFeatures == nil {
		d.SafetyFeatures = []domain.SafetyFeature{}
	}
	if d.Rules == nil {
		d.Rules = []domain.PropertyRule{}
	}
	for _, r := range p.Rules {
		desc := r.Description
		switch r.RuleType {
		case domain.RuleHouse:
			d.HouseRules = append(d.HouseRules, desc)
		case domain.RuleCancellation:
			d.CancellationPolicy = &desc
		case domain.RuleCheckIn:
			d.CheckInPolicy = &desc
		}
	}
	return d
}
