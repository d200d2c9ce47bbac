package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
)

// ParseSortKey maps "" to newest and rejects unknown keys.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(s); k {
	case "":
		return SortNewest, true
	case SortNewest, SortPriceAsc, SortPriceDesc, SortRating:
		return k, true
	}
	return "", false
}

// PropertyFilter holds listing filters; nil fields are not applied.
type PropertyFilter struct {
	HostID       *uuid.UUID
	IsActive     *bool
	IsFeatured   *bool
	PropertyType *PropertyType
	PlaceType    *PlaceType

	City     *string
	Country  *string
	Location *string // city or country
	Search   *string

	MinPrice     *int64
	MaxPrice     *int64
	MinBedrooms  *int
	MinBeds      *int
	MinBathrooms *float64
	MinGuests    *int

	InstantBook    *bool
	PetsAllowed    *bool
	HasExperiences *bool
	AmenityIDs     []uuid.UUID

	// Stay dates; properties blocked by an unavailable window overlapping [CheckIn, CheckOut) are excluded.
	CheckIn  *time.Time
	CheckOut *time.Time

	Sort SortKey
}

type NearbyQuery struct {
	Lat, Lng float64
	RadiusKm float64
	Limit    int
}

type PageQuery struct {
	Page     int
	PageSize int
}

// MaxPage caps how deep a caller may page; past it the row offset could overflow.
const MaxPage = 100_000

// Offset is the number of rows to skip, clamped so it never wraps negative.
func (p PageQuery) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt32/p.PageSize {
		return math.MaxInt32
	}
	return (p.Page - 1) * p.PageSize
}

type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Pages    int   `json:"total_pages"`
}

func NewPage[T any](items []T, total int64, pg PageQuery) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if pg.PageSize > 0 {
		pages = int((total + int64(pg.PageSize) - 1) / int64(pg.PageSize))
	}
	return Page[T]{Items: items, Total: total, Page: pg.Page, PageSize: pg.PageSize, Pages: pages}
}
