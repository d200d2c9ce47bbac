package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PropertyType string

const (
	PropertyHouse      PropertyType = "house"
	PropertyApartment  PropertyType = "apartment"
	PropertyGuestHouse PropertyType = "guest_house"
	PropertyHotel      PropertyType = "hotel"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyHouse, PropertyApartment, PropertyGuestHouse, PropertyHotel:
		return true
	}
	return false
}

type PlaceType string

const (
	PlaceEntire  PlaceType = "entire_place"
	PlacePrivate PlaceType = "private_room"
	PlaceShared  PlaceType = "shared_room"
)

func (t PlaceType) Valid() bool {
	switch t {
	case PlaceEntire, PlacePrivate, PlaceShared:
		return true
	}
	return false
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type RuleType string

const (
	RuleHouse        RuleType = "house_rules"
	RuleCancellation RuleType = "cancellation_policy"
	RuleCheckIn      RuleType = "check_in_policy"
)

// Property is a rental listing. Prices are stored in minor currency units.
type Property struct {
	ID           uuid.UUID    `gorm:"type:char(36);primaryKey" json:"id"`
	Title        string       `gorm:"size:255;not null" json:"title"`
	Slug         string       `gorm:"size:300;not null;uniqueIndex:idx_properties_slug" json:"slug"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	PropertyType PropertyType `gorm:"size:20;not null;index" json:"property_type"`
	PlaceType    PlaceType    `gorm:"size:20;not null" json:"place_type"`

	Bedrooms    int     `gorm:"not null;check:chk_properties_bedrooms,bedrooms >= 0" json:"bedrooms"`
	Beds        int     `gorm:"not null;check:chk_properties_beds,beds >= 0" json:"beds"`
	Bathrooms   float64 `gorm:"not null;check:chk_properties_bathrooms,bathrooms >= 0" json:"bathrooms"`
	MaxGuests   int     `gorm:"not null;check:chk_properties_guests,max_guests > 0" json:"max_guests"`
	MaxAdults   int     `gorm:"not null" json:"max_adults"`
	MaxChildren int     `gorm:"not null" json:"max_children"`
	MaxInfants  int     `gorm:"not null" json:"max_infants"`
	PetsAllowed bool    `gorm:"not null" json:"pets_allowed"`

	PricePerNight   int64  `gorm:"not null;index;check:chk_properties_price,price_per_night > 0" json:"price_per_night"`
	Currency        string `gorm:"size:3;not null" json:"currency"`
	CleaningFee     *int64 `json:"cleaning_fee,omitempty"`
	ServiceFee      *int64 `json:"service_fee,omitempty"`
	WeeklyDiscount  *int   `json:"weekly_discount,omitempty"`
	MonthlyDiscount *int   `json:"monthly_discount,omitempty"`

	LocationID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_properties_location" json:"-"`
	Location   *Location `json:"location,omitempty"`

	HostID       uuid.UUID  `gorm:"type:char(36);not null;index" json:"host_id"`
	HostName     string     `gorm:"size:200;not null" json:"host_name"`
	HostEmail    string     `gorm:"size:255" json:"host_email,omitempty"`
	HostAvatar   *string    `gorm:"size:500" json:"host_avatar,omitempty"`
	HostSyncedAt *time.Time `gorm:"index" json:"-"`

	IsActive           bool               `gorm:"not null;index" json:"is_active"`
	IsFeatured         bool               `gorm:"not null;index" json:"is_featured"`
	VerificationStatus VerificationStatus `gorm:"size:20;not null" json:"verification_status"`
	InstantBook        bool               `gorm:"not null" json:"instant_book"`

	AverageRating float64 `gorm:"not null;check:chk_properties_rating,average_rating >= 0 AND average_rating <= 5" json:"average_rating"`
	TotalReviews  int     `gorm:"not null" json:"total_reviews"`

	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	Images         []PropertyImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	Rules          []PropertyRule  `gorm:"constraint:OnDelete:CASCADE" json:"rules"`
	Availabilities []Availability  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Reviews        []Review        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Amenities      []Amenity       `gorm:"many2many:property_amenities;constraint:OnDelete:CASCADE" json:"amenities"`
	SafetyFeatures []SafetyFeature `gorm:"many2many:property_safety_features;constraint:OnDelete:CASCADE" json:"safety_features"`
	Experiences    []Experience    `gorm:"many2many:property_experiences;constraint:OnDelete:CASCADE" json:"-"`
}

func (Property) TableName() string { return "properties" }

func (p *Property) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Rule returns the description of the first rule of type t, or "".
func (p Property) Rule(t RuleType) string {
	for _, r := range p.Rules {
		if r.RuleType == t {
			return r.Description
		}
	}
	return ""
}

type Location struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Address    string    `gorm:"size:500;not null" json:"address"`
	City       string    `gorm:"size:100;not null;index" json:"city"`
	State      *string   `gorm:"size:100" json:"state,omitempty"`
	Country    string    `gorm:"size:100;not null;index" json:"country"`
	PostalCode *string   `gorm:"size:20" json:"postal_code,omitempty"`
	Latitude   float64   `gorm:"not null;index;check:chk_locations_lat,latitude >= -90 AND latitude <= 90" json:"latitude"`
	Longitude  float64   `gorm:"not null;index;check:chk_locations_lng,longitude >= -180 AND longitude <= 180" json:"longitude"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

func (Location) TableName() string { return "locations" }

func (l *Location) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// PropertyImage is ordered by DisplayOrder, which is unique within a property.
type PropertyImage struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	PropertyID   uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_property_images_order,priority:1" json:"-"`
	ImageURL     string    `gorm:"size:1000;not null" json:"image_url"`
	DisplayOrder int       `gorm:"not null;uniqueIndex:idx_property_images_order,priority:2" json:"display_order"`
	IsCover      bool      `gorm:"not null" json:"is_cover"`
	AltText      *string   `gorm:"size:255" json:"alt_text,omitempty"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (PropertyImage) TableName() string { return "property_images" }

func (i *PropertyImage) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type PropertyRule struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	PropertyID  uuid.UUID `gorm:"type:char(36);not null;index" json:"-"`
	RuleType    RuleType  `gorm:"size:30;not null" json:"rule_type"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Position    int       `gorm:"not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

func (PropertyRule) TableName() string { return "property_rules" }

func (r *PropertyRule) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Availability is a dated window; IsAvailable=false blocks bookings inside it.
type Availability struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	PropertyID    uuid.UUID `gorm:"type:char(36);not null;index" json:"property_id"`
	StartDate     time.Time `gorm:"type:date;not null;index" json:"start_date"`
	EndDate       time.Time `gorm:"type:date;not null;check:chk_availabilities_range,end_date >= start_date" json:"end_date"`
	IsAvailable   bool      `gorm:"not null" json:"is_available"`
	PriceOverride *int64    `gorm:"check:chk_availabilities_override,price_override IS NULL OR price_override > 0" json:"price_override,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Availability) TableName() string { return "availabilities" }

func (a *Availability) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Join rows, written directly instead of through loaded collections.

type PropertyAmenity struct {
	PropertyID uuid.UUID `gorm:"type:char(36);primaryKey"`
	AmenityID  uuid.UUID `gorm:"type:char(36);primaryKey"`
}

func (PropertyAmenity) TableName() string { return "property_amenities" }

type PropertySafetyFeature struct {
	PropertyID      uuid.UUID `gorm:"type:char(36);primaryKey"`
	SafetyFeatureID uuid.UUID `gorm:"type:char(36);primaryKey"`
}

func (PropertySafetyFeature) TableName() string { return "property_safety_features" }

type PropertyExperience struct {
	PropertyID   uuid.UUID `gorm:"type:char(36);primaryKey"`
	ExperienceID uuid.UUID `gorm:"type:char(36);primaryKey"`
}

func (PropertyExperience) TableName() string { return "property_experiences" }
