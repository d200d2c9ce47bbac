package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AmenityCategory string

const (
	AmenityBasic         AmenityCategory = "basic"
	AmenitySafety        AmenityCategory = "safety"
	AmenityAccessibility AmenityCategory = "accessibility"
	AmenityKitchen       AmenityCategory = "kitchen"
	AmenityEntertainment AmenityCategory = "entertainment"
)

// ParseAmenityCategory falls back to basic for unknown values.
func ParseAmenityCategory(s string) AmenityCategory {
	switch c := AmenityCategory(s); c {
	case AmenityBasic, AmenitySafety, AmenityAccessibility, AmenityKitchen, AmenityEntertainment:
		return c
	}
	return AmenityBasic
}

type Amenity struct {
	ID        uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string          `gorm:"size:100;not null;uniqueIndex:idx_amenities_name" json:"name"`
	Category  AmenityCategory `gorm:"size:20;not null;index" json:"category"`
	Icon      *string         `gorm:"size:100" json:"icon,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Amenity) TableName() string { return "amenities" }

func (a *Amenity) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type SafetyFeature struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:idx_safety_features_name" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Icon        *string   `gorm:"size:100" json:"icon,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (SafetyFeature) TableName() string { return "safety_features" }

func (s *SafetyFeature) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
