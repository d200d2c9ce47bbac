package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceCategory string

const (
	ServiceFood      ServiceCategory = "Food"
	ServiceCoaching  ServiceCategory = "Coaching"
	ServiceTraining  ServiceCategory = "Training"
	ServiceCarRental ServiceCategory = "Car rental"
	ServiceGuide     ServiceCategory = "Local Guide"
	ServiceClubbing  ServiceCategory = "Clubbing"
	ServiceWorkshop  ServiceCategory = "Workshop"
	ServiceOther     ServiceCategory = "Other"
)

func (c ServiceCategory) Valid() bool {
	switch c {
	case ServiceFood, ServiceCoaching, ServiceTraining, ServiceCarRental,
		ServiceGuide, ServiceClubbing, ServiceWorkshop, ServiceOther:
		return true
	}
	return false
}

// ServiceArea is stored as a JSON column.
type ServiceArea struct {
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radius"`
}

// VendorService is a bookable service offered by a vendor. Price is in minor units.
type VendorService struct {
	ID            uuid.UUID                       `gorm:"type:char(36);primaryKey" json:"id"`
	VendorID      uuid.UUID                       `gorm:"type:char(36);not null;index" json:"vendor_id"`
	VendorName    string                          `gorm:"size:200;not null" json:"vendor_name"`
	Title         string                          `gorm:"size:200;not null" json:"title"`
	Description   string                          `gorm:"type:text;not null" json:"description"`
	Category      ServiceCategory                 `gorm:"size:30;not null;index" json:"category"`
	Duration      int                             `gorm:"not null" json:"duration"`
	AllowedGuests int                             `gorm:"not null" json:"allowed_guests"`
	Price         int64                           `gorm:"not null;check:chk_vendor_services_price,price >= 0" json:"price"`
	Image         string                          `gorm:"size:1000;not null" json:"image"`
	IsActive      bool                            `gorm:"not null;index" json:"is_active"`
	ServiceArea   datatypes.JSONType[ServiceArea] `gorm:"not null" json:"service_area"`
	Rating        float64                         `gorm:"not null" json:"rating"`
	ReviewCount   int                             `gorm:"not null" json:"review_count"`
	CreatedAt     time.Time                       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time                       `json:"updated_at"`

	Coupons []Coupon `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE" json:"-"`
}

func (VendorService) TableName() string { return "vendor_services" }

func (v *VendorService) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon belongs to a VendorService. Code is unique and ValidTo is after ValidFrom.
type Coupon struct {
	ID            uuid.UUID    `gorm:"type:char(36);primaryKey" json:"id"`
	ServiceID     uuid.UUID    `gorm:"type:char(36);not null;index" json:"service_id"`
	Title         string       `gorm:"size:200;not null" json:"title"`
	Code          string       `gorm:"size:64;not null;uniqueIndex:idx_coupons_code" json:"code"`
	DiscountType  DiscountType `gorm:"size:20;not null" json:"discount_type"`
	DiscountValue float64      `gorm:"not null;check:chk_coupons_discount,discount_value > 0" json:"discount_value"`
	ValidFrom     time.Time    `gorm:"not null" json:"valid_from"`
	ValidTo       time.Time    `gorm:"not null" json:"valid_to"`
	UsageLimit    int          `gorm:"not null;check:chk_coupons_usage,usage_limit > 0" json:"usage_limit"`
	UsedCount     int          `gorm:"not null" json:"used_count"`
	Eligibility   *string      `gorm:"size:500" json:"eligibility,omitempty"`
	Terms         *string      `gorm:"type:text" json:"terms,omitempty"`
	IsActive      bool         `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (Coupon) TableName() string { return "coupons" }

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
