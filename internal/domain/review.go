package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is unique per (property, user). Ratings are 1..5.
type Review struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	PropertyID uuid.UUID `gorm:"type:char(36);not null;index;uniqueIndex:idx_reviews_property_user,priority:1" json:"property_id"`
	UserID     uuid.UUID `gorm:"type:char(36);not null;index;uniqueIndex:idx_reviews_property_user,priority:2" json:"user_id"`

	Rating  int     `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment *string `gorm:"type:text" json:"comment,omitempty"`

	CleanlinessRating   *int `gorm:"check:chk_reviews_cleanliness,cleanliness_rating IS NULL OR (cleanliness_rating >= 1 AND cleanliness_rating <= 5)" json:"cleanliness_rating,omitempty"`
	AccuracyRating      *int `gorm:"check:chk_reviews_accuracy,accuracy_rating IS NULL OR (accuracy_rating >= 1 AND accuracy_rating <= 5)" json:"accuracy_rating,omitempty"`
	CommunicationRating *int `gorm:"check:chk_reviews_communication,communication_rating IS NULL OR (communication_rating >= 1 AND communication_rating <= 5)" json:"communication_rating,omitempty"`
	LocationRating      *int `gorm:"check:chk_reviews_location,location_rating IS NULL OR (location_rating >= 1 AND location_rating <= 5)" json:"location_rating,omitempty"`
	CheckInRating       *int `gorm:"check:chk_reviews_check_in,check_in_rating IS NULL OR (check_in_rating >= 1 AND check_in_rating <= 5)" json:"check_in_rating,omitempty"`
	ValueRating         *int `gorm:"check:chk_reviews_value,value_rating IS NULL OR (value_rating >= 1 AND value_rating <= 5)" json:"value_rating,omitempty"`

	HelpfulCount   int  `gorm:"not null" json:"helpful_count"`
	Reported       bool `gorm:"not null" json:"reported"`
	IsVerifiedStay bool `gorm:"not null" json:"is_verified_stay"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
