package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Experience is a host-owned activity that can be attached to many properties.
type Experience struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string    `gorm:"size:1000;not null" json:"image_url"`
	HostID      uuid.UUID `gorm:"type:char(36);not null;index" json:"host_id"`
	MinNights   int       `gorm:"not null;check:chk_experiences_min_nights,min_nights >= 0" json:"min_nights"`
	IsActive    bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Properties []Property `gorm:"many2many:property_experiences;constraint:OnDelete:CASCADE" json:"-"`
}

func (Experience) TableName() string { return "experiences" }

func (e *Experience) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
