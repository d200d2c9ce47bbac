package domain

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Store hands out repositories bound to one database session.
// InTx runs fn against repositories sharing a single transaction; any error rolls it back.
type Store interface {
	Properties() PropertyRepository
	Reviews() ReviewRepository
	Experiences() ExperienceRepository
	Vendors() VendorRepository
	Catalog() CatalogRepository
	InTx(ctx context.Context, fn func(tx Store) error) error
}

type PropertyRepository interface {
	// Write paths
	CreateProperty(ctx context.Context, p *Property) error
	UpdateProperty(ctx context.Context, p *Property) error
	DeleteProperty(ctx context.Context, id uuid.UUID) error
	LinkAmenities(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) error
	LinkSafetyFeatures(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) error
	ReplaceAmenities(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) error
	ReplaceSafetyFeatures(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) error
	ReplaceRules(ctx context.Context, propertyID uuid.UUID, t RuleType, descriptions []string) error
	RecomputeRating(ctx context.Context, propertyID uuid.UUID) error
	AddAvailability(ctx context.Context, a *Availability) error
	UpdateHostFields(ctx context.Context, h HostProfile, at time.Time) (int64, error)

	// Read paths
	GetProperty(ctx context.Context, id uuid.UUID) (Property, error)
	GetPropertyBySlug(ctx context.Context, slug string) (Property, error)
	SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	ListProperties(ctx context.Context, f PropertyFilter, pg PageQuery) ([]Property, int64, error)
	NearbyProperties(ctx context.Context, q NearbyQuery) ([]Property, error)
	OwnedPropertyIDs(ctx context.Context, hostID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	ListAvailability(ctx context.Context, propertyID uuid.UUID) ([]Availability, error)
	StaleHosts(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, r *Review) error
	UpdateReview(ctx context.Context, r *Review) error
	DeleteReview(ctx context.Context, id uuid.UUID) error
	IncrementHelpful(ctx context.Context, id uuid.UUID) error

	GetReview(ctx context.Context, id uuid.UUID) (Review, error)
	ReviewExists(ctx context.Context, propertyID, userID uuid.UUID) (bool, error)
	ListReviews(ctx context.Context, propertyID uuid.UUID, pg PageQuery) ([]Review, int64, error)
}

type ExperienceFilter struct {
	HostID     *uuid.UUID
	ActiveOnly bool
}

type ExperienceRepository interface {
	CreateExperience(ctx context.Context, e *Experience) error
	UpdateExperience(ctx context.Context, e *Experience) error
	DeleteExperience(ctx context.Context, id uuid.UUID) error
	AttachProperties(ctx context.Context, experienceID uuid.UUID, propertyIDs []uuid.UUID) error
	DetachProperty(ctx context.Context, experienceID, propertyID uuid.UUID) error

	GetExperience(ctx context.Context, id uuid.UUID) (Experience, error)
	ListExperiences(ctx context.Context, f ExperienceFilter, pg PageQuery) ([]Experience, int64, error)
	PropertyExperiences(ctx context.Context, propertyID uuid.UUID, activeOnly bool) ([]Experience, error)
	ExperienceProperties(ctx context.Context, experienceID uuid.UUID) ([]Property, error)
}

type ServiceFilter struct {
	VendorID   *uuid.UUID
	Category   *ServiceCategory
	ActiveOnly bool
}

type CouponFilter struct {
	ServiceID  *uuid.UUID
	ActiveOnly bool
}

type VendorRepository interface {
	CreateService(ctx context.Context, s *VendorService) error
	UpdateService(ctx context.Context, s *VendorService) error
	DeleteService(ctx context.Context, id uuid.UUID) error
	GetService(ctx context.Context, id uuid.UUID) (VendorService, error)
	ListServices(ctx context.Context, f ServiceFilter, pg PageQuery) ([]VendorService, int64, error)

	CreateCoupon(ctx context.Context, c *Coupon) error
	UpdateCoupon(ctx context.Context, c *Coupon) error
	DeleteCoupon(ctx context.Context, id uuid.UUID) error
	GetCoupon(ctx context.Context, id uuid.UUID) (Coupon, error)
	ListCoupons(ctx context.Context, f CouponFilter, pg PageQuery) ([]Coupon, int64, error)
}

type CatalogRepository interface {
	ListAmenities(ctx context.Context) ([]Amenity, error)
	ListSafetyFeatures(ctx context.Context) ([]SafetyFeature, error)
	CountAmenities(ctx context.Context, ids []uuid.UUID) (int64, error)
	CountSafetyFeatures(ctx context.Context, ids []uuid.UUID) (int64, error)
	// Ensure* insert by name and report whether a row was created.
	EnsureAmenity(ctx context.Context, a *Amenity) (bool, error)
	EnsureSafetyFeature(ctx context.Context, s *SafetyFeature) (bool, error)
}

// Authenticator resolves a bearer token to an identity.
// It returns ErrUnauthenticated for rejected tokens and ErrUnavailable when the auth service cannot be reached.
type Authenticator interface {
	Me(ctx context.Context, token string) (Identity, error)
}

// HostDirectory looks up host profiles for the denormalized host fields.
type HostDirectory interface {
	Host(ctx context.Context, id uuid.UUID) (HostProfile, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ImageStore persists uploaded image bytes and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, url string) error
}
