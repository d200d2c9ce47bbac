package app

import (
	"context"
	"strings"
	"time"

	"property_listing/internal/domain"
)

const (
	amenitiesKey      = "catalog:amenities"
	safetyFeaturesKey = "catalog:safety_features"
)

// CatalogService serves the amenity and safety-feature reference lists, cache-aside.
// A nil cache reads straight from the store.
type CatalogService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(s domain.Store, c domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{store: s, cache: c, cacheTTL: ttl}
}

func (s *CatalogService) Amenities(ctx context.Context) ([]domain.Amenity, error) {
	var out []domain.Amenity
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, amenitiesKey, &out); ok {
			return out, nil
		}
	}
	out, err := s.store.Catalog().ListAmenities(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, amenitiesKey, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func (s *CatalogService) SafetyFeatures(ctx context.Context) ([]domain.SafetyFeature, error) {
	var out []domain.SafetyFeature
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, safetyFeaturesKey, &out); ok {
			return out, nil
		}
	}
	out, err := s.store.Catalog().ListSafetyFeatures(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, safetyFeaturesKey, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// SeedResult counts the rows a Seed call inserted.
type SeedResult struct {
	Amenities      int
	SafetyFeatures int
}

// Seed inserts catalog entries missing by name and drops the cached lists.
func (s *CatalogService) Seed(ctx context.Context, amenities []domain.Amenity, features []domain.SafetyFeature) (SeedResult, error) {
	var res SeedResult
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		for i := range amenities {
			a := amenities[i]
			a.Name = strings.TrimSpace(a.Name)
			a.Category = domain.ParseAmenityCategory(string(a.Category))
			created, err := tx.Catalog().EnsureAmenity(ctx, &a)
			if err != nil {
				return err
			}
			if created {
				res.Amenities++
			}
		}
		for i := range features {
			f := features[i]
			f.Name = strings.TrimSpace(f.Name)
			created, err := tx.Catalog().EnsureSafetyFeature(ctx, &f)
			if err != nil {
				return err
			}
			if created {
				res.SafetyFeatures++
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, amenitiesKey)
		_ = s.cache.Del(ctx, safetyFeaturesKey)
	}
	return res, nil
}
