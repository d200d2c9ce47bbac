package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"property_listing/internal/domain"
)

type catalogRepo struct{ db *gorm.DB }

func (r *catalogRepo) ListAmenities(ctx context.Context) ([]domain.Amenity, error) {
	out := []domain.Amenity{}
	err := r.db.WithContext(ctx).Order("category ASC").Order("name ASC").Find(&out).Error
	return out, err
}

func (r *catalogRepo) ListSafetyFeatures(ctx context.Context) ([]domain.SafetyFeature, error) {
	out := []domain.SafetyFeature{}
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *catalogRepo) CountAmenities(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return r.count(ctx, &domain.Amenity{}, dedupe(ids))
}

func (r *catalogRepo) CountSafetyFeatures(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return r.count(ctx, &domain.SafetyFeature{}, dedupe(ids))
}

func (r *catalogRepo) count(ctx context.Context, model any, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Count(&n).Error
	return n, err
}

func (r *catalogRepo) EnsureAmenity(ctx context.Context, a *domain.Amenity) (bool, error) {
	return r.ensure(ctx, &domain.Amenity{}, a.Name, a)
}

func (r *catalogRepo) EnsureSafetyFeature(ctx context.Context, s *domain.SafetyFeature) (bool, error) {
	return r.ensure(ctx, &domain.SafetyFeature{}, s.Name, s)
}

// ensure inserts row unless a row with the same name exists.
func (r *catalogRepo) ensure(ctx context.Context, model any, name string, row any) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return false, translate(err)
	}
	return true, nil
}
