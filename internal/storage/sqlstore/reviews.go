package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"property_listing/internal/domain"
)

type reviewRepo struct{ db *gorm.DB }

func (r *reviewRepo) CreateReview(ctx context.Context, rv *domain.Review) error {
	return translate(r.db.WithContext(ctx).Create(rv).Error)
}

func (r *reviewRepo) UpdateReview(ctx context.Context, rv *domain.Review) error {
	return translate(r.db.WithContext(ctx).Save(rv).Error)
}

func (r *reviewRepo) DeleteReview(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementHelpful bumps the counter in SQL so concurrent votes are not lost.
func (r *reviewRepo) IncrementHelpful(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("id = ?", id).
		UpdateColumn("helpful_count", gorm.Expr("helpful_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reviewRepo) GetReview(ctx context.Context, id uuid.UUID) (domain.Review, error) {
	var rv domain.Review
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rv).Error
	return rv, translate(err)
}

func (r *reviewRepo) ReviewExists(ctx context.Context, propertyID, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("property_id = ? AND user_id = ?", propertyID, userID).
		Count(&n).Error
	return n > 0, err
}

// ListReviews returns newest first.
func (r *reviewRepo) ListReviews(ctx context.Context, propertyID uuid.UUID, pg domain.PageQuery) ([]domain.Review, int64, error) {
	var total int64
	base := func(db *gorm.DB) *gorm.DB { return db.Where("property_id = ?", propertyID) }
	if err := r.db.WithContext(ctx).Model(&domain.Review{}).Scopes(base).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []domain.Review{}
	err := r.db.WithContext(ctx).Scopes(base, paginate(pg)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	return out, total, err
}
