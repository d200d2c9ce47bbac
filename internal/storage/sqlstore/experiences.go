package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"property_listing/internal/domain"
)

type experienceRepo struct{ db *gorm.DB }

func (r *experienceRepo) CreateExperience(ctx context.Context, e *domain.Experience) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error)
}

func (r *experienceRepo) UpdateExperience(ctx context.Context, e *domain.Experience) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(e).Error)
}

func (r *experienceRepo) DeleteExperience(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("experience_id = ?", id).Delete(&domain.PropertyExperience{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&domain.Experience{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AttachProperties skips links that already exist.
func (r *experienceRepo) AttachProperties(ctx context.Context, experienceID uuid.UUID, propertyIDs []uuid.UUID) error {
	propertyIDs = dedupe(propertyIDs)
	if len(propertyIDs) == 0 {
		return nil
	}
	rows := make([]domain.PropertyExperience, 0, len(propertyIDs))
	for _, pid := range propertyIDs {
		rows = append(rows, domain.PropertyExperience{PropertyID: pid, ExperienceID: experienceID})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *experienceRepo) DetachProperty(ctx context.Context, experienceID, propertyID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("experience_id = ? AND property_id = ?", experienceID, propertyID).
		Delete(&domain.PropertyExperience{}).Error
}

func (r *experienceRepo) GetExperience(ctx context.Context, id uuid.UUID) (domain.Experience, error) {
	var e domain.Experience
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	return e, translate(err)
}

func (r *experienceRepo) ListExperiences(ctx context.Context, f domain.ExperienceFilter, pg domain.PageQuery) ([]domain.Experience, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if f.HostID != nil {
			db = db.Where("host_id = ?", *f.HostID)
		}
		if f.ActiveOnly {
			db = db.Where("is_active = ?", true)
		}
		return db
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Experience{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []domain.Experience{}
	err := r.db.WithContext(ctx).Scopes(scope, paginate(pg)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	return out, total, err
}

func (r *experienceRepo) PropertyExperiences(ctx context.Context, propertyID uuid.UUID, activeOnly bool) ([]domain.Experience, error) {
	q := r.db.WithContext(ctx).
		Joins(joinPropertyExperiencesSQL).
		Where("pe.property_id = ?", propertyID)
	if activeOnly {
		q = q.Where("experiences.is_active = ?", true)
	}
	out := []domain.Experience{}
	err := q.Order("experiences.created_at DESC").Find(&out).Error
	return out, err
}

func (r *experienceRepo) ExperienceProperties(ctx context.Context, experienceID uuid.UUID) ([]domain.Property, error) {
	out := []domain.Property{}
	err := r.db.WithContext(ctx).
		Joins(joinExperiencePropertiesSQL).
		Where("pe.experience_id = ?", experienceID).
		Order("properties.created_at DESC").
		Preload("Location").
		Preload("Images", imagesByOrder).
		Find(&out).Error
	return out, err
}
