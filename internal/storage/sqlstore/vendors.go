package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"property_listing/internal/domain"
)

type vendorRepo struct{ db *gorm.DB }

func (r *vendorRepo) CreateService(ctx context.Context, s *domain.VendorService) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error)
}

func (r *vendorRepo) UpdateService(ctx context.Context, s *domain.VendorService) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error)
}

// DeleteService removes the service and its coupons.
func (r *vendorRepo) DeleteService(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("service_id = ?", id).Delete(&domain.Coupon{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&domain.VendorService{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *vendorRepo) GetService(ctx context.Context, id uuid.UUID) (domain.VendorService, error) {
	var s domain.VendorService
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	return s, translate(err)
}

func (r *vendorRepo) ListServices(ctx context.Context, f domain.ServiceFilter, pg domain.PageQuery) ([]domain.VendorService, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if f.VendorID != nil {
			db = db.Where("vendor_id = ?", *f.VendorID)
		}
		if f.Category != nil {
			db = db.Where("category = ?", *f.Category)
		}
		if f.ActiveOnly {
			db = db.Where("is_active = ?", true)
		}
		return db
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.VendorService{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []domain.VendorService{}
	err := r.db.WithContext(ctx).Scopes(scope, paginate(pg)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	return out, total, err
}

func (r *vendorRepo) CreateCoupon(ctx context.Context, c *domain.Coupon) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *vendorRepo) UpdateCoupon(ctx context.Context, c *domain.Coupon) error {
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

func (r *vendorRepo) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Coupon{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *vendorRepo) GetCoupon(ctx context.Context, id uuid.UUID) (domain.Coupon, error) {
	var c domain.Coupon
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	return c, translate(err)
}

func (r *vendorRepo) ListCoupons(ctx context.Context, f domain.CouponFilter, pg domain.PageQuery) ([]domain.Coupon, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if f.ServiceID != nil {
			db = db.Where("service_id = ?", *f.ServiceID)
		}
		if f.ActiveOnly {
			db = db.Where("is_active = ?", true)
		}
		return db
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Coupon{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []domain.Coupon{}
	err := r.db.WithContext(ctx).Scopes(scope, paginate(pg)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	return out, total, err
}
