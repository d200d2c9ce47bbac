package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"property_listing/internal/domain"
)

type ServiceAreaInput struct {
	Name   string  `json:"name" validate:"required,max=200"`
	Lat    float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng    float64 `json:"lng" validate:"gte=-180,lte=180"`
	Radius float64 `json:"radius" validate:"gte=0"`
}

func (a ServiceAreaInput) toDomain() domain.ServiceArea {
	return domain.ServiceArea{Name: strings.TrimSpace(a.Name), Lat: a.Lat, Lng: a.Lng, Radius: a.Radius}
}

type VendorServiceInput struct {
	Title         string                 `json:"title" validate:"required,max=200"`
	Description   string                 `json:"description" validate:"required"`
	Category      domain.ServiceCategory `json:"category" validate:"required"`
	Duration      int                    `json:"duration" validate:"gte=0"`
	AllowedGuests int                    `json:"allowed_guests" validate:"gte=0"`
	Price         int64                  `json:"price" validate:"gte=0"`
	ServiceArea   ServiceAreaInput       `json:"service_area" validate:"required"`
	Image         string                 `json:"image" validate:"required,max=1000"`
	IsActive      *bool                  `json:"is_active"`
}

type VendorServicePatch struct {
	Title         *string                 `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string                 `json:"description" validate:"omitempty,min=1"`
	Category      *domain.ServiceCategory `json:"category"`
	Duration      *int                    `json:"duration" validate:"omitempty,gte=0"`
	AllowedGuests *int                    `json:"allowed_guests" validate:"omitempty,gte=0"`
	Price         *int64                  `json:"price" validate:"omitempty,gte=0"`
	ServiceArea   *ServiceAreaInput       `json:"service_area"`
	Image         *string                 `json:"image" validate:"omitempty,min=1,max=1000"`
	IsActive      *bool                   `json:"is_active"`
}

type CouponInput struct {
	ServiceID     uuid.UUID           `json:"service_id" validate:"required"`
	Title         string              `json:"title" validate:"required,min=3,max=100"`
	Code          string              `json:"code" validate:"required,max=15"`
	DiscountType  domain.DiscountType `json:"discount_type" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue float64             `json:"discount_value" validate:"gt=0"`
	ValidFrom     time.Time           `json:"valid_from" validate:"required"`
	ValidTo       time.Time           `json:"valid_to" validate:"required"`
	UsageLimit    int                 `json:"usage_limit" validate:"gt=0"`
	Eligibility   *string             `json:"eligibility" validate:"omitempty,max=500"`
	Terms         *string             `json:"terms"`
	IsActive      *bool               `json:"is_active"`
}

type CouponPatch struct {
	Title         *string    `json:"title" validate:"omitempty,min=3,max=100"`
	DiscountValue *float64   `json:"discount_value" validate:"omitempty,gt=0"`
	ValidFrom     *time.Time `json:"valid_from"`
	ValidTo       *time.Time `json:"valid_to"`
	UsageLimit    *int       `json:"usage_limit" validate:"omitempty,gt=0"`
	Eligibility   *string    `json:"eligibility" validate:"omitempty,max=500"`
	Terms         *string    `json:"terms"`
	IsActive      *bool      `json:"is_active"`
}

// VendorsService manages vendor offerings and their coupons. The vendor is the calling user.
type VendorsService struct {
	store domain.Store
}

func NewVendorsService(s domain.Store) *VendorsService { return &VendorsService{store: s} }

func activeCaller(caller domain.Identity) error {
	if !caller.IsActive {
		return domain.ErrInactiveUser
	}
	return nil
}

func (s *VendorsService) CreateService(ctx context.Context, caller domain.Identity, in VendorServiceInput) (domain.VendorService, error) {
	if err := activeCaller(caller); err != nil {
		return domain.VendorService{}, err
	}
	if err := check(in); err != nil {
		return domain.VendorService{}, err
	}
	if !in.Category.Valid() {
		return domain.VendorService{}, domain.Validationf("unknown service category %q", in.Category)
	}
	v := domain.VendorService{
		VendorID:      caller.ID,
		VendorName:    caller.DisplayName(),
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Category:      in.Category,
		Duration:      in.Duration,
		AllowedGuests: in.AllowedGuests,
		Price:         in.Price,
		Image:         strings.TrimSpace(in.Image),
		IsActive:      in.IsActive == nil || *in.IsActive,
		ServiceArea:   datatypes.NewJSONType(in.ServiceArea.toDomain()),
	}
	if err := s.store.Vendors().CreateService(ctx, &v); err != nil {
		return domain.VendorService{}, err
	}
	return v, nil
}

func (s *VendorsService) GetService(ctx context.Context, id uuid.UUID) (domain.VendorService, error) {
	return s.store.Vendors().GetService(ctx, id)
}

// offered loads a service and checks that the caller is its vendor.
func offered(ctx context.Context, repo domain.VendorRepository, caller domain.Identity, id uuid.UUID) (domain.VendorService, error) {
	if err := activeCaller(caller); err != nil {
		return domain.VendorService{}, err
	}
	v, err := repo.GetService(ctx, id)
	if err != nil {
		return domain.VendorService{}, err
	}
	if v.VendorID != caller.ID {
		return domain.VendorService{}, domain.ErrNotOwner
	}
	return v, nil
}

func (s *VendorsService) UpdateService(ctx context.Context, caller domain.Identity, id uuid.UUID, in VendorServicePatch) (domain.VendorService, error) {
	if err := check(in); err != nil {
		return domain.VendorService{}, err
	}
	if in.Category != nil && !in.Category.Valid() {
		return domain.VendorService{}, domain.Validationf("unknown service category %q", *in.Category)
	}
	if in.ServiceArea != nil {
		if err := check(*in.ServiceArea); err != nil {
			return domain.VendorService{}, err
		}
	}
	var out domain.VendorService
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		v, err := offered(ctx, tx.Vendors(), caller, id)
		if err != nil {
			return err
		}
		setIf(&v.Title, in.Title)
		setIf(&v.Description, in.Description)
		setIf(&v.Category, in.Category)
		setIf(&v.Duration, in.Duration)
		setIf(&v.AllowedGuests, in.AllowedGuests)
		setIf(&v.Price, in.Price)
		setIf(&v.Image, in.Image)
		setIf(&v.IsActive, in.IsActive)
		if in.ServiceArea != nil {
			v.ServiceArea = datatypes.NewJSONType(in.ServiceArea.toDomain())
		}
		out = v
		return tx.Vendors().UpdateService(ctx, &v)
	})
	return out, err
}

func (s *VendorsService) DeleteService(ctx context.Context, caller domain.Identity, id uuid.UUID) error {
	return s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := offered(ctx, tx.Vendors(), caller, id); err != nil {
			return err
		}
		return tx.Vendors().DeleteService(ctx, id)
	})
}

func (s *VendorsService) ListServices(ctx context.Context, f domain.ServiceFilter, pg domain.PageQuery) (domain.Page[domain.VendorService], error) {
	if f.Category != nil && !f.Category.Valid() {
		return domain.Page[domain.VendorService]{}, domain.Validationf("unknown service category %q", *f.Category)
	}
	vs, total, err := s.store.Vendors().ListServices(ctx, f, pg)
	if err != nil {
		return domain.Page[domain.VendorService]{}, err
	}
	return domain.NewPage(vs, total, pg), nil
}

func (s *VendorsService) MyServices(ctx context.Context, caller domain.Identity, pg domain.PageQuery) (domain.Page[domain.VendorService], error) {
	return s.ListServices(ctx, domain.ServiceFilter{VendorID: &caller.ID}, pg)
}

// ---- coupons ----

func (s *VendorsService) CreateCoupon(ctx context.Context, caller domain.Identity, in CouponInput) (domain.Coupon, error) {
	if err := check(in); err != nil {
		return domain.Coupon{}, err
	}
	if !in.ValidTo.After(in.ValidFrom) {
		return domain.Coupon{}, domain.Validationf("valid_to must be after valid_from")
	}
	dt := in.DiscountType
	if dt == "" {
		dt = domain.DiscountPercentage
	}
	if dt == domain.DiscountPercentage && in.DiscountValue > 100 {
		return domain.Coupon{}, domain.Validationf("percentage discount must not exceed 100")
	}
	c := domain.Coupon{
		ServiceID:     in.ServiceID,
		Title:         strings.TrimSpace(in.Title),
		Code:          strings.TrimSpace(in.Code),
		DiscountType:  dt,
		DiscountValue: in.DiscountValue,
		ValidFrom:     in.ValidFrom.UTC(),
		ValidTo:       in.ValidTo.UTC(),
		UsageLimit:    in.UsageLimit,
		Eligibility:   in.Eligibility,
		Terms:         in.Terms,
		IsActive:      in.IsActive == nil || *in.IsActive,
	}
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := offered(ctx, tx.Vendors(), caller, in.ServiceID); err != nil {
			return err
		}
		return tx.Vendors().CreateCoupon(ctx, &c)
	})
	return c, err
}

func (s *VendorsService) GetCoupon(ctx context.Context, id uuid.UUID) (domain.Coupon, error) {
	return s.store.Vendors().GetCoupon(ctx, id)
}

func (s *VendorsService) ListCoupons(ctx context.Context, f domain.CouponFilter, pg domain.PageQuery) (domain.Page[domain.Coupon], error) {
	cs, total, err := s.store.Vendors().ListCoupons(ctx, f, pg)
	if err != nil {
		return domain.Page[domain.Coupon]{}, err
	}
	return domain.NewPage(cs, total, pg), nil
}

func (s *VendorsService) UpdateCoupon(ctx context.Context, caller domain.Identity, id uuid.UUID, in CouponPatch) (domain.Coupon, error) {
	if err := check(in); err != nil {
		return domain.Coupon{}, err
	}
	var out domain.Coupon
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		c, err := tx.Vendors().GetCoupon(ctx, id)
		if err != nil {
			return err
		}
		if _, err := offered(ctx, tx.Vendors(), caller, c.ServiceID); err != nil {
			return err
		}
		if in.Title != nil {
			c.Title = strings.TrimSpace(*in.Title)
		}
		setIf(&c.DiscountValue, in.DiscountValue)
		setIf(&c.UsageLimit, in.UsageLimit)
		setIf(&c.IsActive, in.IsActive)
		setPtr(&c.Eligibility, in.Eligibility)
		setPtr(&c.Terms, in.Terms)
		if in.ValidFrom != nil {
			c.ValidFrom = in.ValidFrom.UTC()
		}
		if in.ValidTo != nil {
			c.ValidTo = in.ValidTo.UTC()
		}
		if !c.ValidTo.After(c.ValidFrom) {
			return domain.Validationf("valid_to must be after valid_from")
		}
		if c.DiscountType == domain.DiscountPercentage && c.DiscountValue > 100 {
			return domain.Validationf("percentage discount must not exceed 100")
		}
		out = c
		return tx.Vendors().UpdateCoupon(ctx, &c)
	})
	return out, err
}

func (s *VendorsService) DeleteCoupon(ctx context.Context, caller domain.Identity, id uuid.UUID) error {
	return s.store.InTx(ctx, func(tx domain.Store) error {
		c, err := tx.Vendors().GetCoupon(ctx, id)
		if err != nil {
			return err
		}
		if _, err := offered(ctx, tx.Vendors(), caller, c.ServiceID); err != nil {
			return err
		}
		return tx.Vendors().DeleteCoupon(ctx, id)
	})
}
