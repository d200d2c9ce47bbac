package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"property_listing/internal/domain"
)

type LocationInput struct {
	Address    string   `json:"address" validate:"required,min=5,max=500"`
	City       string   `json:"city" validate:"required,min=2,max=100"`
	State      *string  `json:"state" validate:"omitempty,max=100"`
	Country    string   `json:"country" validate:"required,min=2,max=100"`
	PostalCode *string  `json:"postal_code" validate:"omitempty,max=20"`
	Latitude   *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type ImageInput struct {
	ImageURL     string  `json:"image_url" validate:"required,max=1000"`
	DisplayOrder int     `json:"display_order" validate:"gte=0"`
	IsCover      bool    `json:"is_cover"`
	AltText      *string `json:"alt_text" validate:"omitempty,max=255"`
}

type CreatePropertyInput struct {
	Title        string              `json:"title" validate:"required,min=10,max=200"`
	Description  string              `json:"description" validate:"required,min=50"`
	PropertyType domain.PropertyType `json:"property_type" validate:"required,oneof=house apartment guest_house hotel"`
	PlaceType    domain.PlaceType    `json:"place_type" validate:"required,oneof=entire_place private_room shared_room"`

	Bedrooms    *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Beds        *int     `json:"beds" validate:"omitempty,gte=0"`
	Bathrooms   *float64 `json:"bathrooms" validate:"omitempty,gte=0"`
	MaxGuests   *int     `json:"max_guests" validate:"omitempty,gt=0"`
	MaxAdults   *int     `json:"max_adults" validate:"omitempty,gte=0"`
	MaxChildren *int     `json:"max_children" validate:"omitempty,gte=0"`
	MaxInfants  *int     `json:"max_infants" validate:"omitempty,gte=0"`
	PetsAllowed bool     `json:"pets_allowed"`

	PricePerNight   int64  `json:"price_per_night" validate:"gt=0"`
	Currency        string `json:"currency" validate:"omitempty,len=3"`
	CleaningFee     *int64 `json:"cleaning_fee" validate:"omitempty,gte=0"`
	ServiceFee      *int64 `json:"service_fee" validate:"omitempty,gte=0"`
	WeeklyDiscount  *int   `json:"weekly_discount" validate:"omitempty,gte=0,lte=100"`
	MonthlyDiscount *int   `json:"monthly_discount" validate:"omitempty,gte=0,lte=100"`

	Location LocationInput `json:"location" validate:"required"`
	Images   []ImageInput  `json:"images" validate:"min=3,dive"`

	AmenityIDs       []uuid.UUID `json:"amenity_ids"`
	SafetyFeatureIDs []uuid.UUID `json:"safety_feature_ids"`

	HouseRules         []string `json:"house_rules" validate:"dive,max=1000"`
	CancellationPolicy *string  `json:"cancellation_policy"`
	CheckInPolicy      *string  `json:"check_in_policy"`

	IsActive    *bool `json:"is_active"`
	InstantBook bool  `json:"instant_book"`
}

type LocationPatch struct {
	Address    *string  `json:"address" validate:"omitempty,min=5,max=500"`
	City       *string  `json:"city" validate:"omitempty,min=2,max=100"`
	State      *string  `json:"state" validate:"omitempty,max=100"`
	Country    *string  `json:"country" validate:"omitempty,min=2,max=100"`
	PostalCode *string  `json:"postal_code" validate:"omitempty,max=20"`
	Latitude   *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// UpdatePropertyInput applies only the fields that are set. Nil id slices leave links untouched.
type UpdatePropertyInput struct {
	Title        *string              `json:"title" validate:"omitempty,min=10,max=200"`
	Description  *string              `json:"description" validate:"omitempty,min=50"`
	PropertyType *domain.PropertyType `json:"property_type" validate:"omitempty,oneof=house apartment guest_house hotel"`
	PlaceType    *domain.PlaceType    `json:"place_type" validate:"omitempty,oneof=entire_place private_room shared_room"`

	Bedrooms    *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Beds        *int     `json:"beds" validate:"omitempty,gte=0"`
	Bathrooms   *float64 `json:"bathrooms" validate:"omitempty,gte=0"`
	MaxGuests   *int     `json:"max_guests" validate:"omitempty,gt=0"`
	MaxAdults   *int     `json:"max_adults" validate:"omitempty,gte=0"`
	MaxChildren *int     `json:"max_children" validate:"omitempty,gte=0"`
	MaxInfants  *int     `json:"max_infants" validate:"omitempty,gte=0"`
	PetsAllowed *bool    `json:"pets_allowed"`

	PricePerNight   *int64  `json:"price_per_night" validate:"omitempty,gt=0"`
	Currency        *string `json:"currency" validate:"omitempty,len=3"`
	CleaningFee     *int64  `json:"cleaning_fee" validate:"omitempty,gte=0"`
	ServiceFee      *int64  `json:"service_fee" validate:"omitempty,gte=0"`
	WeeklyDiscount  *int    `json:"weekly_discount" validate:"omitempty,gte=0,lte=100"`
	MonthlyDiscount *int    `json:"monthly_discount" validate:"omitempty,gte=0,lte=100"`

	Location *LocationPatch `json:"location"`

	AmenityIDs       []uuid.UUID `json:"amenity_ids"`
	SafetyFeatureIDs []uuid.UUID `json:"safety_feature_ids"`

	HouseRules         []string `json:"house_rules" validate:"omitempty,dive,max=1000"`
	CancellationPolicy *string  `json:"cancellation_policy"`
	CheckInPolicy      *string  `json:"check_in_policy"`

	IsActive    *bool `json:"is_active"`
	InstantBook *bool `json:"instant_book"`
}

type AvailabilityInput struct {
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"required,datetime=2006-01-02"`
	IsAvailable   *bool  `json:"is_available"`
	PriceOverride *int64 `json:"price_override" validate:"omitempty,gt=0"`
}

// SearchQuery extends the listing filter with party size; adults plus children become a guest minimum.
type SearchQuery struct {
	domain.PropertyFilter
	Adults   int
	Children int
}

type PropertyService struct {
	store domain.Store
	now   func() time.Time
}

func NewPropertyService(s domain.Store) *PropertyService {
	return &PropertyService{store: s, now: func() time.Time { return time.Now().UTC() }}
}

func requireHost(caller domain.Identity) (uuid.UUID, error) {
	if !caller.IsActive {
		return uuid.Nil, domain.ErrInactiveUser
	}
	id, ok := caller.HostID()
	if !ok {
		return uuid.Nil, domain.ErrNoHostIdentity
	}
	return id, nil
}

// normalizeImages enforces exactly one cover and unique display orders.
// When every order is zero the images are numbered in input order.
func normalizeImages(in []ImageInput) ([]domain.PropertyImage, error) {
	covers := 0
	allZero := true
	for _, img := range in {
		if img.IsCover {
			covers++
		}
		if img.DisplayOrder != 0 {
			allZero = false
		}
	}
	if covers > 1 {
		return nil, domain.Validationf("only one image can be marked as cover")
	}
	out := make([]domain.PropertyImage, 0, len(in))
	seen := make(map[int]bool, len(in))
	for i, img := range in {
		order := img.DisplayOrder
		if allZero {
			order = i
		}
		if seen[order] {
			return nil, domain.Validationf("duplicate image display_order %d", order)
		}
		seen[order] = true
		out = append(out, domain.PropertyImage{
			ImageURL:     strings.TrimSpace(img.ImageURL),
			DisplayOrder: order,
			IsCover:      img.IsCover || (covers == 0 && i == 0),
			AltText:      img.AltText,
		})
	}
	return out, nil
}

func (s *PropertyService) checkCatalogIDs(ctx context.Context, amenities, safety []uuid.UUID) error {
	cat := s.store.Catalog()
	if ids := uniq(amenities); len(ids) > 0 {
		n, err := cat.CountAmenities(ctx, ids)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return domain.Validationf("unknown amenity id")
		}
	}
	if ids := uniq(safety); len(ids) > 0 {
		n, err := cat.CountSafetyFeatures(ctx, ids)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return domain.Validationf("unknown safety feature id")
		}
	}
	return nil
}

// Create persists the property with its location, images, rules and catalog links in one transaction.
func (s *PropertyService) Create(ctx context.Context, caller domain.Identity, in CreatePropertyInput) (PropertyDetail, error) {
	hostID, err := requireHost(caller)
	if err != nil {
		return PropertyDetail{}, err
	}
	if err := check(in); err != nil {
		return PropertyDetail{}, err
	}
	images, err := normalizeImages(in.Images)
	if err != nil {
		return PropertyDetail{}, err
	}
	if err := s.checkCatalogIDs(ctx, in.AmenityIDs, in.SafetyFeatureIDs); err != nil {
		return PropertyDetail{}, err
	}

	now := s.now()
	p := domain.Property{
		Title:              strings.TrimSpace(in.Title),
		Description:        in.Description,
		PropertyType:       in.PropertyType,
		PlaceType:          in.PlaceType,
		Bedrooms:           intOr(in.Bedrooms, 1),
		Beds:               intOr(in.Beds, 1),
		Bathrooms:          floatOr(in.Bathrooms, 1),
		MaxGuests:          intOr(in.MaxGuests, 2),
		MaxAdults:          intOr(in.MaxAdults, 2),
		MaxChildren:        intOr(in.MaxChildren, 0),
		MaxInfants:         intOr(in.MaxInfants, 0),
		PetsAllowed:        in.PetsAllowed,
		PricePerNight:      in.PricePerNight,
		Currency:           currencyOr(in.Currency),
		CleaningFee:        in.CleaningFee,
		ServiceFee:         in.ServiceFee,
		WeeklyDiscount:     in.WeeklyDiscount,
		MonthlyDiscount:    in.MonthlyDiscount,
		HostID:             hostID,
		HostName:           caller.DisplayName(),
		HostEmail:          caller.Email,
		HostAvatar:         caller.AvatarURL,
		HostSyncedAt:       &now,
		IsActive:           in.IsActive == nil || *in.IsActive,
		VerificationStatus: domain.VerificationPending,
		InstantBook:        in.InstantBook,
		Images:             images,
		Rules:              buildRules(in.HouseRules, in.CancellationPolicy, in.CheckInPolicy),
		Location: &domain.Location{
			Address:    strings.TrimSpace(in.Location.Address),
			City:       strings.TrimSpace(in.Location.City),
			State:      in.Location.State,
			Country:    strings.TrimSpace(in.Location.Country),
			PostalCode: in.Location.PostalCode,
			Latitude:   *in.Location.Latitude,
			Longitude:  *in.Location.Longitude,
		},
	}
	if p.IsActive {
		p.PublishedAt = &now
	}

	var out domain.Property
	err = s.store.InTx(ctx, func(tx domain.Store) error {
		props := tx.Properties()
		slug, err := uniqueSlug(ctx, props, p.Title, uuid.Nil)
		if err != nil {
			return err
		}
		p.Slug = slug
		if err := props.CreateProperty(ctx, &p); err != nil {
			return err
		}
		if err := props.LinkAmenities(ctx, p.ID, in.AmenityIDs); err != nil {
			return err
		}
		if err := props.LinkSafetyFeatures(ctx, p.ID, in.SafetyFeatureIDs); err != nil {
			return err
		}
		out, err = props.GetProperty(ctx, p.ID)
		return err
	})
	if err != nil {
		return PropertyDetail{}, err
	}
	return toDetail(out), nil
}

// Get returns the property. Inactive properties are visible to their host only; others get ErrNotFound.
func (s *PropertyService) Get(ctx context.Context, id uuid.UUID, caller *domain.Identity) (PropertyDetail, error) {
	p, err := visibleProperty(ctx, s.store.Properties(), caller, id)
	if err != nil {
		return PropertyDetail{}, err
	}
	return toDetail(p), nil
}

func (s *PropertyService) GetBySlug(ctx context.Context, slug string, caller *domain.Identity) (PropertyDetail, error) {
	p, err := s.store.Properties().GetPropertyBySlug(ctx, slug)
	if err != nil {
		return PropertyDetail{}, err
	}
	if !visible(p, caller) {
		return PropertyDetail{}, domain.NotFoundf("property %q", slug)
	}
	return toDetail(p), nil
}

func visible(p domain.Property, caller *domain.Identity) bool {
	return p.IsActive || (caller != nil && caller.ID == p.HostID)
}

// visibleProperty loads id and hides it, and everything hanging off it, from anyone but the host while inactive.
func visibleProperty(ctx context.Context, props domain.PropertyRepository, caller *domain.Identity, id uuid.UUID) (domain.Property, error) {
	p, err := props.GetProperty(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	if !visible(p, caller) {
		return domain.Property{}, domain.NotFoundf("property %s", id)
	}
	return p, nil
}

// owned loads the property and checks that the caller hosts it.
func owned(ctx context.Context, props domain.PropertyRepository, caller domain.Identity, id uuid.UUID) (domain.Property, error) {
	hostID, err := requireHost(caller)
	if err != nil {
		return domain.Property{}, err
	}
	p, err := props.GetProperty(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	if p.HostID != hostID {
		return domain.Property{}, domain.ErrNotOwner
	}
	return p, nil
}

// Update applies a partial update. PUT and PATCH share it.
func (s *PropertyService) Update(ctx context.Context, caller domain.Identity, id uuid.UUID, in UpdatePropertyInput) (PropertyDetail, error) {
	if err := check(in); err != nil {
		return PropertyDetail{}, err
	}
	if err := s.checkCatalogIDs(ctx, in.AmenityIDs, in.SafetyFeatureIDs); err != nil {
		return PropertyDetail{}, err
	}

	var out domain.Property
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		props := tx.Properties()
		p, err := owned(ctx, props, caller, id)
		if err != nil {
			return err
		}
		if in.Title != nil && strings.TrimSpace(*in.Title) != p.Title {
			p.Title = strings.TrimSpace(*in.Title)
			if p.Slug, err = uniqueSlug(ctx, props, p.Title, p.ID); err != nil {
				return err
			}
		}
		s.applyPatch(&p, in)
		if err := props.UpdateProperty(ctx, &p); err != nil {
			return err
		}
		if in.AmenityIDs != nil {
			if err := props.ReplaceAmenities(ctx, p.ID, in.AmenityIDs); err != nil {
				return err
			}
		}
		if in.SafetyFeatureIDs != nil {
			if err := props.ReplaceSafetyFeatures(ctx, p.ID, in.SafetyFeatureIDs); err != nil {
				return err
			}
		}
		if in.HouseRules != nil {
			if err := props.ReplaceRules(ctx, p.ID, domain.RuleHouse, in.HouseRules); err != nil {
				return err
			}
		}
		if in.CancellationPolicy != nil {
			if err := props.ReplaceRules(ctx, p.ID, domain.RuleCancellation, []string{*in.CancellationPolicy}); err != nil {
				return err
			}
		}
		if in.CheckInPolicy != nil {
			if err := props.ReplaceRules(ctx, p.ID, domain.RuleCheckIn, []string{*in.CheckInPolicy}); err != nil {
				return err
			}
		}
		out, err = props.GetProperty(ctx, p.ID)
		return err
	})
	if err != nil {
		return PropertyDetail{}, err
	}
	return toDetail(out), nil
}

func (s *PropertyService) applyPatch(p *domain.Property, in UpdatePropertyInput) {
	setIf(&p.Description, in.Description)
	setIf(&p.PropertyType, in.PropertyType)
	setIf(&p.PlaceType, in.PlaceType)
	setIf(&p.Bedrooms, in.Bedrooms)
	setIf(&p.Beds, in.Beds)
	setIf(&p.Bathrooms, in.Bathrooms)
	setIf(&p.MaxGuests, in.MaxGuests)
	setIf(&p.MaxAdults, in.MaxAdults)
	setIf(&p.MaxChildren, in.MaxChildren)
	setIf(&p.MaxInfants, in.MaxInfants)
	setIf(&p.PetsAllowed, in.PetsAllowed)
	setIf(&p.PricePerNight, in.PricePerNight)
	setIf(&p.InstantBook, in.InstantBook)
	if in.Currency != nil {
		p.Currency = strings.ToUpper(*in.Currency)
	}
	setPtr(&p.CleaningFee, in.CleaningFee)
	setPtr(&p.ServiceFee, in.ServiceFee)
	setPtr(&p.WeeklyDiscount, in.WeeklyDiscount)
	setPtr(&p.MonthlyDiscount, in.MonthlyDiscount)
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
		if p.IsActive && p.PublishedAt == nil {
			now := s.now()
			p.PublishedAt = &now
		}
	}
	if l := in.Location; l != nil && p.Location != nil {
		setIf(&p.Location.Address, l.Address)
		setIf(&p.Location.City, l.City)
		setIf(&p.Location.Country, l.Country)
		setIf(&p.Location.Latitude, l.Latitude)
		setIf(&p.Location.Longitude, l.Longitude)
		setPtr(&p.Location.State, l.State)
		setPtr(&p.Location.PostalCode, l.PostalCode)
	}
}

func (s *PropertyService) Delete(ctx context.Context, caller domain.Identity, id uuid.UUID) error {
	return s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := owned(ctx, tx.Properties(), caller, id); err != nil {
			return err
		}
		return tx.Properties().DeleteProperty(ctx, id)
	})
}

// List runs the filtered listing. Callers decide whether inactive listings are included.
func (s *PropertyService) List(ctx context.Context, f domain.PropertyFilter, pg domain.PageQuery) (domain.Page[PropertySummary], error) {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return domain.Page[PropertySummary]{}, domain.Validationf("min_price must not exceed max_price")
	}
	ps, total, err := s.store.Properties().ListProperties(ctx, f, pg)
	if err != nil {
		return domain.Page[PropertySummary]{}, err
	}
	return domain.NewPage(toSummaries(ps), total, pg), nil
}

// Search lists active properties matching q.
func (s *PropertyService) Search(ctx context.Context, q SearchQuery, pg domain.PageQuery) (domain.Page[PropertySummary], error) {
	if q.Adults < 0 || q.Children < 0 {
		return domain.Page[PropertySummary]{}, domain.Validationf("adults and children must not be negative")
	}
	if (q.CheckIn == nil) != (q.CheckOut == nil) {
		return domain.Page[PropertySummary]{}, domain.Validationf("check_in and check_out must be given together")
	}
	if q.CheckIn != nil && !q.CheckOut.After(*q.CheckIn) {
		return domain.Page[PropertySummary]{}, domain.Validationf("check_out must be after check_in")
	}
	f := q.PropertyFilter
	active := true
	f.IsActive = &active
	if guests := q.Adults + q.Children; guests > 0 && (f.MinGuests == nil || *f.MinGuests < guests) {
		f.MinGuests = &guests
	}
	return s.List(ctx, f, pg)
}

func (s *PropertyService) Featured(ctx context.Context, limit int) ([]PropertySummary, error) {
	if limit < 1 || limit > 50 {
		return nil, domain.Validationf("limit must be between 1 and 50")
	}
	yes := true
	f := domain.PropertyFilter{IsActive: &yes, IsFeatured: &yes, Sort: domain.SortRating}
	ps, _, err := s.store.Properties().ListProperties(ctx, f, domain.PageQuery{Page: 1, PageSize: limit})
	if err != nil {
		return nil, err
	}
	return toSummaries(ps), nil
}

func (s *PropertyService) Nearby(ctx context.Context, q domain.NearbyQuery) ([]PropertySummary, error) {
	switch {
	case q.Lat < -90 || q.Lat > 90 || q.Lng < -180 || q.Lng > 180:
		return nil, domain.Validationf("lat/lng out of range")
	case q.RadiusKm < 1 || q.RadiusKm > 100:
		return nil, domain.Validationf("radius must be between 1 and 100 km")
	case q.Limit < 1 || q.Limit > 100:
		return nil, domain.Validationf("limit must be between 1 and 100")
	}
	ps, err := s.store.Properties().NearbyProperties(ctx, q)
	if err != nil {
		return nil, err
	}
	return toSummaries(ps), nil
}

// HostProperties lists a host's active properties.
func (s *PropertyService) HostProperties(ctx context.Context, hostID uuid.UUID, pg domain.PageQuery) (domain.Page[PropertySummary], error) {
	active := true
	return s.List(ctx, domain.PropertyFilter{HostID: &hostID, IsActive: &active}, pg)
}

// MyProperties lists every property of the caller, active or not.
func (s *PropertyService) MyProperties(ctx context.Context, caller domain.Identity, pg domain.PageQuery) (domain.Page[PropertySummary], error) {
	hostID, err := requireHost(caller)
	if err != nil {
		return domain.Page[PropertySummary]{}, err
	}
	return s.List(ctx, domain.PropertyFilter{HostID: &hostID}, pg)
}

func (s *PropertyService) AddAvailability(ctx context.Context, caller domain.Identity, propertyID uuid.UUID, in AvailabilityInput) (domain.Availability, error) {
	if err := check(in); err != nil {
		return domain.Availability{}, err
	}
	start, _ := time.Parse(time.DateOnly, in.StartDate)
	end, _ := time.Parse(time.DateOnly, in.EndDate)
	if end.Before(start) {
		return domain.Availability{}, domain.Validationf("end_date must not be before start_date")
	}
	a := domain.Availability{
		PropertyID:    propertyID,
		StartDate:     start,
		EndDate:       end,
		IsAvailable:   in.IsAvailable == nil || *in.IsAvailable,
		PriceOverride: in.PriceOverride,
	}
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := owned(ctx, tx.Properties(), caller, propertyID); err != nil {
			return err
		}
		return tx.Properties().AddAvailability(ctx, &a)
	})
	return a, err
}

func (s *PropertyService) ListAvailability(ctx context.Context, caller *domain.Identity, propertyID uuid.UUID) ([]domain.Availability, error) {
	if _, err := visibleProperty(ctx, s.store.Properties(), caller, propertyID); err != nil {
		return nil, err
	}
	return s.store.Properties().ListAvailability(ctx, propertyID)
}

// ---- helpers ----

func buildRules(house []string, cancellation, checkIn *string) []domain.PropertyRule {
	var rules []domain.PropertyRule
	for _, r := range house {
		if r = strings.TrimSpace(r); r != "" {
			rules = append(rules, domain.PropertyRule{RuleType: domain.RuleHouse, Description: r, Position: len(rules)})
		}
	}
	if cancellation != nil && strings.TrimSpace(*cancellation) != "" {
		rules = append(rules, domain.PropertyRule{RuleType: domain.RuleCancellation, Description: *cancellation})
	}
	if checkIn != nil && strings.TrimSpace(*checkIn) != "" {
		rules = append(rules, domain.PropertyRule{RuleType: domain.RuleCheckIn, Description: *checkIn})
	}
	return rules
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// setPtr replaces an optional field only when a new value was supplied.
func setPtr[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func currencyOr(c string) string {
	if c == "" {
		return "USD"
	}
	return strings.ToUpper(c)
}

func uniq(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func isConflict(err error) bool { return errors.Is(err, domain.ErrConflict) }
