package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"property_listing/internal/domain"
)

type propertyRepo struct{ db *gorm.DB }

func (r *propertyRepo) CreateProperty(ctx context.Context, p *domain.Property) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Location != nil {
		if p.Location.ID == uuid.Nil {
			p.Location.ID = uuid.New()
		}
		p.LocationID = p.Location.ID
	}
	for i := range p.Images {
		p.Images[i].PropertyID = p.ID
	}
	for i := range p.Rules {
		p.Rules[i].PropertyID = p.ID
	}
	err := r.db.WithContext(ctx).
		Omit("Amenities", "SafetyFeatures", "Experiences", "Reviews", "Availabilities").
		Create(p).Error
	return translate(err)
}

func (r *propertyRepo) UpdateProperty(ctx context.Context, p *domain.Property) error {
	db := r.db.WithContext(ctx)
	if p.Location != nil {
		if err := db.Save(p.Location).Error; err != nil {
			return translate(err)
		}
	}
	return translate(db.Omit(append([]string{clause.Associations}, derivedColumns...)...).Save(p).Error)
}

// derivedColumns are kept in step by RecomputeRating and UpdateHostFields; a stale
// snapshot passed to UpdateProperty must not roll them back.
var derivedColumns = []string{
	"average_rating", "total_reviews",
	"host_name", "host_email", "host_avatar", "host_synced_at",
	"created_at",
}

// DeleteProperty removes the property, its owned rows, its join rows and its location.
// Callers run it inside a transaction.
func (r *propertyRepo) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	var p domain.Property
	if err := db.Select("id", "location_id").Where("id = ?", id).First(&p).Error; err != nil {
		return translate(err)
	}
	owned := []any{
		&domain.PropertyAmenity{},
		&domain.PropertySafetyFeature{},
		&domain.PropertyExperience{},
		&domain.PropertyImage{},
		&domain.PropertyRule{},
		&domain.Availability{},
		&domain.Review{},
	}
	for _, m := range owned {
		if err := db.Where("property_id = ?", id).Delete(m).Error; err != nil {
			return err
		}
	}
	if err := db.Where("id = ?", id).Delete(&domain.Property{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", p.LocationID).Delete(&domain.Location{}).Error
}

func (r *propertyRepo) LinkAmenities(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]domain.PropertyAmenity, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, domain.PropertyAmenity{PropertyID: propertyID, AmenityID: id})
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

func (r *propertyRepo) LinkSafetyFeatures(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]domain.PropertySafetyFeature, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, domain.PropertySafetyFeature{PropertyID: propertyID, SafetyFeatureID: id})
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

func (r *propertyRepo) ReplaceAmenities(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).Delete(&domain.PropertyAmenity{}).Error; err != nil {
		return err
	}
	return r.LinkAmenities(ctx, propertyID, ids)
}

func (r *propertyRepo) ReplaceSafetyFeatures(ctx context.Context, propertyID uuid.UUID, ids []uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).Delete(&domain.PropertySafetyFeature{}).Error; err != nil {
		return err
	}
	return r.LinkSafetyFeatures(ctx, propertyID, ids)
}

// ReplaceRules drops every rule of type t and writes one row per non-empty description.
func (r *propertyRepo) ReplaceRules(ctx context.Context, propertyID uuid.UUID, t domain.RuleType, descriptions []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("property_id = ? AND rule_type = ?", propertyID, t).Delete(&domain.PropertyRule{}).Error; err != nil {
		return err
	}
	rows := make([]domain.PropertyRule, 0, len(descriptions))
	for _, d := range descriptions {
		if strings.TrimSpace(d) == "" {
			continue
		}
		rows = append(rows, domain.PropertyRule{PropertyID: propertyID, RuleType: t, Description: d, Position: len(rows)})
	}
	if len(rows) == 0 {
		return nil
	}
	return translate(db.Create(&rows).Error)
}

func (r *propertyRepo) RecomputeRating(ctx context.Context, propertyID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(recomputeRatingSQL, propertyID, propertyID, propertyID).Error
}

func (r *propertyRepo) AddAvailability(ctx context.Context, a *domain.Availability) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *propertyRepo) UpdateHostFields(ctx context.Context, h domain.HostProfile, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Property{}).
		Where("host_id = ?", h.ID).
		Updates(map[string]any{
			"host_name":      h.Name,
			"host_email":     h.Email,
			"host_avatar":    h.AvatarURL,
			"host_synced_at": at,
		})
	return res.RowsAffected, res.Error
}

// ---- reads ----

func (r *propertyRepo) detail(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Location").
		Preload("Images", imagesByOrder).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("rule_type ASC").Order("position ASC") }).
		Preload("Amenities", func(db *gorm.DB) *gorm.DB { return db.Order("amenities.name ASC") }).
		Preload("SafetyFeatures", func(db *gorm.DB) *gorm.DB { return db.Order("safety_features.name ASC") })
}

func (r *propertyRepo) GetProperty(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	var p domain.Property
	err := r.detail(ctx).Where("properties.id = ?", id).First(&p).Error
	return p, translate(err)
}

func (r *propertyRepo) GetPropertyBySlug(ctx context.Context, slug string) (domain.Property, error) {
	var p domain.Property
	err := r.detail(ctx).Where("properties.slug = ?", slug).First(&p).Error
	return p, translate(err)
}

func (r *propertyRepo) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&domain.Property{}).Where("slug = ?", slug)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

// ListProperties builds the count and the page from the same scope.
func (r *propertyRepo) ListProperties(ctx context.Context, f domain.PropertyFilter, pg domain.PageQuery) ([]domain.Property, int64, error) {
	scope, joined := propertyScope(f)

	var total int64
	cq := r.db.WithContext(ctx).Model(&domain.Property{}).Scopes(scope)
	if joined {
		cq = cq.Distinct("properties.id")
	}
	if err := cq.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	out := []domain.Property{}
	if total == 0 {
		return out, 0, nil
	}
	q := r.db.WithContext(ctx).Model(&domain.Property{}).Scopes(scope, paginate(pg))
	for _, o := range orderBy(f.Sort) {
		q = q.Order(o)
	}
	err := q.Preload("Location").Preload("Images", imagesByOrder).Find(&out).Error
	return out, total, err
}

// NearbyProperties applies a bounding box of radius/111 degrees around the point.
func (r *propertyRepo) NearbyProperties(ctx context.Context, q domain.NearbyQuery) ([]domain.Property, error) {
	delta := q.RadiusKm / 111.0
	out := []domain.Property{}
	err := r.db.WithContext(ctx).
		Joins(joinLocationsSQL).
		Where("properties.is_active = ?", true).
		Where("locations.latitude BETWEEN ? AND ?", q.Lat-delta, q.Lat+delta).
		Where("locations.longitude BETWEEN ? AND ?", q.Lng-delta, q.Lng+delta).
		Order("properties.created_at DESC").
		Order("properties.id DESC").
		Limit(q.Limit).
		Preload("Location").
		Preload("Images", imagesByOrder).
		Find(&out).Error
	return out, err
}

func (r *propertyRepo) OwnedPropertyIDs(ctx context.Context, hostID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	out := []uuid.UUID{}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Model(&domain.Property{}).
		Where("host_id = ? AND id IN ?", hostID, ids).
		Pluck("id", &out).Error
	return out, err
}

func (r *propertyRepo) ListAvailability(ctx context.Context, propertyID uuid.UUID) ([]domain.Availability, error) {
	out := []domain.Availability{}
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("start_date ASC").
		Find(&out).Error
	return out, err
}

// StaleHosts returns hosts never synced or last synced before the cutoff.
func (r *propertyRepo) StaleHosts(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	out := []uuid.UUID{}
	q := r.db.WithContext(ctx).Model(&domain.Property{}).
		Distinct().
		Where("host_synced_at IS NULL OR host_synced_at < ?", before).
		Order("host_id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Pluck("host_id", &out).Error
	return out, err
}

// ---- filter composition ----

// propertyScope turns f into WHERE clauses and reports whether locations was joined,
// in which case counts must be distinct.
func propertyScope(f domain.PropertyFilter) (func(*gorm.DB) *gorm.DB, bool) {
	joined := f.City != nil || f.Country != nil || f.Location != nil || f.Search != nil
	return func(db *gorm.DB) *gorm.DB {
		if joined {
			db = db.Joins(joinLocationsSQL)
		}
		if f.HostID != nil {
			db = db.Where("properties.host_id = ?", *f.HostID)
		}
		if f.IsActive != nil {
			db = db.Where("properties.is_active = ?", *f.IsActive)
		}
		if f.IsFeatured != nil {
			db = db.Where("properties.is_featured = ?", *f.IsFeatured)
		}
		if f.PropertyType != nil {
			db = db.Where("properties.property_type = ?", *f.PropertyType)
		}
		if f.PlaceType != nil {
			db = db.Where("properties.place_type = ?", *f.PlaceType)
		}
		if f.City != nil {
			db = db.Where("LOWER(locations.city) LIKE ? ESCAPE '!'", contains(*f.City))
		}
		if f.Country != nil {
			db = db.Where("LOWER(locations.country) LIKE ? ESCAPE '!'", contains(*f.Country))
		}
		if f.Location != nil {
			pat := contains(*f.Location)
			db = db.Where(locationMatchSQL, pat, pat)
		}
		if f.Search != nil {
			pat := contains(*f.Search)
			db = db.Where(searchSQL, pat, pat, pat, pat, pat, pat)
		}
		if f.MinPrice != nil {
			db = db.Where("properties.price_per_night >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			db = db.Where("properties.price_per_night <= ?", *f.MaxPrice)
		}
		if f.MinBedrooms != nil {
			db = db.Where("properties.bedrooms >= ?", *f.MinBedrooms)
		}
		if f.MinBeds != nil {
			db = db.Where("properties.beds >= ?", *f.MinBeds)
		}
		if f.MinBathrooms != nil {
			db = db.Where("properties.bathrooms >= ?", *f.MinBathrooms)
		}
		if f.MinGuests != nil {
			db = db.Where("properties.max_guests >= ?", *f.MinGuests)
		}
		if f.InstantBook != nil {
			db = db.Where("properties.instant_book = ?", *f.InstantBook)
		}
		if f.PetsAllowed != nil {
			db = db.Where("properties.pets_allowed = ?", *f.PetsAllowed)
		}
		if f.HasExperiences != nil {
			if *f.HasExperiences {
				db = db.Where(hasExperiencesSQL)
			} else {
				db = db.Where("NOT " + hasExperiencesSQL)
			}
		}
		if ids := dedupe(f.AmenityIDs); len(ids) > 0 {
			db = db.Where(amenitiesAllSQL, ids, len(ids))
		}
		if f.CheckIn != nil && f.CheckOut != nil {
			db = db.Where(blockedDuringSQL, false, *f.CheckOut, *f.CheckIn)
		}
		return db
	}, joined
}

// orderBy returns the primary sort plus the created_at/id tie-breakers.
func orderBy(k domain.SortKey) []string {
	var primary string
	switch k {
	case domain.SortPriceAsc:
		primary = "properties.price_per_night ASC"
	case domain.SortPriceDesc:
		primary = "properties.price_per_night DESC"
	case domain.SortRating:
		primary = "properties.average_rating DESC"
	}
	tail := []string{"properties.created_at DESC", "properties.id DESC"}
	if primary == "" {
		return tail
	}
	return append([]string{primary}, tail...)
}

// contains lower-cases s and wraps it for a LIKE with '!' as the escape character.
func contains(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
	return "%" + s + "%"
}
