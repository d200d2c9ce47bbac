package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"property_listing/internal/domain"
)

// Store implements domain.Store on top of gorm.
type Store struct{ db *gorm.DB }

func New(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Properties() domain.PropertyRepository    { return &propertyRepo{db: s.db} }
func (s *Store) Reviews() domain.ReviewRepository         { return &reviewRepo{db: s.db} }
func (s *Store) Experiences() domain.ExperienceRepository { return &experienceRepo{db: s.db} }
func (s *Store) Vendors() domain.VendorRepository         { return &vendorRepo{db: s.db} }
func (s *Store) Catalog() domain.CatalogRepository        { return &catalogRepo{db: s.db} }

func (s *Store) InTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks the underlying connection pool.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func paginate(pg domain.PageQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(pg.Offset()).Limit(pg.PageSize)
	}
}

func imagesByOrder(db *gorm.DB) *gorm.DB { return db.Order("display_order ASC") }

func dedupe[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
