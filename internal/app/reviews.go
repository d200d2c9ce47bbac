package app

import (
	"context"

	"github.com/google/uuid"

	"property_listing/internal/domain"
)

type ReviewInput struct {
	Rating              int     `json:"rating" validate:"required,gte=1,lte=5"`
	Comment             *string `json:"comment" validate:"omitempty,max=2000"`
	CleanlinessRating   *int    `json:"cleanliness_rating" validate:"omitempty,gte=1,lte=5"`
	AccuracyRating      *int    `json:"accuracy_rating" validate:"omitempty,gte=1,lte=5"`
	CommunicationRating *int    `json:"communication_rating" validate:"omitempty,gte=1,lte=5"`
	LocationRating      *int    `json:"location_rating" validate:"omitempty,gte=1,lte=5"`
	CheckInRating       *int    `json:"check_in_rating" validate:"omitempty,gte=1,lte=5"`
	ValueRating         *int    `json:"value_rating" validate:"omitempty,gte=1,lte=5"`
}

type ReviewPatch struct {
	Rating              *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment             *string `json:"comment" validate:"omitempty,max=2000"`
	CleanlinessRating   *int    `json:"cleanliness_rating" validate:"omitempty,gte=1,lte=5"`
	AccuracyRating      *int    `json:"accuracy_rating" validate:"omitempty,gte=1,lte=5"`
	CommunicationRating *int    `json:"communication_rating" validate:"omitempty,gte=1,lte=5"`
	LocationRating      *int    `json:"location_rating" validate:"omitempty,gte=1,lte=5"`
	CheckInRating       *int    `json:"check_in_rating" validate:"omitempty,gte=1,lte=5"`
	ValueRating         *int    `json:"value_rating" validate:"omitempty,gte=1,lte=5"`
}

// ReviewService keeps a property's average_rating and total_reviews in step with its reviews.
// Every mutation recomputes both inside the same transaction.
type ReviewService struct {
	store domain.Store
}

func NewReviewService(s domain.Store) *ReviewService { return &ReviewService{store: s} }

func (s *ReviewService) Create(ctx context.Context, caller domain.Identity, propertyID uuid.UUID, in ReviewInput) (domain.Review, error) {
	if !caller.IsActive {
		return domain.Review{}, domain.ErrInactiveUser
	}
	if err := check(in); err != nil {
		return domain.Review{}, err
	}
	r := domain.Review{
		PropertyID:          propertyID,
		UserID:              caller.ID,
		Rating:              in.Rating,
		Comment:             in.Comment,
		CleanlinessRating:   in.CleanlinessRating,
		AccuracyRating:      in.AccuracyRating,
		CommunicationRating: in.CommunicationRating,
		LocationRating:      in.LocationRating,
		CheckInRating:       in.CheckInRating,
		ValueRating:         in.ValueRating,
	}
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		p, err := visibleProperty(ctx, tx.Properties(), &caller, propertyID)
		if err != nil {
			return err
		}
		if p.HostID == caller.ID {
			return domain.ErrOwnPropertyReview
		}
		exists, err := tx.Reviews().ReviewExists(ctx, propertyID, caller.ID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateReview
		}
		if err := tx.Reviews().CreateReview(ctx, &r); err != nil {
			// a concurrent insert lost the race on the unique index
			if isConflict(err) {
				return domain.ErrDuplicateReview
			}
			return err
		}
		return tx.Properties().RecomputeRating(ctx, propertyID)
	})
	return r, err
}

// authored loads the review and checks that the caller wrote it.
func authored(ctx context.Context, reviews domain.ReviewRepository, caller domain.Identity, id uuid.UUID) (domain.Review, error) {
	r, err := reviews.GetReview(ctx, id)
	if err != nil {
		return domain.Review{}, err
	}
	if r.UserID != caller.ID {
		return domain.Review{}, domain.ErrNotOwner
	}
	return r, nil
}

func (s *ReviewService) Update(ctx context.Context, caller domain.Identity, id uuid.UUID, in ReviewPatch) (domain.Review, error) {
	if err := check(in); err != nil {
		return domain.Review{}, err
	}
	var out domain.Review
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		r, err := authored(ctx, tx.Reviews(), caller, id)
		if err != nil {
			return err
		}
		setIf(&r.Rating, in.Rating)
		setPtr(&r.Comment, in.Comment)
		setPtr(&r.CleanlinessRating, in.CleanlinessRating)
		setPtr(&r.AccuracyRating, in.AccuracyRating)
		setPtr(&r.CommunicationRating, in.CommunicationRating)
		setPtr(&r.LocationRating, in.LocationRating)
		setPtr(&r.CheckInRating, in.CheckInRating)
		setPtr(&r.ValueRating, in.ValueRating)
		if err := tx.Reviews().UpdateReview(ctx, &r); err != nil {
			return err
		}
		out = r
		return tx.Properties().RecomputeRating(ctx, r.PropertyID)
	})
	return out, err
}

func (s *ReviewService) Delete(ctx context.Context, caller domain.Identity, id uuid.UUID) error {
	return s.store.InTx(ctx, func(tx domain.Store) error {
		r, err := authored(ctx, tx.Reviews(), caller, id)
		if err != nil {
			return err
		}
		if err := tx.Reviews().DeleteReview(ctx, id); err != nil {
			return err
		}
		return tx.Properties().RecomputeRating(ctx, r.PropertyID)
	})
}

// MarkHelpful bumps the helpful counter. Any authenticated user may call it, repeatedly.
func (s *ReviewService) MarkHelpful(ctx context.Context, id uuid.UUID) (domain.Review, error) {
	if err := s.store.Reviews().IncrementHelpful(ctx, id); err != nil {
		return domain.Review{}, err
	}
	return s.store.Reviews().GetReview(ctx, id)
}

// List pages through a property's reviews; an inactive property's reviews are its host's only.
func (s *ReviewService) List(ctx context.Context, caller *domain.Identity, propertyID uuid.UUID, pg domain.PageQuery) (domain.Page[domain.Review], error) {
	if _, err := visibleProperty(ctx, s.store.Properties(), caller, propertyID); err != nil {
		return domain.Page[domain.Review]{}, err
	}
	rs, total, err := s.store.Reviews().ListReviews(ctx, propertyID, pg)
	if err != nil {
		return domain.Page[domain.Review]{}, err
	}
	return domain.NewPage(rs, total, pg), nil
}
