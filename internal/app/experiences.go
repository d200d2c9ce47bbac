package app

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"property_listing/internal/domain"
)

type ExperienceInput struct {
	Title       string      `json:"title" validate:"required,min=5,max=200"`
	Description *string     `json:"description" validate:"omitempty,max=1000"`
	ImageURL    string      `json:"image_url" validate:"required,max=1000"`
	MinNights   *int        `json:"min_nights" validate:"omitempty,gte=0"`
	IsActive    *bool       `json:"is_active"`
	PropertyIDs []uuid.UUID `json:"property_ids"`
}

type ExperiencePatch struct {
	Title       *string `json:"title" validate:"omitempty,min=5,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	ImageURL    *string `json:"image_url" validate:"omitempty,min=1,max=1000"`
	MinNights   *int    `json:"min_nights" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

// AttachResult reports which of the requested properties were linked.
type AttachResult struct {
	Attached []uuid.UUID `json:"attached"`
	Skipped  []uuid.UUID `json:"skipped"`
}

type ExperienceService struct {
	store domain.Store
}

func NewExperienceService(s domain.Store) *ExperienceService { return &ExperienceService{store: s} }

// Create stores the experience and links the listed properties the caller hosts.
func (s *ExperienceService) Create(ctx context.Context, caller domain.Identity, in ExperienceInput) (domain.Experience, error) {
	hostID, err := requireHost(caller)
	if err != nil {
		return domain.Experience{}, err
	}
	if err := check(in); err != nil {
		return domain.Experience{}, err
	}
	e := domain.Experience{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		HostID:      hostID,
		MinNights:   intOr(in.MinNights, 1),
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	err = s.store.InTx(ctx, func(tx domain.Store) error {
		if err := tx.Experiences().CreateExperience(ctx, &e); err != nil {
			return err
		}
		_, err := attachOwned(ctx, tx, hostID, e.ID, in.PropertyIDs)
		return err
	})
	return e, err
}

func attachOwned(ctx context.Context, tx domain.Store, hostID, experienceID uuid.UUID, ids []uuid.UUID) (AttachResult, error) {
	res := AttachResult{Attached: []uuid.UUID{}, Skipped: []uuid.UUID{}}
	ids = uniq(ids)
	if len(ids) == 0 {
		return res, nil
	}
	mine, err := tx.Properties().OwnedPropertyIDs(ctx, hostID, ids)
	if err != nil {
		return res, err
	}
	ok := make(map[uuid.UUID]bool, len(mine))
	for _, id := range mine {
		ok[id] = true
	}
	for _, id := range ids {
		if ok[id] {
			res.Attached = append(res.Attached, id)
		} else {
			res.Skipped = append(res.Skipped, id)
		}
	}
	return res, tx.Experiences().AttachProperties(ctx, experienceID, res.Attached)
}

func hosted(ctx context.Context, repo domain.ExperienceRepository, caller domain.Identity, id uuid.UUID) (domain.Experience, error) {
	hostID, err := requireHost(caller)
	if err != nil {
		return domain.Experience{}, err
	}
	e, err := repo.GetExperience(ctx, id)
	if err != nil {
		return domain.Experience{}, err
	}
	if e.HostID != hostID {
		return domain.Experience{}, domain.ErrNotOwner
	}
	return e, nil
}

func (s *ExperienceService) Get(ctx context.Context, id uuid.UUID) (domain.Experience, error) {
	return s.store.Experiences().GetExperience(ctx, id)
}

func (s *ExperienceService) Update(ctx context.Context, caller domain.Identity, id uuid.UUID, in ExperiencePatch) (domain.Experience, error) {
	if err := check(in); err != nil {
		return domain.Experience{}, err
	}
	var out domain.Experience
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		e, err := hosted(ctx, tx.Experiences(), caller, id)
		if err != nil {
			return err
		}
		if in.Title != nil {
			e.Title = strings.TrimSpace(*in.Title)
		}
		setPtr(&e.Description, in.Description)
		setIf(&e.ImageURL, in.ImageURL)
		setIf(&e.MinNights, in.MinNights)
		setIf(&e.IsActive, in.IsActive)
		out = e
		return tx.Experiences().UpdateExperience(ctx, &e)
	})
	return out, err
}

func (s *ExperienceService) Delete(ctx context.Context, caller domain.Identity, id uuid.UUID) error {
	return s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := hosted(ctx, tx.Experiences(), caller, id); err != nil {
			return err
		}
		return tx.Experiences().DeleteExperience(ctx, id)
	})
}

// ListActive pages over active experiences of every host.
func (s *ExperienceService) ListActive(ctx context.Context, pg domain.PageQuery) (domain.Page[domain.Experience], error) {
	es, total, err := s.store.Experiences().ListExperiences(ctx, domain.ExperienceFilter{ActiveOnly: true}, pg)
	if err != nil {
		return domain.Page[domain.Experience]{}, err
	}
	return domain.NewPage(es, total, pg), nil
}

// Mine pages over the caller's experiences, inactive included.
func (s *ExperienceService) Mine(ctx context.Context, caller domain.Identity, pg domain.PageQuery) (domain.Page[domain.Experience], error) {
	hostID, err := requireHost(caller)
	if err != nil {
		return domain.Page[domain.Experience]{}, err
	}
	es, total, err := s.store.Experiences().ListExperiences(ctx, domain.ExperienceFilter{HostID: &hostID}, pg)
	if err != nil {
		return domain.Page[domain.Experience]{}, err
	}
	return domain.NewPage(es, total, pg), nil
}

// ForProperty lists the active experiences attached to a property.
func (s *ExperienceService) ForProperty(ctx context.Context, caller *domain.Identity, propertyID uuid.UUID) ([]domain.Experience, error) {
	if _, err := visibleProperty(ctx, s.store.Properties(), caller, propertyID); err != nil {
		return nil, err
	}
	return s.store.Experiences().PropertyExperiences(ctx, propertyID, true)
}

// Properties lists every listing attached to the caller's experience, inactive ones included.
func (s *ExperienceService) Properties(ctx context.Context, caller domain.Identity, experienceID uuid.UUID) ([]PropertySummary, error) {
	if _, err := hosted(ctx, s.store.Experiences(), caller, experienceID); err != nil {
		return nil, err
	}
	ps, err := s.store.Experiences().ExperienceProperties(ctx, experienceID)
	if err != nil {
		return nil, err
	}
	return toSummaries(ps), nil
}

// Attach links the given properties, skipping any the caller does not host.
func (s *ExperienceService) Attach(ctx context.Context, caller domain.Identity, experienceID uuid.UUID, propertyIDs []uuid.UUID) (AttachResult, error) {
	if len(propertyIDs) == 0 {
		return AttachResult{}, domain.Validationf("property_ids is required")
	}
	var res AttachResult
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		e, err := hosted(ctx, tx.Experiences(), caller, experienceID)
		if err != nil {
			return err
		}
		res, err = attachOwned(ctx, tx, e.HostID, e.ID, propertyIDs)
		return err
	})
	return res, err
}

func (s *ExperienceService) Detach(ctx context.Context, caller domain.Identity, experienceID, propertyID uuid.UUID) error {
	return s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := hosted(ctx, tx.Experiences(), caller, experienceID); err != nil {
			return err
		}
		return tx.Experiences().DetachProperty(ctx, experienceID, propertyID)
	})
}
