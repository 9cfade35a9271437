// Package profile is the owner-facing business profile store: business details, working
// hours, the service catalog and the cached public booking page.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/md-rashed-zaman/apptcrm/libs/clock"
	"github.com/md-rashed-zaman/apptcrm/libs/validation"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

var errSlugExhausted = errors.New("profile: no free slug suffix")

type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	GetBusiness(ctx context.Context, id string) (model.Business, error)
	GetBusinessBySlug(ctx context.Context, slug string) (model.Business, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	CreateBusiness(ctx context.Context, b model.Business) error
	UpdateBusiness(ctx context.Context, b model.Business) error

	GetService(ctx context.Context, businessID, serviceID string) (model.Service, error)
	ListServices(ctx context.Context, businessID string) ([]model.Service, error)
	CreateService(ctx context.Context, s model.Service) error
	UpdateService(ctx context.Context, s model.Service) error
	DeleteService(ctx context.Context, businessID, serviceID string) error

	ListCustomers(ctx context.Context, businessID string) ([]model.Customer, error)
}

type Service struct {
	repo      Repository
	cache     *Cache
	clock     clock.Clock
	validator *validation.Validator
	logger    *slog.Logger
}

// NewService accepts a nil cache.
func NewService(repo Repository, cache *Cache, clk clock.Clock, logger *slog.Logger) *Service {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, clock: clk, validator: validation.New(), logger: logger}
}

// GetPublicProfile reads through the cache. Cache failures fall back to the database.
func (s *Service) GetPublicProfile(ctx context.Context, slug string) (model.PublicProfile, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return model.PublicProfile{}, model.ErrNotFound
	}

	cached, ok, err := s.cache.Get(ctx, slug)
	if err != nil {
		s.logger.Warn("profile cache read failed", "slug", slug, "err", err)
	}
	if ok {
		return cached, nil
	}

	biz, err := s.repo.GetBusinessBySlug(ctx, slug)
	if err != nil {
		return model.PublicProfile{}, err
	}
	services, err := s.repo.ListServices(ctx, biz.ID)
	if err != nil {
		return model.PublicProfile{}, err
	}
	p := model.PublicProfile{Business: biz, Services: services}
	if err := s.cache.Set(ctx, p); err != nil {
		s.logger.Warn("profile cache write failed", "slug", slug, "err", err)
	}
	return p, nil
}

func (s *Service) GetProfile(ctx context.Context, businessID string) (model.Business, error) {
	return s.repo.GetBusiness(ctx, businessID)
}

type ProfileInput struct {
	Name         string             `json:"name" validate:"required,max=200"`
	BusinessName string             `json:"businessName" validate:"required,max=200"`
	Phone        string             `json:"phone" validate:"omitempty,phone"`
	Location     string             `json:"location" validate:"max=500"`
	Description  string             `json:"description" validate:"max=2000"`
	Slug         string             `json:"slug" validate:"omitempty,max=80"`
	WorkingHours model.WorkingHours `json:"workingHours"`
}

func (in ProfileInput) normalize() ProfileInput {
	in.Name = strings.TrimSpace(in.Name)
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	if in.WorkingHours != nil {
		in.WorkingHours = in.WorkingHours.Normalize()
	}
	return in
}

// UpsertProfile creates the business behind businessID on first save and updates it
// afterwards. A new business gets a slug derived from its business name; an explicit slug
// must not be used by another business. Omitted working hours keep the stored ones, or
// the weekday defaults for a new business.
func (s *Service) UpsertProfile(ctx context.Context, businessID string, in ProfileInput) (model.Business, error) {
	if _, err := uuid.Parse(businessID); err != nil {
		return model.Business{}, validation.Field("businessId", "must be a valid UUID")
	}
	in = in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return model.Business{}, err
	}
	if in.Slug != "" && !ValidSlug(in.Slug) {
		return model.Business{}, validation.Field("slug", "must contain only lowercase letters, digits and dashes")
	}
	if in.WorkingHours != nil {
		if err := in.WorkingHours.Validate(); err != nil {
			return model.Business{}, err
		}
	}

	var out model.Business
	var previousSlug string
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetBusiness(ctx, businessID)
		creating := errors.Is(err, model.ErrNotFound)
		if err != nil && !creating {
			return err
		}
		now := s.clock.Now()

		b := existing
		if creating {
			b = model.Business{ID: businessID, WorkingHours: model.DefaultWorkingHours(), CreatedAt: now}
		}
		previousSlug = existing.Slug
		b.Name = in.Name
		b.BusinessName = in.BusinessName
		b.Phone = in.Phone
		b.Location = in.Location
		b.Description = in.Description
		if in.WorkingHours != nil {
			b.WorkingHours = in.WorkingHours
		}
		b.UpdatedAt = now

		switch {
		case in.Slug != "" && in.Slug != existing.Slug:
			taken, err := s.repo.SlugExists(ctx, in.Slug, businessID)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("slug %q: %w", in.Slug, model.ErrSlugTaken)
			}
			b.Slug = in.Slug
		case b.Slug == "":
			slug, err := uniqueSlug(ctx, s.repo, Slugify(b.BusinessName), businessID)
			if err != nil {
				return err
			}
			b.Slug = slug
		}

		if creating {
			err = s.repo.CreateBusiness(ctx, b)
		} else {
			err = s.repo.UpdateBusiness(ctx, b)
		}
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return model.Business{}, err
	}

	s.invalidate(ctx, previousSlug, out.Slug)
	s.logger.Info("business profile saved", "business_id", out.ID, "slug", out.Slug)
	return out, nil
}

func (s *Service) invalidate(ctx context.Context, slugs ...string) {
	if err := s.cache.Invalidate(ctx, slugs...); err != nil {
		s.logger.Warn("profile cache invalidation failed", "slugs", slugs, "err", err)
	}
}

// invalidateBusiness drops the cached public page of businessID.
func (s *Service) invalidateBusiness(ctx context.Context, businessID string) {
	if s.cache == nil {
		return
	}
	b, err := s.repo.GetBusiness(ctx, businessID)
	if err != nil {
		s.logger.Warn("profile cache invalidation skipped", "business_id", businessID, "err", err)
		return
	}
	s.invalidate(ctx, b.Slug)
}

func (s *Service) ListCustomers(ctx context.Context, businessID string) ([]model.Customer, error) {
	return s.repo.ListCustomers(ctx, businessID)
}
