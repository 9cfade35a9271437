package profile

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/md-rashed-zaman/apptcrm/libs/validation"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

type ServiceInput struct {
	Name            string          `json:"name" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=2000"`
	DurationMinutes int             `json:"durationMinutes" validate:"gt=0,lte=1440"`
	Price           decimal.Decimal `json:"price"`
}

func (s *Service) validateServiceInput(in ServiceInput) (ServiceInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validator.Validate(in); err != nil {
		return in, err
	}
	if in.Price.IsNegative() {
		return in, validation.Field("price", "must be greater than or equal to 0")
	}
	in.Price = in.Price.Round(2)
	return in, nil
}

func (s *Service) ListServices(ctx context.Context, businessID string) ([]model.Service, error) {
	return s.repo.ListServices(ctx, businessID)
}

func (s *Service) CreateService(ctx context.Context, businessID string, in ServiceInput) (model.Service, error) {
	in, err := s.validateServiceInput(in)
	if err != nil {
		return model.Service{}, err
	}
	if _, err := s.repo.GetBusiness(ctx, businessID); err != nil {
		return model.Service{}, err
	}
	svc := model.Service{
		ID:              uuid.NewString(),
		BusinessID:      businessID,
		Name:            in.Name,
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return model.Service{}, err
	}
	s.invalidateBusiness(ctx, businessID)
	return svc, nil
}

// UpdateService changes the catalog entry only. Booked appointments keep their own duration.
func (s *Service) UpdateService(ctx context.Context, businessID, serviceID string, in ServiceInput) (model.Service, error) {
	in, err := s.validateServiceInput(in)
	if err != nil {
		return model.Service{}, err
	}
	var out model.Service
	err = s.repo.WithTx(ctx, func(ctx context.Context) error {
		svc, err := s.repo.GetService(ctx, businessID, serviceID)
		if err != nil {
			return err
		}
		svc.Name = in.Name
		svc.Description = in.Description
		svc.DurationMinutes = in.DurationMinutes
		svc.Price = in.Price
		if err := s.repo.UpdateService(ctx, svc); err != nil {
			return err
		}
		out = svc
		return nil
	})
	if err != nil {
		return model.Service{}, err
	}
	s.invalidateBusiness(ctx, businessID)
	return out, nil
}

func (s *Service) DeleteService(ctx context.Context, businessID, serviceID string) error {
	if err := s.repo.DeleteService(ctx, businessID, serviceID); err != nil {
		return err
	}
	s.invalidateBusiness(ctx, businessID)
	return nil
}
