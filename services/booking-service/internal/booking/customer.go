package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

type customerInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	Phone string `json:"phone" validate:"required,phone"`
	Email string `json:"email" validate:"omitempty,email"`
}

// FindOrCreateCustomer returns the customer matching phone, or email when given, and only
// creates one when neither matches. An existing customer's name is never overwritten.
func (s *Service) FindOrCreateCustomer(ctx context.Context, name, phone, email string) (model.Customer, error) {
	in := customerInput{Name: strings.TrimSpace(name), Phone: strings.TrimSpace(phone), Email: strings.TrimSpace(email)}
	if err := s.validator.Validate(in); err != nil {
		return model.Customer{}, err
	}
	var c model.Customer
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.findOrCreateCustomer(ctx, in.Name, in.Phone, in.Email)
		return err
	})
	return c, err
}

func (s *Service) findOrCreateCustomer(ctx context.Context, name, phone, email string) (model.Customer, error) {
	phone = model.NormalizePhone(phone)
	email = model.NormalizeEmail(email)

	existing, err := s.repo.FindCustomer(ctx, phone, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.Customer{}, err
	}

	return s.repo.CreateCustomer(ctx, model.Customer{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Email:     email,
		Phone:     phone,
		CreatedAt: s.clock.Now(),
	})
}
