package profile

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

type fakeRepo struct {
	mu         sync.Mutex
	businesses map[string]model.Business
	services   map[string]model.Service
	customers  map[string][]model.Customer

	businessReads int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		businesses: map[string]model.Business{},
		services:   map[string]model.Service{},
		customers:  map[string][]model.Customer{},
	}
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *fakeRepo) GetBusiness(_ context.Context, id string) (model.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.businesses[id]
	if !ok {
		return model.Business{}, fmt.Errorf("business %s: %w", id, model.ErrNotFound)
	}
	return b, nil
}

func (r *fakeRepo) GetBusinessBySlug(_ context.Context, slug string) (model.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.businessReads++
	for _, b := range r.businesses {
		if b.Slug == slug {
			return b, nil
		}
	}
	return model.Business{}, fmt.Errorf("business %s: %w", slug, model.ErrNotFound)
}

func (r *fakeRepo) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.businesses {
		if b.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CreateBusiness(_ context.Context, b model.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.businesses[b.ID] = b
	return nil
}

func (r *fakeRepo) UpdateBusiness(_ context.Context, b model.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.businesses[b.ID]; !ok {
		return model.ErrNotFound
	}
	r.businesses[b.ID] = b
	return nil
}

func (r *fakeRepo) GetService(_ context.Context, businessID, serviceID string) (model.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[serviceID]
	if !ok || s.BusinessID != businessID {
		return model.Service{}, fmt.Errorf("service %s: %w", serviceID, model.ErrNotFound)
	}
	return s, nil
}

func (r *fakeRepo) ListServices(_ context.Context, businessID string) ([]model.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Service{}
	for _, s := range r.services {
		if s.BusinessID == businessID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRepo) CreateService(_ context.Context, s model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[s.ID] = s
	return nil
}

func (r *fakeRepo) UpdateService(_ context.Context, s model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.services[s.ID]; !ok || cur.BusinessID != s.BusinessID {
		return model.ErrNotFound
	}
	r.services[s.ID] = s
	return nil
}

func (r *fakeRepo) DeleteService(_ context.Context, businessID, serviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.services[serviceID]; !ok || cur.BusinessID != businessID {
		return model.ErrNotFound
	}
	delete(r.services, serviceID)
	return nil
}

func (r *fakeRepo) ListCustomers(_ context.Context, businessID string) ([]model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Customer{}, r.customers[businessID]...), nil
}
