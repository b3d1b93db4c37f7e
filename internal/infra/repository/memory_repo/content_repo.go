package memory_repo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
)

type TestimonialRepo struct {
	mu   sync.RWMutex
	data map[string]model.Testimonial
}

func NewTestimonialRepo() *TestimonialRepo {
	return &TestimonialRepo{data: make(map[string]model.Testimonial)}
}

func (r *TestimonialRepo) GetTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Testimonial, 0, len(r.data))
	for _, t := range r.data {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority == out[j].Priority {
			return out[i].ID < out[j].ID
		}
		return out[i].Priority < out[j].Priority
	})
	return out, nil
}

func (r *TestimonialRepo) GetTestimonial(ctx context.Context, id string) (*model.Testimonial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TestimonialRepo) CreateTestimonial(ctx context.Context, testimonial *model.Testimonial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[testimonial.ID] = *testimonial
	return nil
}

func (r *TestimonialRepo) UpdateTestimonial(ctx context.Context, testimonial *model.Testimonial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[testimonial.ID]; !ok {
		return repository.ErrNotFound
	}
	r.data[testimonial.ID] = *testimonial
	return nil
}

func (r *TestimonialRepo) DeleteTestimonial(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

type VisualizerColorRepo struct {
	mu   sync.RWMutex
	data map[string]model.VisualizerColor
}

func NewVisualizerColorRepo() *VisualizerColorRepo {
	return &VisualizerColorRepo{data: make(map[string]model.VisualizerColor)}
}

func (r *VisualizerColorRepo) GetVisualizerColors(ctx context.Context) ([]model.VisualizerColor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.VisualizerColor, 0, len(r.data))
	for _, c := range r.data {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *VisualizerColorRepo) CreateVisualizerColor(ctx context.Context, color *model.VisualizerColor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[color.ID] = *color
	return nil
}

func (r *VisualizerColorRepo) UpdateVisualizerColor(ctx context.Context, color *model.VisualizerColor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[color.ID]; !ok {
		return repository.ErrNotFound
	}
	r.data[color.ID] = *color
	return nil
}

func (r *VisualizerColorRepo) DeleteVisualizerColor(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

type ConfigurationRepo struct {
	mu    sync.RWMutex
	attrs *model.ProductAttributes
}

func NewConfigurationRepo() *ConfigurationRepo {
	return &ConfigurationRepo{}
}

func (r *ConfigurationRepo) GetProductAttributes(ctx context.Context) (*model.ProductAttributes, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.attrs == nil {
		return nil, nil
	}
	cp := *r.attrs
	return &cp, nil
}

func (r *ConfigurationRepo) SaveProductAttributes(ctx context.Context, attrs model.ProductAttributes) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attrs = &attrs
	return nil
}

type EstimationRepo struct {
	mu   sync.RWMutex
	data map[string]model.EstimationRequest
}

func NewEstimationRepo() *EstimationRepo {
	return &EstimationRepo{data: make(map[string]model.EstimationRequest)}
}

func (r *EstimationRepo) GetEstimations(ctx context.Context) ([]model.EstimationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.EstimationRequest, 0, len(r.data))
	for _, e := range r.data {
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *EstimationRepo) GetEstimation(ctx context.Context, id string) (*model.EstimationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *EstimationRepo) CreateEstimation(ctx context.Context, req *model.EstimationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[req.ID] = *req
	return nil
}

func (r *EstimationRepo) UpdateEstimation(ctx context.Context, req *model.EstimationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[req.ID]; !ok {
		return repository.ErrNotFound
	}
	r.data[req.ID] = *req
	return nil
}

func (r *EstimationRepo) DeleteEstimation(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

var (
	_ repository.ITestimonialRepository     = (*TestimonialRepo)(nil)
	_ repository.IVisualizerColorRepository = (*VisualizerColorRepo)(nil)
	_ repository.IConfigurationRepository   = (*ConfigurationRepo)(nil)
	_ repository.IEstimationRepository      = (*EstimationRepo)(nil)
)
