package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrTestimonialNotFound = errors.New("testimonial not found")
	ErrColorNotFound       = errors.New("visualizer color not found")
	ErrEstimationNotFound  = errors.New("estimation request not found")
	ErrInvalidContent      = errors.New("invalid content")
)

type TestimonialInput struct {
	Author   string
	Comment  string
	Priority int
}

type EstimationInput struct {
	Name        string
	Email       string
	Phone       string
	Address     string
	Description string
}

// ProductAttributesPatch nil 欄位不修改
type ProductAttributesPatch struct {
	Brands        []string `json:"brands,omitempty"`
	Finishes      []string `json:"finishes,omitempty"`
	ColorFamilies []string `json:"colorFamilies,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

type IContentService interface {
	GetTestimonials(ctx context.Context) ([]model.Testimonial, error)
	CreateTestimonial(ctx context.Context, in TestimonialInput, image *Upload) (*model.Testimonial, error)
	UpdateTestimonial(ctx context.Context, id string, in TestimonialInput, image *Upload) (*model.Testimonial, error)
	DeleteTestimonial(ctx context.Context, id string) error

	GetVisualizerColors(ctx context.Context) ([]model.VisualizerColor, error)
	CreateVisualizerColor(ctx context.Context, name, hex string) (*model.VisualizerColor, error)
	UpdateVisualizerColor(ctx context.Context, id, name, hex string) (*model.VisualizerColor, error)
	DeleteVisualizerColor(ctx context.Context, id string) error

	GetProductAttributes(ctx context.Context) (model.ProductAttributes, error)
	UpdateProductAttributes(ctx context.Context, patch ProductAttributesPatch) (model.ProductAttributes, error)

	GetEstimations(ctx context.Context) ([]model.EstimationRequest, error)
	CreateEstimation(ctx context.Context, in EstimationInput, photo *Upload) (*model.EstimationRequest, error)
	DeleteEstimation(ctx context.Context, id string) error
}

type ContentService struct {
	testimonials repository.ITestimonialRepository
	colors       repository.IVisualizerColorRepository
	configs      repository.IConfigurationRepository
	estimations  repository.IEstimationRepository
	images       repository.IImageStore
	logger       *zerolog.Logger
}

func NewContentService(
	testimonials repository.ITestimonialRepository,
	colors repository.IVisualizerColorRepository,
	configs repository.IConfigurationRepository,
	estimations repository.IEstimationRepository,
	images repository.IImageStore,
	logger *zerolog.Logger,
) *ContentService {
	if testimonials == nil || colors == nil || configs == nil || estimations == nil || images == nil {
		panic("ContentService dependency is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ContentService{
		testimonials: testimonials,
		colors:       colors,
		configs:      configs,
		estimations:  estimations,
		images:       images,
		logger:       logger,
	}
}

// removeObject 物件不存在不視為錯誤，其他錯誤只記錄
func (s *ContentService) removeObject(ctx context.Context, objPath string) {
	if objPath == "" {
		return
	}
	if err := s.images.Delete(ctx, objPath); err != nil && !errors.Is(err, repository.ErrObjectNotFound) {
		s.logger.Error().Err(err).Str("path", objPath).Msg("failed to delete stored object")
	}
}

func (in TestimonialInput) validate() error {
	if strings.TrimSpace(in.Author) == "" || strings.TrimSpace(in.Comment) == "" {
		return fmt.Errorf("%w: author and comment are required", ErrInvalidContent)
	}
	return nil
}

func (s *ContentService) GetTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	return s.testimonials.GetTestimonials(ctx)
}

func (s *ContentService) CreateTestimonial(ctx context.Context, in TestimonialInput, image *Upload) (*model.Testimonial, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	t := &model.Testimonial{
		ID:       uuid.New().String(),
		Author:   strings.TrimSpace(in.Author),
		Comment:  strings.TrimSpace(in.Comment),
		Priority: in.Priority,
	}
	if image != nil {
		t.ImagePath = objectPath("testimonials", t.ID, image.Filename)
		url, err := s.images.Upload(ctx, t.ImagePath, image.ContentType, image.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to upload testimonial image: %w", err)
		}
		t.ImageURL = url
	}
	if err := s.testimonials.CreateTestimonial(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ContentService) UpdateTestimonial(ctx context.Context, id string, in TestimonialInput, image *Upload) (*model.Testimonial, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	t, err := s.testimonials.GetTestimonial(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTestimonialNotFound, id)
	}

	t.Author = strings.TrimSpace(in.Author)
	t.Comment = strings.TrimSpace(in.Comment)
	t.Priority = in.Priority
	if image != nil {
		s.removeObject(ctx, t.ImagePath)
		t.ImagePath = objectPath("testimonials", t.ID, image.Filename)
		url, err := s.images.Upload(ctx, t.ImagePath, image.ContentType, image.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to upload testimonial image: %w", err)
		}
		t.ImageURL = url
	}
	if err := s.testimonials.UpdateTestimonial(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTestimonialNotFound, id)
		}
		return nil, err
	}
	return t, nil
}

func (s *ContentService) DeleteTestimonial(ctx context.Context, id string) error {
	t, err := s.testimonials.GetTestimonial(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("testimonial_id", id).Msg("failed to load testimonial before delete")
	} else if t != nil {
		s.removeObject(ctx, t.ImagePath)
	}
	return s.testimonials.DeleteTestimonial(ctx, id)
}

func validateColor(name, hex string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: color name is required", ErrInvalidContent)
	}
	if !model.IsValidHex(hex) {
		return fmt.Errorf("%w: %q is not a #RRGGBB color", ErrInvalidContent, hex)
	}
	return nil
}

func (s *ContentService) GetVisualizerColors(ctx context.Context) ([]model.VisualizerColor, error) {
	return s.colors.GetVisualizerColors(ctx)
}

func (s *ContentService) CreateVisualizerColor(ctx context.Context, name, hex string) (*model.VisualizerColor, error) {
	if err := validateColor(name, hex); err != nil {
		return nil, err
	}
	c := &model.VisualizerColor{ID: uuid.New().String(), Name: strings.TrimSpace(name), Hex: strings.ToUpper(hex)}
	if err := s.colors.CreateVisualizerColor(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContentService) UpdateVisualizerColor(ctx context.Context, id, name, hex string) (*model.VisualizerColor, error) {
	if err := validateColor(name, hex); err != nil {
		return nil, err
	}
	c := &model.VisualizerColor{ID: id, Name: strings.TrimSpace(name), Hex: strings.ToUpper(hex)}
	if err := s.colors.UpdateVisualizerColor(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrColorNotFound, id)
		}
		return nil, err
	}
	return c, nil
}

func (s *ContentService) DeleteVisualizerColor(ctx context.Context, id string) error {
	return s.colors.DeleteVisualizerColor(ctx, id)
}

// GetProductAttributes 第一次讀取時寫入預設值，缺少的欄位以預設值補上
func (s *ContentService) GetProductAttributes(ctx context.Context) (model.ProductAttributes, error) {
	attrs, err := s.configs.GetProductAttributes(ctx)
	if err != nil {
		return model.ProductAttributes{}, err
	}
	if attrs == nil {
		def := model.DefaultProductAttributes()
		if err := s.configs.SaveProductAttributes(ctx, def); err != nil {
			return model.ProductAttributes{}, err
		}
		return def, nil
	}
	return attrs.WithDefaults(), nil
}

func (s *ContentService) UpdateProductAttributes(ctx context.Context, patch ProductAttributesPatch) (model.ProductAttributes, error) {
	current, err := s.GetProductAttributes(ctx)
	if err != nil {
		return model.ProductAttributes{}, err
	}
	if patch.Brands != nil {
		current.Brands = patch.Brands
	}
	if patch.Finishes != nil {
		current.Finishes = patch.Finishes
	}
	if patch.ColorFamilies != nil {
		current.ColorFamilies = patch.ColorFamilies
	}
	if patch.Categories != nil {
		current.Categories = patch.Categories
	}
	if err := s.configs.SaveProductAttributes(ctx, current); err != nil {
		return model.ProductAttributes{}, err
	}
	return current, nil
}

func (s *ContentService) GetEstimations(ctx context.Context) ([]model.EstimationRequest, error) {
	return s.estimations.GetEstimations(ctx)
}

func (in EstimationInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidContent)
	}
	if !strings.Contains(in.Email, "@") {
		return fmt.Errorf("%w: valid email is required", ErrInvalidContent)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidContent)
	}
	return nil
}

// CreateEstimation 先建立文件再上傳照片，照片上傳失敗只記錄
func (s *ContentService) CreateEstimation(ctx context.Context, in EstimationInput, photo *Upload) (*model.EstimationRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e := &model.EstimationRequest{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Phone:       in.Phone,
		Address:     in.Address,
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.estimations.CreateEstimation(ctx, e); err != nil {
		return nil, err
	}

	if photo != nil {
		photoPath := objectPath("estimations", e.ID, photo.Filename)
		url, err := s.images.Upload(ctx, photoPath, photo.ContentType, photo.Reader)
		if err != nil {
			s.logger.Error().Err(err).Str("estimation_id", e.ID).Msg("failed to upload estimation photo")
			return e, nil
		}
		e.PhotoPath = photoPath
		e.PhotoURL = url
		if err := s.estimations.UpdateEstimation(ctx, e); err != nil {
			s.logger.Error().Err(err).Str("estimation_id", e.ID).Msg("failed to attach estimation photo")
		}
	}
	return e, nil
}

func (s *ContentService) DeleteEstimation(ctx context.Context, id string) error {
	e, err := s.estimations.GetEstimation(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("%w: %s", ErrEstimationNotFound, id)
	}
	s.removeObject(ctx, e.PhotoPath)
	return s.estimations.DeleteEstimation(ctx, id)
}

var _ IContentService = (*ContentService)(nil)
