package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/api"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ContentHandler testimonials、調色盤、商品屬性、估價單
type ContentHandler struct {
	contentService service.IContentService
	logger         *zerolog.Logger
}

func NewContentHandler(contentService service.IContentService, logger *zerolog.Logger) *ContentHandler {
	if contentService == nil {
		panic("contentService cannot be nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ContentHandler{contentService: contentService, logger: logger}
}

func (h *ContentHandler) GetTestimonials(w http.ResponseWriter, r *http.Request) {
	list, err := h.contentService.GetTestimonials(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, list, nil)
}

func testimonialFromForm(r *http.Request) (service.TestimonialInput, error) {
	in := service.TestimonialInput{
		Author:  r.FormValue("author"),
		Comment: r.FormValue("comment"),
	}
	if v := r.FormValue("priority"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return in, fmt.Errorf("%w: priority %q", service.ErrInvalidContent, v)
		}
		in.Priority = p
	}
	return in, nil
}

func (h *ContentHandler) saveTestimonial(w http.ResponseWriter, r *http.Request, id string) {
	if err := parseMultipart(w, r); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	in, err := testimonialFromForm(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	image, closeImage, err := formUpload(r, "image")
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	defer closeImage()

	if id == "" {
		t, err := h.contentService.CreateTestimonial(r.Context(), in, image)
		if err != nil {
			writeServiceError(w, r, h.logger, err)
			return
		}
		api.CreatedJSON(w, t)
		return
	}
	t, err := h.contentService.UpdateTestimonial(r.Context(), id, in, image)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, t, nil)
}

func (h *ContentHandler) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	h.saveTestimonial(w, r, "")
}

func (h *ContentHandler) UpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	h.saveTestimonial(w, r, chi.URLParam(r, "id"))
}

func (h *ContentHandler) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	if err := h.contentService.DeleteTestimonial(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.NoContent(w)
}

func (h *ContentHandler) GetVisualizerColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.contentService.GetVisualizerColors(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, colors, nil)
}

func (h *ContentHandler) CreateVisualizerColor(w http.ResponseWriter, r *http.Request) {
	var req dto.VisualizerColorDTO
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	c, err := h.contentService.CreateVisualizerColor(r.Context(), req.Name, req.Hex)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.CreatedJSON(w, c)
}

func (h *ContentHandler) UpdateVisualizerColor(w http.ResponseWriter, r *http.Request) {
	var req dto.VisualizerColorDTO
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	c, err := h.contentService.UpdateVisualizerColor(r.Context(), chi.URLParam(r, "id"), req.Name, req.Hex)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, c, nil)
}

func (h *ContentHandler) DeleteVisualizerColor(w http.ResponseWriter, r *http.Request) {
	if err := h.contentService.DeleteVisualizerColor(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.NoContent(w)
}

func (h *ContentHandler) GetProductAttributes(w http.ResponseWriter, r *http.Request) {
	attrs, err := h.contentService.GetProductAttributes(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, attrs, nil)
}

func (h *ContentHandler) UpdateProductAttributes(w http.ResponseWriter, r *http.Request) {
	var patch service.ProductAttributesPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	attrs, err := h.contentService.UpdateProductAttributes(r.Context(), patch)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, attrs, nil)
}

// CreateEstimation POST /estimations，multipart，photo 可省略
func (h *ContentHandler) CreateEstimation(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	photo, closePhoto, err := formUpload(r, "photo")
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	defer closePhoto()

	e, err := h.contentService.CreateEstimation(r.Context(), service.EstimationInput{
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		Address:     r.FormValue("address"),
		Description: r.FormValue("description"),
	}, photo)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.CreatedJSON(w, e)
}

func (h *ContentHandler) GetEstimations(w http.ResponseWriter, r *http.Request) {
	list, err := h.contentService.GetEstimations(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, list, nil)
}

func (h *ContentHandler) DeleteEstimation(w http.ResponseWriter, r *http.Request) {
	if err := h.contentService.DeleteEstimation(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.NoContent(w)
}
