package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/api"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	productService service.IProductService
	logger         *zerolog.Logger
}

func NewProductHandler(productService service.IProductService, logger *zerolog.Logger) *ProductHandler {
	if productService == nil {
		panic("productService cannot be nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ProductHandler{productService: productService, logger: logger}
}

func parseProductFilter(r *http.Request) model.ProductFilter {
	q := r.URL.Query()
	return model.ProductFilter{
		Search:        strings.TrimSpace(q.Get("q")),
		Brands:        splitQuery(q["brand"]),
		Finishes:      splitQuery(q["finish"]),
		ColorFamilies: splitQuery(q["colorFamily"]),
		Sort:          model.ProductSort(q.Get("sort")),
	}
}

// ListProducts GET /products，只列出上架商品
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := parseProductFilter(r)
	filter.ActiveOnly = true
	products, err := h.productService.ListProducts(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, products, nil)
}

// GetProduct GET /products/{id}，下架商品回 404
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetProduct(r.Context(), chi.URLParam(r, "id"), true)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, product, nil)
}

// AdminListProducts 包含下架商品
func (h *ProductHandler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListProducts(r.Context(), parseProductFilter(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, products, nil)
}

func (h *ProductHandler) AdminGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetProduct(r.Context(), chi.URLParam(r, "id"), false)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, product, nil)
}

// CreateProduct multipart: 欄位 + variants(JSON) + image
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	patch, err := productPatchFromForm(r)
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

	in := service.ProductInput{Variants: patch.Variants, IsActive: true}
	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.Brand != nil {
		in.Brand = *patch.Brand
	}
	if patch.Category != nil {
		in.Category = *patch.Category
	}
	if patch.Finish != nil {
		in.Finish = *patch.Finish
	}
	if patch.ColorFamily != nil {
		in.ColorFamily = *patch.ColorFamily
	}
	if patch.Price != nil {
		in.Price = *patch.Price
	}
	if patch.Description != nil {
		in.Description = *patch.Description
	}
	if patch.IsActive != nil {
		in.IsActive = *patch.IsActive
	}

	product, err := h.productService.CreateProduct(r.Context(), in, image)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.CreatedJSON(w, product)
}

// UpdateProduct multipart，未帶的欄位不修改
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	patch, err := productPatchFromForm(r)
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

	product, err := h.productService.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch, image)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, product, nil)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.productService.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.NoContent(w)
}

func formString(r *http.Request, key string) *string {
	if _, ok := r.MultipartForm.Value[key]; !ok {
		return nil
	}
	v := strings.TrimSpace(r.FormValue(key))
	return &v
}

func productPatchFromForm(r *http.Request) (model.ProductPatch, error) {
	patch := model.ProductPatch{
		Name:        formString(r, "name"),
		Brand:       formString(r, "brand"),
		Category:    formString(r, "category"),
		Finish:      formString(r, "finish"),
		ColorFamily: formString(r, "colorFamily"),
		Description: formString(r, "description"),
	}

	if v := formString(r, "price"); v != nil {
		price, err := decimal.NewFromString(*v)
		if err != nil {
			return patch, fmt.Errorf("%w: price %q", service.ErrInvalidProduct, *v)
		}
		patch.Price = &price
	}
	if v := formString(r, "isActive"); v != nil {
		active, err := strconv.ParseBool(*v)
		if err != nil {
			return patch, fmt.Errorf("%w: isActive %q", service.ErrInvalidProduct, *v)
		}
		patch.IsActive = &active
	}
	if v := formString(r, "variants"); v != nil {
		var variants []model.ColorVariant
		if err := json.Unmarshal([]byte(*v), &variants); err != nil {
			return patch, fmt.Errorf("%w: variants must be a JSON array", service.ErrInvalidProduct)
		}
		if variants == nil {
			variants = []model.ColorVariant{}
		}
		patch.Variants = variants
	}
	return patch, nil
}
