package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/api"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/rs/zerolog"
)

var errBadRequestBody = errors.New("invalid request body")

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	return nil
}

// writeServiceError 將 service 錯誤轉成 http status
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	switch {
	case errors.Is(err, errBadRequestBody),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidCheckout),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrInvalidContent),
		errors.Is(err, model.ErrInvalidOrderStatus):
		api.ErrorJSON(w, http.StatusBadRequest, err, "bad request")
	case errors.Is(err, service.ErrInsufficientStock):
		api.ErrorJSON(w, http.StatusConflict, err, "not enough stock")
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrVariantNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrTestimonialNotFound),
		errors.Is(err, service.ErrColorNotFound),
		errors.Is(err, service.ErrEstimationNotFound):
		api.ErrorJSON(w, http.StatusNotFound, err, "not found")
	case errors.Is(err, service.ErrInvalidPin),
		errors.Is(err, service.ErrInvalidToken):
		api.ErrorJSON(w, http.StatusUnauthorized, err, "unauthenticated")
	case errors.Is(err, service.ErrAdminDisabled):
		api.ErrorJSON(w, http.StatusForbidden, err, "admin login disabled")
	default:
		logger.Error().Err(err).
			Str("request_id", util.GetRequestID(r.Context())).
			Str("url", r.URL.String()).
			Msg("request failed")
		api.ErrorJSON(w, http.StatusInternalServerError, nil, "Internal Server Error")
	}
}

// parseMultipart 解析 multipart 表單，大小上限為 constants.MaxUploadSize
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		return fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	return nil
}

// formUpload 欄位不存在時回傳 nil
// 回傳的 closer 必須在使用完 Upload 後呼叫
func formUpload(r *http.Request, field string) (*service.Upload, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	return &service.Upload{
		Filename:    header.Filename,
		ContentType: uploadContentType(header),
		Reader:      file,
	}, func() { file.Close() }, nil
}

func uploadContentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func splitQuery(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
