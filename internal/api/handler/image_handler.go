package handler

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type ImageHandler struct {
	images repository.IImageStore
	logger *zerolog.Logger
}

func NewImageHandler(images repository.IImageStore, logger *zerolog.Logger) *ImageHandler {
	if images == nil {
		panic("images cannot be nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ImageHandler{images: images, logger: logger}
}

// GetImage GET /images/*
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	objPath := strings.TrimPrefix(path.Clean("/"+chi.URLParam(r, "*")), "/")
	if objPath == "" {
		api.ErrorJSON(w, http.StatusNotFound, nil, "not found")
		return
	}

	rc, contentType, err := h.images.Open(r.Context(), objPath)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			api.ErrorJSON(w, http.StatusNotFound, nil, "not found")
			return
		}
		writeServiceError(w, r, h.logger, err)
		return
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn().Err(err).Str("path", objPath).Msg("failed to stream image")
	}
}
