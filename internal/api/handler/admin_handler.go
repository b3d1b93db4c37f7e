package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/api"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/rs/zerolog"
)

type AdminHandler struct {
	authService service.IAdminAuthService
	logger      *zerolog.Logger
}

func NewAdminHandler(authService service.IAdminAuthService, logger *zerolog.Logger) *AdminHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &AdminHandler{authService: authService, logger: logger}
}

// Login POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminLoginDTO
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	token, expiresAt, err := h.authService.Login(req.Pin)
	if err != nil {
		h.logger.Warn().
			Str("request_id", util.GetRequestID(r.Context())).
			Str("remote", r.RemoteAddr).
			Msg("admin login rejected")
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, dto.AdminLoginResponse{Token: token, ExpiresAt: expiresAt}, nil)
}

// Me 驗證 token 是否仍有效
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := util.GetAdminClaims(r.Context())
	if claims == nil {
		api.ErrorJSON(w, http.StatusUnauthorized, service.ErrInvalidToken, "unauthenticated")
		return
	}
	res := map[string]any{"subject": claims.Subject}
	if claims.ExpiresAt != nil {
		res["expires_at"] = claims.ExpiresAt.Time
	}
	api.SuccessJSON(w, res, nil)
}
