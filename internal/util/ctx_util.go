package util

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(constants.RequestIDKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// GetSessionID session middleware 之後一定有值
func GetSessionID(ctx context.Context) string {
	v, _ := ctx.Value(constants.SessionIDKey).(string)
	return v
}

func GetAdminClaims(ctx context.Context) *service.AdminClaims {
	v, _ := ctx.Value(constants.AuthorizationPayloadKey).(*service.AdminClaims)
	return v
}
