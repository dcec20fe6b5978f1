package jwttoken

import (
	"portfolio/internal/platform/middleware"
)

// MiddlewareAdapter bridges JWTService to the middleware validator interface
// without the middleware package importing JWT internals.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{
		Subject: claims.Subject,
		Tenant:  claims.Tenant,
	}, nil
}
