package jwttoken

import (
	"lcvet/internal/platform/middleware"
)

// JWTServiceAdapter bridges JWTService to the middleware validator interface.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	subject := claims.Subject
	if subject == "" {
		subject = claims.RegisteredClaims.Subject
	}
	return &middleware.JWTClaims{Subject: subject}, nil
}
