package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "lcvet/pkg/domain-errors"
)

type JWTSuite struct {
	suite.Suite
	service *JWTService
}

func (s *JWTSuite) SetupTest() {
	s.service = NewJWTService("test-signing-key", "lcvet", "lcvet-api")
}

func TestJWTSuite(t *testing.T) {
	suite.Run(t, new(JWTSuite))
}

func (s *JWTSuite) TestRoundTrip() {
	s.Run("valid token yields its subject", func() {
		token, err := s.service.GenerateAccessToken("operator-1", time.Hour)
		s.Require().NoError(err)

		claims, err := s.service.ValidateToken(token)
		s.Require().NoError(err)
		s.Equal("operator-1", claims.Subject)
	})

	s.Run("expired token is rejected", func() {
		token, err := s.service.GenerateAccessToken("operator-1", -time.Minute)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
		s.Contains(err.Error(), "expired")
	})

	s.Run("token signed with another key is rejected", func() {
		other := NewJWTService("different-key", "lcvet", "lcvet-api")
		token, err := other.GenerateAccessToken("operator-1", time.Hour)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	s.Run("garbage token is rejected", func() {
		_, err := s.service.ValidateToken("not.a.token")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}

func (s *JWTSuite) TestAdapter() {
	s.Run("maps claims to middleware shape", func() {
		token, err := s.service.GenerateAccessToken("operator-1", time.Hour)
		s.Require().NoError(err)

		adapter := NewJWTServiceAdapter(s.service)
		claims, err := adapter.ValidateToken(token)
		s.Require().NoError(err)
		s.Equal("operator-1", claims.Subject)
	})

	s.Run("propagates validation failure", func() {
		adapter := NewJWTServiceAdapter(s.service)
		_, err := adapter.ValidateToken("garbage")
		s.Require().Error(err)
	})
}
