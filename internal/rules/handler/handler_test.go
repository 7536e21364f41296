package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	jwttoken "lcvet/internal/jwt_token"
	"lcvet/internal/oracle"
	"lcvet/internal/rules/models"
	"lcvet/internal/rules/service"
	"lcvet/internal/rules/store"
)

type RulesHandlerSuite struct {
	suite.Suite
	ctx        context.Context
	store      *store.InMemoryStore
	classifier *oracle.Stub
	router     chi.Router
	token      string
}

func (s *RulesHandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemoryStore()
	s.classifier = &oracle.Stub{
		Classification: oracle.Classification{Kind: models.KindAiAssisted, Reasoning: "requires judgment"},
		Explanation:    "Banks examine documents, not goods.",
	}

	svc, err := service.New(s.store, s.classifier)
	s.Require().NoError(err)

	jwtService := jwttoken.NewJWTService("test-signing-key", "lcvet", "lcvet-api")
	token, err := jwtService.GenerateAccessToken("operator-1", time.Hour)
	s.Require().NoError(err)
	s.token = token

	s.router = chi.NewRouter()
	New(svc, slog.Default(), nil, jwttoken.NewJWTServiceAdapter(jwtService)).Register(s.router)
}

func TestRulesHandlerSuite(t *testing.T) {
	suite.Run(t, new(RulesHandlerSuite))
}

func (s *RulesHandlerSuite) seedRule(ruleID, source string, kind models.Kind) {
	rule := models.Rule{
		ID:      uuid.New(),
		RuleID:  ruleID,
		Source:  source,
		Article: "1",
		Text:    "Rule text for " + ruleID,
		Kind:    kind,
	}
	s.Require().NoError(s.store.Create(s.ctx, &rule))
}

func (s *RulesHandlerSuite) do(method, path string, body any, authed bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RulesHandlerSuite) TestList() {
	s.Run("lists rules with filters", func() {
		s.SetupTest()
		s.seedRule("UCP600-1", "UCP600", models.KindAiAssisted)
		s.seedRule("ISBP-1", "ISBP", models.KindAiAssisted)

		rec := s.do(http.MethodGet, "/rules?source=UCP600", nil, false)
		s.Require().Equal(http.StatusOK, rec.Code)

		var rules []map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &rules))
		s.Require().Len(rules, 1)
		s.Equal("UCP600-1", rules[0]["rule_id"])
	})

	s.Run("invalid rule_type is a bad request", func() {
		s.SetupTest()
		rec := s.do(http.MethodGet, "/rules?rule_type=quantum", nil, false)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("limit above the cap is rejected", func() {
		s.SetupTest()
		rec := s.do(http.MethodGet, "/rules?limit=5000", nil, false)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RulesHandlerSuite) TestGet() {
	s.Run("returns one rule", func() {
		s.SetupTest()
		s.seedRule("UCP600-14a", "UCP600", models.KindAiAssisted)

		rec := s.do(http.MethodGet, "/rules/UCP600-14a", nil, false)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"rule_id":"UCP600-14a"`)
	})

	s.Run("unknown rule is 404", func() {
		s.SetupTest()
		rec := s.do(http.MethodGet, "/rules/UCP600-99", nil, false)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *RulesHandlerSuite) TestExplain() {
	s.Run("returns the oracle explanation", func() {
		s.SetupTest()
		s.seedRule("UCP600-14a", "UCP600", models.KindAiAssisted)

		rec := s.do(http.MethodGet, "/rules/UCP600-14a/explain", nil, false)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "Banks examine documents, not goods.")
	})
}

func (s *RulesHandlerSuite) TestAuthGating() {
	s.Run("mutating routes require a token", func() {
		s.SetupTest()
		s.seedRule("UCP600-14a", "UCP600", models.KindAiAssisted)

		s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/rules/ingest", map[string]string{"source": "UCP600", "text": "x"}, false).Code)
		s.Equal(http.StatusUnauthorized, s.do(http.MethodPut, "/rules/UCP600-14a", map[string]string{"title": "x"}, false).Code)
		s.Equal(http.StatusUnauthorized, s.do(http.MethodDelete, "/rules/UCP600-14a", nil, false).Code)
	})

	s.Run("reads stay open", func() {
		s.SetupTest()
		s.seedRule("UCP600-14a", "UCP600", models.KindAiAssisted)
		s.Equal(http.StatusOK, s.do(http.MethodGet, "/rules", nil, false).Code)
		s.Equal(http.StatusOK, s.do(http.MethodGet, "/rules/UCP600-14a", nil, false).Code)
	})
}

func (s *RulesHandlerSuite) TestIngest() {
	s.Run("creates rules from rulebook text", func() {
		s.SetupTest()
		body := map[string]string{
			"source": "UCP600",
			"text":   "Article 14 - Examination\nBanks must examine presentations.",
		}
		rec := s.do(http.MethodPost, "/rules/ingest", body, true)
		s.Require().Equal(http.StatusCreated, rec.Code)

		var resp struct {
			RulesCreated int `json:"rules_created"`
			RulesSkipped int `json:"rules_skipped"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(1, resp.RulesCreated)
		s.Zero(resp.RulesSkipped)
	})

	s.Run("missing fields are a bad request", func() {
		s.SetupTest()
		rec := s.do(http.MethodPost, "/rules/ingest", map[string]string{"source": "UCP600"}, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("text without rules is a bad request", func() {
		s.SetupTest()
		rec := s.do(http.MethodPost, "/rules/ingest", map[string]string{"source": "UCP600", "text": "prose only"}, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RulesHandlerSuite) TestUpdateAndDelete() {
	s.Run("updates a rule", func() {
		s.SetupTest()
		s.seedRule("UCP600-14a", "UCP600", models.KindAiAssisted)

		rec := s.do(http.MethodPut, "/rules/UCP600-14a", map[string]any{"title": "Examination"}, true)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"title":"Examination"`)
	})

	s.Run("invalid kind is a bad request", func() {
		s.SetupTest()
		s.seedRule("UCP600-14a", "UCP600", models.KindAiAssisted)

		rec := s.do(http.MethodPut, "/rules/UCP600-14a", map[string]any{"rule_type": "quantum"}, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("deletes a rule", func() {
		s.SetupTest()
		s.seedRule("UCP600-14a", "UCP600", models.KindAiAssisted)

		s.Require().Equal(http.StatusOK, s.do(http.MethodDelete, "/rules/UCP600-14a", nil, true).Code)
		s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/rules/UCP600-14a", nil, false).Code)
	})
}
