package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lcvet/internal/rules/models"
)

type RuleStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryStore
}

func (s *RuleStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
}

func TestRuleStoreSuite(t *testing.T) {
	suite.Run(t, new(RuleStoreSuite))
}

func (s *RuleStoreSuite) newRule(ruleID, source string, kind models.Kind) *models.Rule {
	return &models.Rule{
		ID:      uuid.New(),
		RuleID:  ruleID,
		Source:  source,
		Article: "1",
		Text:    "Rule text for " + ruleID,
		Kind:    kind,
	}
}

func (s *RuleStoreSuite) TestCreateAndLookup() {
	s.Run("creates and finds by rule id", func() {
		s.SetupTest()
		rule := s.newRule("UCP600-14a", "UCP600", models.KindAiAssisted)
		s.Require().NoError(s.store.Create(s.ctx, rule))

		found, err := s.store.FindByRuleID(s.ctx, "UCP600-14a")
		s.Require().NoError(err)
		s.Equal(rule.Text, found.Text)
		s.False(found.CreatedAt.IsZero())
	})

	s.Run("rejects duplicate rule id", func() {
		s.SetupTest()
		s.Require().NoError(s.store.Create(s.ctx, s.newRule("UCP600-14a", "UCP600", models.KindAiAssisted)))
		err := s.store.Create(s.ctx, s.newRule("UCP600-14a", "UCP600", models.KindCodable))
		s.Require().ErrorIs(err, ErrDuplicate)
	})

	s.Run("unknown rule id is not found", func() {
		s.SetupTest()
		_, err := s.store.FindByRuleID(s.ctx, "UCP600-99")
		s.Require().ErrorIs(err, ErrNotFound)
	})

	s.Run("create normalizes kind and logic", func() {
		s.SetupTest()
		logic := "amount > 0"
		rule := s.newRule("ISBP-1", "ISBP", models.KindAiAssisted)
		rule.Logic = &logic
		s.Require().NoError(s.store.Create(s.ctx, rule))

		found, err := s.store.FindByRuleID(s.ctx, "ISBP-1")
		s.Require().NoError(err)
		s.Nil(found.Logic)
		s.Equal("1.0", found.Version)
	})
}

func (s *RuleStoreSuite) seedMixed() {
	s.Require().NoError(s.store.Create(s.ctx, s.newRule("UCP600-1", "UCP600", models.KindAiAssisted)))
	s.Require().NoError(s.store.Create(s.ctx, s.newRule("UCP600-2", "UCP600", models.KindCodable)))
	s.Require().NoError(s.store.Create(s.ctx, s.newRule("ISBP-1", "ISBP", models.KindAiAssisted)))
	s.Require().NoError(s.store.Create(s.ctx, s.newRule("EUCP-1", "eUCP", models.KindCodable)))
	s.Require().NoError(s.store.Create(s.ctx, s.newRule("ISP98-1", "ISP98", models.KindAiAssisted)))
}

func (s *RuleStoreSuite) TestFind() {
	s.Run("zero filter returns everything in insertion order", func() {
		s.SetupTest()
		s.seedMixed()
		rules, err := s.store.Find(s.ctx, models.Filter{})
		s.Require().NoError(err)
		s.Require().Len(rules, 5)
		s.Equal("UCP600-1", rules[0].RuleID)
		s.Equal("ISP98-1", rules[4].RuleID)
	})

	s.Run("source filter matches exactly", func() {
		s.SetupTest()
		s.seedMixed()
		rules, err := s.store.Find(s.ctx, models.Filter{Source: "ISBP"})
		s.Require().NoError(err)
		s.Require().Len(rules, 1)
		s.Equal("ISBP-1", rules[0].RuleID)
	})

	s.Run("LC domain expands to UCP600, ISBP and eUCP", func() {
		s.SetupTest()
		s.seedMixed()
		rules, err := s.store.Find(s.ctx, models.Filter{Domain: models.DomainLC})
		s.Require().NoError(err)
		s.Require().Len(rules, 4)
		for _, r := range rules {
			s.NotEqual("ISP98", r.Source)
		}
	})

	s.Run("filters combine conjunctively", func() {
		s.SetupTest()
		s.seedMixed()
		rules, err := s.store.Find(s.ctx, models.Filter{
			Domain: models.DomainLC,
			Kind:   models.KindCodable,
		})
		s.Require().NoError(err)
		s.Require().Len(rules, 2)
		s.Equal("UCP600-2", rules[0].RuleID)
		s.Equal("EUCP-1", rules[1].RuleID)
	})

	s.Run("unrecognized domain is ignored", func() {
		s.SetupTest()
		s.seedMixed()
		rules, err := s.store.Find(s.ctx, models.Filter{Domain: "GUARANTEES"})
		s.Require().NoError(err)
		s.Len(rules, 5)
	})

	s.Run("skip and limit paginate", func() {
		s.SetupTest()
		s.seedMixed()
		rules, err := s.store.Find(s.ctx, models.Filter{Skip: 1, Limit: 2})
		s.Require().NoError(err)
		s.Require().Len(rules, 2)
		s.Equal("UCP600-2", rules[0].RuleID)
		s.Equal("ISBP-1", rules[1].RuleID)
	})

	s.Run("skip past the end is empty", func() {
		s.SetupTest()
		s.seedMixed()
		rules, err := s.store.Find(s.ctx, models.Filter{Skip: 10})
		s.Require().NoError(err)
		s.Empty(rules)
	})
}

func (s *RuleStoreSuite) TestUpdateAndDelete() {
	s.Run("update replaces mutable fields and stamps updated_at", func() {
		s.SetupTest()
		rule := s.newRule("UCP600-14a", "UCP600", models.KindAiAssisted)
		s.Require().NoError(s.store.Create(s.ctx, rule))

		updated := *rule
		updated.Text = "revised text"
		s.Require().NoError(s.store.Update(s.ctx, &updated))

		found, err := s.store.FindByRuleID(s.ctx, "UCP600-14a")
		s.Require().NoError(err)
		s.Equal("revised text", found.Text)
		s.Require().NotNil(found.UpdatedAt)
		s.Equal(rule.CreatedAt, found.CreatedAt)
	})

	s.Run("update of unknown rule is not found", func() {
		s.SetupTest()
		err := s.store.Update(s.ctx, s.newRule("UCP600-99", "UCP600", models.KindAiAssisted))
		s.Require().ErrorIs(err, ErrNotFound)
	})

	s.Run("delete removes the rule", func() {
		s.SetupTest()
		s.Require().NoError(s.store.Create(s.ctx, s.newRule("UCP600-14a", "UCP600", models.KindAiAssisted)))
		s.Require().NoError(s.store.Delete(s.ctx, "UCP600-14a"))

		_, err := s.store.FindByRuleID(s.ctx, "UCP600-14a")
		s.Require().ErrorIs(err, ErrNotFound)
		s.Require().ErrorIs(s.store.Delete(s.ctx, "UCP600-14a"), ErrNotFound)
	})
}
