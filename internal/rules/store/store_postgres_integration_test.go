//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lcvet/internal/rules/models"
	"lcvet/internal/rules/store"
	"lcvet/pkg/testutil/containers"
)

type PostgresRuleStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresRuleStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRuleStoreSuite))
}

func (s *PostgresRuleStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresRuleStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "validations", "rules"))
}

func newTestRule(ruleID, source string, kind models.Kind) *models.Rule {
	return &models.Rule{
		ID:      uuid.New(),
		RuleID:  ruleID,
		Source:  source,
		Article: "1",
		Title:   "Title for " + ruleID,
		Text:    "Rule text for " + ruleID,
		Kind:    kind,
	}
}

func (s *PostgresRuleStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	logic := "amount > 0"
	rule := newTestRule("UCP600-14a", "UCP600", models.KindCodable)
	rule.Logic = &logic
	s.Require().NoError(s.store.Create(ctx, rule))
	s.False(rule.CreatedAt.IsZero(), "create should backfill the db timestamp")

	found, err := s.store.FindByRuleID(ctx, "UCP600-14a")
	s.Require().NoError(err)
	s.Equal(rule.ID, found.ID)
	s.Equal("Title for UCP600-14a", found.Title)
	s.Require().NotNil(found.Logic)
	s.Equal(logic, *found.Logic)
	s.Equal("1.0", found.Version)
	s.Nil(found.UpdatedAt)
}

func (s *PostgresRuleStoreSuite) TestNullableColumns() {
	ctx := context.Background()

	rule := newTestRule("UCP600-3", "UCP600", models.KindAiAssisted)
	rule.Title = ""
	s.Require().NoError(s.store.Create(ctx, rule))

	found, err := s.store.FindByRuleID(ctx, "UCP600-3")
	s.Require().NoError(err)
	s.Empty(found.Title)
	s.Nil(found.Logic)
}

func (s *PostgresRuleStoreSuite) TestConcurrentDuplicateCreate() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, duplicateCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, newTestRule("UCP600-RACE", "UCP600", models.KindAiAssisted))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, store.ErrDuplicate) {
				duplicateCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), duplicateCount.Load())
}

func (s *PostgresRuleStoreSuite) TestFindFilters() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, newTestRule("UCP600-1", "UCP600", models.KindAiAssisted)))
	s.Require().NoError(s.store.Create(ctx, newTestRule("ISBP-1", "ISBP", models.KindCodable)))
	s.Require().NoError(s.store.Create(ctx, newTestRule("EUCP-1", "eUCP", models.KindCodable)))
	s.Require().NoError(s.store.Create(ctx, newTestRule("ISP98-1", "ISP98", models.KindAiAssisted)))

	rules, err := s.store.Find(ctx, models.Filter{Domain: models.DomainLC})
	s.Require().NoError(err)
	s.Len(rules, 3)

	rules, err = s.store.Find(ctx, models.Filter{Domain: models.DomainLC, Kind: models.KindCodable})
	s.Require().NoError(err)
	s.Len(rules, 2)

	rules, err = s.store.Find(ctx, models.Filter{Skip: 1, Limit: 2})
	s.Require().NoError(err)
	s.Len(rules, 2)
}

func (s *PostgresRuleStoreSuite) TestUpdateAndDelete() {
	ctx := context.Background()

	rule := newTestRule("UCP600-29", "UCP600", models.KindAiAssisted)
	s.Require().NoError(s.store.Create(ctx, rule))

	rule.Text = "revised text"
	rule.Kind = models.KindCodable
	logic := "presentation_date <= expiry_date"
	rule.Logic = &logic
	s.Require().NoError(s.store.Update(ctx, rule))

	found, err := s.store.FindByRuleID(ctx, "UCP600-29")
	s.Require().NoError(err)
	s.Equal("revised text", found.Text)
	s.Equal(models.KindCodable, found.Kind)
	s.NotNil(found.UpdatedAt)

	s.Require().NoError(s.store.Delete(ctx, "UCP600-29"))
	_, err = s.store.FindByRuleID(ctx, "UCP600-29")
	s.Require().ErrorIs(err, store.ErrNotFound)
	s.Require().ErrorIs(s.store.Delete(ctx, "UCP600-29"), store.ErrNotFound)
}
