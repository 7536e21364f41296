package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"lcvet/internal/platform/config"
	"lcvet/internal/platform/redis"
	"lcvet/internal/rules/models"
)

// CachedStore is a read-through cache for rule listings. Mutations bump a
// generation counter so stale listings are never served; entries also expire
// via TTL. A nil redis client degrades to a transparent passthrough.
type CachedStore struct {
	next   Store
	client *redis.Client
	logger *slog.Logger
}

func NewCachedStore(next Store, client *redis.Client, logger *slog.Logger) *CachedStore {
	return &CachedStore{next: next, client: client, logger: logger}
}

const generationKey = "rules:gen"

func (c *CachedStore) Create(ctx context.Context, rule *models.Rule) error {
	if err := c.next.Create(ctx, rule); err != nil {
		return err
	}
	c.bumpGeneration(ctx)
	return nil
}

func (c *CachedStore) FindByRuleID(ctx context.Context, ruleID string) (*models.Rule, error) {
	return c.next.FindByRuleID(ctx, ruleID)
}

func (c *CachedStore) Find(ctx context.Context, filter models.Filter) ([]models.Rule, error) {
	if c.client == nil {
		return c.next.Find(ctx, filter)
	}

	key := c.listKey(ctx, filter)
	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var rules []models.Rule
		if err := json.Unmarshal(cached, &rules); err == nil {
			return rules, nil
		}
	}

	rules, err := c.next.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(rules); err == nil {
		if err := c.client.Set(ctx, key, payload, config.RuleCacheTTL).Err(); err != nil {
			c.logger.WarnContext(ctx, "rule cache write failed", "error", err.Error())
		}
	}
	return rules, nil
}

func (c *CachedStore) Update(ctx context.Context, rule *models.Rule) error {
	if err := c.next.Update(ctx, rule); err != nil {
		return err
	}
	c.bumpGeneration(ctx)
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, ruleID string) error {
	if err := c.next.Delete(ctx, ruleID); err != nil {
		return err
	}
	c.bumpGeneration(ctx)
	return nil
}

func (c *CachedStore) listKey(ctx context.Context, filter models.Filter) string {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		gen = 0
	}
	return fmt.Sprintf("rules:list:g%d:src=%s:dom=%s:kind=%s:skip=%d:limit=%d",
		gen, filter.Source, filter.Domain, filter.Kind, filter.Skip, filter.Limit)
}

func (c *CachedStore) bumpGeneration(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.logger.WarnContext(ctx, "rule cache invalidation failed", "error", err.Error())
	}
}
