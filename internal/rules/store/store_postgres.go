package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"lcvet/internal/rules/models"
)

// PostgresStore persists rules in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed rule store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const ruleColumns = `id, rule_id, source, article, title, text, kind, logic, version, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, rule *models.Rule) error {
	rule.Normalize()
	query := `
		INSERT INTO rules (id, rule_id, source, article, title, text, kind, logic, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		rule.ID,
		rule.RuleID,
		rule.Source,
		rule.Article,
		nullString(rule.Title),
		rule.Text,
		string(rule.Kind),
		nullStringPtr(rule.Logic),
		rule.Version,
	).Scan(&rule.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByRuleID(ctx context.Context, ruleID string) (*models.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules WHERE rule_id = $1`
	rule, err := scanRule(s.db.QueryRowContext(ctx, query, ruleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find rule: %w", err)
	}
	return rule, nil
}

// Find returns rules matching the filter in insertion order. Pagination is
// applied here, not by callers.
func (s *PostgresStore) Find(ctx context.Context, filter models.Filter) ([]models.Rule, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Source != "" {
		conditions = append(conditions, "source = "+arg(filter.Source))
	}
	if sources := filter.DomainSources(); sources != nil {
		conditions = append(conditions, "source = ANY("+arg(pq.Array(sources))+")")
	}
	if filter.Kind != "" {
		conditions = append(conditions, "kind = "+arg(string(filter.Kind)))
	}

	query := `SELECT ` + ruleColumns + ` FROM rules`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, rule_id"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Skip > 0 {
		query += " OFFSET " + arg(filter.Skip)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

func (s *PostgresStore) Update(ctx context.Context, rule *models.Rule) error {
	rule.Normalize()
	query := `
		UPDATE rules
		SET title = $2, text = $3, kind = $4, logic = $5, version = $6, updated_at = now()
		WHERE rule_id = $1
		RETURNING updated_at
	`
	var updatedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query,
		rule.RuleID,
		nullString(rule.Title),
		rule.Text,
		string(rule.Kind),
		nullStringPtr(rule.Logic),
		rule.Version,
	).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update rule: %w", err)
	}
	if updatedAt.Valid {
		rule.UpdatedAt = &updatedAt.Time
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, ruleID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE rule_id = $1`, ruleID)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*models.Rule, error) {
	var (
		rule      models.Rule
		title     sql.NullString
		logic     sql.NullString
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&rule.ID,
		&rule.RuleID,
		&rule.Source,
		&rule.Article,
		&title,
		&rule.Text,
		&rule.Kind,
		&logic,
		&rule.Version,
		&rule.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	rule.Title = title.String
	if logic.Valid {
		rule.Logic = &logic.String
	}
	if updatedAt.Valid {
		rule.UpdatedAt = &updatedAt.Time
	}
	return &rule, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
