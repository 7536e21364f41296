package store

import (
	"context"
	"database/sql"
	"fmt"

	"lcvet/internal/validation/models"
)

// PostgresStore persists validation records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed record store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append inserts one validation record. The timestamp comes from the
// database clock so concurrent writers share one ordering authority.
func (s *PostgresStore) Append(ctx context.Context, record *models.Record) error {
	query := `
		INSERT INTO validations (id, rule_ref, document_id, status, details, confidence_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		record.ID,
		record.RuleRef,
		record.DocumentID,
		string(record.Status),
		nullString(record.Details),
		nullString(record.Confidence),
	).Scan(&record.Timestamp)
	if err != nil {
		return fmt.Errorf("insert validation record: %w", err)
	}
	return nil
}

// ListByDocument returns every record for the document, most recent first.
func (s *PostgresStore) ListByDocument(ctx context.Context, documentID string) ([]models.Record, error) {
	query := `
		SELECT v.id, v.rule_ref, r.rule_id, r.text, v.document_id,
		       v.status, v.details, v.confidence_score, v.created_at
		FROM validations v
		JOIN rules r ON r.id = v.rule_ref
		WHERE v.document_id = $1
		ORDER BY v.created_at DESC, v.id
	`
	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("query validation records: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var (
			record     models.Record
			details    sql.NullString
			confidence sql.NullString
		)
		err := rows.Scan(
			&record.ID,
			&record.RuleRef,
			&record.RuleID,
			&record.RuleText,
			&record.DocumentID,
			&record.Status,
			&details,
			&confidence,
			&record.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan validation record: %w", err)
		}
		record.Details = details.String
		record.Confidence = confidence.String
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate validation records: %w", err)
	}
	return records, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
