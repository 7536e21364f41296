// Package store persists per-rule validation records. The table is an
// append-only audit log: concurrent runs interleave inserts freely and no
// path ever updates or deletes a record.
package store

import (
	"context"

	"lcvet/internal/validation/models"
)

// RecordStore is the audit-trail persistence contract.
type RecordStore interface {
	// Append inserts one record and fills in its server-assigned timestamp.
	Append(ctx context.Context, record *models.Record) error
	// ListByDocument returns all records for a document id, most recent
	// first, with rule id and text joined in. Empty result is not an error;
	// the history service decides what "no records" means.
	ListByDocument(ctx context.Context, documentID string) ([]models.Record, error)
}
