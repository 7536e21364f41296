// Package history reconstructs validation sessions from the audit trail.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lcvet/internal/validation/models"
	"lcvet/internal/validation/store"
	dErrors "lcvet/pkg/domain-errors"
)

// Service serves the audit-trail read path.
type Service struct {
	records store.RecordStore
	logger  *slog.Logger
}

// New constructs a history Service.
func New(records store.RecordStore, logger *slog.Logger) (*Service, error) {
	if records == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}, nil
}

// History returns every validation session for a document, most recent
// session first. A document with no records is a not-found condition, the
// only externally observable failure on this path.
func (s *Service) History(ctx context.Context, documentID string) (*models.History, error) {
	records, err := s.records.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list validation records: %w", err)
	}
	if len(records) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no validation history found for this document")
	}

	sessions := GroupSessions(records)
	return &models.History{
		DocumentID:    documentID,
		TotalSessions: len(sessions),
		Sessions:      sessions,
	}, nil
}

// GroupSessions merges records sharing a minute-truncated timestamp into one
// session each. Records must arrive most recent first; session order follows
// record order, and entries within a session keep their relative order.
func GroupSessions(records []models.Record) []models.Session {
	var (
		sessions []models.Session
		index    = make(map[time.Time]int)
	)
	for _, record := range records {
		key := record.Timestamp.UTC().Truncate(time.Minute)
		i, ok := index[key]
		if !ok {
			i = len(sessions)
			index[key] = i
			sessions = append(sessions, models.Session{Timestamp: record.Timestamp})
		}
		sessions[i].Results = append(sessions[i].Results, models.SessionEntry{
			RuleID:     record.RuleID,
			RuleText:   models.TruncateText(record.RuleText, 100),
			Status:     record.Status,
			Details:    record.Details,
			Confidence: record.Confidence,
		})
	}
	return sessions
}
