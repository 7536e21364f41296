package engine

import "lcvet/internal/validation/models"

// ResolveOverall folds per-rule counts into one document-level status.
// Precedence is strict regardless of counts: any failure dominates, then any
// warning; an empty run resolves to pass.
func ResolveOverall(passed, failed, warnings int) models.Status {
	switch {
	case failed > 0:
		return models.StatusFail
	case warnings > 0:
		return models.StatusWarning
	default:
		return models.StatusPass
	}
}
