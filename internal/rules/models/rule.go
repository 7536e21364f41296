package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies how a rule's compliance check is performed.
type Kind string

const (
	// KindCodable rules are checked deterministically against document fields.
	KindCodable Kind = "codable"
	// KindAiAssisted rules delegate judgment to the oracle.
	KindAiAssisted Kind = "ai_assisted"
)

// ParseKind validates a kind string from the wire.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCodable, KindAiAssisted:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown rule kind %q", s)
	}
}

// LCSources are the rule sources covered by the "LC" domain alias.
var LCSources = []string{"UCP600", "ISBP", "eUCP"}

// DomainLC is the only recognized domain filter alias.
const DomainLC = "LC"

// Rule is one ICC rulebook article as stored.
//
// Logic is set only for codable rules. A codable rule may still carry no
// logic; the interpreter reports that as "no logic defined" rather than
// failing the run.
type Rule struct {
	ID        uuid.UUID
	RuleID    string // e.g. "UCP600-14a"
	Source    string // e.g. "UCP600"
	Article   string // e.g. "14a"
	Title     string
	Text      string
	Kind      Kind
	Logic     *string
	Version   string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Normalize enforces the kind/logic invariant and version default.
func (r *Rule) Normalize() {
	if r.Kind != KindCodable {
		r.Logic = nil
	}
	if r.Version == "" {
		r.Version = "1.0"
	}
}

// Filter selects rules for listing and validation runs. Conditions combine
// conjunctively; the zero value selects all rules.
type Filter struct {
	Source string
	Domain string // only DomainLC is recognized
	Kind   Kind
	Skip   int
	Limit  int
}

// DomainSources returns the source set the domain alias expands to, or nil
// when no domain filter applies.
func (f Filter) DomainSources() []string {
	if f.Domain == DomainLC {
		return LCSources
	}
	return nil
}
