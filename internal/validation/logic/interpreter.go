// Package logic evaluates the pseudo-logic dialect attached to codable rules.
//
// This is deliberately a fixed-pattern matcher over a closed vocabulary, not
// a general expression evaluator: every recognized check is enumerable and
// auditable, and no rule text can ever execute arbitrary logic.
package logic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnrecognizedLogic is returned in strict mode when a non-empty logic
// string matches no known pattern.
var ErrUnrecognizedLogic = errors.New("unrecognized rule logic")

// Options tune interpreter behavior.
type Options struct {
	// StrictUnmatched turns the historical permissive pass for unmatched
	// logic into an explicit ErrUnrecognizedLogic.
	StrictUnmatched bool
}

// Outcome is the interpreter's verdict on one rule.
type Outcome struct {
	Complied bool
	Details  string
}

var acceptedCurrencies = map[string]bool{
	"USD": true,
	"EUR": true,
	"GBP": true,
	"JPY": true,
}

// Evaluate checks a logic string against document fields.
//
// Matching is sequential and first-applicable-match wins: a pattern applies
// only when its substring occurs in the logic string and every field it needs
// is present; later patterns are not considered after a match. Parse failures
// are folded into a non-compliant Outcome, never returned as errors.
func Evaluate(logicStr string, fields map[string]any, opts Options) (Outcome, error) {
	if strings.TrimSpace(logicStr) == "" {
		return Outcome{Complied: false, Details: "No logic defined for this rule"}, nil
	}

	expiryDate, hasExpiry := stringField(fields, "expiry_date")
	shipmentDate, hasShipment := stringField(fields, "shipment_date")
	presentationDate, hasPresentation := stringField(fields, "presentation_date")
	amount, hasAmount := stringField(fields, "amount")
	currency, hasCurrency := stringField(fields, "currency")

	if strings.Contains(logicStr, "expiry_date >= shipment_date") && hasExpiry && hasShipment {
		expiry, err := ParseDate(expiryDate)
		if err != nil {
			return parseFailure(err), nil
		}
		shipment, err := ParseDate(shipmentDate)
		if err != nil {
			return parseFailure(err), nil
		}
		if !expiry.Before(shipment) {
			return Outcome{Complied: true, Details: "Expiry date is after shipment date"}, nil
		}
		return Outcome{Complied: false, Details: "Expiry date is before shipment date"}, nil
	}

	if strings.Contains(logicStr, "shipment_date <= presentation_date") && hasShipment && hasPresentation {
		shipment, err := ParseDate(shipmentDate)
		if err != nil {
			return parseFailure(err), nil
		}
		presentation, err := ParseDate(presentationDate)
		if err != nil {
			return parseFailure(err), nil
		}
		if !shipment.After(presentation) {
			return Outcome{Complied: true, Details: "Shipment date is before or equal to presentation date"}, nil
		}
		return Outcome{Complied: false, Details: "Shipment date is after presentation date"}, nil
	}

	if strings.Contains(logicStr, "currency") && hasCurrency {
		if acceptedCurrencies[currency] {
			return Outcome{Complied: true, Details: fmt.Sprintf("Currency %s is acceptable", currency)}, nil
		}
		return Outcome{Complied: false, Details: fmt.Sprintf("Currency %s may not be acceptable", currency)}, nil
	}

	if strings.Contains(logicStr, "amount > 0") && hasAmount {
		value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
		if err != nil {
			return Outcome{Complied: false, Details: "Invalid amount format"}, nil
		}
		if value > 0 {
			return Outcome{Complied: true, Details: "Amount is positive"}, nil
		}
		return Outcome{Complied: false, Details: "Amount must be positive"}, nil
	}

	if opts.StrictUnmatched {
		return Outcome{}, ErrUnrecognizedLogic
	}
	// Historical behavior: unmatched logic passes. Locked by tests.
	return Outcome{Complied: true, Details: "Rule logic executed successfully"}, nil
}

func parseFailure(err error) Outcome {
	return Outcome{Complied: false, Details: fmt.Sprintf("Error executing logic: %v", err)}
}

// stringField reads a document field as a string. Empty values count as
// absent so a pattern whose fields are blank falls through to later patterns.
func stringField(fields map[string]any, name string) (string, bool) {
	v, ok := fields[name]
	if !ok || v == nil {
		return "", false
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	default:
		s = fmt.Sprintf("%v", t)
	}
	if s == "" {
		return "", false
	}
	return s, true
}
