// Command seed loads the sample UCP600 rule set into the database. Existing
// rule ids are left untouched, so it is safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"

	"lcvet/internal/platform/config"
	"lcvet/internal/platform/logger"
	"lcvet/internal/platform/postgres"
	"lcvet/internal/rules/models"
	"lcvet/internal/rules/store"
)

type seedRule struct {
	ruleID  string
	article string
	title   string
	text    string
	kind    models.Kind
	logic   string
}

var sampleRules = []seedRule{
	{
		ruleID:  "UCP600-14a",
		article: "14a",
		title:   "Standard for Examination of Documents",
		text:    "A nominated bank acting on its nomination, a confirming bank, if any, and the issuing bank must examine a presentation to determine, on the basis of the documents alone, whether or not the documents appear on their face to comply with the terms and conditions of the credit.",
		kind:    models.KindAiAssisted,
	},
	{
		ruleID:  "UCP600-14b",
		article: "14b",
		title:   "Examination Period",
		text:    "A nominated bank acting on its nomination, a confirming bank, if any, and the issuing bank shall each have a maximum of five banking days following the day of presentation to determine if a presentation is complying.",
		kind:    models.KindCodable,
		logic:   "presentation_date + 5_banking_days >= examination_date",
	},
	{
		ruleID:  "UCP600-18",
		article: "18",
		title:   "Commercial Invoice",
		text:    "A commercial invoice must appear to be issued by the beneficiary (except as provided in article 38), must be made out in the name of the applicant (except as provided in sub-article 38 (g)), and need not be signed.",
		kind:    models.KindAiAssisted,
	},
	{
		ruleID:  "UCP600-28a",
		article: "28a",
		title:   "Insurance Document Requirements",
		text:    "An insurance document, such as an insurance policy, an insurance certificate or a declaration under an open cover, must appear to be issued and signed by an insurance company, an underwriter or their agents or proxies.",
		kind:    models.KindAiAssisted,
	},
	{
		ruleID:  "UCP600-31",
		article: "31",
		title:   "Date of Shipment",
		text:    "Unless a credit states otherwise, banks will accept a transport document bearing a date of shipment that is not later than the latest date for shipment as specified in the credit.",
		kind:    models.KindCodable,
		logic:   "shipment_date <= latest_shipment_date",
	},
	{
		ruleID:  "UCP600-29",
		article: "29",
		title:   "Expiry Date and Place for Presentation",
		text:    "A credit must state an expiry date for presentation of documents for payment, acceptance or negotiation. An expiry date stated for the credit will be construed to apply to all drafts drawn under and documents required by the credit.",
		kind:    models.KindCodable,
		logic:   "presentation_date <= expiry_date",
	},
	{
		ruleID:  "UCP600-3",
		article: "3",
		title:   "Credits v. Contracts",
		text:    "Credits, by their nature, are separate transactions from the sales or other contract(s) on which they may be based. Banks are in no way concerned with or bound by such contract(s), even if any reference whatsoever to it (them) is included in the credit.",
		kind:    models.KindAiAssisted,
	},
	{
		ruleID:  "UCP600-7a",
		article: "7a",
		title:   "Issuing Bank Undertaking",
		text:    "Provided that the stipulated documents are presented to the nominated bank or to the issuing bank and that they constitute a complying presentation, the issuing bank must honour if the credit is available by sight payment, deferred payment or acceptance with the issuing bank.",
		kind:    models.KindAiAssisted,
	},
}

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	rules := store.NewPostgresStore(db)

	created, skipped := 0, 0
	for _, s := range sampleRules {
		rule := models.Rule{
			ID:      uuid.New(),
			RuleID:  s.ruleID,
			Source:  "UCP600",
			Article: s.article,
			Title:   s.title,
			Text:    s.text,
			Kind:    s.kind,
		}
		if s.logic != "" {
			logic := s.logic
			rule.Logic = &logic
		}
		rule.Normalize()

		if err := rules.Create(ctx, &rule); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				log.Info("rule exists, skipping", "rule_id", s.ruleID)
				skipped++
				continue
			}
			log.Error("failed to create rule", "rule_id", s.ruleID, "error", err.Error())
			os.Exit(1)
		}
		log.Info("created rule", "rule_id", s.ruleID, "title", s.title)
		created++
	}

	log.Info("seeding complete", "created", created, "skipped", skipped)
}
