// Package ingest extracts raw rule candidates from rulebook text. How the
// text got out of its PDF is the uploader's problem; this package only
// recognizes article structure.
package ingest

import (
	"regexp"
	"strings"
)

// articlePatterns match the heading styles seen across ICC rulebooks.
var articlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Article\s+(\d+[a-z]?)\s*[-–—]?\s*(.*)$`),
	regexp.MustCompile(`^(\d+[a-z]?)\.\s+(.*)$`),
	regexp.MustCompile(`(?i)^UCP\s*(\d+[a-z]?)\s*[-–—]?\s*(.*)$`),
}

// Candidate is one extracted rule awaiting classification. Kind defaults to
// ai_assisted until the oracle says otherwise.
type Candidate struct {
	RuleID  string
	Source  string
	Article string
	Title   string
	Text    string
}

// ExtractRules scans rulebook text line by line, starting a new candidate at
// every article heading and accumulating body lines under the current one.
func ExtractRules(text, source string) []Candidate {
	var (
		candidates []Candidate
		article    string
		title      string
		body       []string
	)

	flush := func() {
		if article == "" || len(body) == 0 {
			return
		}
		candidates = append(candidates, Candidate{
			RuleID:  strings.ToUpper(source) + "-" + article,
			Source:  source,
			Article: article,
			Title:   title,
			Text:    strings.Join(body, " "),
		})
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if a, t, ok := matchArticle(line); ok {
			flush()
			article, title, body = a, t, nil
			continue
		}
		if article != "" {
			body = append(body, line)
		}
	}
	flush()

	return candidates
}

func matchArticle(line string) (article, title string, ok bool) {
	for _, pattern := range articlePatterns {
		if m := pattern.FindStringSubmatch(line); m != nil {
			return m[1], strings.TrimSpace(m[2]), true
		}
	}
	return "", "", false
}
