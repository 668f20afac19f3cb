// Package reviewer scores draft responses against the originating query.
// Scoring is pure and deterministic so the revision loop stays testable
// without any collaborator.
package reviewer

import (
	"context"
	"strings"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
)

// Issue strings are stable identifiers: generators key their revision
// amendments off them.
const (
	IssueTooBrief       = "Response too brief"
	IssueLowCoverage    = "May not fully address query"
	IssueNeedsEmpathy   = "May need more empathetic tone"
	IssueMissingGreet   = "Missing greeting"
	IssueMissingClosing = "Missing closing"
	IssueOpenQuestion   = "Explicit question left unanswered"
)

type Config struct {
	// ApprovalThreshold is the minimum score for an APPROVE decision.
	ApprovalThreshold int
	// IssuePenalty is deducted from 100 per detected issue.
	IssuePenalty int
	// MinResponseLength is the floor below which a draft counts as brief;
	// longer queries raise the effective floor.
	MinResponseLength int
}

func (c Config) normalized() Config {
	if c.ApprovalThreshold <= 0 {
		c.ApprovalThreshold = 90
	}
	if c.IssuePenalty <= 0 {
		c.IssuePenalty = 20
	}
	if c.MinResponseLength <= 0 {
		c.MinResponseLength = 50
	}
	return c
}

type Reviewer struct {
	cfg Config
}

func New(cfg Config) *Reviewer {
	return &Reviewer{cfg: cfg.normalized()}
}

func (r *Reviewer) Review(ctx context.Context, req contractx.ReviewRequest) (contractx.Verdict, error) {
	issues := r.detectIssues(req)

	score := 100 - r.cfg.IssuePenalty*len(issues)
	if score < 0 {
		score = 0
	}

	decision := contractx.DecisionRevise
	if score >= r.cfg.ApprovalThreshold {
		decision = contractx.DecisionApprove
	}

	return contractx.Verdict{
		Score:    score,
		Issues:   issues,
		Decision: decision,
	}, nil
}

func (r *Reviewer) detectIssues(req contractx.ReviewRequest) []string {
	var issues []string

	draft := strings.TrimSpace(req.Draft)
	draftLower := strings.ToLower(draft)
	queryLower := strings.ToLower(req.Query)

	if len(draft) < r.minLengthFor(req.Query) {
		issues = append(issues, IssueTooBrief)
	}
	if coverage(queryLower, draftLower) < 0.3 {
		issues = append(issues, IssueLowCoverage)
	}
	if needsEmpathy(req.Category, queryLower) && !hasEmpathy(draftLower) {
		issues = append(issues, IssueNeedsEmpathy)
	}
	if !containsAny(draftLower, greetingMarkers) {
		issues = append(issues, IssueMissingGreet)
	}
	if !containsAny(draftLower, closingMarkers) {
		issues = append(issues, IssueMissingClosing)
	}
	if strings.Contains(req.Query, "?") && questionUnanswered(queryLower, draftLower) {
		issues = append(issues, IssueOpenQuestion)
	}

	return issues
}

func (r *Reviewer) minLengthFor(query string) int {
	min := r.cfg.MinResponseLength
	if n := len(query); n > min {
		min = n
	}
	return min
}

var greetingMarkers = []string{
	"hello", "hi ", "greetings", "thank you", "i'm your", "i am your", "welcome",
}

var closingMarkers = []string{
	"don't hesitate", "anything else", "let me know", "further assistance",
	"happy to help", "if you need",
}

var empathyMarkers = []string{
	"sorry", "apologize", "unfortunately", "understand", "appreciate",
}

func needsEmpathy(category contractx.Category, queryLower string) bool {
	if category == contractx.CategoryBilling || category == contractx.CategoryTechnical {
		return true
	}
	return strings.Contains(queryLower, "problem") || strings.Contains(queryLower, "issue")
}

func hasEmpathy(draftLower string) bool {
	return containsAny(draftLower, empathyMarkers)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// coverage is the share of query terms that reappear in the draft.
func coverage(queryLower, draftLower string) float64 {
	terms := strings.Fields(queryLower)
	if len(terms) == 0 {
		return 1
	}
	addressed := 0
	for _, term := range terms {
		if strings.Contains(draftLower, strings.Trim(term, ".,!?")) {
			addressed++
		}
	}
	return float64(addressed) / float64(len(terms))
}

// questionUnanswered checks whether any substantive term of an explicit
// question shows up in the draft.
func questionUnanswered(queryLower, draftLower string) bool {
	for _, term := range strings.Fields(queryLower) {
		term = strings.Trim(term, ".,!?")
		if len(term) < 4 {
			continue
		}
		if strings.Contains(draftLower, term) {
			return false
		}
	}
	return true
}
