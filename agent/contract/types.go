package contract

import (
	directoryx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/directory"
)

type AgentType string

const (
	AgentTypeClassifier AgentType = "classifier"
	AgentTypeBilling    AgentType = "billing"
	AgentTypeTechnical  AgentType = "technical"
	AgentTypeGeneral    AgentType = "general"
)

// Category is the closed set of query categories a turn can be routed to.
// A turn is classified exactly once; revisions never reclassify.
type Category string

const (
	CategoryBilling   Category = "BILLING"
	CategoryTechnical Category = "TECHNICAL"
	CategoryGeneral   Category = "GENERAL"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryBilling, CategoryTechnical, CategoryGeneral:
		return true
	}
	return false
}

// AgentType maps a category onto the generator role that serves it.
func (c Category) AgentType() AgentType {
	switch c {
	case CategoryBilling:
		return AgentTypeBilling
	case CategoryTechnical:
		return AgentTypeTechnical
	default:
		return AgentTypeGeneral
	}
}

// ClassificationSource records which path produced the category.
type ClassificationSource string

const (
	SourceRules    ClassificationSource = "rules"
	SourceModel    ClassificationSource = "model"
	SourceFallback ClassificationSource = "fallback"
)

type Classification struct {
	Category  Category             `json:"category"`
	Rationale string               `json:"rationale,omitempty"`
	Source    ClassificationSource `json:"source"`
}

// HistoryEntry is one prior exchange handed to generators as context.
type HistoryEntry struct {
	Query    string   `json:"query"`
	Response string   `json:"response"`
	Category Category `json:"category"`
}

type GenerateRequest struct {
	Query    string               `json:"query"`
	Category Category             `json:"category"`
	Customer *directoryx.Customer `json:"customer,omitempty"`
	History  []HistoryEntry       `json:"history,omitempty"`

	// Feedback carries reviewer issues from the previous pass. Empty on
	// the first draft of a turn.
	Feedback []string `json:"feedback,omitempty"`

	// IdentificationAttempted is set when the query tried to identify an
	// account but nothing resolved; generators then ask for credentials
	// instead of assuming account specifics.
	IdentificationAttempted bool `json:"identification_attempted,omitempty"`
}

type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionRevise  Decision = "REVISE"
)

type Verdict struct {
	Score    int      `json:"score"`
	Issues   []string `json:"issues,omitempty"`
	Decision Decision `json:"decision"`
}

type ReviewRequest struct {
	Query    string   `json:"query"`
	Draft    string   `json:"draft"`
	Category Category `json:"category"`
}

// TurnState is the terminal outcome of a turn.
type TurnState string

const (
	TurnApproved TurnState = "approved"

	// TurnBudgetExhausted means the revision budget ran out and the last
	// draft was finalized regardless of its score. Not an error.
	TurnBudgetExhausted TurnState = "budget_exhausted"

	TurnError TurnState = "error"
)

// TurnResult is what the turn submission interface hands back to the caller.
type TurnResult struct {
	Response string    `json:"response"`
	Category Category  `json:"category"`
	Score    int       `json:"score"`
	State    TurnState `json:"state"`
}

// Reserved control tokens accepted by the turn submission interface.
// Matched after trimming, before the state machine runs.
const (
	TokenEndSession   = "/end"
	TokenResetSession = "/reset"
)

// SafeFallbackResponse is returned whenever a turn aborts into the error
// state. The internal cause is logged, never surfaced.
const SafeFallbackResponse = "I apologize, but I'm experiencing technical difficulties. Please try again later."
