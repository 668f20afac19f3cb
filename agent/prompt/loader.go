package prompt

import (
	_ "embed"
	"strings"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
)

var (
	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/billing.txt
	billingRaw string

	//go:embed template/technical.txt
	technicalRaw string

	//go:embed template/general.txt
	generalRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Classifier string
	Billing    string
	Technical  string
	General    string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier: strings.TrimSpace(classifierRaw),
		Billing:    strings.TrimSpace(billingRaw),
		Technical:  strings.TrimSpace(technicalRaw),
		General:    strings.TrimSpace(generalRaw),
	}
}

// For returns the generator prompt for a category.
func (p PromptSet) For(category contractx.Category) string {
	switch category {
	case contractx.CategoryBilling:
		return p.Billing
	case contractx.CategoryTechnical:
		return p.Technical
	default:
		return p.General
	}
}
