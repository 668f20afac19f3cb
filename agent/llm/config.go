package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
	openrouterx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ClassifierModel       string  `envconfig:"CLASSIFIER_MODEL" split_words:"true"`
	BillingModel          string  `envconfig:"BILLING_MODEL" split_words:"true"`
	TechnicalModel        string  `envconfig:"TECHNICAL_MODEL" split_words:"true"`
	GeneralModel          string  `envconfig:"GENERAL_MODEL" split_words:"true"`
	ClassifierTemperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" split_words:"true" default:"-1"`
	BillingTemperature    float32 `envconfig:"BILLING_TEMPERATURE" split_words:"true" default:"-1"`
	TechnicalTemperature  float32 `envconfig:"TECHNICAL_TEMPERATURE" split_words:"true" default:"-1"`
	GeneralTemperature    float32 `envconfig:"GENERAL_TEMPERATURE" split_words:"true" default:"-1"`
}

// Enabled reports whether any model-backed path should be wired at all.
// Without an API key the system runs fully offline on templates.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required when an api key is set", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model configuration for one agent role,
// applying per-role overrides on top of the defaults.
func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch agentType {
	case contractx.AgentTypeClassifier:
		if v := strings.TrimSpace(c.ClassifierModel); v != "" {
			modelName = v
		}
		if c.ClassifierTemperature >= 0 {
			temp = c.ClassifierTemperature
		}
	case contractx.AgentTypeBilling:
		if v := strings.TrimSpace(c.BillingModel); v != "" {
			modelName = v
		}
		if c.BillingTemperature >= 0 {
			temp = c.BillingTemperature
		}
	case contractx.AgentTypeTechnical:
		if v := strings.TrimSpace(c.TechnicalModel); v != "" {
			modelName = v
		}
		if c.TechnicalTemperature >= 0 {
			temp = c.TechnicalTemperature
		}
	case contractx.AgentTypeGeneral:
		if v := strings.TrimSpace(c.GeneralModel); v != "" {
			modelName = v
		}
		if c.GeneralTemperature >= 0 {
			temp = c.GeneralTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
