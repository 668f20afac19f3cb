package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
)

const defaultFallbackTimeout = 15 * time.Second

type fallbackLLMOutput struct {
	Category  string `json:"category"`
	Rationale string `json:"rationale,omitempty"`
}

// ModelFallback asks a chat model to place queries the rule engine could
// not. The call is network-bound; every failure mode (timeout, invoke
// error, schema violation) is surfaced to the caller, which degrades to
// GENERAL.
type ModelFallback struct {
	runner  compose.Runnable[map[string]any, fallbackLLMOutput]
	timeout time.Duration
}

func NewModelFallback(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	timeout time.Duration,
) (*ModelFallback, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: classifier prompt", contractx.ErrPromptMissing)
	}
	if timeout <= 0 {
		timeout = defaultFallbackTimeout
	}

	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	parser := schema.NewMessageJSONParser[fallbackLLMOutput](&schema.MessageJSONParseConfig{
		ParseFrom: schema.MessageParseFromContent,
	})

	graph := compose.NewGraph[map[string]any, fallbackLLMOutput]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add classifier prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add classifier model node: %w", err)
	}
	if err := graph.AddLambdaNode("parse_json", compose.MessageParser(parser)); err != nil {
		return nil, fmt.Errorf("add classifier parser node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add classifier edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add classifier edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", "parse_json"); err != nil {
		return nil, fmt.Errorf("add classifier edge model->parse: %w", err)
	}
	if err := graph.AddEdge("parse_json", compose.END); err != nil {
		return nil, fmt.Errorf("add classifier edge parse->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("classifier.model_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile classifier graph: %w", err)
	}

	return &ModelFallback{runner: runner, timeout: timeout}, nil
}

func (f *ModelFallback) Classify(ctx context.Context, query string) (contractx.Classification, error) {
	payload, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		return contractx.Classification{}, fmt.Errorf("%w: marshal classifier payload: %v", contractx.ErrValidation, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	out, err := f.runner.Invoke(ctx, map[string]any{
		"input": string(payload),
	})
	if err != nil {
		return contractx.Classification{}, fmt.Errorf("%w: classifier invoke: %v", contractx.ErrModelInvoke, err)
	}

	category := contractx.Category(strings.ToUpper(strings.TrimSpace(out.Category)))
	if !category.Valid() {
		return contractx.Classification{}, fmt.Errorf("%w: unknown category=%q", contractx.ErrSchemaViolation, out.Category)
	}

	return contractx.Classification{
		Category:  category,
		Rationale: strings.TrimSpace(out.Rationale),
		Source:    contractx.SourceModel,
	}, nil
}
