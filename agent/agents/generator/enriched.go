package generator

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

const defaultGenerateTimeout = 30 * time.Second

// ModelStrategy drafts a response with a chat model. It is the enriched,
// non-deterministic path; callers fall back to the template path when it
// fails or times out.
type ModelStrategy struct {
	category contractx.Category
	runner   compose.Runnable[map[string]any, *schema.Message]
	timeout  time.Duration
}

func NewModelStrategy(
	ctx context.Context,
	category contractx.Category,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	timeout time.Duration,
) (*ModelStrategy, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: category=%q", contractx.ErrValidation, category)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: generator prompt for %s", contractx.ErrPromptMissing, category)
	}
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}

	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add generator prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add generator model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add generator edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add generator edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add generator edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(fmt.Sprintf("generator.%s_graph", strings.ToLower(string(category)))))
	if err != nil {
		return nil, fmt.Errorf("compile generator graph: %w", err)
	}

	return &ModelStrategy{
		category: category,
		runner:   runner,
		timeout:  timeout,
	}, nil
}

func (m *ModelStrategy) Generate(ctx context.Context, req contractx.GenerateRequest) (string, error) {
	payload := map[string]any{
		"query":    req.Query,
		"category": req.Category,
		"history":  req.History,
		"feedback": req.Feedback,
	}
	if req.Customer != nil {
		payload["customer"] = req.Customer
	} else {
		payload["customer"] = nil
		payload["identification_attempted"] = req.IdentificationAttempted
	}

	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal generator payload: %v", contractx.ErrValidation, err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	msg, err := m.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return "", fmt.Errorf("%w: generator invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: generator returned empty draft", contractx.ErrSchemaViolation)
	}

	return strings.TrimSpace(msg.Content), nil
}
