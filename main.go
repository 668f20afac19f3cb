package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	classifierx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/agents/classifier"
	generatorx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/agents/generator"
	orchestratorx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/agents/orchestrator"
	reviewerx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/agents/reviewer"
	contractx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/contract"
	directoryx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/directory"
	llmx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/llm"
	promptx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/prompt"
	statex "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/agent/state"
	configx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/pkg/config"
	_ "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/pkg/openrouter"
	qstashx "github.com/tanpawarit/Deskive-Supervised-Support-Workflow/pkg/qstash"
)

type AppConfig struct {
	DirectoryDSN  string        `envconfig:"DIRECTORY_DSN"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	MaxRevisions  int           `envconfig:"MAX_REVISIONS" default:"1"`
	HistoryWindow int           `envconfig:"HISTORY_WINDOW" default:"5"`
	QStashEnabled bool          `envconfig:"QSTASH_ENABLED"`
}

func main() {
	ctx := context.Background()
	appCfg := configx.MustNew[AppConfig]("")

	dir := buildDirectory(*appCfg)
	store := statex.NewMemoryStore(statex.WithTTL(appCfg.SessionTTL))

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	ruleClassifier, pool := buildAgents(ctx, *llmCfg)
	reviewer := reviewerx.New(reviewerx.Config{})

	var publisher contractx.TurnPublisher
	if appCfg.QStashEnabled {
		qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
		publisher = turnEventPublisher{client: qstashx.MustNew(*qstashCfg)}
	}

	service, err := orchestratorx.New(
		store,
		directoryx.NewIdentifier(dir),
		ruleClassifier,
		pool,
		reviewer,
		publisher,
		orchestratorx.Config{
			MaxRevisions:  appCfg.MaxRevisions,
			HistoryWindow: appCfg.HistoryWindow,
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	runConsole(ctx, service)
}

func buildDirectory(cfg AppConfig) directoryx.Directory {
	if cfg.DirectoryDSN != "" {
		dir, err := directoryx.NewBunDirectory(directoryx.BunConfig{DSN: cfg.DirectoryDSN})
		if err != nil {
			log.Fatal().Err(err).Msg("connect customer directory")
		}
		log.Info().Msg("using postgres customer directory")
		return dir
	}
	return directoryx.MustEmbedded()
}

// buildAgents wires the classifier and generator pool. Without an API key
// both run on their deterministic paths only.
func buildAgents(ctx context.Context, llmCfg llmx.Config) (*classifierx.Classifier, *generatorx.Pool) {
	if !llmCfg.Enabled() {
		log.Info().Msg("no api key set, running on template strategies")
		return classifierx.New(nil, nil), generatorx.NewPool()
	}

	prompts := promptx.LoadPromptSet()
	verifyModelAccess(ctx, llmCfg.OpenRouterFor(contractx.AgentTypeGeneral))

	classifierCfg := llmCfg.OpenRouterFor(contractx.AgentTypeClassifier)
	classifierModel, err := classifierCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("build classifier model")
	}
	fallback, err := classifierx.NewModelFallback(ctx, classifierModel, prompts.Classifier, llmCfg.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("build classifier fallback")
	}

	poolOpts := make([]generatorx.PoolOption, 0, 3)
	for _, category := range []contractx.Category{
		contractx.CategoryBilling,
		contractx.CategoryTechnical,
		contractx.CategoryGeneral,
	} {
		roleCfg := llmCfg.OpenRouterFor(category.AgentType())
		chatModel, err := roleCfg.New(ctx)
		if err != nil {
			log.Fatal().Err(err).Str("category", string(category)).Msg("build generator model")
		}
		strategy, err := generatorx.NewModelStrategy(ctx, category, chatModel, prompts.For(category), llmCfg.Timeout)
		if err != nil {
			log.Fatal().Err(err).Str("category", string(category)).Msg("build generator strategy")
		}
		poolOpts = append(poolOpts, generatorx.WithModelStrategy(strategy))
	}

	return classifierx.New(nil, fallback), generatorx.NewPool(poolOpts...)
}

// verifyModelAccess checks the configured model with the raw OpenRouter
// client before the first turn needs it. A failed check only warns; the
// pool still degrades to templates per turn.
func verifyModelAccess(ctx context.Context, cfg openrouterx.Config) {
	client := openrouterx.NewClient(cfg)
	if client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if _, err := client.Models.Get(ctx, cfg.Model); err != nil {
		log.Warn().Err(err).Str("model", cfg.Model).Msg("model availability check failed")
		return
	}
	log.Info().Str("model", cfg.Model).Msg("openrouter model reachable")
}

func runConsole(ctx context.Context, service *orchestratorx.Orchestrator) {
	sessionID := uuid.NewString()
	fmt.Printf("session %s ready. %s ends the session, %s starts over.\n",
		sessionID, contractx.TokenEndSession, contractx.TokenResetSession)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		result, err := service.HandleTurn(ctx, sessionID, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Println(result.Response)
		if line == contractx.TokenEndSession {
			return
		}
	}
}

// turnEventPublisher forwards finalized turns to QStash for downstream
// consumers. Delivery failures are logged by the orchestrator, never fatal.
type turnEventPublisher struct {
	client *qstashx.Client
}

func (p turnEventPublisher) PublishTurn(ctx context.Context, sessionID string, result contractx.TurnResult) error {
	return p.client.Publish(ctx, map[string]any{
		"session_id":   sessionID,
		"category":     result.Category,
		"score":        result.Score,
		"state":        result.State,
		"published_at": time.Now().UTC().Format(time.RFC3339),
	})
}
