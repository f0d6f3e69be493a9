// ABOUTME: Shared wiring that assembles the assistant from configuration
// ABOUTME: Consolidates duplicate setup code from chat and mcp commands
package commands

import (
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/welldesk/careline/internal/config"
	"github.com/welldesk/careline/internal/dialog"
	"github.com/welldesk/careline/internal/handlers"
	"github.com/welldesk/careline/internal/index"
	"github.com/welldesk/careline/internal/intent"
	"github.com/welldesk/careline/internal/llm"
	"github.com/welldesk/careline/internal/records"
	"github.com/welldesk/careline/internal/safety"
)

// assistant bundles everything a command needs to run conversations
type assistant struct {
	cfg     *config.Config
	client  *llm.Client
	index   *index.Index
	store   *records.Store
	manager *dialog.Manager
}

// Close releases the assistant's database handles
func (a *assistant) Close() error {
	var firstErr error
	if err := a.index.Close(); err != nil {
		firstErr = err
	}
	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// buildAssistant loads configuration and wires the full dialogue stack
func buildAssistant() (*assistant, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	client, err := llm.NewClientWithConfig(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing OpenAI client: %w", err)
	}

	ix, err := index.Open(cfg.IndexDBPath, client, cfg.VectorDimension)
	if err != nil {
		return nil, fmt.Errorf("opening knowledge index: %w", err)
	}

	store, err := records.Open(cfg.RecordsDBPath)
	if err != nil {
		_ = ix.Close()
		return nil, fmt.Errorf("opening record store: %w", err)
	}

	rules, err := safety.LoadRules(cfg.EscalationRulesPath)
	if err != nil {
		_ = ix.Close()
		_ = store.Close()
		return nil, fmt.Errorf("loading escalation rules: %w", err)
	}
	monitor := safety.NewMonitor(rules)

	registry := handlers.NewRegistry(
		handlers.NewScheduling(store, client),
		handlers.NewRecordLookup(store),
		handlers.NewTriage(ix, client, cfg.TopK),
		handlers.NewHomeCare(ix, client, monitor, cfg.TopK),
	)

	classifier := intent.NewClassifier(client)
	orch := dialog.NewOrchestrator(classifier, registry, monitor)

	return &assistant{
		cfg:     cfg,
		client:  client,
		index:   ix,
		store:   store,
		manager: dialog.NewManager(orch),
	}, nil
}
