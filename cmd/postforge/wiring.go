package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ternarybob/postforge/internal/config"
	"github.com/ternarybob/postforge/internal/logger"
	"github.com/ternarybob/postforge/internal/metrics"
	"github.com/ternarybob/postforge/pkg/agent"
	"github.com/ternarybob/postforge/pkg/llm"
)

// newRouter builds the provider and role router described by cfg.
func newRouter(ctx context.Context, cfg *config.Config) (*llm.Router, error) {
	provider, err := llm.NewProvider(ctx, llm.Settings{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", cfg.LLM.Provider, err)
	}

	router := llm.NewRouter(provider, cfg.LLM.Model, cfg.LLM.Temperature)
	router.SetRoleModel(llm.RoleEditor, cfg.LLM.Models.Editor)
	router.SetRoleModel(llm.RoleWriter, cfg.LLM.Models.Writer)
	router.SetRoleModel(llm.RoleCritic, cfg.LLM.Models.Critic)
	return router, nil
}

// newGenerator wires the generator from cfg. A nil registerer skips metrics.
func newGenerator(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*agent.Generator, *agent.PromptStore, error) {
	router, err := newRouter(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	prompts, err := agent.OpenPromptStore(cfg.Generation.PromptsFile)
	if err != nil {
		return nil, nil, err
	}

	opts := []agent.Option{
		agent.WithRouter(router),
		agent.WithPrompts(prompts),
		agent.WithDefaultDrafts(cfg.Generation.DefaultDrafts),
		agent.WithLogger(logger.GetLogger()),
	}

	if reg != nil {
		col, err := metrics.New(reg)
		if err != nil {
			return nil, nil, fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, agent.WithMiddleware(col.Instrument), agent.WithObserver(col))
	}

	// One bucket shared by every role, inside the metrics timing.
	if cfg.LLM.RateLimitPerHour > 0 {
		rl := llm.NewRateLimiter(cfg.LLM.RateLimitPerHour)
		opts = append(opts, agent.WithMiddleware(func(role llm.Role, next llm.Completer) llm.Completer {
			return llm.RateLimited(next, rl)
		}))
	}

	gen, err := agent.New(opts...)
	if err != nil {
		return nil, nil, err
	}

	logger.GetLogger().Info().
		Str("provider", cfg.LLM.Provider).
		Str("editor_model", router.ModelFor(llm.RoleEditor)).
		Str("writer_model", router.ModelFor(llm.RoleWriter)).
		Str("critic_model", router.ModelFor(llm.RoleCritic)).
		Int("default_drafts", cfg.Generation.DefaultDrafts).
		Msg("Generator ready")

	return gen, prompts, nil
}

// watchPrompts reloads prompt overrides until ctx is done, when enabled.
func watchPrompts(ctx context.Context, cfg *config.Config, prompts *agent.PromptStore) {
	if !cfg.Generation.WatchPrompts || prompts.Path() == "" {
		return
	}
	log := logger.GetLogger()
	go func() {
		err := prompts.Watch(ctx, func(err error) {
			log.Warn().Err(err).Str("file", prompts.Path()).Msg("Prompt reload failed")
		})
		if err != nil {
			log.Warn().Err(err).Str("file", prompts.Path()).Msg("Prompt watcher stopped")
		}
	}()
	log.Info().Str("file", prompts.Path()).Msg("Watching prompt overrides")
}
