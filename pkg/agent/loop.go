// Package agent drafts social-media posts. An editor cleans up the source
// text, then a writer drafts and a critic reviews until the requested number
// of drafts exists.
package agent

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/postforge/internal/logger"
	"github.com/ternarybob/postforge/pkg/llm"
	"github.com/ternarybob/postforge/pkg/sdk"
)

// Generator runs the editor, writer and critic roles. It is safe for
// concurrent use; every Run has its own state.
type Generator struct {
	editor llm.Completer
	writer llm.Completer
	critic llm.Completer

	prompts       *PromptStore
	defaultDrafts int
	logger        arbor.ILogger

	middleware []Middleware
	observers  []Observer
}

// New creates a Generator. A completer must be configured for every role.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{
		defaultDrafts: DefaultDrafts,
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	if g.editor == nil || g.writer == nil || g.critic == nil {
		return nil, ErrNoCompleter
	}
	if g.prompts == nil {
		g.prompts = NewPromptStore(DefaultPrompts())
	}
	if g.logger == nil {
		g.logger = logger.GetLogger()
	}

	for i := len(g.middleware) - 1; i >= 0; i-- {
		mw := g.middleware[i]
		g.editor = mw(llm.RoleEditor, g.editor)
		g.writer = mw(llm.RoleWriter, g.writer)
		g.critic = mw(llm.RoleCritic, g.critic)
	}

	return g, nil
}

// DefaultDrafts returns the target used when Run is given none.
func (g *Generator) DefaultDrafts() int {
	return g.defaultDrafts
}

// Prompts returns the prompt store.
func (g *Generator) Prompts() *PromptStore {
	return g.prompts
}

// Run generates a post for audience from source, producing target drafts.
// A target of zero uses the default. Completion failures abort the run and
// are returned wrapped with the failing role.
func (g *Generator) Run(ctx context.Context, source, audience string, target int) (*sdk.Result, error) {
	st, err := g.run(ctx, NewRunState(source, audience, target))
	for _, o := range g.observers {
		o.RunFinished(st, err)
	}
	if err != nil {
		return nil, err
	}
	return Assemble(st), nil
}

func (g *Generator) run(ctx context.Context, st *RunState) (*RunState, error) {
	prompts := g.prompts.Get()

	if err := g.edit(ctx, st, prompts); err != nil {
		return st, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		if err := g.write(ctx, st, prompts); err != nil {
			return st, err
		}

		if st.advance() {
			g.logger.Info().
				Int("drafts", st.Drafts()).
				Str("status", st.Status.String()).
				Msg("Generation completed")
			return st, nil
		}

		g.logger.Info().
			Int("drafts", st.Drafts()).
			Int("target", st.TargetDraftCount).
			Str("status", st.Status.String()).
			Msg("Requesting critique")

		if err := g.critique(ctx, st, prompts); err != nil {
			return st, err
		}
	}
}

