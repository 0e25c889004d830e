package agent

import (
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/postforge/pkg/llm"
)

// DefaultDrafts is the target draft count when neither the caller nor
// WithDefaultDrafts supplies one.
const DefaultDrafts = 3

// ErrNoCompleter is returned by New when a role has no completer.
var ErrNoCompleter = errors.New("no completer configured")

// Option configures a Generator.
type Option func(*Generator) error

// Middleware wraps the completer used for a role.
type Middleware func(role llm.Role, next llm.Completer) llm.Completer

// Observer is told about every finished run.
type Observer interface {
	RunFinished(st *RunState, err error)
}

// WithCompleter uses c for every role.
func WithCompleter(c llm.Completer) Option {
	return func(g *Generator) error {
		g.editor, g.writer, g.critic = c, c, c
		return nil
	}
}

// WithRoleCompleter uses c for a single role.
func WithRoleCompleter(role llm.Role, c llm.Completer) Option {
	return func(g *Generator) error {
		switch role {
		case llm.RoleEditor:
			g.editor = c
		case llm.RoleWriter:
			g.writer = c
		case llm.RoleCritic:
			g.critic = c
		default:
			return fmt.Errorf("unknown role %q", role)
		}
		return nil
	}
}

// WithRouter takes each role's completer from r.
func WithRouter(r *llm.Router) Option {
	return func(g *Generator) error {
		g.editor = r.ForRole(llm.RoleEditor)
		g.writer = r.ForRole(llm.RoleWriter)
		g.critic = r.ForRole(llm.RoleCritic)
		return nil
	}
}

// WithPrompts uses a shared prompt store.
func WithPrompts(store *PromptStore) Option {
	return func(g *Generator) error {
		g.prompts = store
		return nil
	}
}

// WithPromptSet uses a fixed prompt set.
func WithPromptSet(set PromptSet) Option {
	return func(g *Generator) error {
		g.prompts = NewPromptStore(set)
		return nil
	}
}

// WithDefaultDrafts sets the target used when a run is given none.
func WithDefaultDrafts(n int) Option {
	return func(g *Generator) error {
		if n <= 0 {
			return fmt.Errorf("default drafts must be positive, got %d", n)
		}
		g.defaultDrafts = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger arbor.ILogger) Option {
	return func(g *Generator) error {
		g.logger = logger
		return nil
	}
}

// WithMiddleware wraps every role's completer. Middleware is applied in
// order, so the first one given is outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(g *Generator) error {
		g.middleware = append(g.middleware, mw...)
		return nil
	}
}

// WithObserver registers an observer for finished runs.
func WithObserver(o Observer) Option {
	return func(g *Generator) error {
		g.observers = append(g.observers, o)
		return nil
	}
}
