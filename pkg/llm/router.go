package llm

import (
	"sync"
)

// Role names a step of the drafting loop. Each role may run on its own model.
type Role string

const (
	RoleEditor Role = "editor"
	RoleWriter Role = "writer"
	RoleCritic Role = "critic"
)

// Roles lists every role in loop order.
func Roles() []Role {
	return []Role{RoleEditor, RoleWriter, RoleCritic}
}

// Router routes each role to a model on a single provider.
type Router struct {
	mu sync.RWMutex

	provider     Provider
	temperature  float64
	defaultModel string
	roleModels   map[Role]string
}

// NewRouter creates a router. An empty defaultModel falls back to the
// provider's first advertised model.
func NewRouter(provider Provider, defaultModel string, temperature float64) *Router {
	if defaultModel == "" {
		if models := provider.Models(); len(models) > 0 {
			defaultModel = models[0]
		}
	}
	return &Router{
		provider:     provider,
		temperature:  temperature,
		defaultModel: defaultModel,
		roleModels:   make(map[Role]string),
	}
}

// SetRoleModel overrides the model for one role. An empty model clears the override.
func (r *Router) SetRoleModel(role Role, model string) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()
	if model == "" {
		delete(r.roleModels, role)
		return r
	}
	r.roleModels[role] = model
	return r
}

// ModelFor returns the model used for a role.
func (r *Router) ModelFor(role Role) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.roleModels[role]; ok {
		return m
	}
	return r.defaultModel
}

// DefaultModel returns the model used by roles without an override.
func (r *Router) DefaultModel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultModel
}

// Temperature returns the sampling temperature applied to every role.
func (r *Router) Temperature() float64 {
	return r.temperature
}

// ForRole returns a Completer bound to the role's model.
func (r *Router) ForRole(role Role) Completer {
	return NewCompleter(r.provider, r.ModelFor(role), r.temperature)
}

// Provider returns the underlying provider.
func (r *Router) Provider() Provider {
	return r.provider
}

// Name returns the router name.
func (r *Router) Name() string {
	return "router:" + r.provider.Name()
}
