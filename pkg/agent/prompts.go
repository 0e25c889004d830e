package agent

import (
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/ternarybob/postforge"
)

// PromptSet holds the system prompt for each role.
type PromptSet struct {
	Editor string `toml:"editor" json:"editor"`
	Writer string `toml:"writer" json:"writer"`
	Critic string `toml:"critic" json:"critic"`
}

// DefaultPrompts returns the built-in prompts embedded from prompts/.
func DefaultPrompts() PromptSet {
	return PromptSet{
		Editor: postforge.PromptEditor,
		Writer: postforge.PromptWriter,
		Critic: postforge.PromptCritic,
	}
}

// merge replaces each field of p that override sets.
func (p PromptSet) merge(override PromptSet) PromptSet {
	if override.Editor != "" {
		p.Editor = override.Editor
	}
	if override.Writer != "" {
		p.Writer = override.Writer
	}
	if override.Critic != "" {
		p.Critic = override.Critic
	}
	return p
}

// LoadPrompts reads TOML overrides from path on top of the defaults.
//
//	editor = "..."
//	writer = """
//	multi-line prompt
//	"""
//
// Unknown keys are rejected so a typo does not silently keep a default.
func LoadPrompts(path string) (PromptSet, error) {
	var override PromptSet
	md, err := toml.DecodeFile(path, &override)
	if err != nil {
		return PromptSet{}, fmt.Errorf("parse prompts file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return PromptSet{}, fmt.Errorf("parse prompts file: unknown key %q", undecoded[0].String())
	}
	return DefaultPrompts().merge(override), nil
}

// PromptStore holds the active prompt set. Runs take a snapshot with Get,
// so a reload never changes prompts in the middle of a run.
type PromptStore struct {
	mu   sync.RWMutex
	set  PromptSet
	path string
}

// NewPromptStore creates a store holding set.
func NewPromptStore(set PromptSet) *PromptStore {
	return &PromptStore{set: set}
}

// OpenPromptStore creates a store backed by a TOML overrides file.
// An empty path or a missing file yields the defaults.
func OpenPromptStore(path string) (*PromptStore, error) {
	s := &PromptStore{set: DefaultPrompts(), path: path}
	if path == "" {
		return s, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns a copy of the active prompts.
func (s *PromptStore) Get() PromptSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// Set replaces the active prompts.
func (s *PromptStore) Set(set PromptSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = set
}

// Path returns the overrides file, if any.
func (s *PromptStore) Path() string {
	return s.path
}

// Reload re-reads the overrides file. On error the active set is kept.
func (s *PromptStore) Reload() error {
	if s.path == "" {
		return nil
	}
	set, err := LoadPrompts(s.path)
	if err != nil {
		return err
	}
	s.Set(set)
	return nil
}
