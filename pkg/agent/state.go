package agent

import (
	"github.com/ternarybob/postforge/pkg/sdk"
)

// RunState is the working state of a single generation run. Each run owns
// its own RunState; nothing is shared between runs.
type RunState struct {
	SourceText     string
	EditedText     string
	TargetAudience string

	// Post is nil until the editor has run.
	Post *sdk.Post

	// TargetDraftCount is zero until resolved by the editor.
	TargetDraftCount int

	Status sdk.Status
}

// NewRunState creates the state for a run. A non-positive target means the
// caller supplied none.
func NewRunState(source, audience string, target int) *RunState {
	if target < 0 {
		target = 0
	}
	return &RunState{
		SourceText:       source,
		TargetAudience:   audience,
		TargetDraftCount: target,
		Status:           sdk.StatusStarting,
	}
}

// Drafts returns the number of drafts written so far.
func (s *RunState) Drafts() int {
	if s.Post == nil {
		return 0
	}
	return s.Post.DraftCount()
}

// advance updates Status after a writer pass and reports whether the run
// has reached its target.
func (s *RunState) advance() bool {
	if s.Drafts() >= s.TargetDraftCount {
		s.Status = sdk.StatusCompleted
		return true
	}
	s.Status = sdk.StatusInProgress
	return false
}
