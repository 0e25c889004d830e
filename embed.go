// Package postforge generates and refines LinkedIn-style posts with an
// editor, writer and critic backed by a chat completion model.
//
// The drafting loop lives in pkg/agent, completion providers in pkg/llm and
// the result types in pkg/sdk. This package only carries the embedded
// default prompts.
package postforge

import _ "embed"

// Default role prompts.

//go:embed prompts/editor.md
var PromptEditor string

//go:embed prompts/writer.md
var PromptWriter string

//go:embed prompts/critic.md
var PromptCritic string
