package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/postforge/pkg/llm"
	"github.com/ternarybob/postforge/pkg/sdk"
)

// edit cleans up the source text and starts a fresh post.
func (g *Generator) edit(ctx context.Context, st *RunState, prompts PromptSet) error {
	g.logger.Info().Str("role", string(llm.RoleEditor)).Int("source_chars", len(st.SourceText)).Msg("Editing source text")

	out, err := g.editor.Complete(ctx, prompts.Editor, EditorInput(st.SourceText))
	if err != nil {
		return fmt.Errorf("%s: %w", llm.RoleEditor, err)
	}

	st.EditedText = out
	st.Post = sdk.NewPost()
	if st.TargetDraftCount == 0 {
		st.TargetDraftCount = g.defaultDrafts
	}

	g.logger.Info().Str("role", string(llm.RoleEditor)).Int("target_drafts", st.TargetDraftCount).Msg("Source text edited")
	return nil
}

// write produces the next draft, revising the latest one when feedback exists.
func (g *Generator) write(ctx context.Context, st *RunState, prompts PromptSet) error {
	g.logger.Info().Str("role", string(llm.RoleWriter)).Int("drafts", st.Drafts()).Msg("Writing draft")

	out, err := g.writer.Complete(ctx, prompts.Writer, WriterInput(st.EditedText, st.TargetAudience, st.Post))
	if err != nil {
		return fmt.Errorf("%s: %w", llm.RoleWriter, err)
	}

	st.Post.AddDraft(out)

	g.logger.Info().Str("role", string(llm.RoleWriter)).Int("drafts", st.Drafts()).Msg("Draft written")
	return nil
}

// critique reviews the latest draft and replaces the post's feedback.
func (g *Generator) critique(ctx context.Context, st *RunState, prompts PromptSet) error {
	g.logger.Info().Str("role", string(llm.RoleCritic)).Int("drafts", st.Drafts()).Msg("Reviewing draft")

	draft, _ := st.Post.LatestDraft()
	out, err := g.critic.Complete(ctx, prompts.Critic, CriticInput(st.EditedText, draft, st.TargetAudience))
	if err != nil {
		return fmt.Errorf("%s: %w", llm.RoleCritic, err)
	}

	st.Post.SetFeedback(out)

	g.logger.Info().Str("role", string(llm.RoleCritic)).Int("feedback_chars", len(out)).Msg("Draft reviewed")
	return nil
}

func fenced(s string) string {
	return "```\n" + s + "\n```"
}

// EditorInput builds the editor's user content.
func EditorInput(source string) string {
	return "text:\n" + fenced(source)
}

// FeedbackSection returns the revision context for the writer, or "" when
// the post has no draft or no feedback yet.
func FeedbackSection(post *sdk.Post) string {
	if post == nil {
		return ""
	}
	draft, ok := post.LatestDraft()
	if !ok {
		return ""
	}
	feedback, ok := post.FeedbackText()
	if !ok || feedback == "" {
		return ""
	}
	return "Previous version and feedback:\n" + fenced("Post: "+draft+"\nFeedback: "+feedback)
}

// WriterInput builds the writer's user content.
func WriterInput(edited, audience string, post *sdk.Post) string {
	parts := []string{
		"text:\n" + fenced(edited),
		FeedbackSection(post),
		"Target audience: " + audience,
		"Write only the post content.",
	}

	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// CriticInput builds the critic's user content.
func CriticInput(edited, draft, audience string) string {
	return "Original text:\n" + fenced(edited) +
		"\n\nCurrent LinkedIn post:\n" + fenced(draft) +
		"\n\nTarget audience: " + audience
}
