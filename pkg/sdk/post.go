package sdk

// Post is a post being refined: every draft in generation order plus the
// most recent critique. Feedback history is not retained.
type Post struct {
	// Drafts is append-only during a run.
	Drafts []string `json:"drafts"`

	// Feedback is nil until the first critique.
	Feedback *string `json:"feedback"`
}

// NewPost creates an empty post with no drafts and no feedback.
func NewPost() *Post {
	return &Post{Drafts: make([]string, 0)}
}

// AddDraft appends a draft. Empty drafts are accepted.
func (p *Post) AddDraft(text string) {
	p.Drafts = append(p.Drafts, text)
}

// LatestDraft returns the last draft, or false if there are none.
func (p *Post) LatestDraft() (string, bool) {
	if len(p.Drafts) == 0 {
		return "", false
	}
	return p.Drafts[len(p.Drafts)-1], true
}

// SetFeedback overwrites the current feedback.
func (p *Post) SetFeedback(feedback string) {
	p.Feedback = &feedback
}

// FeedbackText returns the current feedback, or false if none was set.
func (p *Post) FeedbackText() (string, bool) {
	if p.Feedback == nil {
		return "", false
	}
	return *p.Feedback, true
}

// DraftCount returns the number of drafts produced so far.
func (p *Post) DraftCount() int {
	return len(p.Drafts)
}
