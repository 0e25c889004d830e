package sdk

// Status is the observable progress of a generation run.
type Status string

const (
	// StatusStarting means no writer pass has completed yet.
	StatusStarting Status = "starting"
	// StatusInProgress means fewer drafts than the target exist.
	StatusInProgress Status = "in_progress"
	// StatusCompleted means the draft target was reached.
	StatusCompleted Status = "completed"
)

// String returns the status value.
func (s Status) String() string {
	return string(s)
}

// Version is one entry of a run's draft history.
type Version struct {
	// Version is the 1-based draft number.
	Version int `json:"version"`

	// Content is the draft text.
	Content string `json:"content"`

	// Feedback is only set on the final version. It is the last critique
	// produced, which reviewed the draft before the final one.
	Feedback *string `json:"feedback"`
}

// Result is the outcome of a completed run.
type Result struct {
	FinalPost   string    `json:"final_post"`
	AllVersions []Version `json:"all_versions"`
	Status      Status    `json:"workflow_status"`
}

// Last returns the final version, or false if the result has none.
func (r *Result) Last() (Version, bool) {
	if len(r.AllVersions) == 0 {
		return Version{}, false
	}
	return r.AllVersions[len(r.AllVersions)-1], true
}
