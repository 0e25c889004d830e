package agent

import (
	"github.com/ternarybob/postforge/pkg/sdk"
)

// Assemble builds the caller-facing result from a finished run.
//
// Only the last version carries feedback, since the post keeps a single
// feedback value. That feedback was written for the draft before the last
// one: the critic does not run once the target is reached.
func Assemble(st *RunState) *sdk.Result {
	res := &sdk.Result{
		Status:      st.Status,
		AllVersions: []sdk.Version{},
	}
	if st.Post == nil {
		return res
	}

	res.FinalPost, _ = st.Post.LatestDraft()

	last := len(st.Post.Drafts) - 1
	for i, draft := range st.Post.Drafts {
		v := sdk.Version{Version: i + 1, Content: draft}
		if i == last && st.Post.Feedback != nil {
			fb := *st.Post.Feedback
			v.Feedback = &fb
		}
		res.AllVersions = append(res.AllVersions, v)
	}
	return res
}
