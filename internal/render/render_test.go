package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains []string
		excludes []string
	}{
		{
			name:     "line breaks kept",
			in:       "We shipped it.\nOn time.",
			contains: []string{"We shipped it.<br>\nOn time."},
		},
		{
			name:     "bullets",
			in:       "Highlights:\n\n- faster builds\n- fewer bugs",
			contains: []string{"<li>faster builds</li>", "<li>fewer bugs</li>"},
		},
		{
			name:     "hashtags are not headings",
			in:       "#golang #engineering",
			contains: []string{"<p>#golang #engineering</p>"},
			excludes: []string{"<h1>"},
		},
		{
			name:     "links",
			in:       "Read more at https://example.com/post",
			contains: []string{`<a href="https://example.com/post">`},
		},
		{
			name:     "raw html dropped",
			in:       "<script>alert(1)</script>",
			excludes: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := HTML(tt.in)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}
