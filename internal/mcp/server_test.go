package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/postforge/internal/config"
	"github.com/ternarybob/postforge/pkg/sdk"
)

type fakeGenerator struct {
	mu     sync.Mutex
	target int
	calls  int
	err    error
}

func (f *fakeGenerator) Run(ctx context.Context, source, audience string, target int) (*sdk.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.target = target
	if f.err != nil {
		return nil, f.err
	}
	fb := "tighten the hook"
	return &sdk.Result{
		FinalPost: "final #a #b #c",
		AllVersions: []sdk.Version{
			{Version: 1, Content: "first"},
			{Version: 2, Content: "final #a #b #c", Feedback: &fb},
		},
		Status: sdk.StatusCompleted,
	}, nil
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = "generate_post"
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestGeneratePost_Text(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewServer(config.DefaultConfig(), gen, "test")

	res, err := s.handleGeneratePost(context.Background(), callTool(map[string]any{
		"text":            "we shipped",
		"target_audience": "engineers",
	}))
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Equal(t, "final #a #b #c", resultText(t, res))
	assert.Equal(t, 3, gen.target, "configured default")
}

func TestGeneratePost_JSON(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewServer(config.DefaultConfig(), gen, "test")

	res, err := s.handleGeneratePost(context.Background(), callTool(map[string]any{
		"text":            "we shipped",
		"target_audience": "engineers",
		"n_drafts":        float64(2),
		"format":          "json",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, 2, gen.target)

	var out sdk.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, sdk.StatusCompleted, out.Status)
	require.Len(t, out.AllVersions, 2)
	assert.Nil(t, out.AllVersions[0].Feedback)
	assert.Equal(t, "tighten the hook", *out.AllVersions[1].Feedback)
}

func TestGeneratePost_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing text", map[string]any{"target_audience": "a"}, "text parameter is required"},
		{"missing audience", map[string]any{"text": "t"}, "target_audience parameter is required"},
		{"zero drafts", map[string]any{"text": "t", "target_audience": "a", "n_drafts": 0}, "invalid draft count"},
		{"fractional drafts", map[string]any{"text": "t", "target_audience": "a", "n_drafts": 2.7}, "whole number"},
		{"string drafts", map[string]any{"text": "t", "target_audience": "a", "n_drafts": "2"}, "must be a number"},
		{"bad format", map[string]any{"text": "t", "target_audience": "a", "format": "xml"}, "unknown format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			s := NewServer(config.DefaultConfig(), gen, "test")

			res, err := s.handleGeneratePost(context.Background(), callTool(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
			assert.Zero(t, gen.calls)
		})
	}
}

func TestDraftsArg(t *testing.T) {
	n, err := draftsArg(float64(4))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = draftsArg(3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = draftsArg(1e12)
	assert.Error(t, err)
}

func TestGeneratePost_GenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("critic: rate_limit")}
	s := NewServer(config.DefaultConfig(), gen, "test")

	res, err := s.handleGeneratePost(context.Background(), callTool(map[string]any{
		"text": "t", "target_audience": "a",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "generation failed: critic: rate_limit", resultText(t, res))
}

func TestPostStats(t *testing.T) {
	s := NewServer(config.DefaultConfig(), &fakeGenerator{}, "test")

	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]any{"text": "Short post #one #two #three"}

	res, err := s.handlePostStats(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Characters: 27 (recommended 1300)\nHashtags: 3 (recommended 3-5)\nWithin guidance.", resultText(t, res))
}

func TestFormatStats_OutsideGuidance(t *testing.T) {
	out := FormatStats(sdk.Stats{Characters: 2000, Hashtags: 0})

	assert.Contains(t, out, "Longer than recommended.")
	assert.Contains(t, out, "Hashtag count outside the recommended range.")
}
