package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefaultPrompts(t *testing.T) {
	p := DefaultPrompts()

	assert.Contains(t, p.Editor, "professional content editor")
	assert.Contains(t, p.Writer, "1,300 characters recommended")
	assert.Contains(t, p.Writer, "3-5 relevant ones")
	assert.Contains(t, p.Critic, "Technical Optimization")
}

func TestLoadPrompts_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.toml")
	writeFile(t, path, `
writer = """
Write a short post.
"""
critic = ""
`)

	p, err := LoadPrompts(path)
	require.NoError(t, err)

	assert.Equal(t, "Write a short post.\n", p.Writer)
	assert.Equal(t, DefaultPrompts().Editor, p.Editor, "missing key keeps default")
	assert.Equal(t, DefaultPrompts().Critic, p.Critic, "empty key keeps default")
}

func TestLoadPrompts_Errors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.toml")
	writeFile(t, unknown, `wrtier = "typo"`)
	_, err := LoadPrompts(unknown)
	assert.ErrorContains(t, err, "wrtier")

	broken := filepath.Join(dir, "broken.toml")
	writeFile(t, broken, `editor = "unterminated`)
	_, err = LoadPrompts(broken)
	assert.Error(t, err)
}

func TestOpenPromptStore(t *testing.T) {
	s, err := OpenPromptStore("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompts(), s.Get())

	s, err = OpenPromptStore(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompts(), s.Get())

	path := filepath.Join(t.TempDir(), "prompts.toml")
	writeFile(t, path, `editor = "Tidy it."`)
	s, err = OpenPromptStore(path)
	require.NoError(t, err)
	assert.Equal(t, "Tidy it.", s.Get().Editor)
	assert.Equal(t, path, s.Path())
}

func TestPromptStore_ReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.toml")
	writeFile(t, path, `editor = "v1"`)

	s, err := OpenPromptStore(path)
	require.NoError(t, err)

	writeFile(t, path, `editor = `)
	assert.Error(t, s.Reload())
	assert.Equal(t, "v1", s.Get().Editor)

	writeFile(t, path, `editor = "v2"`)
	require.NoError(t, s.Reload())
	assert.Equal(t, "v2", s.Get().Editor)
}

func TestPromptStore_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.toml")
	writeFile(t, path, `critic = "v1"`)

	s, err := OpenPromptStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, nil) }()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, `critic = "v2"`)

	assert.Eventually(t, func() bool {
		return s.Get().Critic == "v2"
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestPromptStore_WatchWithoutFile(t *testing.T) {
	err := NewPromptStore(DefaultPrompts()).Watch(context.Background(), nil)
	assert.Error(t, err)
}
