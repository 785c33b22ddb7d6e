package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t,
		"Context: the transcript\n\nTask: Summarize\n\nResponse:\n\nInstructions: Be concise, accurate, and practical. Focus on key points.",
		BuildPrompt("Summarize", "the transcript"))
	assert.Equal(t,
		"Task: Summarize\n\nResponse:\n\nInstructions: Be concise, accurate, and practical. Focus on key points.",
		BuildPrompt("Summarize", ""))
}

func TestDefaultPrompts(t *testing.T) {
	pm := DefaultPrompts()
	for _, stage := range stageNames {
		assert.NotEmpty(t, pm.Template(stage), stage)
	}
	assert.Contains(t, pm.Template(StageSummary), "summary")
	assert.Empty(t, pm.Template("unknown"))
}

func TestPromptManager_Override(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quiz.txt"), []byte("  Ask three questions.\n"), 0644))

	pm, err := NewPromptManager(dir)
	require.NoError(t, err)

	assert.Equal(t, "Ask three questions.", pm.Template(StageQuiz))
	assert.Equal(t, DefaultPrompts().Template(StageSummary), pm.Template(StageSummary))
}

func TestEnsureDefaultPrompts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	custom := filepath.Join(dir, "topics.txt")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(custom, []byte("mine"), 0644))

	require.NoError(t, EnsureDefaultPrompts(dir))

	for _, stage := range stageNames {
		assert.FileExists(t, filepath.Join(dir, stage+".txt"))
	}
	content, err := os.ReadFile(custom)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(content))

	assert.NoError(t, EnsureDefaultPrompts(""))
}
