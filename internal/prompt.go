package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// styleInstructions is appended to every prompt sent to the backend
const styleInstructions = "\n\nInstructions: Be concise, accurate, and practical. Focus on key points."

// BuildPrompt composes the full backend prompt from a task instruction and optional context
func BuildPrompt(task, context string) string {
	var sb strings.Builder
	if context != "" {
		sb.WriteString("Context: ")
		sb.WriteString(context)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Task: ")
	sb.WriteString(task)
	sb.WriteString("\n\nResponse:")
	sb.WriteString(styleInstructions)
	return sb.String()
}

// Stage names double as template file names
const (
	StageSummary    = "summary"
	StageKeyPoints  = "key_points"
	StageStudyGuide = "study_guide"
	StageTopics     = "topics"
	StageQuiz       = "quiz"
)

var stageNames = []string{StageSummary, StageKeyPoints, StageStudyGuide, StageTopics, StageQuiz}

//go:embed prompts/*.txt
var promptFS embed.FS

// PromptManager resolves the task instruction for each stage.
// Templates in promptsDir override the embedded defaults.
type PromptManager struct {
	promptsDir string
	templates  map[string]string
}

// NewPromptManager loads the stage templates, preferring files in promptsDir
func NewPromptManager(promptsDir string) (*PromptManager, error) {
	pm := &PromptManager{
		promptsDir: promptsDir,
		templates:  make(map[string]string, len(stageNames)),
	}

	for _, stage := range stageNames {
		content, err := pm.load(stage)
		if err != nil {
			return nil, err
		}
		pm.templates[stage] = strings.TrimSpace(content)
	}

	return pm, nil
}

// load reads a template override or falls back to the embedded one
func (pm *PromptManager) load(stage string) (string, error) {
	if pm.promptsDir != "" {
		custom := filepath.Join(pm.promptsDir, stage+".txt")
		if FileExists(custom) {
			content, err := os.ReadFile(custom)
			if err != nil {
				return "", fmt.Errorf("reading prompt template %s: %w", custom, err)
			}
			return string(content), nil
		}
	}

	content, err := promptFS.ReadFile("prompts/" + stage + ".txt")
	if err != nil {
		return "", fmt.Errorf("reading embedded prompt template %s: %w", stage, err)
	}
	return string(content), nil
}

// Template returns the task instruction for a stage
func (pm *PromptManager) Template(stage string) string {
	return pm.templates[stage]
}

// DefaultPrompts returns a PromptManager holding only the embedded templates
func DefaultPrompts() *PromptManager {
	pm, err := NewPromptManager("")
	if err != nil {
		// embedded templates are compiled in
		panic(err)
	}
	return pm
}

// EnsureDefaultPrompts writes the embedded templates into promptsDir when missing
func EnsureDefaultPrompts(promptsDir string) error {
	if promptsDir == "" {
		return nil
	}
	if err := EnsureDirs(promptsDir); err != nil {
		return fmt.Errorf("creating prompts directory: %w", err)
	}

	for _, stage := range stageNames {
		path := filepath.Join(promptsDir, stage+".txt")
		if FileExists(path) {
			continue
		}
		content, err := promptFS.ReadFile("prompts/" + stage + ".txt")
		if err != nil {
			return fmt.Errorf("reading embedded prompt template %s: %w", stage, err)
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("writing prompt template %s: %w", stage, err)
		}
	}
	return nil
}
