package internal

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// callTool sends a tools/call request through the MCP server and returns the JSON response
func callTool(t *testing.T, s *MCPServer, name string, args map[string]any) gjson.Result {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.NoError(t, err)

	resp := s.GetServer().HandleMessage(context.Background(), msg)
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	return gjson.ParseBytes(out)
}

func TestMCPServer_ListsTools(t *testing.T) {
	s := NewMCPServer(NewAnalyzer(NewModelClient(&fakeBackend{}), nil, nil), "test")

	resp := s.GetServer().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(resp)
	require.NoError(t, err)

	var names []string
	gjson.GetBytes(out, "result.tools.#.name").ForEach(func(_, v gjson.Result) bool {
		names = append(names, v.String())
		return true
	})
	assert.ElementsMatch(t, []string{
		"analyze_transcript", "summarize_transcript", "create_study_guide", "recommend_topics", "generate_quiz",
	}, names)
}

func TestMCPServer_AnalyzeTranscript(t *testing.T) {
	s := NewMCPServer(NewAnalyzer(NewModelClient(&fakeBackend{reply: stageReplies}), nil, nil), "test")

	res := callTool(t, s, "analyze_transcript", map[string]any{"transcript": sampleTranscript, "title": "Go"})
	assert.False(t, res.Get("result.isError").Bool())
	text := res.Get("result.content.0.text").String()
	assert.Contains(t, text, "# Go\n\n## Summary")
	assert.Contains(t, text, "## Quiz Questions")

	res = callTool(t, s, "analyze_transcript", map[string]any{"transcript": "  "})
	assert.True(t, res.Get("result.isError").Bool())

	res = callTool(t, s, "analyze_transcript", map[string]any{})
	assert.True(t, res.Get("result.isError").Bool())
}

func TestMCPServer_StageTools(t *testing.T) {
	s := NewMCPServer(NewAnalyzer(NewModelClient(&fakeBackend{reply: stageReplies}), nil, nil), "test")

	res := callTool(t, s, "summarize_transcript", map[string]any{"text": "short"})
	assert.Equal(t, ShortTranscriptMessage, res.Get("result.content.0.text").String())

	res = callTool(t, s, "recommend_topics", map[string]any{"text": sampleTranscript})
	assert.Contains(t, res.Get("result.content.0.text").String(), "## Recommended Topics")

	res = callTool(t, s, "generate_quiz", map[string]any{"text": ""})
	assert.True(t, res.Get("result.isError").Bool())
}
