package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trace-flow/types"
)

func blocks(b ...types.ContentBlock) types.MessageContent {
	return types.BlockContent(b...)
}

func textBlock(s string) types.ContentBlock {
	return types.ContentBlock{Type: types.BlockText, Text: s}
}

func TestReconstructToolResultsOnly(t *testing.T) {
	result := types.ContentBlock{Type: types.BlockToolResult, ToolUseID: "t"}
	messages := []types.Message{
		{Role: types.RoleUser, Content: blocks(result, result, result)},
	}

	turns := Reconstruct(messages)

	require.Len(t, turns, 1)
	assert.Equal(t, RoleToolResult, turns[0].Role)
	assert.Equal(t, "[Tool results received: 3 result(s)]", turns[0].Text)
	assert.Equal(t, "Tool", turns[0].Role.Label())
}

func TestReconstruct(t *testing.T) {
	tests := []struct {
		name     string
		messages []types.Message
		want     []Turn
	}{
		{
			name: "user and assistant with tools",
			messages: []types.Message{
				{Role: types.RoleUser, Content: types.TextContent("list the files")},
				{Role: types.RoleAssistant, Content: blocks(
					textBlock("Sure."),
					types.ContentBlock{Type: types.BlockToolUse, Name: "Bash"},
					types.ContentBlock{Type: types.BlockToolUse, Name: "Read"},
				)},
			},
			want: []Turn{
				{Role: RoleUser, Text: "list the files"},
				{Role: RoleAssistant, Text: "Sure. [Called tools: Bash, Read]"},
			},
		},
		{
			name: "assistant with only tools",
			messages: []types.Message{
				{Role: types.RoleAssistant, Content: blocks(types.ContentBlock{Type: types.BlockToolUse, Name: "Grep"})},
			},
			want: []Turn{{Role: RoleAssistant, Text: "[Called tools: Grep]"}},
		},
		{
			name: "text wins over tool results",
			messages: []types.Message{
				{Role: types.RoleUser, Content: blocks(
					types.ContentBlock{Type: types.BlockToolResult},
					textBlock("and also this"),
				)},
			},
			want: []Turn{{Role: RoleUser, Text: "and also this"}},
		},
		{
			name: "empty and reminder-only messages are dropped",
			messages: []types.Message{
				{Role: types.RoleUser, Content: types.TextContent("")},
				{Role: types.RoleUser, Content: types.TextContent("<system-reminder>x")},
				{Role: types.RoleAssistant, Content: blocks()},
				{Role: types.RoleUser},
			},
			want: nil,
		},
		{
			name: "other roles are skipped",
			messages: []types.Message{
				{Role: "system", Content: types.TextContent("ignored")},
				{Role: "", Content: types.TextContent("ignored too")},
				{Role: types.RoleUser, Content: types.TextContent("kept")},
			},
			want: []Turn{{Role: RoleUser, Text: "kept"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reconstruct(tt.messages))
		})
	}
}

func TestReconstructPreservesOrder(t *testing.T) {
	messages := []types.Message{
		{Role: types.RoleUser, Content: types.TextContent("one")},
		{Role: types.RoleAssistant, Content: types.TextContent("two")},
		{Role: types.RoleUser, Content: types.TextContent("")},
		{Role: types.RoleUser, Content: blocks(types.ContentBlock{Type: types.BlockToolResult})},
		{Role: types.RoleAssistant, Content: types.TextContent("three")},
		{Role: types.RoleUser, Content: types.TextContent("four")},
	}

	turns := Reconstruct(messages)

	var texts []string
	for _, turn := range turns {
		texts = append(texts, turn.Text)
	}
	assert.Equal(t, []string{"one", "two", "[Tool results received: 1 result(s)]", "three", "four"}, texts)

	// Output roles are a subsequence of input roles.
	i := 0
	for _, turn := range turns {
		want := types.RoleUser
		if turn.Role == RoleAssistant {
			want = types.RoleAssistant
		}
		for i < len(messages) && messages[i].Role != want {
			i++
		}
		require.Less(t, i, len(messages))
		i++
	}
}
