package anthropic

import (
	"encoding/json"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSDKMessagesPlainText(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, sdk.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, sdk.MessageParamRoleAssistant, msgs[1].Role)
	require.Len(t, msgs[0].Content, 1)
	assert.Equal(t, "hello", msgs[0].Content[0].OfText.Text)
}

func TestToSDKMessagesToolBlocks(t *testing.T) {
	input := json.RawMessage(`{"place_ref":"pl-abc"}`)
	msgs := toSDKMessages([]Message{
		{
			Role: "assistant",
			Blocks: []ContentBlock{
				{Type: "text", Text: "checking reviews"},
				{Type: "tool_use", ID: "toolu_1", Name: "get_reviews", Input: input},
			},
		},
		{
			Role: "user",
			Blocks: []ContentBlock{
				{Type: "tool_result", ToolUseID: "toolu_1", Content: `{"reviews":[]}`},
			},
		},
	})

	require.Len(t, msgs, 2)
	require.Len(t, msgs[0].Content, 2)
	assert.Equal(t, "checking reviews", msgs[0].Content[0].OfText.Text)

	toolUse := msgs[0].Content[1].OfToolUse
	require.NotNil(t, toolUse)
	assert.Equal(t, "toolu_1", toolUse.ID)
	assert.Equal(t, "get_reviews", toolUse.Name)

	require.Len(t, msgs[1].Content, 1)
	result := msgs[1].Content[0].OfToolResult
	require.NotNil(t, result)
	assert.Equal(t, "toolu_1", result.ToolUseID)
}

func TestToSDKTools(t *testing.T) {
	tools := toSDKTools([]Tool{
		{
			Name:        "get_reviews",
			Description: "Fetch customer reviews for a place",
			Properties: map[string]any{
				"place_ref": map[string]any{"type": "string"},
			},
			Required: []string{"place_ref"},
		},
	})

	require.Len(t, tools, 1)
	tool := tools[0].OfTool
	require.NotNil(t, tool)
	assert.Equal(t, "get_reviews", tool.Name)
	assert.Equal(t, []string{"place_ref"}, tool.InputSchema.Required)
}

func TestFromSDKMessage(t *testing.T) {
	msg := &sdk.Message{
		ID:         "msg_123",
		Model:      "claude-haiku-4-5-20251001",
		StopReason: "tool_use",
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "let me check"},
			{Type: "tool_use", ID: "toolu_9", Name: "get_reviews", Input: json.RawMessage(`{"place_ref":"pl-x"}`)},
		},
		Usage: sdk.Usage{
			InputTokens:  120,
			OutputTokens: 45,
		},
	}

	resp := fromSDKMessage(msg)
	assert.Equal(t, "msg_123", resp.ID)
	assert.Equal(t, "tool_use", resp.StopReason)
	assert.Equal(t, int64(120), resp.Usage.InputTokens)

	assert.Equal(t, "let me check", resp.TextContent())

	uses := resp.ToolUses()
	require.Len(t, uses, 1)
	assert.Equal(t, "toolu_9", uses[0].ID)
	assert.Equal(t, "get_reviews", uses[0].Name)
	assert.JSONEq(t, `{"place_ref":"pl-x"}`, string(uses[0].Input))
}

func TestTextContentMultipleBlocks(t *testing.T) {
	resp := &MessageResponse{
		Content: []ContentBlock{
			{Type: "text", Text: "part one "},
			{Type: "tool_use", ID: "toolu_1", Name: "x"},
			{Type: "text", Text: "part two"},
		},
	}
	assert.Equal(t, "part one part two", resp.TextContent())
}

func TestEstimateCost(t *testing.T) {
	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}

	cost := usage.EstimateCost("claude-haiku-4-5-20251001")
	assert.InDelta(t, 0.80+2.00, cost, 0.001)

	assert.Zero(t, usage.EstimateCost("unknown-model"))
}
