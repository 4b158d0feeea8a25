package anthropic

import (
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
)

func TestToSDKMessages_Roles(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "", Content: "fallback"},
	})
	assert.Len(t, msgs, 3)
	assert.Equal(t, sdk.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, sdk.MessageParamRoleAssistant, msgs[1].Role)
	assert.Equal(t, sdk.MessageParamRoleUser, msgs[2].Role)
}

func TestFromSDKMessage(t *testing.T) {
	msg := &sdk.Message{
		ID:    "msg_1",
		Model: "claude-haiku-4-5-20251001",
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "part one"},
			{Type: "text", Text: "part two"},
		},
	}
	msg.Usage.InputTokens = 10
	msg.Usage.OutputTokens = 20

	resp := fromSDKMessage(msg)
	assert.Equal(t, "msg_1", resp.ID)
	assert.Len(t, resp.Content, 2)
	assert.Equal(t, int64(10), resp.Usage.InputTokens)
	assert.Equal(t, int64(20), resp.Usage.OutputTokens)
}

func TestMessageResponse_Text(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "a"},
		{Type: "text", Text: ""},
		{Type: "text", Text: "b"},
	}}
	assert.Equal(t, "a\nb", resp.Text())

	var nilResp *MessageResponse
	assert.Equal(t, "", nilResp.Text())
}
