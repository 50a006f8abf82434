package llms

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnexpectedRole is returned when a message role is of an unexpected type.
var ErrUnexpectedRole = errors.New("unexpected role")

// ErrEmptyResponse is returned when the model server returns no content.
var ErrEmptyResponse = errors.New("empty response")

// Role is the type of chat message.
type Role string

const (
	// RoleAI is a message sent by an AI.
	RoleAI Role = "ai"
	// RoleHuman is a message sent by a human.
	RoleHuman Role = "human"
	// RoleSystem is a message sent by the system.
	RoleSystem Role = "system"
)

// Message is the message sent to a LLM. It has a role and a
// sequence of text parts.
type Message struct {
	Role  Role          `json:"role"`
	Parts []TextContent `json:"parts"`
}

// TextContent is content with some text.
type TextContent struct {
	Text string `json:"text"`
}

func (tc TextContent) String() string {
	return tc.Text
}

// TextPart creates TextContent from a given string.
func TextPart(s string) TextContent {
	return TextContent{Text: s}
}

// MessageFromTextParts is a helper function to create a Message with a role and a
// list of text parts.
func MessageFromTextParts(role Role, parts ...string) Message {
	result := Message{
		Role:  role,
		Parts: make([]TextContent, 0, len(parts)),
	}
	for _, part := range parts {
		result.Parts = append(result.Parts, TextPart(part))
	}
	return result
}

// GetContent returns the parts joined by a new line.
func (m Message) GetContent() string {
	var buf strings.Builder
	for i, p := range m.Parts {
		if i > 0 && !strings.HasSuffix(m.Parts[i-1].Text, "\n") {
			buf.WriteString("\n")
		}
		buf.WriteString(p.Text)
	}
	return buf.String()
}

// ContentResponse is the response returned by a GenerateContent call.
// It can potentially return multiple content choices.
type ContentResponse struct {
	Choices []*ContentChoice
}

// ContentChoice is one of the response choices returned by GenerateContent
// calls.
type ContentChoice struct {
	// Content is the textual content of a response
	Content string `json:"content"`

	// StopReason is the reason the model stopped generating output.
	StopReason string `json:"stop_reason"`

	// GenerationInfo is arbitrary information the model adds to the response.
	GenerationInfo map[string]any `json:"generation_info"`
}

// Usage keys in ContentChoice.GenerationInfo
const (
	InfoPromptTokens     = "PromptTokens"
	InfoCompletionTokens = "CompletionTokens"
	InfoTotalTokens      = "TotalTokens"
)

// CountTokens returns input, output and total tokens reported in the response.
func CountTokens(resp *ContentResponse) (in, out, total int) {
	if resp == nil {
		return
	}
	for _, choice := range resp.Choices {
		in += intValue(choice.GenerationInfo[InfoPromptTokens])
		out += intValue(choice.GenerationInfo[InfoCompletionTokens])
		total += intValue(choice.GenerationInfo[InfoTotalTokens])
	}
	return
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
