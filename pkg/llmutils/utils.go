package llmutils

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/effective-security/reactagent/pkg/llms"
)

// CleanJSON returns JSON by trimming prefixes and postfixes,
// as LLM can reply like,
// `Here you go: {json}`
func CleanJSON(bs []byte) []byte {
	start := bytes.IndexAny(bs, "{[")
	if start == -1 {
		return bs
	}
	bs = bs[start:]

	end := bytes.LastIndexAny(bs, "}]")
	if end == -1 {
		return bs
	}
	return bs[:end+1]
}

var fence = []byte("```")

// BytesTrimBackticks returns the content of the first fenced block,
// the language tag after the opening fence is dropped.
// The input is returned unchanged when it has no fence.
func BytesTrimBackticks(bs []byte) []byte {
	start := bytes.Index(bs, fence)
	if start == -1 {
		return bs
	}
	bs = bs[start+len(fence):]
	if nl := bytes.IndexByte(bs, '\n'); nl != -1 && !bytes.ContainsAny(bs[:nl], "{[:") {
		bs = bs[nl+1:]
	}
	if end := bytes.LastIndex(bs, fence); end != -1 {
		bs = bs[:end]
	}
	return bytes.TrimSpace(bs)
}

// IsJSONObject returns true if the trimmed text looks like a JSON object.
func IsJSONObject(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}")
}

// TrimQuotes removes whitespace and one pair of surrounding double quotes,
// models often quote the Action Input.
func TrimQuotes(text string) string {
	text = strings.TrimSpace(text)
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

// PrintMessages is a debugging helper for Message.
func PrintMessages(w io.Writer, msgs []llms.Message) {
	for _, mc := range msgs {
		fmt.Fprintf(w, "%s: %s\n", strings.ToUpper(string(mc.Role)), mc.GetContent())
	}
}

// CountMessagesContentSize counts the size of the content in the messages
func CountMessagesContentSize(msgs []llms.Message) uint64 {
	var size uint64
	for _, mc := range msgs {
		size += uint64(len(mc.Role))
		for _, p := range mc.Parts {
			size += uint64(len(p.Text))
		}
	}
	return size
}
