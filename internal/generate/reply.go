package generate

import (
	"encoding/json"
	"strings"

	"github.com/livetemplate/mailcraft"
	"github.com/livetemplate/mailcraft/internal/llm"
)

// DefaultReplyMessage is used when the service reply has no message.
const DefaultReplyMessage = "I've generated a template based on your request."

// ParseReply turns the service's response text into a Result. Every block is
// stamped with an id from ids, replacing whatever id the service chose, so
// results of separate calls never share an id.
func ParseReply(service, text string, ids func(suffix int) string) (Result, error) {
	text = stripFences(text)

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return Result{}, &llm.ReplyError{Service: service, Reason: "response is not JSON", Err: err}
	}
	if err := defaultSchemas.Reply.Validate(decoded); err != nil {
		return Result{}, &llm.ReplyError{Service: service, Reason: "response does not match the reply schema", Err: err}
	}

	var reply struct {
		Message string            `json:"message"`
		Blocks  []mailcraft.Block `json:"blocks"`
	}
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return Result{}, &llm.ReplyError{Service: service, Reason: "invalid blocks", Err: err}
	}
	if len(reply.Blocks) == 0 {
		return Result{}, &llm.ReplyError{Service: service, Reason: "reply has no blocks"}
	}

	for i := range reply.Blocks {
		reply.Blocks[i].ID = ids(i + 1)
	}

	message := strings.TrimSpace(reply.Message)
	if message == "" {
		message = DefaultReplyMessage
	}
	return Result{Message: message, Blocks: reply.Blocks, Source: SourceService}, nil
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
