package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	// DefaultInput is the input recorded before the user has said anything.
	DefaultInput = "general"

	// ErrorSummary marks a knowledge base synthesized after a failed turn.
	ErrorSummary = "Error occurred during processing"
	// ErrorResponse is the reply stored in a knowledge base synthesized after a failed turn.
	ErrorResponse = "Hello! I'm here to help with your fitness goals."
)

// KnowledgeBase is the per-turn record of the conversation. Callers thread the value
// returned by one turn into the next one; it is never modified in place.
type KnowledgeBase struct {
	Input    string `json:"input" yaml:"input" description:"user response (default: general)"`
	Summary  string `json:"summary" yaml:"summary" description:"Summary of conversation so far (default: empty)"`
	Response string `json:"response" yaml:"response" description:"An ideal response to the user based on their new message (default: empty)"`
}

// DefaultKnowledgeBase returns the knowledge base used when the caller has none yet.
func DefaultKnowledgeBase() KnowledgeBase {
	return KnowledgeBase{Input: DefaultInput}
}

// ErrorKnowledgeBase returns the knowledge base recorded when a turn could not be processed.
func ErrorKnowledgeBase(question string) KnowledgeBase {
	return KnowledgeBase{
		Input:    question,
		Summary:  ErrorSummary,
		Response: ErrorResponse,
	}
}

// HasResponse reports whether the record carries a reply for the user.
func (kb KnowledgeBase) HasResponse() bool {
	return kb.Response != ""
}

// MarshalCompact serializes the knowledge base as single-line JSON.
func (kb KnowledgeBase) MarshalCompact() (string, error) {
	data, err := json.Marshal(kb)
	if err != nil {
		return "", fmt.Errorf("failed to marshal knowledge base: %w", err)
	}
	return string(data), nil
}

// UnmarshalJSON fills fields the document omits with their defaults.
func (kb *KnowledgeBase) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	type plain KnowledgeBase
	decoded := plain(DefaultKnowledgeBase())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*kb = KnowledgeBase(decoded)
	return nil
}

// String implements fmt.Stringer for log output.
func (kb KnowledgeBase) String() string {
	return fmt.Sprintf("input=%q summary=%q response=%q", kb.Input, kb.Summary, kb.Response)
}
