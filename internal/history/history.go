// Package history holds conversation messages for the assistant and bounds
// how much of them reaches the model. Because the assistant supports multiple
// LLM backends with different tokenizers, budgeting uses a conservative
// character-based heuristic: 1 token ≈ 4 characters (English prose). This
// deliberately under-estimates token counts to leave headroom for
// model-specific overhead.
package history

import "strings"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

const (
	// DefaultMaxMessages is the number of most recent messages kept per
	// session. Older messages are discarded oldest-first.
	DefaultMaxMessages = 25

	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English; using 3 would be
	// more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Conservative enough to fit within 8k-context models while leaving
	// room for the output.
	DefaultMaxContextTokens = 6000
)

// Recent returns the last max messages of msgs, or all of them when fewer.
// max <= 0 means DefaultMaxMessages.
func Recent(msgs []Message, max int) []Message {
	if max <= 0 {
		max = DefaultMaxMessages
	}
	if len(msgs) <= max {
		return msgs
	}
	return msgs[len(msgs)-max:]
}

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateMessages returns the estimated total token count for a slice of
// messages, summing role + content for each message.
func EstimateMessages(msgs []Message) int {
	total := 0
	for _, m := range msgs {
		// Each message has a small per-message overhead (~4 tokens in most APIs).
		total += 4
		total += Estimate(string(m.Role))
		total += Estimate(m.Content)
	}
	return total
}

// Trim removes the oldest messages from hist until the total estimated token
// count of fixed + hist fits within maxTokens. fixed holds text that must not
// be trimmed (system prompt, retrieval context, current user message); hist
// holds prior conversation turns that may be dropped oldest-first.
//
// Returns the trimmed history slice. If even an empty history exceeds the
// budget, the empty slice is returned — fixed content is never dropped here.
func Trim(fixed []Message, hist []Message, maxTokens int) []Message {
	if len(hist) == 0 {
		return hist
	}

	fixedTokens := EstimateMessages(fixed)
	for len(hist) > 0 {
		if fixedTokens+EstimateMessages(hist) <= maxTokens {
			break
		}
		hist = hist[1:]
	}
	return hist
}

// Transcript renders messages as a plain-text dialogue, one "User:" or
// "Assistant:" line per turn. Used when the conversation is inlined into a
// prompt rather than sent as structured chat messages.
func Transcript(msgs []Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch m.Role {
		case RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(m.Content)
	}
	return b.String()
}
