package agent

import "github.com/dealbrief/dealbrief/internal/llm"

// Conversation is the append-only ordered sequence of turns for one
// report request. Turns are never mutated after being appended, and the
// conversation is never shared across requests.
type Conversation struct {
	turns []llm.Content
}

// NewConversation creates a conversation seeded with the given turns.
func NewConversation(initial ...llm.Content) *Conversation {
	c := &Conversation{}
	c.turns = append(c.turns, initial...)
	return c
}

// Append adds a turn to the end of the conversation.
func (c *Conversation) Append(turn llm.Content) {
	c.turns = append(c.turns, turn)
}

// Turns returns a copy of the turn sequence.
func (c *Conversation) Turns() []llm.Content {
	out := make([]llm.Content, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}
