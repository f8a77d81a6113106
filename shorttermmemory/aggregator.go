package shorttermmemory

import (
	"fmt"
	"iter"
	"slices"

	"github.com/casualjim/brainstorm/messages"
	"github.com/casualjim/brainstorm/pkg/uuidx"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// AggregatedMessages is an ordered collection of messages.
type AggregatedMessages []messages.Message

// Len returns the number of messages in the collection.
func (a AggregatedMessages) Len() int {
	return len(a)
}

// New creates an empty aggregator with a fresh identifier.
func New() *Aggregator {
	return &Aggregator{
		id:       uuidx.New(),
		messages: make(AggregatedMessages, 0),
	}
}

// Aggregator manages the messages of one conversation and the usage reported for it.
// It is not safe for concurrent use; the owning agent serializes access.
type Aggregator struct {
	id       uuid.UUID
	messages AggregatedMessages
	initLen  int // length at fork time, used for joining
	usage    Usage
}

// ID returns the identifier of this aggregator.
func (a *Aggregator) ID() uuid.UUID {
	return a.id
}

// Len returns the total number of messages held by the aggregator.
func (a *Aggregator) Len() int {
	return a.messages.Len()
}

// TurnLen returns the number of messages added since the aggregator was forked.
func (a *Aggregator) TurnLen() int {
	return len(a.messages) - a.initLen
}

// Messages returns a copy of all messages in the aggregator.
func (a *Aggregator) Messages() AggregatedMessages {
	return slices.Clone(a.messages)
}

// MessagesIter returns an iterator over the messages without copying them.
func (a *Aggregator) MessagesIter() iter.Seq[messages.Message] {
	return slices.Values(a.messages)
}

// Append adds a message of any role to the end of the history.
func (a *Aggregator) Append(m messages.Message) {
	a.messages = append(a.messages, m)
}

// AddUserPrompt appends a user message, forcing its role.
func (a *Aggregator) AddUserPrompt(m messages.Message) {
	m.Role = messages.RoleUser
	a.Append(m)
}

// AddAssistantMessage appends an assistant message, forcing its role.
func (a *Aggregator) AddAssistantMessage(m messages.Message) {
	m.Role = messages.RoleAssistant
	a.Append(m)
}

// Validate reports an error when the history holds anything but user and
// assistant turns.
func (a *Aggregator) Validate() error {
	return conversational(a.messages)
}

func conversational(msgs []messages.Message) error {
	for i, m := range msgs {
		if m.Role != messages.RoleUser && m.Role != messages.RoleAssistant {
			return fmt.Errorf("message %d has role %q, history only holds user and assistant turns", i, m.Role)
		}
	}
	return nil
}

// Usage returns the accumulated token usage.
func (a *Aggregator) Usage() Usage {
	return a.usage
}

// AddUsage adds u to the accumulated token usage.
func (a *Aggregator) AddUsage(u Usage) {
	a.usage.AddUsage(&u)
}

// Reset drops all messages and usage and starts a new session with a new identifier.
func (a *Aggregator) Reset() {
	a.id = uuidx.New()
	a.messages = make(AggregatedMessages, 0)
	a.initLen = 0
	a.usage = Usage{}
}

// Fork creates a new aggregator that starts with a copy of the current messages.
// Messages added to the fork are invisible to a until Join is called.
func (a *Aggregator) Fork() *Aggregator {
	return &Aggregator{
		id:       a.id,
		messages: slices.Clone(a.messages),
		initLen:  a.Len(),
	}
}

// Join appends the messages that were added to b after it was forked from a,
// and adds b's usage to a.
//
//	original := New()            // [1,2]
//	forked := original.Fork()    // [1,2], initLen=2
//	forked.Append(msg3)          // [1,2,3]
//	original.Join(forked)        // original is now [1,2,3]
func (a *Aggregator) Join(b *Aggregator) {
	a.messages = append(a.messages, b.messages[b.initLen:]...)
	a.usage.AddUsage(&b.usage)
}

// Checkpoint creates an immutable snapshot of the current state.
func (a *Aggregator) Checkpoint() Checkpoint {
	return Checkpoint{
		id:       a.id,
		messages: slices.Clone(a.messages),
		usage:    a.usage,
	}
}

// Restore creates an aggregator holding the state captured by c.
func Restore(c Checkpoint) *Aggregator {
	id := c.id
	if id == uuid.Nil {
		id = uuidx.New()
	}
	msgs := slices.Clone(c.messages)
	if msgs == nil {
		msgs = make(AggregatedMessages, 0)
	}
	return &Aggregator{
		id:       id,
		messages: msgs,
		usage:    c.usage,
	}
}

// Checkpoint is a snapshot of an aggregator's state at a point in time.
type Checkpoint struct {
	id       uuid.UUID
	messages AggregatedMessages
	usage    Usage
}

// ID returns the identifier of the aggregator that created this checkpoint.
func (c *Checkpoint) ID() uuid.UUID {
	return c.id
}

// Messages returns a copy of the messages captured in the checkpoint.
func (c *Checkpoint) Messages() AggregatedMessages {
	return slices.Clone(c.messages)
}

// Usage returns the usage captured in the checkpoint.
func (c *Checkpoint) Usage() Usage {
	return c.usage
}

// Len returns the number of messages captured in the checkpoint.
func (c *Checkpoint) Len() int {
	return len(c.messages)
}

type checkpointJSON struct {
	ID       string             `json:"id"`
	Messages []messages.Message `json:"messages"`
	Usage    Usage              `json:"usage"`
}

func (c Checkpoint) MarshalJSON() ([]byte, error) {
	msgs := c.messages
	if msgs == nil {
		msgs = AggregatedMessages{}
	}
	return json.Marshal(checkpointJSON{
		ID:       c.id.String(),
		Messages: msgs,
		Usage:    c.usage,
	})
}

func (c *Checkpoint) UnmarshalJSON(data []byte) error {
	var tmp checkpointJSON
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	id, err := uuid.Parse(tmp.ID)
	if err != nil {
		return err
	}
	if err := conversational(tmp.Messages); err != nil {
		return err
	}
	c.id = id
	c.messages = tmp.Messages
	c.usage = tmp.Usage
	return nil
}
