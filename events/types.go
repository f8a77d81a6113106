package events

import (
	"github.com/casualjim/brainstorm/messages"
	"github.com/casualjim/brainstorm/provider"
	"github.com/casualjim/brainstorm/shorttermmemory"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Event is implemented by every published event.
type Event interface {
	event()
}

// Delim marks the start and the end of a streamed response.
type Delim struct {
	RunID     uuid.UUID
	SessionID uuid.UUID
	Delim     string
}

func (Delim) event() {}

// Request carries the user prompt that started a run.
type Request struct {
	RunID     uuid.UUID
	SessionID uuid.UUID
	Message   messages.Message
	Sender    string
	Timestamp strfmt.DateTime
	Meta      gjson.Result
}

func (Request) event() {}

// Chunk is one streamed fragment of the assistant response.
type Chunk struct {
	RunID     uuid.UUID
	SessionID uuid.UUID
	Index     int
	Content   string
	Sender    string
	Timestamp strfmt.DateTime
	Meta      gjson.Result
}

func (Chunk) event() {}

// Response is the complete assistant answer of a successful run.
type Response struct {
	RunID        uuid.UUID
	SessionID    uuid.UUID
	Message      messages.Message
	Model        string
	FinishReason string
	Usage        shorttermmemory.Usage
	Sender       string
	Timestamp    strfmt.DateTime
	Meta         gjson.Result
}

func (Response) event() {}

// Error reports a failed run.
type Error struct {
	RunID     uuid.UUID
	SessionID uuid.UUID
	Err       error
	Sender    string
	Timestamp strfmt.DateTime
	Meta      gjson.Result
}

func (Error) event() {}

func (e Error) Error() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

func (e Error) Unwrap() error {
	return e.Err
}

// FromStreamEvent converts a provider event into the event published for it.
// The sender is usually the agent name.
func FromStreamEvent(ev provider.StreamEvent, sessionID uuid.UUID, sender string) Event {
	switch ev := ev.(type) {
	case provider.Delim:
		return Delim{RunID: ev.RunID, SessionID: sessionID, Delim: ev.Delim}
	case provider.Chunk:
		return Chunk{
			RunID:     ev.RunID,
			SessionID: sessionID,
			Index:     ev.Index,
			Content:   ev.Content,
			Sender:    sender,
			Timestamp: ev.Timestamp,
		}
	case provider.Response:
		msg := messages.Assistant(ev.Content).WithSender(sender)
		msg.Timestamp = ev.Timestamp
		return Response{
			RunID:        ev.RunID,
			SessionID:    sessionID,
			Message:      msg,
			Model:        ev.Model,
			FinishReason: ev.FinishReason,
			Usage:        ev.Usage,
			Sender:       sender,
			Timestamp:    ev.Timestamp,
		}
	case provider.Error:
		return Error{
			RunID:     ev.RunID,
			SessionID: sessionID,
			Err:       ev.Err,
			Sender:    sender,
			Timestamp: ev.Timestamp,
		}
	default:
		return nil
	}
}
