package provider

import (
	"fmt"

	"github.com/casualjim/brainstorm/shorttermmemory"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

const (
	DelimStart = "start"
	DelimEnd   = "end"
)

type StreamEvent interface {
	streamEvent()
}

// Delim marks the boundaries of a streamed response.
type Delim struct {
	RunID uuid.UUID
	Delim string
}

func (Delim) streamEvent() {}

// Chunk is one fragment of a streamed response. Index counts the chunks of a
// response starting at zero.
type Chunk struct {
	RunID     uuid.UUID
	Index     int
	Content   string
	Timestamp strfmt.DateTime
}

func (Chunk) streamEvent() {}

// Response is the complete answer to a request.
type Response struct {
	RunID        uuid.UUID
	Content      string
	Model        string
	FinishReason string
	Usage        shorttermmemory.Usage
	Timestamp    strfmt.DateTime
}

func (Response) streamEvent() {}

// Error terminates a stream. Err is already classified with pkg/errs.
type Error struct {
	RunID     uuid.UUID
	Err       error
	Timestamp strfmt.DateTime
}

func (Error) streamEvent() {}

func (e Error) Error() string {
	return fmt.Sprintf("run_id: %s, timestamp: %s, error: %v", e.RunID, e.Timestamp, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}
