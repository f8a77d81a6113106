package events

import (
	"errors"
	"fmt"

	"github.com/casualjim/brainstorm/messages"
	"github.com/casualjim/brainstorm/pkg/errs"
	"github.com/casualjim/brainstorm/shorttermmemory"
	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	typeDelim    = "delim"
	typeRequest  = "request"
	typeChunk    = "chunk"
	typeResponse = "response"
	typeError    = "error"
)

// ToJSON encodes any event with its type marker.
func ToJSON(event Event) ([]byte, error) {
	switch e := event.(type) {
	case Delim:
		return e.MarshalJSON()
	case Request:
		return e.MarshalJSON()
	case Chunk:
		return e.MarshalJSON()
	case Response:
		return e.MarshalJSON()
	case Error:
		return e.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown event type: %T", event)
	}
}

// FromJSON decodes an event produced by ToJSON.
func FromJSON(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid event json")
	}

	switch typ := gjson.GetBytes(data, "type").String(); typ {
	case typeDelim:
		return decodeEvent[Delim](data)
	case typeRequest:
		return decodeEvent[Request](data)
	case typeChunk:
		return decodeEvent[Chunk](data)
	case typeResponse:
		return decodeEvent[Response](data)
	case typeError:
		return decodeEvent[Error](data)
	default:
		return nil, fmt.Errorf("unknown event type %q", typ)
	}
}

func decodeEvent[T Event, P interface {
	*T
	json.Unmarshaler
}](data []byte) (Event, error) {
	var ev T
	if err := P(&ev).UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return ev, nil
}

type encoder struct {
	data []byte
	err  error
}

func newEncoder(typ string, runID, sessionID uuid.UUID) *encoder {
	e := &encoder{data: []byte(`{}`)}
	e.set("type", typ)
	e.set("run_id", runID.String())
	e.set("session_id", sessionID.String())
	return e
}

func (e *encoder) set(path string, value any) {
	if e.err != nil {
		return
	}
	e.data, e.err = sjson.SetBytes(e.data, path, value)
}

func (e *encoder) setRaw(path string, raw []byte) {
	if e.err != nil {
		return
	}
	e.data, e.err = sjson.SetRawBytes(e.data, path, raw)
}

func (e *encoder) setJSON(path string, value any) {
	if e.err != nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		e.err = err
		return
	}
	e.setRaw(path, raw)
}

func (e *encoder) common(sender string, ts strfmt.DateTime, meta gjson.Result) {
	if sender != "" {
		e.set("sender", sender)
	}
	e.set("timestamp", ts.String())
	if meta.Exists() && meta.Raw != "" {
		e.setRaw("meta", []byte(meta.Raw))
	}
}

func (e *encoder) bytes() ([]byte, error) {
	return e.data, e.err
}

type header struct {
	root      gjson.Result
	runID     uuid.UUID
	sessionID uuid.UUID
}

func decodeHeader(data []byte, typ string) (header, error) {
	if !gjson.ValidBytes(data) {
		return header{}, fmt.Errorf("invalid %s event json", typ)
	}
	root := gjson.ParseBytes(data)

	if got := root.Get("type"); !got.Exists() || got.String() != typ {
		return header{}, fmt.Errorf("expected event type %q, got %q", typ, got.String())
	}

	runID, err := requiredUUID(root, "run_id")
	if err != nil {
		return header{}, err
	}
	sessionID, err := requiredUUID(root, "session_id")
	if err != nil {
		return header{}, err
	}
	return header{root: root, runID: runID, sessionID: sessionID}, nil
}

func requiredUUID(root gjson.Result, path string) (uuid.UUID, error) {
	v := root.Get(path)
	if !v.Exists() {
		return uuid.Nil, fmt.Errorf("missing %s", path)
	}
	id, err := uuid.Parse(v.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return id, nil
}

func (h header) timestamp() (strfmt.DateTime, error) {
	v := h.root.Get("timestamp")
	if !v.Exists() || v.String() == "" {
		return strfmt.DateTime{}, nil
	}
	ts, err := strfmt.ParseDateTime(v.String())
	if err != nil {
		return strfmt.DateTime{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	return ts, nil
}

func (h header) meta() gjson.Result {
	v := h.root.Get("meta")
	if !v.Exists() {
		return gjson.Result{}
	}
	return gjson.Parse(v.Raw)
}

func (h header) message(path string) (messages.Message, error) {
	v := h.root.Get(path)
	if !v.Exists() {
		return messages.Message{}, fmt.Errorf("missing %s", path)
	}
	var msg messages.Message
	if err := json.Unmarshal([]byte(v.Raw), &msg); err != nil {
		return messages.Message{}, fmt.Errorf("invalid %s: %w", path, err)
	}
	return msg, nil
}

func (d Delim) MarshalJSON() ([]byte, error) {
	e := newEncoder(typeDelim, d.RunID, d.SessionID)
	e.set("delim", d.Delim)
	return e.bytes()
}

func (d *Delim) UnmarshalJSON(data []byte) error {
	h, err := decodeHeader(data, typeDelim)
	if err != nil {
		return err
	}
	delim := h.root.Get("delim")
	if !delim.Exists() {
		return fmt.Errorf("missing delim")
	}
	*d = Delim{RunID: h.runID, SessionID: h.sessionID, Delim: delim.String()}
	return nil
}

func (r Request) MarshalJSON() ([]byte, error) {
	e := newEncoder(typeRequest, r.RunID, r.SessionID)
	e.setJSON("message", r.Message)
	e.common(r.Sender, r.Timestamp, r.Meta)
	return e.bytes()
}

func (r *Request) UnmarshalJSON(data []byte) error {
	h, err := decodeHeader(data, typeRequest)
	if err != nil {
		return err
	}
	msg, err := h.message("message")
	if err != nil {
		return err
	}
	ts, err := h.timestamp()
	if err != nil {
		return err
	}
	*r = Request{
		RunID:     h.runID,
		SessionID: h.sessionID,
		Message:   msg,
		Sender:    h.root.Get("sender").String(),
		Timestamp: ts,
		Meta:      h.meta(),
	}
	return nil
}

func (c Chunk) MarshalJSON() ([]byte, error) {
	e := newEncoder(typeChunk, c.RunID, c.SessionID)
	e.set("index", c.Index)
	e.set("content", c.Content)
	e.common(c.Sender, c.Timestamp, c.Meta)
	return e.bytes()
}

func (c *Chunk) UnmarshalJSON(data []byte) error {
	h, err := decodeHeader(data, typeChunk)
	if err != nil {
		return err
	}
	content := h.root.Get("content")
	if !content.Exists() {
		return fmt.Errorf("missing content")
	}
	if content.Type != gjson.String {
		return fmt.Errorf("invalid content: expected a string")
	}
	ts, err := h.timestamp()
	if err != nil {
		return err
	}
	*c = Chunk{
		RunID:     h.runID,
		SessionID: h.sessionID,
		Index:     int(h.root.Get("index").Int()),
		Content:   content.String(),
		Sender:    h.root.Get("sender").String(),
		Timestamp: ts,
		Meta:      h.meta(),
	}
	return nil
}

func (r Response) MarshalJSON() ([]byte, error) {
	e := newEncoder(typeResponse, r.RunID, r.SessionID)
	e.setJSON("message", r.Message)
	if r.Model != "" {
		e.set("model", r.Model)
	}
	if r.FinishReason != "" {
		e.set("finish_reason", r.FinishReason)
	}
	if !r.Usage.IsZero() {
		e.setJSON("usage", r.Usage)
	}
	e.common(r.Sender, r.Timestamp, r.Meta)
	return e.bytes()
}

func (r *Response) UnmarshalJSON(data []byte) error {
	h, err := decodeHeader(data, typeResponse)
	if err != nil {
		return err
	}
	msg, err := h.message("message")
	if err != nil {
		return err
	}
	ts, err := h.timestamp()
	if err != nil {
		return err
	}

	var usage shorttermmemory.Usage
	if u := h.root.Get("usage"); u.Exists() {
		if err := json.Unmarshal([]byte(u.Raw), &usage); err != nil {
			return fmt.Errorf("invalid usage: %w", err)
		}
	}

	*r = Response{
		RunID:        h.runID,
		SessionID:    h.sessionID,
		Message:      msg,
		Model:        h.root.Get("model").String(),
		FinishReason: h.root.Get("finish_reason").String(),
		Usage:        usage,
		Sender:       h.root.Get("sender").String(),
		Timestamp:    ts,
		Meta:         h.meta(),
	}
	return nil
}

func (e Error) MarshalJSON() ([]byte, error) {
	enc := newEncoder(typeError, e.RunID, e.SessionID)

	var typed *errs.Error
	switch {
	case e.Err == nil:
		enc.set("error.message", "unknown error")
	case errors.As(e.Err, &typed):
		enc.set("error.kind", typed.Kind.String())
		if typed.Op != "" {
			enc.set("error.op", typed.Op)
		}
		if typed.Reason != "" {
			enc.set("error.reason", typed.Reason)
		}
		if typed.Err != nil {
			enc.set("error.cause", typed.Err.Error())
		}
		enc.set("error.message", e.Err.Error())
	default:
		enc.set("error.message", e.Err.Error())
	}

	enc.common(e.Sender, e.Timestamp, e.Meta)
	return enc.bytes()
}

func (e *Error) UnmarshalJSON(data []byte) error {
	h, err := decodeHeader(data, typeError)
	if err != nil {
		return err
	}
	payload := h.root.Get("error")
	if !payload.Exists() || !payload.IsObject() {
		return fmt.Errorf("missing error")
	}
	ts, err := h.timestamp()
	if err != nil {
		return err
	}

	*e = Error{
		RunID:     h.runID,
		SessionID: h.sessionID,
		Err:       decodeError(payload),
		Sender:    h.root.Get("sender").String(),
		Timestamp: ts,
		Meta:      h.meta(),
	}
	return nil
}

// decodeError rebuilds a typed error when the sender used pkg/errs, so
// errors.Is keeps working on the receiving side.
func decodeError(payload gjson.Result) error {
	kind := errs.ParseKind(payload.Get("kind").String())
	if kind == errs.KindUnknown {
		return errors.New(payload.Get("message").String())
	}

	var cause error
	if c := payload.Get("cause"); c.Exists() {
		cause = errors.New(c.String())
	}
	return &errs.Error{
		Kind:   kind,
		Op:     payload.Get("op").String(),
		Reason: payload.Get("reason").String(),
		Err:    cause,
	}
}
