package messages

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown message role %q", s)
	}
	return r, nil
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("unknown message role %q", string(r))
	}
	return []byte(r), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Message is a single chat message.
type Message struct {
	Role      Role            `json:"role"`
	Content   string          `json:"content"`
	Sender    string          `json:"sender,omitempty"`
	Timestamp strfmt.DateTime `json:"timestamp"`
}

// New creates a message stamped with the current time.
func New(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: strfmt.DateTime(time.Now()),
	}
}

// System creates a system message.
func System(content string) Message {
	return New(RoleSystem, content)
}

// User creates a user message.
func User(content string) Message {
	return New(RoleUser, content)
}

// Assistant creates an assistant message.
func Assistant(content string) Message {
	return New(RoleAssistant, content)
}

// WithSender returns a copy of m with the sender set.
func (m Message) WithSender(sender string) Message {
	m.Sender = sender
	return m
}

func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.Role, m.Content)
}
