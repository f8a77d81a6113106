package messages

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	before := time.Now().Add(-time.Second)

	sys := System("be brief")
	usr := User("Hello")
	ast := Assistant("Hi there")

	assert.Equal(t, RoleSystem, sys.Role)
	assert.Equal(t, RoleUser, usr.Role)
	assert.Equal(t, RoleAssistant, ast.Role)
	assert.Equal(t, "Hello", usr.Content)
	assert.True(t, time.Time(usr.Timestamp).After(before))
}

func TestWithSenderCopies(t *testing.T) {
	orig := User("Hello")
	named := orig.WithSender("alice")

	assert.Equal(t, "alice", named.Sender)
	assert.Empty(t, orig.Sender, "original message must not change")
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Assistant ")
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, r)

	_, err = ParseRole("tool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"tool"`)
}

func TestMessageJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		in := User("Hello").WithSender("alice")
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out Message
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, in.Role, out.Role)
		assert.Equal(t, in.Content, out.Content)
		assert.Equal(t, in.Sender, out.Sender)
		assert.Equal(t, in.Timestamp.String(), out.Timestamp.String())
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		var out Message
		err := json.Unmarshal([]byte(`{"role":"tool","content":"x"}`), &out)
		require.Error(t, err)
	})

	t.Run("refuses to encode an invalid role", func(t *testing.T) {
		_, err := json.Marshal(Message{Role: "robot"})
		require.Error(t, err)
	})
}

func TestMessageString(t *testing.T) {
	assert.Equal(t, "user: Hello", User("Hello").String())
}
