package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"testing"

	"github.com/casualjim/brainstorm/pkg/errs"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("OpenRouter")
	require.NoError(t, err)
	assert.Equal(t, OpenRouter, k)

	k, err = ParseKind(" openai ")
	require.NoError(t, err)
	assert.Equal(t, OpenAI, k)

	_, err = ParseKind("anthropic")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfig)
}

func TestKindText(t *testing.T) {
	var cfg struct {
		Provider Kind `json:"provider"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"provider":"openrouter"}`), &cfg))
	assert.Equal(t, OpenRouter, cfg.Provider)

	err := json.Unmarshal([]byte(`{"provider":"acme"}`), &cfg)
	require.Error(t, err)

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"openrouter"}`, string(data))

	assert.Equal(t, "OpenAI", OpenAI.DisplayName())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestIsTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"unexpected eof", fmt.Errorf("read: %w", io.ErrUnexpectedEOF), true},
		{"url error", &url.Error{Op: "Post", URL: "http://x", Err: errors.New("dial tcp: refused")}, true},
		{"canceled inside url error", &url.Error{Op: "Post", URL: "http://x", Err: context.Canceled}, false},
		{"deadline", context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransportError(tt.err))
		})
	}
}

func TestErrorEvent(t *testing.T) {
	cause := errs.Provider("test", "bad", nil)
	ev := Error{Err: cause}
	assert.ErrorIs(t, ev, errs.ErrProvider)
	assert.Contains(t, ev.Error(), "provider error: bad")
}
