package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/casualjim/brainstorm/shorttermmemory"
	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(bytes.NewReader(nil))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeAgent(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestModelsCmd(t *testing.T) {
	t.Run("filters by provider and category", func(t *testing.T) {
		out, err := execute(t, "models", "--provider", "openrouter", "--category", "fast")
		require.NoError(t, err)
		assert.Contains(t, out, "claude-3-haiku")
		assert.NotContains(t, out, "gpt-4o")
		assert.NotContains(t, out, "claude-3-opus")
	})

	t.Run("rejects unknown categories", func(t *testing.T) {
		_, err := execute(t, "models", "--category", "poetry")
		assert.Error(t, err)
	})

	t.Run("show", func(t *testing.T) {
		out, err := execute(t, "models", "show", "--provider", "openrouter", "claude-3-haiku")
		require.NoError(t, err)
		assert.Contains(t, out, "anthropic/claude-3-haiku")
	})

	t.Run("show unknown", func(t *testing.T) {
		_, err := execute(t, "models", "show", "gpt-17")
		assert.Error(t, err)
	})
}

func TestAgentsCmd(t *testing.T) {
	dir := t.TempDir()
	writeAgent(t, dir, "poet.json", `{"name":"poet","description":"answers in rhyme","ai_config":{"provider":"openrouter","model":"claude-3-haiku"}}`)
	writeAgent(t, dir, "plain.yaml", "name: plain\ndescription: no frills\n")

	out, err := execute(t, "agents", "--agents-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "openrouter/claude-3-haiku")
	assert.Contains(t, out, "answers in rhyme")
	assert.Contains(t, out, "openai/gpt-4")

	out, err = execute(t, "agents", "--agents-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "no agents in")
}

func TestRunCmd(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c","object":"chat.completion","created":1,"model":"gpt-4","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Hi there"}}]}`)
	}))
	defer server.Close()

	dir := t.TempDir()
	writeAgent(t, dir, "helper.json", `{"name":"Helper Bot","description":"a helpful assistant"}`)
	historyDir := t.TempDir()

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL+"/v1")
	t.Setenv("BRAINSTORM_HISTORY_DIR", historyDir)

	out, err := execute(t, "run", "--agents-dir", dir, "--history", "Helper Bot", "Hello")
	require.NoError(t, err)
	assert.Contains(t, out, "Hi there")
	assert.Equal(t, 1, requests)

	memory, err := shorttermmemory.Load(filepath.Join(historyDir, swag.ToFileName("Helper Bot")+".json"))
	require.NoError(t, err)
	assert.Equal(t, 2, memory.Len())

	t.Run("history follows the configured name", func(t *testing.T) {
		writeAgent(t, dir, "reviewer.json", `{"name":"CodeReviewer","description":"reviews code"}`)

		_, err := execute(t, "run", "--agents-dir", dir, "--history", "codereviewer", "Hello")
		require.NoError(t, err)
		_, err = execute(t, "run", "--agents-dir", dir, "--history", "CodeReviewer", "Again")
		require.NoError(t, err)

		memory, err := shorttermmemory.Load(filepath.Join(historyDir, swag.ToFileName("CodeReviewer")+".json"))
		require.NoError(t, err)
		assert.Equal(t, 4, memory.Len())

		_, err = os.Stat(filepath.Join(historyDir, swag.ToFileName("codereviewer")+".json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown agent", func(t *testing.T) {
		_, err := execute(t, "run", "--agents-dir", dir, "critic", "Hello")
		assert.Error(t, err)
	})

	t.Run("missing credential", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := execute(t, "run", "--agents-dir", dir, "Helper Bot", "Hello")
		assert.Error(t, err)
	})
}

func TestHistoryPath(t *testing.T) {
	assert.Equal(t, filepath.Join("hist", swag.ToFileName("My Agent")+".json"), historyPath("hist", "My Agent", autoHistory))
	assert.Equal(t, "custom.json", historyPath("hist", "My Agent", "custom.json"))
}
