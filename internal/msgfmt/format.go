// Package msgfmt prints conversation events on a terminal.
package msgfmt

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/casualjim/brainstorm/events"
	"github.com/casualjim/brainstorm/messages"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

// Renderer turns markdown into terminal output. *glamour.TermRenderer is one.
type Renderer interface {
	Render(string) (string, error)
}

// Markdown returns a glamour renderer that follows the terminal background.
func Markdown() (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
}

// Console returns a hook that prints events to w. Streamed chunks are
// printed as they arrive; complete messages that were not streamed go through
// r, or are printed as is when r is nil.
func Console(w io.Writer, r Renderer) events.Hook {
	return &console{w: w, render: r}
}

type console struct {
	mu        sync.Mutex
	w         io.Writer
	render    Renderer
	streaming bool
}

func (c *console) OnUserPrompt(_ context.Context, msg messages.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s: %s\n", color.CyanString(senderOr(msg.Sender, "User")), msg.Content)
}

func (c *console) OnAssistantChunk(_ context.Context, chunk events.Chunk) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if chunk.Content == "" {
		return
	}
	if !c.streaming {
		c.streaming = true
		fmt.Fprint(c.w, color.MagentaString(senderOr(chunk.Sender, "Assistant"))+": ")
	}
	fmt.Fprint(c.w, chunk.Content)
}

func (c *console) OnAssistantMessage(_ context.Context, msg messages.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streaming {
		c.streaming = false
		fmt.Fprintln(c.w)
		return
	}
	fmt.Fprint(c.w, color.MagentaString(senderOr(msg.Sender, "Assistant"))+": ")
	fmt.Fprintln(c.w, Render(c.render, msg.Content))
}

func (c *console) OnError(_ context.Context, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streaming {
		c.streaming = false
		fmt.Fprintln(c.w)
	}
	fmt.Fprintf(c.w, "%s %v\n", color.RedString("Error:"), err)
}

// Render formats content with r, falling back to the plain text when r is nil
// or fails.
func Render(r Renderer, content string) string {
	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(out)
}

func senderOr(sender, fallback string) string {
	if sender == "" {
		return fallback
	}
	return sender
}
