package slogx

import (
	"fmt"
	"log/slog"
)

// Error returns a slog.Attr with key "error" and the error's message.
// A nil error yields an empty string rather than a panic.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Stringer creates a slog.Attr from the string form of value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

const (
	// KeyLoggerName is the attribute key carrying the component name.
	KeyLoggerName = "logger"
	KeyAgent      = "agent"
	KeyModel      = "model"
	KeyProvider   = "provider"
	KeyRunID      = "run_id"
)

// LoggerName returns an attribute naming the component that owns a logger.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}

// Agent returns an attribute for the agent name.
func Agent(name string) slog.Attr {
	return slog.String(KeyAgent, name)
}

// Model returns an attribute for the provider specific model identifier.
func Model(id string) slog.Attr {
	return slog.String(KeyModel, id)
}

// Provider returns an attribute for the provider kind.
func Provider(kind fmt.Stringer) slog.Attr {
	return Stringer(KeyProvider, kind)
}

// RunID returns an attribute for a run identifier.
func RunID(id fmt.Stringer) slog.Attr {
	return Stringer(KeyRunID, id)
}
