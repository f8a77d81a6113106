package provider

import (
	"strings"

	"github.com/casualjim/brainstorm/pkg/errs"
)

// Kind enumerates the supported completion providers.
type Kind uint8

const (
	KindUnknown Kind = iota
	OpenAI
	OpenRouter
)

// Kinds lists every supported provider.
var Kinds = []Kind{OpenAI, OpenRouter}

func (k Kind) String() string {
	switch k {
	case OpenAI:
		return "openai"
	case OpenRouter:
		return "openrouter"
	default:
		return "unknown"
	}
}

// DisplayName returns the human readable provider name.
func (k Kind) DisplayName() string {
	switch k {
	case OpenAI:
		return "OpenAI"
	case OpenRouter:
		return "OpenRouter"
	default:
		return "Unknown"
	}
}

// ParseKind parses a provider name case-insensitively. Unknown names are
// configuration errors.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai":
		return OpenAI, nil
	case "openrouter":
		return OpenRouter, nil
	default:
		return KindUnknown, errs.Configf("provider.parse", "unknown provider %q", s)
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if k == KindUnknown {
		return nil, errs.Configf("provider.marshal", "unknown provider kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
