package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/casualjim/brainstorm/pkg/errs"
	"github.com/casualjim/brainstorm/provider"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// AgentConfig describes an agent personality.
type AgentConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	AI          AIConfig `json:"ai_config" yaml:"ai_config"`

	// Source is the file the configuration was loaded from, if any.
	Source string `json:"-" yaml:"-"`
}

// AIConfig selects the provider and the model of an agent. An empty provider
// means OpenAI, an empty model the provider default.
type AIConfig struct {
	Provider provider.Kind `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model    string        `json:"model,omitempty" yaml:"model,omitempty"`
}

// Format is the encoding of an agent file.
type Format uint8

const (
	JSON Format = iota
	YAML
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, true
	case ".yaml", ".yml":
		return YAML, true
	default:
		return JSON, false
	}
}

// Validate checks the configuration and fills in the provider default.
func (c *AgentConfig) Validate() error {
	const op = "config.validate"
	if c.Name = strings.TrimSpace(c.Name); c.Name == "" {
		return errs.Config(op, "agent name is required", nil)
	}
	switch c.AI.Provider {
	case provider.KindUnknown:
		c.AI.Provider = provider.OpenAI
	case provider.OpenAI, provider.OpenRouter:
	default:
		return errs.Configf(op, "agent %q: unknown provider kind %d", c.Name, uint8(c.AI.Provider))
	}
	c.AI.Model = strings.TrimSpace(c.AI.Model)
	return nil
}

// Parse decodes and validates an agent configuration. Unknown fields are
// rejected, so a stray api_key never goes unnoticed.
func Parse(data []byte, format Format) (AgentConfig, error) {
	const op = "config.parse"

	var cfg AgentConfig
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return AgentConfig{}, errs.Config(op, "malformed agent yaml", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return AgentConfig{}, errs.Config(op, "malformed agent json", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return AgentConfig{}, err
	}
	return cfg, nil
}

// Load reads one agent file. The format follows the file extension; files
// without a known extension are read as JSON.
func Load(path string) (AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AgentConfig{}, errs.Config("config.load", fmt.Sprintf("read agent file %s", path), err)
	}
	format, _ := FormatOf(path)
	cfg, err := Parse(data, format)
	if err != nil {
		return AgentConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// LoadDir loads every JSON and YAML file in dir, sorted by agent name. Two
// files declaring the same agent name are a configuration error.
func LoadDir(ctx context.Context, dir string) ([]AgentConfig, error) {
	const op = "config.load_dir"

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Config(op, fmt.Sprintf("agents directory %s does not exist", dir), err)
		}
		return nil, errs.Config(op, fmt.Sprintf("read agents directory %s", dir), err)
	}

	var (
		mu      sync.Mutex
		configs []AgentConfig
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := FormatOf(entry.Name()); !ok {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg, err := Load(path)
			if err != nil {
				return err
			}
			mu.Lock()
			configs = append(configs, cfg)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(configs, func(a, b AgentConfig) int {
		return strings.Compare(a.Name, b.Name)
	})
	for i := 1; i < len(configs); i++ {
		if configs[i].Name == configs[i-1].Name {
			return nil, errs.Configf(op, "agent %q is defined in both %s and %s",
				configs[i].Name, configs[i-1].Source, configs[i].Source)
		}
	}
	return configs, nil
}

// Find returns the configuration named name from dir. Names are matched case
// insensitively.
func Find(ctx context.Context, dir, name string) (AgentConfig, error) {
	configs, err := LoadDir(ctx, dir)
	if err != nil {
		return AgentConfig{}, err
	}
	for _, cfg := range configs {
		if strings.EqualFold(cfg.Name, name) {
			return cfg, nil
		}
	}
	return AgentConfig{}, errs.Configf("config.find", "no agent named %q in %s", name, dir)
}
