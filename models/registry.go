package models

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/casualjim/brainstorm/internal/registry"
	"github.com/casualjim/brainstorm/pkg/errs"
	"github.com/casualjim/brainstorm/pkg/stdx"
	"github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

//go:embed models.json
var defaultCatalog []byte

var loadDefault = sync.OnceValue(func() *Registry {
	return stdx.Must1(Parse(defaultCatalog))
})

// Default returns the catalog compiled into the binary.
func Default() *Registry {
	return loadDefault()
}

type entry struct {
	ID             string   `json:"id,omitempty"`
	Category       Category `json:"category"`
	Description    string   `json:"description"`
	MaxTokens      int      `json:"max_tokens,omitempty"`
	IsExperimental bool     `json:"is_experimental,omitempty"`
}

type document = orderedmap.OrderedMap[string, *orderedmap.OrderedMap[string, entry]]

// Registry is an immutable, concurrency safe model catalog.
type Registry struct {
	providers []string
	models    []Info
	byKey     registry.Registry[Info]
	byName    registry.Registry[Info]
}

// Load reads a catalog from a JSON file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Config("models.load", "failed to read model catalog", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, errs.Config("models.load", fmt.Sprintf("invalid model catalog %s", path), err)
	}
	return r, nil
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Registry, error) {
	doc := orderedmap.New[string, *orderedmap.OrderedMap[string, entry]]()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode model catalog: %w", err)
	}
	return build(doc)
}

func build(doc *document) (*Registry, error) {
	r := &Registry{
		byKey:  registry.New[Info](),
		byName: registry.New[Info](),
	}

	for p := doc.Oldest(); p != nil; p = p.Next() {
		provider := strings.ToLower(strings.TrimSpace(p.Key))
		if provider == "" {
			return nil, fmt.Errorf("model catalog has an empty provider name")
		}
		r.providers = append(r.providers, provider)
		if p.Value == nil {
			continue
		}

		for m := p.Value.Oldest(); m != nil; m = m.Next() {
			if strings.TrimSpace(m.Key) == "" {
				return nil, fmt.Errorf("provider %s has a model without a name", provider)
			}
			if m.Value.Category == "" {
				return nil, fmt.Errorf("model %s/%s has no category", provider, m.Key)
			}
			info := Info{
				Name:           m.Key,
				ID:             m.Value.ID,
				Provider:       provider,
				Category:       m.Value.Category,
				Description:    m.Value.Description,
				MaxTokens:      m.Value.MaxTokens,
				IsExperimental: m.Value.IsExperimental,
			}
			r.models = append(r.models, info)
			r.byKey.Add(key(provider, info.Name), info)
			r.byName.GetOrAdd(info.Name, func() Info { return info })
		}
	}
	return r, nil
}

func key(provider, name string) string {
	return provider + ":" + name
}

// Get finds a model by name in any provider. When several providers list the
// same name the first one declared wins.
func (r *Registry) Get(name string) (Info, bool) {
	return r.byName.Get(name)
}

// Lookup finds a model by name within a single provider.
func (r *Registry) Lookup(provider, name string) (Info, bool) {
	return r.byKey.Get(key(strings.ToLower(provider), name))
}

// Resolve maps a configured model name to the identifier the provider expects.
// Names that aren't in the catalog are returned unchanged.
func (r *Registry) Resolve(provider, name string) string {
	if info, ok := r.Lookup(provider, name); ok {
		return info.Identifier()
	}
	return name
}

// Providers lists provider names in declaration order.
func (r *Registry) Providers() []string {
	return append([]string(nil), r.providers...)
}

// All lists every model in declaration order.
func (r *Registry) All() []Info {
	return append([]Info(nil), r.models...)
}

func (r *Registry) ByProvider(provider string) []Info {
	provider = strings.ToLower(provider)
	return r.filter(func(i Info) bool { return i.Provider == provider })
}

func (r *Registry) ByCategory(category Category) []Info {
	return r.filter(func(i Info) bool { return i.Category == category })
}

func (r *Registry) Len() int {
	return len(r.models)
}

func (r *Registry) filter(keep func(Info) bool) []Info {
	var result []Info
	for _, m := range r.models {
		if keep(m) {
			result = append(result, m)
		}
	}
	return result
}
