package openrouter

import (
	"strings"

	"github.com/casualjim/brainstorm/provider"
	"github.com/casualjim/brainstorm/provider/openai"
	"github.com/fogfish/opts"
	"github.com/openai/openai-go/option"
)

const (
	// BaseURL is the OpenAI compatible root of the OpenRouter API.
	BaseURL = "https://openrouter.ai/api/v1/"
	// DefaultModel is used when an agent doesn't name a model.
	DefaultModel = "openai/gpt-4"

	headerReferer = "HTTP-Referer"
	headerTitle   = "X-Title"
)

type config struct {
	apiKey   string
	baseURL  string
	siteURL  string
	siteName string
	extra    []option.RequestOption
}

var (
	APIKey   = opts.ForName[config, string]("apiKey")
	SiteURL  = opts.ForName[config, string]("siteURL")
	SiteName = opts.ForName[config, string]("siteName")
)

// WithBaseURL points the provider at another OpenRouter compatible endpoint.
func WithBaseURL(url string) opts.Option[config] {
	return opts.Type[config](func(c *config) error {
		if url = strings.TrimSpace(url); url != "" {
			c.baseURL = url
		}
		return nil
	})
}

// RequestOptions appends raw client options, applied after the defaults.
func RequestOptions(options ...option.RequestOption) opts.Option[config] {
	return opts.Type[config](func(c *config) error {
		c.extra = append(c.extra, options...)
		return nil
	})
}

// New creates an OpenRouter provider.
func New(options ...opts.Option[config]) (provider.Provider, error) {
	cfg := config{baseURL: BaseURL}
	if err := opts.Apply(&cfg, options); err != nil {
		return nil, err
	}
	return openai.New(cfg.requestOptions()...).Named(provider.OpenRouter.String()), nil
}

func (c *config) requestOptions() []option.RequestOption {
	result := []option.RequestOption{
		openai.WithBaseURL(c.baseURL),
		option.WithAPIKey(c.apiKey),
	}
	if c.siteURL != "" {
		result = append(result, option.WithHeader(headerReferer, c.siteURL))
	}
	if c.siteName != "" {
		result = append(result, option.WithHeader(headerTitle, c.siteName))
	}
	return append(result, c.extra...)
}
