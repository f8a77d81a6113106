package ai

import (
	"github.com/casualjim/brainstorm/models"
	"github.com/casualjim/brainstorm/provider"
	"github.com/fogfish/opts"
)

type config struct {
	kind     provider.Kind
	apiKey   string
	model    string
	siteURL  string
	siteName string
	baseURL  string
	registry *models.Registry
	client   provider.Provider
}

// Option configures an AI.
type Option = opts.Option[config]

var (
	// Provider selects the completion API. OpenAI is used when it isn't set.
	Provider = opts.ForName[config, provider.Kind]("kind")
	APIKey   = opts.ForName[config, string]("apiKey")
	Model    = opts.ForName[config, string]("model")
	SiteURL  = opts.ForName[config, string]("siteURL")
	SiteName = opts.ForName[config, string]("siteName")
	Registry = opts.ForName[config, *models.Registry]("registry")

	// BaseURL points the client at an OpenAI compatible gateway.
	BaseURL = opts.ForName[config, string]("baseURL")

	// Client uses an existing provider instead of building one. No API key is
	// needed in that case.
	Client = opts.ForName[config, provider.Provider]("client")
)
