package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/casualjim/brainstorm/ai"
	"github.com/casualjim/brainstorm/models"
	"github.com/casualjim/brainstorm/pkg/errs"
	"github.com/casualjim/brainstorm/provider"
)

// Settings are the process wide settings read from the environment.
type Settings struct {
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	OpenRouterAPIKey   string `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL  string `env:"OPENROUTER_BASE_URL"`
	OpenRouterSiteURL  string `env:"OPENROUTER_SITE_URL"`
	OpenRouterSiteName string `env:"OPENROUTER_SITE_NAME"`

	AgentsDir  string `env:"BRAINSTORM_AGENTS_DIR" envDefault:"agents"`
	ModelsFile string `env:"BRAINSTORM_MODELS_FILE"`
	HistoryDir string `env:"BRAINSTORM_HISTORY_DIR" envDefault:".brainstorm/history"`

	NATSURL string `env:"NATS_URL"`

	LogLevel       slog.Level    `env:"BRAINSTORM_LOG_LEVEL" envDefault:"info"`
	RequestTimeout time.Duration `env:"BRAINSTORM_REQUEST_TIMEOUT"`
}

// LoadSettings reads Settings from the process environment.
func LoadSettings() (Settings, error) {
	return parseSettings(env.Options{})
}

// SettingsFrom reads Settings from environ instead of the process
// environment.
func SettingsFrom(environ map[string]string) (Settings, error) {
	return parseSettings(env.Options{Environment: environ})
}

func parseSettings(options env.Options) (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, options); err != nil {
		return Settings{}, errs.Config("config.settings", "invalid environment", err)
	}
	return s, nil
}

// APIKey returns the credential for kind.
func (s Settings) APIKey(kind provider.Kind) (string, error) {
	var key, name string
	switch kind {
	case provider.OpenAI:
		key, name = s.OpenAIAPIKey, "OPENAI_API_KEY"
	case provider.OpenRouter:
		key, name = s.OpenRouterAPIKey, "OPENROUTER_API_KEY"
	default:
		return "", errs.Configf("config.api_key", "unknown provider kind %d", uint8(kind))
	}
	if strings.TrimSpace(key) == "" {
		return "", errs.Configf("config.api_key", "%s is not set", name)
	}
	return key, nil
}

// Models returns the model registry: the file named by BRAINSTORM_MODELS_FILE
// when set, the embedded catalog otherwise.
func (s Settings) Models() (*models.Registry, error) {
	if strings.TrimSpace(s.ModelsFile) == "" {
		return models.Default(), nil
	}
	return models.Load(s.ModelsFile)
}

// AIOptions returns the options that bind cfg to a provider client, using the
// credentials and endpoints from s.
func (s Settings) AIOptions(cfg AIConfig, registry *models.Registry) ([]ai.Option, error) {
	kind := cfg.Provider
	if kind == provider.KindUnknown {
		kind = provider.OpenAI
	}
	key, err := s.APIKey(kind)
	if err != nil {
		return nil, err
	}

	options := []ai.Option{
		ai.Provider(kind),
		ai.APIKey(key),
		ai.Model(cfg.Model),
	}
	if registry != nil {
		options = append(options, ai.Registry(registry))
	}
	switch kind {
	case provider.OpenRouter:
		options = append(options,
			ai.SiteURL(s.OpenRouterSiteURL),
			ai.SiteName(s.OpenRouterSiteName),
			ai.BaseURL(s.OpenRouterBaseURL),
		)
	default:
		options = append(options, ai.BaseURL(s.OpenAIBaseURL))
	}
	return options, nil
}
