package llmfactory

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Providers specifies the list of providers to use
	Providers []*ProviderConfig `json:"providers" yaml:"providers" toml:"providers" validate:"dive"`
	// DefaultProvider specifies the default provider to use
	DefaultProvider string `json:"default_provider" yaml:"default_provider" toml:"default_provider"`
	// AgentModels specifies the mapping of agents to models.
	// key is the agent name, value is a list of preferred model names.
	// Use `default: [<model_name>]` as the default model for agents.
	AgentModels map[string][]string `json:"agent_models" yaml:"agent_models" toml:"agent_models"`
}

// ProviderConfig describes one provider endpoint and its models.
type ProviderConfig struct {
	Name string `json:"name" yaml:"name" toml:"name" validate:"required"`
	// Provider specifies the type of API to use:
	// OPENAI|OPENROUTER|ANTHROPIC
	Provider string `json:"provider" yaml:"provider" toml:"provider" validate:"required"`
	// Token is the API key. Values like ${OPENAI_API_KEY} are expanded from
	// the environment when the config is loaded from a file.
	Token           string   `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
	BaseURL         string   `json:"base_url,omitempty" yaml:"base_url,omitempty" toml:"base_url,omitempty"`
	OrgID           string   `json:"org_id,omitempty" yaml:"org_id,omitempty" toml:"org_id,omitempty"`
	DefaultModel    string   `json:"default_model,omitempty" yaml:"default_model,omitempty" toml:"default_model,omitempty"`
	AvailableModels []string `json:"available_models,omitempty" yaml:"available_models,omitempty" toml:"available_models,omitempty"`
}

// FindModel returns the first preferred model the provider offers,
// or the provider's default model.
func (c *ProviderConfig) FindModel(models ...string) string {
	for _, model := range models {
		if slices.Contains(c.AvailableModels, model) {
			return model
		}
	}
	return c.DefaultModel
}

// LoadConfig loads the config from a YAML or TOML file.
// Environment references like ${NAME} are expanded before parsing.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read config")
	}
	expanded := os.ExpandEnv(string(raw))

	switch strings.ToLower(filepath.Ext(file)) {
	case ".toml":
		err = toml.Unmarshal([]byte(expanded), cfg)
	default:
		err = yaml.Unmarshal([]byte(expanded), cfg)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to parse config: %s", file)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.WithMessagef(err, "invalid config: %s", file)
	}
	return cfg, nil
}
