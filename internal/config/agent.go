package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentName         = "FORGE_AGENT_NAME"
	EnvAgentProviderName = "FORGE_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "FORGE_AGENT_BASE_URL"
	EnvAgentToken        = "FORGE_AGENT_TOKEN"
	EnvAgentDeployment   = "FORGE_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "FORGE_AGENT_API_VERSION"
	EnvAgentAuthType     = "FORGE_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "FORGE_AGENT_MODEL_NAME"
)

// FinalizeAgent fills a go-agents AgentConfig from DefaultAgentConfig, applies
// FORGE_AGENT_* overrides, and validates the result. Provider credentials are
// carried in Provider.Options so that any go-agents provider can be selected
// from the environment alone.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	loadAgentDefaults(c)
	loadAgentEnv(c)
	return validateAgent(c)
}

func loadAgentDefaults(c *gaconfig.AgentConfig) {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults

	if c.Name == "" {
		c.Name = "forge"
	}
}

func loadAgentEnv(c *gaconfig.AgentConfig) {
	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}

	setField := func(envVar string, dst *string) {
		if v := os.Getenv(envVar); v != "" {
			*dst = v
		}
	}
	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			c.Provider.Options[key] = v
		}
	}

	setField(EnvAgentName, &c.Name)
	setField(EnvAgentProviderName, &c.Provider.Name)
	setField(EnvAgentBaseURL, &c.Provider.BaseURL)
	setField(EnvAgentModelName, &c.Model.Name)

	setOption(EnvAgentToken, "token")
	setOption(EnvAgentDeployment, "deployment")
	setOption(EnvAgentAPIVersion, "api_version")
	setOption(EnvAgentAuthType, "auth_type")
}

func validateAgent(c *gaconfig.AgentConfig) error {
	switch {
	case c.Provider == nil || c.Provider.Name == "":
		return fmt.Errorf("provider name required")
	case c.Model == nil:
		return fmt.Errorf("model required")
	}
	return nil
}
