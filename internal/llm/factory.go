package llm

import (
	"fmt"
	"sort"
	"strings"
)

// providers maps a provider name (and its aliases) to its constructor
var providers = map[string]func(Config) (Provider, error){
	"openai": func(c Config) (Provider, error) {
		return NewOpenAIProvider(c)
	},
	"anthropic": func(c Config) (Provider, error) {
		return NewAnthropicProvider(c)
	},
	"claude": func(c Config) (Provider, error) {
		return NewAnthropicProvider(c)
	},
	"ollama": func(c Config) (Provider, error) {
		return NewOllamaProvider(c)
	},
}

// SupportedProviders returns the accepted provider names, sorted
func SupportedProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProvider creates the provider named in config. An empty name means
// generation is disabled and returns nil, nil.
func NewProvider(config Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(config.Provider))
	if name == "" {
		return nil, nil
	}

	newProvider, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: %s)", config.Provider, strings.Join(SupportedProviders(), ", "))
	}

	// Constructors return typed nil pointers on error; keep them out of the interface
	p, err := newProvider(config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}
