package structurer

import (
	"fmt"

	"invoicereader/internal/config"
	"invoicereader/internal/port"
)

// ProviderFactory is a function that creates a Structurer from a provider config.
type ProviderFactory func(cfg *config.LLMProviderConfig) (port.Structurer, error)

// registry of structurer provider factories, populated explicitly via
// RegisterProvider at startup.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a structurer provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewStructurer creates a Structurer from a provider config using the
// registered factory.
func NewStructurer(cfg *config.LLMProviderConfig) (port.Structurer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown structurer provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
