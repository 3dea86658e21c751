package parsing

import (
	"fmt"

	"siteledger/internal/domain"
	"siteledger/internal/port"
)

// ProviderFactory creates an InvoiceProvider from per-user provider settings.
type ProviderFactory func(cfg domain.ProviderSettings) (port.InvoiceProvider, error)

// ProviderRegistry maps provider identifiers to factories. Providers form a
// closed set registered explicitly at startup; there is no dynamic lookup.
type ProviderRegistry struct {
	factories map[string]ProviderFactory
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{factories: map[string]ProviderFactory{}}
}

// Register registers a provider factory by identifier.
func (r *ProviderRegistry) Register(id string, factory ProviderFactory) {
	r.factories[id] = factory
}

// Known reports whether a provider identifier is registered.
func (r *ProviderRegistry) Known(id string) bool {
	_, ok := r.factories[id]
	return ok
}

// Build creates a provider instance for the given identifier and settings.
func (r *ProviderRegistry) Build(id string, cfg domain.ProviderSettings) (port.InvoiceProvider, error) {
	factory, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, id)
	}
	return factory(cfg)
}
