package source

import (
	"fmt"
	"sort"
	"sync"

	"betedge/engine/internal/cache"
	"betedge/engine/internal/client"
	"betedge/engine/internal/config"
	"betedge/engine/internal/rating"
)

// Adapter names
const (
	MLBRoster = "mlb-roster"
	MLBStats  = "mlb-stats"
	Statcast  = "statcast"
	Weather   = "weather"
	Odds      = "odds"
	Fixture   = "fixture"
	Warehouse = "warehouse"
)

// Deps are the shared collaborators handed to adapter factories
type Deps struct {
	Config    *config.Config
	Client    *client.Client
	Cache     cache.Cache
	Random    rating.RandomSource
	Warehouse StagedMetricReader
}

// Factory builds an adapter from shared dependencies
type Factory func(deps Deps) (Adapter, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a factory available under name. Registering a name twice panics.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, dup := factories[name]; dup {
		panic("source: Register called twice for " + name)
	}
	factories[name] = f
}

// GetFactory returns the factory registered under name
func GetFactory(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// ListFactories returns every registered adapter name in sorted order
func ListFactories() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build instantiates the named adapters in order
func Build(names []string, deps Deps) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(names))
	for _, name := range names {
		f, ok := GetFactory(name)
		if !ok {
			return nil, fmt.Errorf("no adapter registered as %q (registered: %v)", name, ListFactories())
		}
		a, err := f(deps)
		if err != nil {
			return nil, fmt.Errorf("failed to build adapter %s: %w", name, err)
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// Plan returns the adapter names of a run, roster first.
// The warehouse comes right after the roster: staged values are older than
// anything fetched live, and at equal provenance the later record wins.
// Domains without live sources can only be simulated.
func Plan(domain *rating.Domain, simulate, warehouse bool) ([]string, error) {
	var sources []string
	switch {
	case simulate:
		sources = []string{Fixture}
	case !domain.Live || len(domain.Sources) == 0:
		return nil, fmt.Errorf("%w: live %s data not connected, use simulation", ErrUnavailable, domain.Title)
	default:
		sources = domain.Sources
	}

	names := []string{sources[0]}
	if warehouse {
		names = append(names, Warehouse)
	}
	return append(names, sources[1:]...), nil
}
