package solver

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bufferlabs/buffer-solver/internal/domain"
)

// Built-in selection strategy names, usable as [solver].order_selection
// config values.
const (
	StrategyFirstEligible = "first-eligible"
	StrategyLast          = "last"
)

// Strategy picks which eligible order a buffer settlement executes. The
// engine filters out expired orders before calling Select, so a strategy
// only ranks, it never re-validates.
type Strategy interface {
	Name() string
	// Select returns the chosen order, or false when eligible is empty.
	Select(eligible []domain.Order) (domain.Order, bool)
}

// Registry manages a named collection of strategies that can be looked
// up at runtime. It is safe for concurrent use.
type Registry struct {
	strategies map[string]Strategy
	mu         sync.RWMutex
}

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// DefaultRegistry returns a registry with the built-in strategies
// registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(StrategyFirstEligible, firstEligible{})
	r.Register(StrategyLast, lastEligible{})
	return r
}

// Register adds a strategy to the registry under the given name.
// If a strategy with the same name already exists it will be replaced.
func (r *Registry) Register(name string, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[name] = s
}

// Get retrieves a strategy by name. It returns an error when the name is
// not registered.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("strategy %q: not registered", name)
	}
	return s, nil
}

// List returns the names of all registered strategies in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for n := range r.strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// firstEligible settles the first still-valid order in request order,
// so selection does not depend on how many expired orders the driver
// appended after it.
type firstEligible struct{}

func (firstEligible) Name() string { return StrategyFirstEligible }

func (firstEligible) Select(eligible []domain.Order) (domain.Order, bool) {
	if len(eligible) == 0 {
		return domain.Order{}, false
	}
	return eligible[0], true
}

// lastEligible keeps the historical behavior of popping the final order
// off the request, restricted to orders that are still valid.
type lastEligible struct{}

func (lastEligible) Name() string { return StrategyLast }

func (lastEligible) Select(eligible []domain.Order) (domain.Order, bool) {
	if len(eligible) == 0 {
		return domain.Order{}, false
	}
	return eligible[len(eligible)-1], true
}
