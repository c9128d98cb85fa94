package authenticator

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCloseGrace is how long the chains of a replaced configuration stay
// open for callers that already hold them.
const DefaultCloseGrace = 30 * time.Second

// Link is one instantiated authenticator of a chain.
type Link struct {
	Name          string
	Class         string
	Authenticator Authenticator
}

// Chain is the ordered list of authenticators of one chain type.
type Chain []Link

// Names returns the authenticator names in chain order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, l := range c {
		names[i] = l.Name
	}
	return names
}

// Close closes every authenticator of the chain that implements io.Closer.
func (c Chain) Close() error {
	var errs []error
	for _, l := range c {
		closer, ok := l.Authenticator.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s (%s): %w", l.Name, l.Class, err))
		}
	}
	return errors.Join(errs...)
}

type slot struct {
	mu    sync.Mutex
	chain atomic.Pointer[Chain]
	// retired is set under mu once the epoch has been replaced
	retired bool
}

// epoch is the cache for one configuration generation.
type epoch struct {
	source EntrySource
	slots  [chainTypeCount]slot
}

// Registry owns the instantiated authenticators of every chain type.
//
// Each chain is built at most once per configuration epoch, on first use.
// Concurrent first accesses to the same chain type wait for a single build;
// later reads only load an atomic pointer.
type Registry struct {
	// CloseGrace delays closing the chains of a replaced configuration.
	// Zero closes them during Reload. Set before the first Reload.
	CloseGrace time.Duration
	Logger     zerolog.Logger

	resolver *Resolver
	current  atomic.Pointer[epoch]
}

// NewRegistry creates a registry reading entries from source.
func NewRegistry(resolver *Resolver, source EntrySource) *Registry {
	r := &Registry{resolver: resolver, CloseGrace: DefaultCloseGrace}
	r.current.Store(&epoch{source: source})
	return r
}

// Reload replaces the entry source and drops every cached chain. Callers
// already holding a Chain keep using it until CloseGrace has passed, then
// its authenticators are closed.
func (r *Registry) Reload(source EntrySource) {
	old := r.current.Swap(&epoch{source: source})
	chains := old.retire()
	if len(chains) == 0 {
		return
	}
	if r.CloseGrace <= 0 {
		r.close(chains)
		return
	}
	time.AfterFunc(r.CloseGrace, func() { r.close(chains) })
}

// Close closes the authenticators built so far. A later Get builds the
// chains again.
func (r *Registry) Close() error {
	e := r.current.Load()
	old := r.current.Swap(&epoch{source: e.source})

	var errs []error
	for _, c := range old.retire() {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (r *Registry) close(chains []Chain) {
	for _, c := range chains {
		if err := c.Close(); err != nil {
			r.Logger.Error().Err(err).Msg("failed to close authenticator")
		}
	}
}

// retire marks every slot retired, waiting for builds in progress, and
// returns the chains that were built.
func (e *epoch) retire() []Chain {
	var chains []Chain
	for i := range e.slots {
		s := &e.slots[i]
		s.mu.Lock()
		s.retired = true
		if c := s.chain.Load(); c != nil {
			chains = append(chains, *c)
		}
		s.mu.Unlock()
	}
	return chains
}

// Get returns the chain for chainType, building it on first use. Resolution
// and construction failures are returned and nothing is cached, so the next
// call tries again.
func (r *Registry) Get(chainType ChainType) (Chain, error) {
	if !chainType.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChainType, int(chainType))
	}

	for {
		e := r.current.Load()
		s := &e.slots[chainType]
		if c := s.chain.Load(); c != nil {
			return *c, nil
		}

		chain, retired, err := r.populate(e, s, chainType)
		if retired {
			// replaced while waiting for the slot, use the new epoch
			continue
		}
		return chain, err
	}
}

func (r *Registry) populate(e *epoch, s *slot, chainType ChainType) (Chain, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retired {
		return nil, true, nil
	}
	if c := s.chain.Load(); c != nil {
		return *c, false, nil
	}

	chain, err := r.build(e.source, chainType)
	if err != nil {
		return nil, false, err
	}
	s.chain.Store(&chain)
	return chain, false, nil
}

// Resolver returns the resolver used to build chains.
func (r *Registry) Resolver() *Resolver {
	return r.resolver
}

// Names lists the configured authenticator names of chainType without
// instantiating anything.
func (r *Registry) Names(chainType ChainType) []string {
	e := r.current.Load()
	if e.source == nil {
		return nil
	}
	var names []string
	for _, entry := range e.source.Entries(chainType) {
		if entry.Record {
			names = append(names, entry.Name)
		}
	}
	return names
}

func (r *Registry) build(source EntrySource, chainType ChainType) (Chain, error) {
	if source == nil {
		return Chain{}, nil
	}

	entries := source.Entries(chainType)
	chain := make(Chain, 0, len(entries))
	for _, entry := range entries {
		if !entry.Record {
			continue
		}

		impl, err := r.implementation(entry)
		if err != nil {
			r.discard(chain)
			return nil, err
		}

		a, err := impl.Factory(entry.Options)
		if err != nil {
			r.discard(chain)
			return nil, fmt.Errorf("%s %q (%s): %w", chainType, entry.Name, impl, err)
		}
		if a == nil {
			r.discard(chain)
			return nil, fmt.Errorf("%s %q (%s): factory returned no authenticator", chainType, entry.Name, impl)
		}

		chain = append(chain, Link{Name: entry.Name, Class: impl.String(), Authenticator: a})
	}
	return chain, nil
}

// discard closes the links of a chain whose build failed
func (r *Registry) discard(chain Chain) {
	if len(chain) > 0 {
		r.close([]Chain{chain})
	}
}

func (r *Registry) implementation(entry Entry) (Implementation, error) {
	if entry.Class != "" {
		return r.resolver.Lookup(entry.Class)
	}
	return r.resolver.Resolve(entry.Authenticator)
}
