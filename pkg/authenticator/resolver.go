package authenticator

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pascaldekloe/name"
)

// Factory constructs an authenticator from an entry's options.
type Factory func(opts Options) (Authenticator, error)

// Implementation is a resolved backend.
type Implementation struct {
	Module  string
	Symbol  string
	Factory Factory
}

// String returns the qualified "module.Symbol" reference.
func (i Implementation) String() string {
	return i.Module + "." + i.Symbol
}

type moduleTable map[string]map[string]Factory

func (t moduleTable) add(module, symbol string, f Factory) {
	symbols, ok := t[module]
	if !ok {
		symbols = make(map[string]Factory)
		t[module] = symbols
	}
	symbols[symbol] = f
}

// Resolver maps short backend names to implementations. Hosting services fill
// its two tables at startup; legacy registrations win over current ones.
type Resolver struct {
	mu      sync.RWMutex
	legacy  moduleTable
	current moduleTable
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		legacy:  make(moduleTable),
		current: make(moduleTable),
	}
}

// Register adds a factory under an explicit module and symbol.
func (r *Resolver) Register(module, symbol string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.add(module, symbol, f)
}

// RegisterLegacy adds a factory to the legacy table.
func (r *Resolver) RegisterLegacy(module, symbol string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.legacy.add(module, symbol, f)
}

// RegisterAuthenticator registers f under the names Resolve derives for shortName.
func (r *Resolver) RegisterAuthenticator(shortName string, f Factory) Implementation {
	module, symbol := CurrentName(shortName)
	r.Register(module, symbol, f)
	return Implementation{Module: module, Symbol: symbol, Factory: f}
}

// RegisterLegacyAuthenticator registers f under the legacy names of shortName.
func (r *Resolver) RegisterLegacyAuthenticator(shortName string, f Factory) Implementation {
	module, symbol := LegacyName(shortName)
	r.RegisterLegacy(module, symbol, f)
	return Implementation{Module: module, Symbol: symbol, Factory: f}
}

// CurrentName derives the module and symbol of a backend, e.g.
// "active_record" -> ("casino-active_record_authenticator", "ActiveRecordAuthenticator").
func CurrentName(shortName string) (module, symbol string) {
	return "casino-" + underscore(shortName) + "_authenticator", camelize(shortName) + "Authenticator"
}

// LegacyName derives the pre-rename module and symbol of a backend, e.g.
// "active_record" -> ("casino_core-authenticator-active_record", "ActiveRecord").
func LegacyName(shortName string) (module, symbol string) {
	return "casino_core-authenticator-" + underscore(shortName), camelize(shortName)
}

func underscore(s string) string {
	return strings.ToLower(name.SnakeCase(s))
}

func camelize(s string) string {
	return name.CamelCase(s, true)
}

// Resolve finds the implementation for shortName. A legacy registration is
// returned when present; otherwise the current table must hold it.
func (r *Resolver) Resolve(shortName string) (Implementation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	legacyModule, legacySymbol := LegacyName(shortName)
	if f, ok := r.legacy[legacyModule][legacySymbol]; ok {
		return Implementation{Module: legacyModule, Symbol: legacySymbol, Factory: f}, nil
	}

	module, symbol := CurrentName(shortName)
	return r.load(r.current, shortName, module, symbol)
}

// Lookup resolves an explicit "module.Symbol" reference without applying any
// naming transform. Current registrations are searched first, then legacy
// ones. A bare symbol is searched in every module.
func (r *Resolver) Lookup(ref string) (Implementation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := strings.LastIndex(ref, "."); i > 0 {
		module, symbol := ref[:i], ref[i+1:]
		if f, ok := r.legacy[module][symbol]; ok && r.current[module][symbol] == nil {
			return Implementation{Module: module, Symbol: symbol, Factory: f}, nil
		}
		if _, ok := r.current[module]; !ok {
			if _, ok := r.legacy[module]; ok {
				return r.load(r.legacy, ref, module, symbol)
			}
		}
		return r.load(r.current, ref, module, symbol)
	}

	for _, table := range []moduleTable{r.current, r.legacy} {
		for _, module := range sortedModules(table) {
			if f, ok := table[module][ref]; ok {
				return Implementation{Module: module, Symbol: ref, Factory: f}, nil
			}
		}
	}
	return Implementation{}, &ResolutionError{
		Kind:      MissingSymbol,
		ShortName: ref,
		Symbol:    ref,
		Err:       ErrSymbolNotFound,
	}
}

func (r *Resolver) load(table moduleTable, shortName, module, symbol string) (Implementation, error) {
	symbols, ok := table[module]
	if !ok {
		return Implementation{}, &ResolutionError{
			Kind:      MissingModule,
			ShortName: shortName,
			Module:    module,
			Symbol:    symbol,
			Err:       fmt.Errorf("%w: %s", ErrModuleNotFound, module),
		}
	}
	f, ok := symbols[symbol]
	if !ok {
		return Implementation{}, &ResolutionError{
			Kind:      MissingSymbol,
			ShortName: shortName,
			Module:    module,
			Symbol:    symbol,
			Err:       fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol),
		}
	}
	return Implementation{Module: module, Symbol: symbol, Factory: f}, nil
}

// Modules lists the registered current modules, sorted.
func (r *Resolver) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedModules(r.current)
}

func sortedModules(t moduleTable) []string {
	modules := make([]string, 0, len(t))
	for m := range t {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	return modules
}
