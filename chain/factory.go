package chain

import (
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/logging"
	"github.com/hupe1980/swarmchain/trace"
)

// CallableResolver supplies callables for the callable names appearing in
// step definitions. The tool package's FunctionRegistry is the canonical
// implementation.
type CallableResolver interface {
	Resolve(name string) (core.Callable, bool)
}

// ResolverFunc adapts a plain function to the CallableResolver interface.
type ResolverFunc func(name string) (core.Callable, bool)

// Resolve implements CallableResolver.
func (f ResolverFunc) Resolve(name string) (core.Callable, bool) { return f(name) }

// FactoryOptions configures a Factory.
type FactoryOptions struct {
	// Resolver maps definition callable names to callables. Required for
	// building chains from definitions.
	Resolver CallableResolver

	// Tracer is handed to every built chain. Nil disables tracing.
	Tracer *trace.Tracer

	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// Factory builds, mutates, persists and restores named chains from
// declarative definitions. The factory keeps the definition of every managed
// chain in sync with its live instance, so the full chain set can be
// exported at any time and loaded back losslessly.
type Factory struct {
	mu       sync.RWMutex
	chains   map[string]*Chain
	defs     map[string]Definition
	resolver CallableResolver
	tracer   *trace.Tracer
	logger   logging.Logger
}

// NewFactory creates a Factory.
func NewFactory(optFns ...func(o *FactoryOptions)) *Factory {
	opts := FactoryOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Factory{
		chains:   make(map[string]*Chain),
		defs:     make(map[string]Definition),
		resolver: opts.Resolver,
		tracer:   opts.Tracer,
		logger:   opts.Logger,
	}
}

// Build validates the definition, resolves every callable and registers the
// resulting live chain under the definition's key, replacing any previous
// chain with that key. Structural failures (duplicate keys, cycles, unknown
// callables or strategies) surface here, never at invocation.
func (f *Factory) Build(def Definition) (*Chain, error) {
	c, err := f.build(def)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chains[def.Key] = c
	f.defs[def.Key] = def
	f.logger.Debug("chain built", "chain_key", def.Key, "steps", len(def.Steps))
	return c, nil
}

func (f *Factory) build(def Definition) (*Chain, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	ordering, _ := OrderingByName(def.Ordering)
	processing, _ := ProcessingByName(def.Processing)
	c := New(def.Key, func(o *Options) {
		o.Ordering = ordering
		o.Processing = processing
		o.Config = def.Config
		o.Output = def.Output
		o.Tracer = f.tracer
		o.Logger = f.logger
	})

	for _, sd := range def.Steps {
		step, err := f.materialize(sd)
		if err != nil {
			return nil, err
		}
		if err := c.AddStep(step); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (f *Factory) materialize(sd StepDefinition) (Step, error) {
	if f.resolver == nil {
		return Step{}, &UnknownCallableError{Name: sd.Callable}
	}
	fn, ok := f.resolver.Resolve(sd.Callable)
	if !ok {
		return Step{}, &UnknownCallableError{Name: sd.Callable}
	}
	opts := []StepOption{WithArgs(decodeArgs(sd.Args)...), WithKwargs(decodeKwargs(sd.Kwargs))}
	if sd.Ref != "" {
		opts = append(opts, WithRef(sd.Ref))
	}
	if sd.Priority != 0 {
		opts = append(opts, WithPriority(sd.Priority))
	}
	if sd.Templates {
		opts = append(opts, WithTemplates())
	}
	if sd.Timeout != "" {
		d, err := time.ParseDuration(sd.Timeout)
		if err != nil {
			return Step{}, &SerializationFormatError{Format: sd.Timeout, Reason: "invalid step timeout"}
		}
		opts = append(opts, WithTimeout(d))
	}
	return NewStep(sd.Key, fn, opts...), nil
}

// Get returns the live chain registered under key.
func (f *Factory) Get(key string) (*Chain, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.chains[key]
	if !ok {
		return nil, &UnknownChainError{Key: key}
	}
	return c, nil
}

// Definition returns the current definition of the chain under key.
func (f *Factory) Definition(key string) (Definition, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	def, ok := f.defs[key]
	if !ok {
		return Definition{}, &UnknownChainError{Key: key}
	}
	return def, nil
}

// Set registers a programmatically assembled chain. The callableNames map
// (step key → resolver identifier) lets the factory capture a definition so
// the chain participates in export/load round-trips; steps whose callables
// are not registry-backed serialize with an empty callable name and cannot
// be rebuilt from an export.
func (f *Factory) Set(c *Chain, callableNames map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chains[c.Key()] = c
	f.defs[c.Key()] = DefinitionOf(c, callableNames)
}

// Reset rebuilds the chain under key from its stored definition, discarding
// any incremental mutations applied to the live instance.
func (f *Factory) Reset(key string) (*Chain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.defs[key]
	if !ok {
		return nil, &UnknownChainError{Key: key}
	}
	c, err := f.build(def)
	if err != nil {
		return nil, err
	}
	f.chains[key] = c
	return c, nil
}

// Remove drops the chain and its definition.
func (f *Factory) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.chains[key]; !ok {
		return &UnknownChainError{Key: key}
	}
	delete(f.chains, key)
	delete(f.defs, key)
	return nil
}

// Keys lists the managed chain keys in sorted order.
func (f *Factory) Keys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	keys := make([]string, 0, len(f.chains))
	for k := range f.chains {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddStep appends a step definition to a managed chain, updating the live
// chain and the stored definition together. The combined definition is
// re-validated before either is touched.
func (f *Factory) AddStep(chainKey string, sd StepDefinition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.defs[chainKey]
	if !ok {
		return &UnknownChainError{Key: chainKey}
	}

	next := def
	next.Steps = append(append([]StepDefinition{}, def.Steps...), sd)
	if err := next.Validate(); err != nil {
		return err
	}
	step, err := f.materialize(sd)
	if err != nil {
		return err
	}
	if err := f.chains[chainKey].AddStep(step); err != nil {
		return err
	}
	f.defs[chainKey] = next
	return nil
}

// RemoveStep removes a step by key from a managed chain, keeping definition
// and live chain in sync.
func (f *Factory) RemoveStep(chainKey, stepKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.defs[chainKey]
	if !ok {
		return &UnknownChainError{Key: chainKey}
	}
	if err := f.chains[chainKey].RemoveStep(stepKey); err != nil {
		return err
	}
	steps := make([]StepDefinition, 0, len(def.Steps))
	for _, sd := range def.Steps {
		if sd.Key != stepKey {
			steps = append(steps, sd)
		}
	}
	def.Steps = steps
	f.defs[chainKey] = def
	return nil
}

// SetOrdering swaps a managed chain's ordering strategy without losing its
// steps.
func (f *Factory) SetOrdering(chainKey, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.defs[chainKey]
	if !ok {
		return &UnknownChainError{Key: chainKey}
	}
	strategy, valid := OrderingByName(name)
	if !valid {
		return &SerializationFormatError{Format: name, Reason: "unknown ordering strategy"}
	}
	f.chains[chainKey].SetOrdering(strategy)
	def.Ordering = strategy.Name()
	f.defs[chainKey] = def
	return nil
}

// SetProcessing swaps a managed chain's processing strategy without losing
// its steps.
func (f *Factory) SetProcessing(chainKey, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.defs[chainKey]
	if !ok {
		return &UnknownChainError{Key: chainKey}
	}
	strategy, valid := ProcessingByName(name)
	if !valid {
		return &SerializationFormatError{Format: name, Reason: "unknown processing strategy"}
	}
	f.chains[chainKey].SetProcessing(strategy)
	def.Processing = strategy.Name()
	f.defs[chainKey] = def
	return nil
}

// ExportChains serializes the full set of managed chain definitions, keyed
// by chain key, in the given format.
func (f *Factory) ExportChains(format Format) ([]byte, error) {
	f.mu.RLock()
	defs := make(map[string]Definition, len(f.defs))
	for k, d := range f.defs {
		defs[k] = d
	}
	f.mu.RUnlock()
	return Marshal(format, defs)
}

// LoadChains restores chains from an export produced by ExportChains. Every
// definition is validated and built before any factory state changes, so a
// corrupt payload (duplicate step keys, cycles, unknown callables) leaves
// the factory untouched.
func (f *Factory) LoadChains(data []byte, format Format) error {
	var defs map[string]Definition
	if err := Unmarshal(format, data, &defs); err != nil {
		return err
	}

	built := make(map[string]*Chain, len(defs))
	for key, def := range defs {
		if def.Key == "" {
			def.Key = key
		}
		c, err := f.build(def)
		if err != nil {
			return err
		}
		built[key] = c
		defs[key] = def
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for key, c := range built {
		f.chains[key] = c
		f.defs[key] = defs[key]
	}
	return nil
}
