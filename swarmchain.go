// Package swarmchain provides a high-level façade over the callable-chain
// engine, the trace subsystem and the agent swarm, enabling rapid
// construction of capability-routed multi-agent pipelines. Most applications
// interact with this package by:
//  1. Creating a SwarmChain via New() (optionally overriding the logger,
//     tracer or swarm configuration)
//  2. Registering callables on the function registry and agents on the swarm
//  3. Building chains from definitions (or assembling them in code) and
//     invoking them, or dispatching requests against agent capabilities
//
// The façade delegates chain execution to chain.Chain and dispatch to
// swarm.Swarm while keeping setup ergonomics concise. All defaults are safe
// for local development and testing.
package swarmchain

import (
	"context"

	"github.com/hupe1980/swarmchain/chain"
	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/logging"
	"github.com/hupe1980/swarmchain/swarm"
	"github.com/hupe1980/swarmchain/tool"
	"github.com/hupe1980/swarmchain/trace"
)

// Options configures the SwarmChain instance.
type Options struct {
	// SwarmConfig holds routing and per-dispatch timeout settings.
	SwarmConfig swarm.Config

	// Functions is the callable registry chains are resolved against.
	// Defaults to a fresh registry.
	Functions *tool.FunctionRegistry

	// AgentFactory builds agents from declarative definitions. Defaults to
	// an empty factory.
	AgentFactory *swarm.Factory

	// Tracer records one trace per chain run and per dispatch. Defaults to
	// a tracer sharing the instance logger.
	Tracer *trace.Tracer

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// SwarmChain is the high-level façade aggregating the chain factory, the
// function registry, the tracer and the swarm.
type SwarmChain struct {
	opts      Options
	functions *tool.FunctionRegistry
	chains    *chain.Factory
	tracer    *trace.Tracer
	swarm     *swarm.Swarm
}

// New creates a new SwarmChain instance with optional overrides. Any unset
// collaborator is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *SwarmChain {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Functions == nil {
		opts.Functions = tool.NewFunctionRegistry()
	}

	if opts.Tracer == nil {
		opts.Tracer = trace.New(func(o *trace.Options) {
			o.Logger = opts.Logger
		})
	}

	chains := chain.NewFactory(func(o *chain.FactoryOptions) {
		o.Resolver = opts.Functions
		o.Tracer = opts.Tracer
		o.Logger = opts.Logger
	})

	sw := swarm.New(func(o *swarm.Options) {
		o.Config = opts.SwarmConfig
		o.Factory = opts.AgentFactory
		o.Tracer = opts.Tracer
		o.Logger = opts.Logger
	})

	return &SwarmChain{
		opts:      opts,
		functions: opts.Functions,
		chains:    chains,
		tracer:    opts.Tracer,
		swarm:     sw,
	}
}

// Functions returns the callable registry chain definitions resolve against.
func (sc *SwarmChain) Functions() *tool.FunctionRegistry { return sc.functions }

// Chains returns the chain factory.
func (sc *SwarmChain) Chains() *chain.Factory { return sc.chains }

// Tracer returns the shared tracer.
func (sc *SwarmChain) Tracer() *trace.Tracer { return sc.tracer }

// Swarm returns the agent swarm.
func (sc *SwarmChain) Swarm() *swarm.Swarm { return sc.swarm }

// RegisterFunc registers a callable under an identifier so chain definitions
// can reference it by name.
func (sc *SwarmChain) RegisterFunc(identifier string, fn core.Callable) error {
	return sc.functions.RegisterFunc(identifier, fn)
}

// RegisterAgent adds an agent to the swarm registry.
func (sc *SwarmChain) RegisterAgent(a core.Agent) error {
	return sc.swarm.RegisterAgent(a)
}

// BuildChain validates a definition and registers the built chain with the
// factory.
func (sc *SwarmChain) BuildChain(def chain.Definition) (*chain.Chain, error) {
	return sc.chains.Build(def)
}

// InvokeChain runs a managed chain synchronously with the given input.
func (sc *SwarmChain) InvokeChain(ctx context.Context, key string, input map[string]any) (*chain.Result, error) {
	c, err := sc.chains.Get(key)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, input)
}

// Dispatch routes a request to every registered agent whose capabilities
// intersect the request's required set.
func (sc *SwarmChain) Dispatch(ctx context.Context, req core.Request) (*swarm.DispatchResponse, error) {
	return sc.swarm.DispatchRequest(ctx, req)
}
