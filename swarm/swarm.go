package swarm

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/swarmchain/chain"
	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/logging"
	"github.com/hupe1980/swarmchain/trace"
)

// Routing policies selecting how many capable agents serve a request.
const (
	// RoutingBroadcast dispatches to every capable agent.
	RoutingBroadcast = "broadcast"
	// RoutingFirst dispatches to the single capable agent with the lowest id.
	RoutingFirst = "first"
)

// Config holds swarm-level configuration. All fields have working defaults.
type Config struct {
	// RoutingPolicy selects the dispatch fan-out. Defaults to broadcast.
	RoutingPolicy string `json:"routing_policy,omitempty" yaml:"routing_policy,omitempty"`

	// DispatchTimeout bounds one agent invocation within a dispatch. Zero
	// means unbounded.
	DispatchTimeout time.Duration `json:"dispatch_timeout,omitempty" yaml:"dispatch_timeout,omitempty"`
}

// Status is the aggregate health report of a swarm.
type Status struct {
	AgentCount       int    `json:"agent_count"`
	ActiveDispatches int64  `json:"active_dispatches"`
	RoutingPolicy    string `json:"routing_policy"`
}

// DispatchResult is the outcome of one agent within a dispatch.
type DispatchResult struct {
	AgentID string
	Output  any
	Err     error
}

// DispatchResponse aggregates the per-agent results of a dispatch, ordered
// by agent id.
type DispatchResponse struct {
	Results []DispatchResult
}

// Outputs returns the successful outputs keyed by agent id.
func (r *DispatchResponse) Outputs() map[string]any {
	out := make(map[string]any, len(r.Results))
	for _, res := range r.Results {
		if res.Err == nil {
			out[res.AgentID] = res.Output
		}
	}
	return out
}

// Options configures a Swarm instance.
type Options struct {
	// Config holds routing and timeout settings.
	Config Config

	// Factory builds agents from definitions for RegisterDefinition and
	// ImportConfiguration. Defaults to an empty factory.
	Factory *Factory

	// Tracer records one trace per dispatch. Nil disables tracing.
	Tracer *trace.Tracer

	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// Swarm composes an agent registry with callable-chain execution: external
// requests are matched against agent capabilities and executed through an
// ad-hoc chain, one step per selected agent, under the best-effort
// processing strategy so one agent's failure never hides its siblings'
// results.
type Swarm struct {
	registry *Registry
	factory  *Factory
	tracer   *trace.Tracer
	logger   logging.Logger

	mu     sync.RWMutex
	config Config
	defs   map[string]AgentDefinition

	active atomic.Int64
}

// New creates a Swarm.
func New(optFns ...func(o *Options)) *Swarm {
	opts := Options{
		Config: Config{RoutingPolicy: RoutingBroadcast},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config.RoutingPolicy == "" {
		opts.Config.RoutingPolicy = RoutingBroadcast
	}
	if opts.Factory == nil {
		opts.Factory = NewFactory()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Swarm{
		registry: NewRegistry(),
		factory:  opts.Factory,
		tracer:   opts.Tracer,
		logger:   opts.Logger,
		config:   opts.Config,
		defs:     make(map[string]AgentDefinition),
	}
}

// Registry exposes the swarm's agent registry.
func (s *Swarm) Registry() *Registry { return s.registry }

// Factory exposes the swarm's agent factory.
func (s *Swarm) Factory() *Factory { return s.factory }

// RegisterAgent adds a live agent to the registry.
func (s *Swarm) RegisterAgent(a core.Agent) error {
	return s.registry.Register(a)
}

// RegisterDefinition builds an agent from its definition and registers it.
// The definition is retained so the swarm configuration can be exported.
func (s *Swarm) RegisterDefinition(def AgentDefinition) (core.Agent, error) {
	a, err := s.factory.BuildAgent(def)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Register(a); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.defs[def.ID] = def
	s.mu.Unlock()
	return a, nil
}

// UpdateAgent atomically replaces a registered agent.
func (s *Swarm) UpdateAgent(id string, updated core.Agent) error {
	return s.registry.Update(id, updated)
}

// RemoveAgent removes an agent; in-flight dispatches referencing it run to
// completion against their snapshot.
func (s *Swarm) RemoveAgent(id string) error {
	if err := s.registry.Remove(id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.defs, id)
	s.mu.Unlock()
	return nil
}

// GetAgent returns the agent registered under id.
func (s *Swarm) GetAgent(id string) (core.Agent, error) {
	return s.registry.Get(id)
}

// ListAgents returns a snapshot of all registered agents ordered by id.
func (s *Swarm) ListAgents() []core.Agent {
	return s.registry.List()
}

// DispatchRequest routes the request to the agents whose capability set
// intersects its required capabilities and returns their aggregated
// responses. It fails with *NoCapableAgentError when no agent qualifies.
func (s *Swarm) DispatchRequest(ctx context.Context, req core.Request) (*DispatchResponse, error) {
	start := time.Now()
	s.active.Add(1)
	defer s.active.Add(-1)

	selected := s.registry.capable(req.RequiredCapabilities)
	if len(selected) == 0 {
		err := &NoCapableAgentError{Required: req.RequiredCapabilities.Tags()}
		s.logger.Error("dispatch failed", "required", req.RequiredCapabilities.Tags(), "err", err)
		return nil, err
	}

	cfg := s.Configuration()
	if cfg.RoutingPolicy == RoutingFirst {
		selected = selected[:1]
	}

	resp, err := s.dispatchViaChain(ctx, req, selected, cfg)
	s.logger.Debug("dispatch completed",
		"required", req.RequiredCapabilities.Tags(),
		"agents", len(selected),
		"duration", time.Since(start),
		"err", err,
	)
	return resp, err
}

// dispatchViaChain builds an ad-hoc chain with one step per selected agent
// and runs it best-effort, turning the per-step results into per-agent
// dispatch results.
func (s *Swarm) dispatchViaChain(ctx context.Context, req core.Request, selected []core.Agent, cfg Config) (*DispatchResponse, error) {
	c := chain.New("dispatch-"+uuid.NewString(), func(o *chain.Options) {
		o.Processing = chain.BestEffort{}
		o.Tracer = s.tracer
		o.Logger = s.logger
	})

	for _, a := range selected {
		step := chain.NewStep(a.ID(), s.agentCallable(a),
			chain.WithKwargs(req.Payload),
			chain.WithRef(a.ID()),
			chain.WithTimeout(cfg.DispatchTimeout),
		)
		if err := c.AddStep(step); err != nil {
			return nil, err
		}
	}

	res, err := c.Run(ctx, nil)
	if err != nil {
		return nil, err
	}

	results := make([]DispatchResult, 0, len(res.Steps))
	for _, sr := range res.Steps {
		dr := DispatchResult{AgentID: sr.Key, Err: sr.Err}
		if sr.Err == nil {
			if r, ok := sr.Output.(core.Response); ok {
				dr.Output = r.Output
			} else {
				dr.Output = sr.Output
			}
		}
		results = append(results, dr)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].AgentID < results[j].AgentID })
	return &DispatchResponse{Results: results}, nil
}

// agentCallable adapts an agent snapshot into a chain callable. The agent
// reference is captured at dispatch time, so registry mutations during the
// run never affect it.
func (s *Swarm) agentCallable(a core.Agent) core.Callable {
	return func(ctx context.Context, _ []any, kwargs map[string]any) (any, error) {
		return a.Invoke(ctx, core.Request{Payload: kwargs})
	}
}

// UpdateConfiguration replaces the swarm-level configuration.
func (s *Swarm) UpdateConfiguration(cfg Config) {
	if cfg.RoutingPolicy == "" {
		cfg.RoutingPolicy = RoutingBroadcast
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

// Configuration returns the current swarm-level configuration.
func (s *Swarm) Configuration() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Status reports aggregate swarm health.
func (s *Swarm) Status() Status {
	return Status{
		AgentCount:       s.registry.Len(),
		ActiveDispatches: s.active.Load(),
		RoutingPolicy:    s.Configuration().RoutingPolicy,
	}
}

// ExportConfiguration serializes the swarm configuration and the retained
// agent definitions, ordered by id, in the given format.
func (s *Swarm) ExportConfiguration(format chain.Format) ([]byte, error) {
	s.mu.RLock()
	def := Definition{Config: s.config, Agents: make([]AgentDefinition, 0, len(s.defs))}
	for _, ad := range s.defs {
		def.Agents = append(def.Agents, ad)
	}
	s.mu.RUnlock()
	sort.Slice(def.Agents, func(i, j int) bool { return def.Agents[i].ID < def.Agents[j].ID })
	return chain.Marshal(format, def)
}

// ImportConfiguration restores a swarm definition produced by
// ExportConfiguration: every agent is built before any registry mutation,
// so a corrupt payload leaves the swarm untouched. Imported agents replace
// same-id agents atomically and are registered otherwise.
func (s *Swarm) ImportConfiguration(data []byte, format chain.Format) error {
	var def Definition
	if err := chain.Unmarshal(format, data, &def); err != nil {
		return err
	}

	built := make([]core.Agent, len(def.Agents))
	for i, ad := range def.Agents {
		a, err := s.factory.BuildAgent(ad)
		if err != nil {
			return err
		}
		built[i] = a
	}

	s.UpdateConfiguration(def.Config)
	for i, a := range built {
		if err := s.registry.Register(a); err != nil {
			var dup *DuplicateAgentError
			if !errors.As(err, &dup) {
				return err
			}
			if err := s.registry.Update(a.ID(), a); err != nil {
				return err
			}
		}
		s.mu.Lock()
		s.defs[def.Agents[i].ID] = def.Agents[i]
		s.mu.Unlock()
	}
	return nil
}
