package swarm

// AgentDefinition is the serializable description a SwarmFactory turns into
// a live agent: an implementation type with its builder configuration, the
// capability tags driving dispatch matching, the identifiers of required
// collaborators and an opaque execution context map.
type AgentDefinition struct {
	ID               string         `json:"id" yaml:"id"`
	Type             string         `json:"type" yaml:"type"`
	Configuration    map[string]any `json:"configuration,omitempty" yaml:"configuration,omitempty"`
	Capabilities     []string       `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Dependencies     []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	ExecutionContext map[string]any `json:"execution_context,omitempty" yaml:"execution_context,omitempty"`
}

// Definition is the serializable form of a whole swarm: its configuration
// plus the definitions of every agent, ordered by id. It round-trips
// losslessly through every codec format the chain package supports.
type Definition struct {
	Config Config            `json:"config" yaml:"config"`
	Agents []AgentDefinition `json:"agents" yaml:"agents"`
}
