// Package agent provides concrete agents satisfying the core.Agent contract:
// FunctionAgent wrapping a plain Go function, ModelAgent wrapping a
// predictive model and ToolAgent wrapping a schema-validated tool. All three
// share the BaseAgent identity plumbing and derive their cooperative, batch
// and streaming command variants from a single Invoke implementation.
package agent
