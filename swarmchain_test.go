package swarmchain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/swarmchain/chain"
	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/internal/testutil"
)

func TestSwarmChain_ChainLifecycle(t *testing.T) {
	sc := New()
	require.NoError(t, sc.RegisterFunc("fetch_page", func(_ context.Context, args []any, _ map[string]any) (any, error) {
		return "content of " + args[0].(string), nil
	}))
	require.NoError(t, sc.RegisterFunc("summarize", func(_ context.Context, args []any, _ map[string]any) (any, error) {
		return "summary: " + args[0].(string), nil
	}))

	def := testutil.NewDefinitionBuilder("pipeline").
		Ordering(chain.OrderingDependency).
		Output("summary").
		Step("fetch", "fetch_page", func(s *chain.StepDefinition) {
			s.Args = []any{"@ref:url"}
			s.Ref = "page"
		}).
		Step("summarize", "summarize", func(s *chain.StepDefinition) {
			s.Args = []any{"@ref:page"}
			s.Ref = "summary"
		}).
		Build()

	_, err := sc.BuildChain(def)
	require.NoError(t, err)

	res, err := sc.InvokeChain(context.Background(), "pipeline", map[string]any{"url": "u"})
	require.NoError(t, err)
	assert.Equal(t, "summary: content of u", res.Output)

	// Every chain run carries a sealed trace from the shared tracer.
	require.NotNil(t, res.Trace)
	assert.True(t, res.Trace.Sealed())
	assert.Len(t, res.Trace.Spans(), 2)
}

func TestSwarmChain_InvokeUnknownChain(t *testing.T) {
	sc := New()
	_, err := sc.InvokeChain(context.Background(), "ghost", nil)
	var chainErr *chain.UnknownChainError
	require.ErrorAs(t, err, &chainErr)
}

func TestSwarmChain_Dispatch(t *testing.T) {
	sc := New()
	require.NoError(t, sc.RegisterAgent(testutil.NewAgentBuilder("translator").
		Capabilities("translate").Reply("bonjour").Build()))

	resp, err := sc.Dispatch(context.Background(), core.Request{
		RequiredCapabilities: core.NewCapabilitySet("translate"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "bonjour", resp.Results[0].Output)
}

func TestSwarmChain_DefaultCollaborators(t *testing.T) {
	sc := New()
	assert.NotNil(t, sc.Functions())
	assert.NotNil(t, sc.Chains())
	assert.NotNil(t, sc.Tracer())
	assert.NotNil(t, sc.Swarm())
}
