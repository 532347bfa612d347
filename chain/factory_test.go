package chain

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/swarmchain/core"
)

func testResolver() CallableResolver {
	callables := map[string]core.Callable{
		"fetch_page": func(_ context.Context, args []any, _ map[string]any) (any, error) {
			return "content of " + args[0].(string), nil
		},
		"summarize": func(_ context.Context, args []any, _ map[string]any) (any, error) {
			return "summary: " + args[0].(string), nil
		},
		"upper": func(_ context.Context, args []any, _ map[string]any) (any, error) {
			return strings.ToUpper(args[0].(string)), nil
		},
	}
	return ResolverFunc(func(name string) (core.Callable, bool) {
		fn, ok := callables[name]
		return fn, ok
	})
}

func newTestFactory() *Factory {
	return NewFactory(func(o *FactoryOptions) { o.Resolver = testResolver() })
}

// -------------------- Build Tests --------------------

func TestFactory_BuildAndInvoke(t *testing.T) {
	f := newTestFactory()
	_, err := f.Build(summarizerDefinition())
	require.NoError(t, err)

	c, err := f.Get("fetch-summarize")
	require.NoError(t, err)
	out, err := c.Invoke(context.Background(), map[string]any{"url": "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "summary: content of https://example.com", out)
}

func TestFactory_BuildRejectsUnknownCallable(t *testing.T) {
	f := newTestFactory()
	def := summarizerDefinition()
	def.Steps[0].Callable = "nonexistent"

	_, err := f.Build(def)
	var unknownErr *UnknownCallableError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "nonexistent", unknownErr.Name)

	_, err = f.Get(def.Key)
	var chainErr *UnknownChainError
	assert.ErrorAs(t, err, &chainErr)
}

func TestFactory_BuildRejectsDeclaredOrderViolation(t *testing.T) {
	def := Definition{
		Key:      "backwards",
		Ordering: OrderingDeclared,
		Steps: []StepDefinition{
			{Key: "consume", Callable: "summarize", Args: []any{"@ref:page"}},
			{Key: "produce", Callable: "fetch_page", Args: []any{"here"}, Ref: "page"},
		},
	}

	f := newTestFactory()
	_, err := f.Build(def)
	var refErr *UnresolvedRefError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "consume", refErr.StepKey)

	data, err := Marshal(FormatJSON, map[string]Definition{def.Key: def})
	require.NoError(t, err)
	require.ErrorAs(t, f.LoadChains(data, FormatJSON), &refErr)
	assert.Empty(t, f.Keys())
}

func TestFactory_GetUnknownChain(t *testing.T) {
	f := newTestFactory()
	_, err := f.Get("ghost")
	var chainErr *UnknownChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, "ghost", chainErr.Key)
}

func TestFactory_Keys(t *testing.T) {
	f := newTestFactory()
	for _, key := range []string{"zeta", "alpha"} {
		def := summarizerDefinition()
		def.Key = key
		_, err := f.Build(def)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"alpha", "zeta"}, f.Keys())
}

// -------------------- Mutation Tests --------------------

func TestFactory_AddStepKeepsDefinitionInSync(t *testing.T) {
	f := newTestFactory()
	_, err := f.Build(summarizerDefinition())
	require.NoError(t, err)

	require.NoError(t, f.AddStep("fetch-summarize", StepDefinition{
		Key:      "shout",
		Callable: "upper",
		Args:     []any{"@ref:summary"},
		Ref:      "shouted",
	}))

	def, err := f.Definition("fetch-summarize")
	require.NoError(t, err)
	require.Len(t, def.Steps, 3)
	assert.Equal(t, "shout", def.Steps[2].Key)

	c, err := f.Get("fetch-summarize")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
}

func TestFactory_AddStepRevalidatesBeforeMutating(t *testing.T) {
	f := newTestFactory()
	_, err := f.Build(summarizerDefinition())
	require.NoError(t, err)

	// Duplicate key is rejected and neither the live chain nor the stored
	// definition changes.
	err = f.AddStep("fetch-summarize", StepDefinition{Key: "fetch", Callable: "upper"})
	var dupErr *DuplicateStepKeyError
	require.ErrorAs(t, err, &dupErr)

	def, err := f.Definition("fetch-summarize")
	require.NoError(t, err)
	assert.Len(t, def.Steps, 2)
	c, _ := f.Get("fetch-summarize")
	assert.Equal(t, 2, c.Len())
}

func TestFactory_RemoveStep(t *testing.T) {
	f := newTestFactory()
	_, err := f.Build(summarizerDefinition())
	require.NoError(t, err)

	require.NoError(t, f.RemoveStep("fetch-summarize", "summarize"))
	def, err := f.Definition("fetch-summarize")
	require.NoError(t, err)
	require.Len(t, def.Steps, 1)
	assert.Equal(t, "fetch", def.Steps[0].Key)

	var stepErr *UnknownStepError
	assert.ErrorAs(t, f.RemoveStep("fetch-summarize", "summarize"), &stepErr)
}

func TestFactory_SetStrategies(t *testing.T) {
	f := newTestFactory()
	_, err := f.Build(summarizerDefinition())
	require.NoError(t, err)

	require.NoError(t, f.SetOrdering("fetch-summarize", OrderingPriority))
	require.NoError(t, f.SetProcessing("fetch-summarize", ProcessingBestEffort))

	def, err := f.Definition("fetch-summarize")
	require.NoError(t, err)
	assert.Equal(t, OrderingPriority, def.Ordering)
	assert.Equal(t, ProcessingBestEffort, def.Processing)

	var formatErr *SerializationFormatError
	assert.ErrorAs(t, f.SetOrdering("fetch-summarize", "bogus"), &formatErr)
	assert.ErrorAs(t, f.SetProcessing("fetch-summarize", "bogus"), &formatErr)
}

func TestFactory_ResetDiscardsMutations(t *testing.T) {
	f := newTestFactory()
	_, err := f.Build(summarizerDefinition())
	require.NoError(t, err)

	c, err := f.Get("fetch-summarize")
	require.NoError(t, err)
	require.NoError(t, c.RemoveStep("summarize"))
	assert.Equal(t, 1, c.Len())

	restored, err := f.Reset("fetch-summarize")
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Len())
}

func TestFactory_Remove(t *testing.T) {
	f := newTestFactory()
	_, err := f.Build(summarizerDefinition())
	require.NoError(t, err)

	require.NoError(t, f.Remove("fetch-summarize"))
	var chainErr *UnknownChainError
	assert.ErrorAs(t, f.Remove("fetch-summarize"), &chainErr)
}

// -------------------- Export / Load Tests --------------------

func TestFactory_ExportLoadRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML, FormatCBOR} {
		src := newTestFactory()
		_, err := src.Build(summarizerDefinition())
		require.NoError(t, err, "format %s", format)

		data, err := src.ExportChains(format)
		require.NoError(t, err, "format %s", format)

		dst := newTestFactory()
		require.NoError(t, dst.LoadChains(data, format), "format %s", format)

		srcDef, _ := src.Definition("fetch-summarize")
		dstDef, err := dst.Definition("fetch-summarize")
		require.NoError(t, err, "format %s", format)
		assert.Equal(t, srcDef, dstDef, "format %s", format)

		// The restored chain executes identically.
		c, err := dst.Get("fetch-summarize")
		require.NoError(t, err, "format %s", format)
		out, err := c.Invoke(context.Background(), map[string]any{"url": "u"})
		require.NoError(t, err, "format %s", format)
		assert.Equal(t, "summary: content of u", out, "format %s", format)
	}
}

func TestFactory_LoadRejectsCorruptPayloadAtomically(t *testing.T) {
	src := newTestFactory()
	good := summarizerDefinition()
	good.Key = "good"
	_, err := src.Build(good)
	require.NoError(t, err)

	bad := summarizerDefinition()
	bad.Key = "bad"
	bad.Steps[0].Callable = "nonexistent"
	bad.Steps[1].Callable = "nonexistent"
	data, err := Marshal(FormatJSON, map[string]Definition{"good": good, "bad": bad})
	require.NoError(t, err)

	dst := newTestFactory()
	err = dst.LoadChains(data, FormatJSON)
	var unknownErr *UnknownCallableError
	require.ErrorAs(t, err, &unknownErr)

	// Nothing was registered.
	assert.Empty(t, dst.Keys())
}

func TestFactory_SetCapturesProgrammaticChain(t *testing.T) {
	f := newTestFactory()
	c := New("manual")
	require.NoError(t, c.AddCallable("shout", func(_ context.Context, args []any, _ map[string]any) (any, error) {
		return strings.ToUpper(args[0].(string)), nil
	}, WithArgs(Ref("text")), WithRef("loud")))

	f.Set(c, map[string]string{"shout": "upper"})

	def, err := f.Definition("manual")
	require.NoError(t, err)
	require.Len(t, def.Steps, 1)
	assert.Equal(t, "upper", def.Steps[0].Callable)
	assert.Equal(t, "@ref:text", def.Steps[0].Args[0])
}
