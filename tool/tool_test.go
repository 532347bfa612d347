package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/swarmchain/core"
	"github.com/hupe1980/swarmchain/internal/util"
)

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	// Required only includes non-pointer, non-omitempty exported fields
	req, _ := schema["required"].([]string)
	if req == nil { // reflection may produce []any
		ifaceReq, _ := schema["required"].([]any)
		for _, v := range ifaceReq {
			req = append(req, v.(string))
		}
	}
	assert.ElementsMatch(t, []string{"a"}, req)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror possible JSON decoded schema shape
		"required": []any{"x"},
	}

	// Success
	err := util.ValidateParameters(map[string]any{"x": 5}, schema)
	assert.NoError(t, err)

	// Missing required
	err = util.ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*util.ValidationError); ok {
		assert.Equal(t, "x", vErr.Field)
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// Wrong type
	err = util.ValidateParameters(map[string]any{"x": "not-int"}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*util.ValidationError); ok {
		assert.Contains(t, vErr.Message, "expected type integer")
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ context.Context, args map[string]any) (any, error) {
		a := args["a"].(float64)
		b := args["b"].(float64)
		return a + b, nil
	})

	result, err := sumTool.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"required": []any{"a"},
	}
	tTool := NewFunctionTool("test", "Test", params, func(_ context.Context, _ map[string]any) (any, error) {
		return 0, nil
	})
	_, err := tTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeValidation, toolErr.Code)
	assert.Equal(t, "test", toolErr.Tool)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	tTool := NewFunctionTool("flaky", "Always fails", map[string]any{"type": "object"},
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("boom")
		})
	_, err := tTool.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
}

func TestFunctionTool_PreservesCustomToolError(t *testing.T) {
	custom := &ToolError{Tool: "custom", Message: "rate limited", Code: "RATE_LIMITED"}
	tTool := NewFunctionTool("custom", "Custom error", map[string]any{"type": "object"},
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, custom
		})
	_, err := tTool.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "RATE_LIMITED", toolErr.Code)
}

// -------------------- FunctionRegistry Tests --------------------

func sumDefinition() FunctionDefinition {
	return FunctionDefinition{
		Identifier: "add",
		Parameters: []ParameterSpec{
			{Name: "a", Type: "integer", Required: true},
			{Name: "b", Type: "integer", Default: 10},
		},
		ReturnType: "integer",
		Callable: func(_ context.Context, _ []any, kwargs map[string]any) (any, error) {
			return kwargs["a"].(int) + kwargs["b"].(int), nil
		},
	}
}

func TestFunctionRegistry_Register(t *testing.T) {
	r := NewFunctionRegistry()
	require.NoError(t, r.Register(sumDefinition()))

	err := r.Register(sumDefinition())
	var dupErr *DuplicateFunctionError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "add", dupErr.Identifier)

	assert.Error(t, r.Register(FunctionDefinition{Identifier: "no-callable"}))
	assert.Error(t, r.Register(FunctionDefinition{Callable: func(context.Context, []any, map[string]any) (any, error) { return nil, nil }}))

	assert.Equal(t, []string{"add"}, r.Identifiers())
	def, ok := r.Get("add")
	require.True(t, ok)
	assert.Equal(t, "integer", def.ReturnType)
}

func TestFunctionRegistry_ResolveBindsParameters(t *testing.T) {
	r := NewFunctionRegistry()
	require.NoError(t, r.Register(sumDefinition()))

	fn, ok := r.Resolve("add")
	require.True(t, ok)

	// Positional args bind by spec order; the default fills b.
	out, err := fn(context.Background(), []any{5}, nil)
	require.NoError(t, err)
	assert.Equal(t, 15, out)

	// Kwargs override defaults.
	out, err = fn(context.Background(), nil, map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, 3, out)

	// Missing required parameter fails before the callable runs.
	_, err = fn(context.Background(), nil, map[string]any{"b": 2})
	var vErr *util.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "a", vErr.Field)

	// Type mismatch is rejected.
	_, err = fn(context.Background(), nil, map[string]any{"a": "one"})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "expected type integer")

	_, ok = r.Resolve("ghost")
	assert.False(t, ok)
}

func TestFunctionRegistry_AsTool(t *testing.T) {
	r := NewFunctionRegistry()
	require.NoError(t, r.Register(sumDefinition()))

	tl, err := r.AsTool("add", "Adds two integers")
	require.NoError(t, err)
	assert.Equal(t, "add", tl.Name())

	params := tl.Parameters()
	props, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")

	out, err := tl.Call(context.Background(), map[string]any{"a": 2, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, 5, out)

	_, err = r.AsTool("ghost", "")
	assert.Error(t, err)
}

// Interface compliance (compile-time assertion)
var _ core.Tool = (*FunctionTool)(nil)
