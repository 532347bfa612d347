// Package tool implements the function-calling subsystem: schema-validated
// function tools satisfying the core.Tool contract, and a FunctionRegistry
// of declarative function definitions resolvable into chain callables by
// identifier.
package tool

import (
	"fmt"

	"github.com/hupe1980/swarmchain/internal/util"
)

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed [%s]: %s", e.Tool, e.Code, e.Message)
}

// Error codes used by FunctionTool for consistent error categorization.
const (
	// CodeValidation indicates a schema / argument mismatch.
	CodeValidation = "VALIDATION_ERROR"
	// CodeExecution indicates the underlying function returned an error.
	CodeExecution = "EXECUTION_ERROR"
)
