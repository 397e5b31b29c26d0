// Package tools defines the tool contract, the static tool registry and the
// built-in tool executors.
package tools

import (
	"context"
	"fmt"
)

// Property describes one input argument in a tool's schema.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// Schema is the JSON-Schema subset used for tool inputs.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Descriptor is the public, immutable description of a tool.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"inputSchema"`
}

// Tool is a named unit of server-side functionality.
//
// Execute returns the text result on success. A tool-level problem (bad
// arguments, evaluation failure, unreachable host) is reported as a
// *Failure; any other error is treated by callers as an internal fault.
type Tool interface {
	Descriptor() Descriptor
	Execute(ctx context.Context, args Arguments) (string, error)
}

// Arguments holds the decoded arguments of a single tool call.
type Arguments map[string]any

// String returns the string argument named key. present is false when the key
// is missing or null. A non-string value yields an InvalidArgument failure.
func (a Arguments) String(key string) (value string, present bool, err error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", true, Failf(KindInvalidArgument, "%s must be a string, got %T", key, v)
	}
	return s, true, nil
}

// Kind classifies a tool failure.
type Kind int

const (
	KindMissingArgument Kind = iota + 1
	KindInvalidArgument
	KindEvaluation
	KindTimeout
	KindNetwork
	KindUnknownTool
)

func (k Kind) String() string {
	switch k {
	case KindMissingArgument:
		return "missing_argument"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindEvaluation:
		return "evaluation_error"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network_error"
	case KindUnknownTool:
		return "unknown_tool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Failure is a tool-level error. Its message is shown to the caller as the
// tool's text output, so it must be a single human-readable line.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// Failf builds a Failure with a formatted message.
func Failf(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// UnknownTool is the failure reported for a name that resolves to no tool.
func UnknownTool(name string) *Failure {
	return Failf(KindUnknownTool, "Unknown tool '%s'", name)
}
