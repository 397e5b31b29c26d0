// Package mcp implements the JSON-RPC method dispatcher for the MCP tool protocol.
//
// A Dispatcher turns one Request into one Response. It holds no per-request
// state, so a single instance serves any number of concurrent callers.
//
// Failures come in two tiers. Protocol failures (unsupported method,
// malformed params, an executor that panics or returns a non-tool error)
// produce an error envelope with CodeServerError. Tool failures (bad
// arguments, evaluation errors, unknown tool, unreachable host) produce a
// normal result whose text starts with "Error: ".
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"http-mcp-server/internal/tools"
)

// Request outcomes reported to the Observer.
const (
	OutcomeOK        = "ok"
	OutcomeToolError = "tool_error"
	OutcomeError     = "error"
)

// OutcomePanic is the tool call result recorded when an executor panics.
const OutcomePanic = "panic"

// Observer receives dispatch measurements. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveRequest(method, outcome string, elapsed time.Duration)
	ObserveToolCall(tool, result string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, string, time.Duration)  {}
func (nopObserver) ObserveToolCall(string, string, time.Duration) {}

// Config holds the dispatcher's collaborators.
type Config struct {
	Registry *tools.Registry
	Server   Implementation
	Logger   *slog.Logger
	Observer Observer
}

// Dispatcher routes JSON-RPC requests to protocol handlers and tools.
type Dispatcher struct {
	registry *tools.Registry
	server   Implementation
	logger   *slog.Logger
	observer Observer
}

// NewDispatcher creates a dispatcher with the given configuration.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Server.Name == "" {
		return nil, errors.New("server name is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Dispatcher{
		registry: cfg.Registry,
		server:   cfg.Server,
		logger:   logger,
		observer: observer,
	}, nil
}

// Dispatch handles one request. It always returns a response carrying the
// request's id, including when a handler panics.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (resp *Response) {
	start := time.Now()
	method := ParseMethod(req.Method)
	outcome := OutcomeOK

	d.logger.Debug("MCP request", "method", req.Method, "id", string(req.ID))

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("MCP handler panicked", "method", req.Method, "panic", r)
			resp = NewError(req.ID, CodeServerError, fmt.Sprint(r))
		}
		if resp.Error != nil {
			outcome = OutcomeError
		}
		d.observer.ObserveRequest(method.String(), outcome, time.Since(start))
	}()

	if req.versionNotString || (req.JSONRPC != "" && req.JSONRPC != JSONRPCVersion) {
		return NewError(req.ID, CodeServerError, fmt.Sprintf("Unsupported JSON-RPC version: %s", req.JSONRPC))
	}

	result, toolFailed, err := d.route(ctx, method, req)
	if err != nil {
		d.logger.Warn("MCP error", "method", req.Method, "error", err)
		return NewError(req.ID, CodeServerError, err.Error())
	}
	if toolFailed {
		outcome = OutcomeToolError
	}
	return NewResult(req.ID, result)
}

func (d *Dispatcher) route(ctx context.Context, method Method, req *Request) (any, bool, error) {
	switch method {
	case MethodInitialize:
		return d.initialize(req), false, nil
	case MethodToolsList:
		return ListToolsResult{Tools: d.registry.List()}, false, nil
	case MethodToolsCall:
		return d.callTool(ctx, req)
	case MethodInitialized:
		return struct{}{}, false, nil
	case MethodUnsupported:
	}
	return nil, false, &Error{Code: CodeServerError, Message: "Unsupported MCP method: " + req.Method}
}

func (d *Dispatcher) initialize(req *Request) InitializeResult {
	if hasParams(req.Params) {
		var params InitializeParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			d.logger.Debug("ignoring malformed initialize params", "error", err)
		} else if params.ClientInfo != nil {
			d.logger.Info("MCP client initialized",
				"client", params.ClientInfo.Name,
				"client_version", params.ClientInfo.Version,
				"protocol_version", params.ProtocolVersion,
			)
		}
	}
	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo:      d.server,
	}
}

// callTool reports tool failures as text. Only malformed params and
// non-Failure errors escape as protocol errors.
func (d *Dispatcher) callTool(ctx context.Context, req *Request) (any, bool, error) {
	var params CallToolParams
	if hasParams(req.Params) {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, false, fmt.Errorf("invalid tools/call params: %w", err)
		}
	}
	args := params.Arguments
	if args == nil {
		args = tools.Arguments{}
	}

	logger := d.logger.With("tool", params.Name, "call_id", uuid.NewString())

	tool, ok := d.registry.Resolve(params.Name)
	if !ok {
		f := tools.UnknownTool(params.Name)
		logger.Warn("unknown tool requested")
		d.observer.ObserveToolCall("unknown", f.Kind.String(), 0)
		return failureResult(f), true, nil
	}

	logger.Debug("executing tool", "args", map[string]any(args))
	start := time.Now()
	text, err := d.execute(ctx, tool, params.Name, args, start)
	elapsed := time.Since(start)

	if err != nil {
		var f *tools.Failure
		if errors.As(err, &f) {
			logger.Info("tool failed", "kind", f.Kind.String(), "error", f.Message, "elapsed", elapsed)
			d.observer.ObserveToolCall(params.Name, f.Kind.String(), elapsed)
			return failureResult(f), true, nil
		}
		logger.Error("tool execution error", "error", err, "elapsed", elapsed)
		d.observer.ObserveToolCall(params.Name, "internal", elapsed)
		return nil, false, err
	}

	logger.Debug("tool finished", "elapsed", elapsed)
	d.observer.ObserveToolCall(params.Name, OutcomeOK, elapsed)
	return TextResult(text), false, nil
}

// execute runs tool, recording a panic against it before the panic unwinds
// to Dispatch.
func (d *Dispatcher) execute(ctx context.Context, tool tools.Tool, name string, args tools.Arguments, start time.Time) (string, error) {
	defer func() {
		if r := recover(); r != nil {
			d.observer.ObserveToolCall(name, OutcomePanic, time.Since(start))
			panic(r)
		}
	}()
	return tool.Execute(ctx, args)
}

func failureResult(f *tools.Failure) CallToolResult {
	return TextResult("Error: " + f.Message)
}

func hasParams(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
