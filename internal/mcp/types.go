package mcp

import (
	"encoding/json"

	"http-mcp-server/internal/tools"
)

// JSONRPCVersion is the only protocol version accepted and emitted.
const JSONRPCVersion = "2.0"

// ProtocolVersion is the MCP revision advertised by initialize.
const ProtocolVersion = "2024-11-05"

// CodeServerError is used for every protocol-level failure.
const CodeServerError = -32000

// Request is an inbound JSON-RPC call. ID is kept raw so it can be echoed
// byte for byte; it is nil when the caller omitted it.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`

	// versionNotString is set when jsonrpc was present but not a JSON string.
	versionNotString bool
}

// UnmarshalJSON decodes method and jsonrpc loosely. A non-string method keeps
// its raw JSON text so it is reported as unsupported, and the id survives a
// mistyped envelope.
func (r *Request) UnmarshalJSON(data []byte) error {
	var wire struct {
		JSONRPC json.RawMessage `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Method  json.RawMessage `json:"method"`
		Params  json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var isString bool
	*r = Request{ID: wire.ID, Params: wire.Params}
	r.Method, _ = looseString(wire.Method)
	r.JSONRPC, isString = looseString(wire.JSONRPC)
	r.versionNotString = !isString
	return nil
}

// looseString returns the string value of raw, or raw's JSON text with ok
// false when it is not a string. Absent and null read as "".
func looseString(raw json.RawMessage) (s string, ok bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", true
	}
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), false
}

// IsNotification reports whether the request carries no id.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

// Response is an outbound JSON-RPC envelope. Exactly one of Result and Error
// is set. A nil ID is written as null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// NewResult wraps result in a success envelope for id.
func NewResult(id json.RawMessage, result any) *Response {
	if result == nil {
		result = struct{}{}
	}
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

// NewError wraps a protocol-level failure in an error envelope for id.
func NewError(id json.RawMessage, code int, message string) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	}
}

// Implementation identifies the server in the initialize handshake.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerCapabilities advertises the feature areas the server speaks. Each is
// an empty object.
type ServerCapabilities struct {
	Tools     struct{} `json:"tools"`
	Resources struct{} `json:"resources"`
	Prompts   struct{} `json:"prompts"`
	Logging   struct{} `json:"logging"`
}

// InitializeResult is the result of initialize.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
}

// InitializeParams is the subset of initialize params the server reads.
type InitializeParams struct {
	ProtocolVersion string          `json:"protocolVersion"`
	ClientInfo      *Implementation `json:"clientInfo,omitempty"`
}

// ListToolsResult is the result of tools/list.
type ListToolsResult struct {
	Tools []tools.Descriptor `json:"tools"`
}

// CallToolParams are the params of tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments tools.Arguments `json:"arguments,omitempty"`
}

// Content is one element of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult is the result of tools/call. Tool failures are reported as
// text content, never as a protocol error.
type CallToolResult struct {
	Content []Content `json:"content"`
}

// TextResult builds a single-element text result.
func TextResult(text string) CallToolResult {
	return CallToolResult{Content: []Content{{Type: "text", Text: text}}}
}
