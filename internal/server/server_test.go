package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"http-mcp-server/internal/mcp"
	"http-mcp-server/internal/metrics"
	"http-mcp-server/internal/tools"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	registry, err := tools.Builtin(tools.ServerInfo{Name: "MCP HTTP Server", Version: "1.0.0"}, nil)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := mcp.NewDispatcher(mcp.Config{
		Registry: registry,
		Server:   mcp.Implementation{Name: "http-mcp-server", Version: "1.0.0"},
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	return New(cfg, d, registry, logger)
}

func postMCP(t *testing.T, s *Server, body string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	want := map[string]string{"status": "healthy", "service": "mcp-http-server", "protocol": "MCP over HTTP"}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s = %q, want %q", k, body[k], v)
		}
	}
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, Config{Version: "2.3.4"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["version"] != "2.3.4" || body["mcp_endpoint"] != "/mcp" || body["status"] != "running" {
		t.Fatalf("unexpected root body: %v", body)
	}
}

func TestToolsPage(t *testing.T) {
	s := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("expected html, got %q", rr.Header().Get("Content-Type"))
	}
	body := rr.Body.String()
	for _, name := range []string{"get_server_info", "calculate_operation", "format_text", "check_remote_health"} {
		if !strings.Contains(body, name) {
			t.Errorf("tools page missing %s", name)
		}
	}
}

func TestMCPFlow(t *testing.T) {
	s := newTestServer(t, Config{})

	resp := postMCP(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	result := resp["result"].(map[string]any)
	if result["protocolVersion"] != "2024-11-05" {
		t.Fatalf("unexpected protocol version %v", result["protocolVersion"])
	}

	resp = postMCP(t, s, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	if _, ok := resp["id"]; !ok || resp["id"] != nil {
		t.Fatalf("expected null id, got %v", resp["id"])
	}

	resp = postMCP(t, s, `{"jsonrpc":"2.0","id":"list","method":"tools/list"}`)
	list := resp["result"].(map[string]any)["tools"].([]any)
	if len(list) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(list))
	}

	body, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/call",
		"params":  map[string]any{"name": "calculate_operation", "arguments": map[string]any{"operation": "(3+4)/2"}},
	})
	resp = postMCP(t, s, string(body))
	content := resp["result"].(map[string]any)["content"].([]any)
	if text := content[0].(map[string]any)["text"]; text != "Calculation: (3+4)/2 = 3.5" {
		t.Fatalf("unexpected text %v", text)
	}
	if resp["id"] != float64(2) {
		t.Fatalf("unexpected id %v", resp["id"])
	}
}

func TestMCPUnknownToolIsNotAProtocolError(t *testing.T) {
	s := newTestServer(t, Config{})
	resp := postMCP(t, s, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"sam_search","arguments":{}}}`)
	if _, ok := resp["error"]; ok {
		t.Fatalf("unexpected protocol error: %v", resp["error"])
	}
	content := resp["result"].(map[string]any)["content"].([]any)
	if text := content[0].(map[string]any)["text"]; text != "Error: Unknown tool 'sam_search'" {
		t.Fatalf("unexpected text %v", text)
	}
}

func TestMCPProtocolErrors(t *testing.T) {
	s := newTestServer(t, Config{})

	resp := postMCP(t, s, `{"jsonrpc":"2.0","id":"u","method":"foo/bar"}`)
	e := resp["error"].(map[string]any)
	if e["code"] != float64(-32000) || e["message"] != "Unsupported MCP method: foo/bar" {
		t.Fatalf("unexpected error %v", e)
	}
	if resp["id"] != "u" {
		t.Fatalf("unexpected id %v", resp["id"])
	}

	resp = postMCP(t, s, `{"jsonrpc":"2.0","id":1,`)
	e = resp["error"].(map[string]any)
	if e["code"] != float64(-32000) || !strings.HasPrefix(e["message"].(string), "invalid JSON-RPC request") {
		t.Fatalf("unexpected error %v", e)
	}
	if v, ok := resp["id"]; !ok || v != nil {
		t.Fatalf("expected null id, got %v", v)
	}

	big := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"format_text","arguments":{"text":"` +
		strings.Repeat("a", MaxRequestBodySize) + `"}}}`
	resp = postMCP(t, s, big)
	e = resp["error"].(map[string]any)
	if e["message"] != "request body too large" {
		t.Fatalf("unexpected error %v", e)
	}
}

func TestMCPMistypedFieldsKeepID(t *testing.T) {
	s := newTestServer(t, Config{})

	resp := postMCP(t, s, `{"jsonrpc":"2.0","id":7,"method":5}`)
	e := resp["error"].(map[string]any)
	if e["message"] != "Unsupported MCP method: 5" {
		t.Fatalf("unexpected error %v", e)
	}
	if resp["id"] != float64(7) {
		t.Fatalf("expected id 7, got %v", resp["id"])
	}

	resp = postMCP(t, s, `{"jsonrpc":2.0,"id":7,"method":"tools/list"}`)
	if _, ok := resp["error"]; !ok {
		t.Fatalf("expected error for numeric jsonrpc, got %v", resp)
	}
	if resp["id"] != float64(7) {
		t.Fatalf("expected id 7, got %v", resp["id"])
	}
}

func TestMCPRejectsTrailingData(t *testing.T) {
	s := newTestServer(t, Config{})

	for _, body := range []string{
		`{"jsonrpc":"2.0","id":3,"method":"tools/list"}{"jsonrpc":"2.0","id":4,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/list"} }`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/list"} garbage`,
	} {
		resp := postMCP(t, s, body)
		e, ok := resp["error"].(map[string]any)
		if !ok {
			t.Fatalf("expected error for %q, got %v", body, resp)
		}
		if !strings.HasPrefix(e["message"].(string), "invalid JSON-RPC request") {
			t.Fatalf("unexpected error %v", e)
		}
		if resp["id"] != float64(3) {
			t.Fatalf("expected id 3, got %v", resp["id"])
		}
	}

	resp := postMCP(t, s, "{\"jsonrpc\":\"2.0\",\"id\":3,\"method\":\"tools/list\"}\n\n")
	if _, ok := resp["result"]; !ok {
		t.Fatalf("trailing whitespace should be accepted, got %v", resp)
	}
}

func TestMCPRejectsGet(t *testing.T) {
	s := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	req.Header.Set("Origin", "https://claude.ai")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS headers, got %v", rr.Header())
	}

	body := bytes.NewBufferString(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	req = httptest.NewRequest(http.MethodPost, "/mcp", body)
	req.Header.Set("Origin", "https://claude.ai")
	rr = httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS headers on POST, got %v", rr.Header())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code == http.StatusOK {
		t.Fatalf("metrics should be disabled without a handler")
	}

	m := metrics.New()
	s = newTestServer(t, Config{Metrics: m.Handler()})
	rr = httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
