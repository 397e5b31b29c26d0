package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("MCP_CONFIG", "")
	t.Setenv("MCP_LOG_LEVEL", "error")
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestVersionCmd(t *testing.T) {
	assert.Equal(t, "http-mcp-server "+version+"\n", execute(t, "version"))
}

func TestCallCmd(t *testing.T) {
	out := execute(t, "call", "calculate_operation", "--args", `{"operation":"2 + 3 * 4"}`)

	var resp struct {
		ID     int `json:"id"`
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.ID)
	require.Len(t, resp.Result.Content, 1)
	assert.Equal(t, "Calculation: 2 + 3 * 4 = 14", resp.Result.Content[0].Text)
}

func TestCallCmdToolFailure(t *testing.T) {
	out := execute(t, "call", "format_text")
	assert.Contains(t, out, "Error: Text parameter is required")
}

func TestCallCmdBadArgs(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"call", "format_text", "--args", "{not json"})
	assert.ErrorContains(t, root.Execute(), "parsing --args")
}

func TestToolsCmd(t *testing.T) {
	out := execute(t, "tools")
	for _, name := range []string{"get_server_info", "calculate_operation", "format_text", "check_remote_health"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "--operation")
}

func TestPrintBanner(t *testing.T) {
	t.Setenv("MCP_CONFIG", "")
	t.Setenv("MCP_HOST", "127.0.0.1")
	t.Setenv("MCP_PORT", "9191")
	t.Setenv("MCP_PUBLIC_URL", "")
	t.Setenv("MCP_TLS_CERT_FILE", "")
	t.Setenv("MCP_TLS_KEY_FILE", "")
	configPath = ""
	rt, err := newApp()
	require.NoError(t, err)

	var out bytes.Buffer
	printBanner(&out, rt)
	assert.Contains(t, out.String(), "version: "+version)
	assert.Contains(t, out.String(), "Listen:    127.0.0.1:9191")
	assert.Contains(t, out.String(), "MCP:       http://127.0.0.1:9191/mcp")
	assert.Contains(t, out.String(), "Tools:     4 registered")
}
