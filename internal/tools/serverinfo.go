package tools

import (
	"context"
	"encoding/json"
)

// ServerInfo is the static identity reported by get_server_info.
type ServerInfo struct {
	Name     string
	Version  string
	Endpoint string
}

type serverInfoReport struct {
	ServerName string `json:"server_name"`
	Version    string `json:"version"`
	Status     string `json:"status"`
	Protocol   string `json:"protocol"`
	Endpoint   string `json:"endpoint,omitempty"`
	Message    string `json:"message"`
}

type serverInfoTool struct {
	report string
}

// NewServerInfo returns the get_server_info tool. The report is rendered once.
func NewServerInfo(info ServerInfo) Tool {
	b, _ := json.MarshalIndent(serverInfoReport{
		ServerName: info.Name,
		Version:    info.Version,
		Status:     "running",
		Protocol:   "HTTP",
		Endpoint:   info.Endpoint,
		Message:    "Hello from Remote MCP Server!",
	}, "", "  ")
	return &serverInfoTool{report: string(b)}
}

func (t *serverInfoTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "get_server_info",
		Description: "Get server information, status and configuration",
		InputSchema: Schema{
			Type:       "object",
			Properties: map[string]Property{},
		},
	}
}

func (t *serverInfoTool) Execute(context.Context, Arguments) (string, error) {
	return t.report, nil
}
