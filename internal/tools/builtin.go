package tools

import "http-mcp-server/internal/probe"

// Builtin returns the server's tool registry in advertised order.
func Builtin(info ServerInfo, prober *probe.Client) (*Registry, error) {
	return NewRegistry(
		NewServerInfo(info),
		NewCalculate(),
		NewFormat(),
		NewHealthCheck(prober, ""),
	)
}
