package server

import (
	"html/template"
	"net/http"
)

var toolsPage = template.Must(template.New("tools").Parse(`<html>
  <head>
    <title>MCP HTTP Server Tools</title>
    <style>
      body { font-family: Arial, sans-serif; margin: 40px; }
      .tool { background: #f5f5f5; padding: 15px; margin: 10px 0; border-radius: 5px; }
      .name { font-weight: bold; color: #333; }
      .desc { color: #666; }
    </style>
  </head>
  <body>
    <h1>MCP HTTP Server</h1>
    <p>Version {{.Version}}. JSON-RPC endpoint: <code>POST /mcp</code></p>
    <h2>Available Tools:</h2>
    {{range .Tools}}<div class="tool"><div class="name">{{.Name}}</div><div class="desc">{{.Description}}</div></div>
    {{end}}
  </body>
</html>
`))

// handleToolsPage renders the registered tools for humans.
func (s *Server) handleToolsPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := toolsPage.Execute(w, map[string]any{
		"Version": s.cfg.Version,
		"Tools":   s.registry.List(),
	})
	if err != nil {
		s.logger.Warn("failed to render tools page", "error", err)
	}
}
