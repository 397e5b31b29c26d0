package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"http-mcp-server/internal/mcp"
	"http-mcp-server/internal/tools"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools this server exposes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newApp()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			name := color.New(color.FgCyan, color.Bold)
			gray := color.New(color.FgHiBlack)
			for _, d := range rt.registry.List() {
				name.Fprintln(out, d.Name)
				fmt.Fprintf(out, "  %s\n", d.Description)
				for _, arg := range argumentNames(d.InputSchema) {
					p := d.InputSchema.Properties[arg]
					gray.Fprintf(out, "  --%s (%s) %s\n", arg, p.Type, p.Description)
				}
			}
			return nil
		},
	}
}

func argumentNames(s tools.Schema) []string {
	names := make([]string, 0, len(s.Properties))
	for n := range s.Properties {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newCallCmd() *cobra.Command {
	var rawArgs string
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke a tool once and print the JSON-RPC response",
		Example: `  http-mcp-server call calculate_operation --args '{"operation":"2 + 3 * 4"}'
  http-mcp-server call format_text --args '{"text":"hello world","style":"title"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arguments tools.Arguments
			if strings.TrimSpace(rawArgs) != "" {
				if err := json.Unmarshal([]byte(rawArgs), &arguments); err != nil {
					return fmt.Errorf("parsing --args: %w", err)
				}
			}

			rt, err := newApp()
			if err != nil {
				return err
			}

			params, err := json.Marshal(mcp.CallToolParams{Name: args[0], Arguments: arguments})
			if err != nil {
				return fmt.Errorf("encoding params: %w", err)
			}
			resp := rt.dispatcher.Dispatch(cmd.Context(), &mcp.Request{
				JSONRPC: mcp.JSONRPCVersion,
				ID:      json.RawMessage("1"),
				Method:  "tools/call",
				Params:  params,
			})

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	cmd.Flags().StringVarP(&rawArgs, "args", "a", "", "tool arguments as a JSON object")
	return cmd
}
