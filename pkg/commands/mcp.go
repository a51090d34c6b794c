package commands

import (
	"fmt"
	"net"
	"strings"

	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"

	"tableflip.dev/tabby/pkg/config"
	"tableflip.dev/tabby/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	var flags config.MCP

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the Model Context Protocol server.",
		Long: `Launch an MCP server that exposes journal entries and the tools to read,
write, search and summarise them. Defaults come from the mcp section of
.tabby.yaml; flags override them.`,
		Example: `
tabby mcp --transport stdio
tabby mcp --http-port 0
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			settings := mcpSettings(cmd, e.cfg.MCP, flags)
			switch mcp.Transport(settings.Transport) {
			case "", mcp.TransportHTTP, mcp.TransportStdio:
			default:
				return fmt.Errorf("unsupported transport %q (expected http or stdio)", settings.Transport)
			}

			runner := mcp.Runner{
				Service:  e.service,
				Settings: settings,
				Build:    goversion.New(version, commit, date),
				Logger:   e.log,
			}
			if mcp.Transport(settings.Transport) != mcp.TransportStdio {
				_, path, err := runner.Endpoint()
				if err != nil {
					return err
				}
				runner.OnHTTPListening = func(a net.Addr) {
					scheme := "http"
					if settings.TLSCert != "" {
						scheme = "https"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP HTTP server listening on %s://%s%s\n", scheme, a, path)
				}
			}

			e.log.Info(ctx, "starting mcp server", "transport", settings.Transport, "version", runner.Version())
			return runner.Do(ctx)
		},
	}

	cmd.Flags().StringVar(&flags.Transport, "transport", "http", "transport to use: http or stdio")
	cmd.Flags().StringVar(&flags.Host, "http-host", "127.0.0.1", "host/interface for HTTP transport")
	cmd.Flags().IntVar(&flags.Port, "http-port", 8080, "port for HTTP transport (use 0 for random)")
	cmd.Flags().StringVar(&flags.Path, "http-path", "/mcp", "HTTP endpoint path")
	cmd.Flags().StringVar(&flags.TLSCert, "http-tls-cert", "", "TLS certificate file for HTTPS")
	cmd.Flags().StringVar(&flags.TLSKey, "http-tls-key", "", "TLS private key file for HTTPS")

	topLevel.AddCommand(cmd)
}

// mcpSettings overlays the flags the user set on the configured settings.
func mcpSettings(cmd *cobra.Command, cfg, flags config.MCP) config.MCP {
	out := cfg
	set := cmd.Flags().Changed
	if set("transport") {
		out.Transport = flags.Transport
	}
	if set("http-host") {
		out.Host = flags.Host
	}
	if set("http-port") {
		out.Port = flags.Port
	}
	if set("http-path") {
		out.Path = flags.Path
	}
	if set("http-tls-cert") {
		out.TLSCert = flags.TLSCert
	}
	if set("http-tls-key") {
		out.TLSKey = flags.TLSKey
	}
	out.Transport = strings.ToLower(strings.TrimSpace(out.Transport))
	out.Host = strings.TrimSpace(out.Host)
	out.Path = strings.TrimSpace(out.Path)
	out.TLSCert = strings.TrimSpace(out.TLSCert)
	out.TLSKey = strings.TrimSpace(out.TLSKey)
	return out
}
