package commands

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/runner/mcp"
)

// mcpOptions are the flags of the mcp verb.
type mcpOptions struct {
	Transport string
	Host      string
	Port      int
	Path      string
	TLSCert   string
	TLSKey    string
}

func (o *mcpOptions) endpointPath() string {
	path := strings.TrimSpace(o.Path)
	if path == "" {
		return "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

func (o *mcpOptions) listenAddr() (string, error) {
	host := strings.TrimSpace(o.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	if o.Port < 0 || o.Port > 65535 {
		return "", apperr.NewInvalidInputError("http-port", strconv.Itoa(o.Port), "expected 0-65535")
	}
	return net.JoinHostPort(host, strconv.Itoa(o.Port)), nil
}

// displayURL is the address clients should use. Unspecified hosts are shown
// as the bound IP, or loopback.
func (o *mcpOptions) displayURL(a net.Addr) string {
	scheme := "http"
	if o.TLSCert != "" && o.TLSKey != "" {
		scheme = "https"
	}
	tcp, ok := a.(*net.TCPAddr)
	if !ok {
		return scheme + "://" + a.String() + o.endpointPath()
	}
	host := strings.TrimSpace(o.Host)
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
		if tcp.IP != nil && !tcp.IP.IsUnspecified() {
			host = tcp.IP.String()
		}
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(host, strconv.Itoa(tcp.Port)), o.endpointPath())
}

func addMCP(topLevel *cobra.Command) {
	mo := &mcpOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the Model Context Protocol server",
		Long: `Launch an MCP server that exposes the agenda, check-ins, streaks, reports
and reminder actions as tools, and the agenda and streaks as resources.`,
		Example: `
daybook mcp --transport stdio
daybook mcp --http-port 0
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), true, app.WithBackgroundRefresh())
			if err != nil {
				return err
			}

			runner := mcp.Runner{
				Dispatcher:       app.NewDispatcher(rt.Service),
				Name:             "daybook",
				Version:          version,
				HTTPEndpointPath: mo.endpointPath(),
				HTTPServerCert:   strings.TrimSpace(mo.TLSCert),
				HTTPServerKey:    strings.TrimSpace(mo.TLSKey),
			}

			switch mcp.Transport(strings.ToLower(strings.TrimSpace(mo.Transport))) {
			case "", mcp.TransportHTTP:
				addr, err := mo.listenAddr()
				if err != nil {
					return err
				}
				runner.Transport = mcp.TransportHTTP
				runner.HTTPListenAddr = addr
				runner.OnHTTPListening = func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP HTTP server listening on %s\n", mo.displayURL(a))
				}
			case mcp.TransportStdio:
				runner.Transport = mcp.TransportStdio
			default:
				return apperr.NewInvalidInputError("transport", mo.Transport, "expected http or stdio")
			}

			return runner.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&mo.Transport, "transport", string(mcp.TransportHTTP), "transport to use: http or stdio")
	cmd.Flags().StringVar(&mo.Host, "http-host", "127.0.0.1", "host/interface for HTTP transport")
	cmd.Flags().IntVar(&mo.Port, "http-port", 8080, "port for HTTP transport (use 0 for random)")
	cmd.Flags().StringVar(&mo.Path, "http-path", "/mcp", "HTTP endpoint path")
	cmd.Flags().StringVar(&mo.TLSCert, "http-tls-cert", "", "TLS certificate file for HTTPS")
	cmd.Flags().StringVar(&mo.TLSKey, "http-tls-key", "", "TLS private key file for HTTPS")

	topLevel.AddCommand(cmd)
}
