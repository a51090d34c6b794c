package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	goversion "go.hein.dev/go-version"

	"tableflip.dev/tabby/pkg/app"
	"tableflip.dev/tabby/pkg/config"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/logging"
)

// Transport selects the mechanism used to expose the MCP server.
type Transport string

const (
	// TransportHTTP serves MCP via the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportStdio serves MCP over stdio.
	TransportStdio Transport = "stdio"
)

const (
	serverName = "tabby journal"
	// Sent when the journal changes so clients re-read tabby:// resources.
	resourcesChanged = "notifications/resources/list_changed"
)

// Runner serves one journal over MCP.
type Runner struct {
	Service  *app.Service
	Settings config.MCP
	// Build is reported to clients as the server version.
	Build           *goversion.Info
	OnHTTPListening func(net.Addr)
	Logger          logging.Logger
}

func (r Runner) log() logging.Logger {
	if r.Logger == nil {
		return logging.Nop()
	}
	return r.Logger
}

// Version is the build version with a short commit suffix when known.
func (r Runner) Version() string {
	if r.Build == nil || r.Build.Version == "" {
		return "dev"
	}
	v := r.Build.Version
	if c := r.Build.Commit; c != "" && c != "none" {
		if len(c) > 7 {
			c = c[:7]
		}
		v += "+" + c
	}
	return v
}

// Endpoint resolves the listen address and path for the HTTP transport.
func (r Runner) Endpoint() (addr, path string, err error) {
	s := r.Settings
	if (s.TLSCert != "") != (s.TLSKey != "") {
		return "", "", errors.New("both mcp tls cert and key must be provided")
	}
	if s.Port < 0 || s.Port > 65535 {
		return "", "", fmt.Errorf("invalid mcp port %d", s.Port)
	}
	host := s.Host
	if host == "" {
		host = "127.0.0.1"
	}
	path = s.Path
	if path == "" {
		path = "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port)), path, nil
}

// NewServer builds the MCP server with the journal's tools and resources.
func (r Runner) NewServer() *server.MCPServer {
	today := entry.Normalize(r.Service.Now(), r.Service.Persistence.Location())
	srv := server.NewMCPServer(
		serverName,
		r.Version(),
		server.WithResourceCapabilities(false, true),
		server.WithToolCapabilities(false),
		server.WithInstructions(fmt.Sprintf(
			"Read and write a daily journal of intentions, goals and reflections. "+
				"Days are YYYY-MM-DD; an empty day means today, %s.",
			today.Format(entry.LayoutDay))),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	svc := NewService(r.Service)
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv
}

// Do executes the runner.
func (r Runner) Do(ctx context.Context) error {
	if r.Service == nil || r.Service.Persistence == nil {
		return errors.New("mcp runner requires persistence")
	}
	srv := r.NewServer()

	// Writes from the CLI or the editor land on disk; tell clients about them.
	if err := r.Service.WatchStore(ctx); err != nil {
		r.log().Warn(ctx, "mcp: not watching the journal", "error", err)
	}
	if r.Service.Signal != nil {
		go r.announce(ctx, srv)
	}

	switch t := Transport(r.Settings.Transport); t {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv)
	case TransportStdio:
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", t)
	}
}

func (r Runner) announce(ctx context.Context, srv *server.MCPServer) {
	for rev := range r.Service.Signal.Subscribe(ctx) {
		r.log().Debug(ctx, "mcp: journal changed", "revision", rev)
		srv.SendNotificationToAllClients(resourcesChanged, nil)
	}
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	addr, path, err := r.Endpoint()
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(path, server.NewStreamableHTTPServer(srv))
	httpSrv := &http.Server{Handler: mux}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if r.OnHTTPListening != nil {
		r.OnHTTPListening(ln.Addr())
	}
	r.log().Info(ctx, "mcp: serving journal", "addr", ln.Addr().String(), "path", path, "version", r.Version())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if r.Settings.TLSCert != "" {
		err = httpSrv.ServeTLS(ln, r.Settings.TLSCert, r.Settings.TLSKey)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
