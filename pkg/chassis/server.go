// Package chassis serves the REST API over TLS on TCP and, on the same port
// over UDP, HTTP/3 and MCP-over-QUIC selected by ALPN.
//
// HTTP responses carry an Alt-Svc header advertising HTTP/3 on that port.
// Without a cert/key pair a self-signed development certificate is used.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/hazyhaar/namecanon/pkg/mcpquic"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

// Config holds the chassis listeners' settings.
type Config struct {
	Addr      string // TCP and UDP, e.g. ":8443"; port 0 picks a free UDP port and reuses it for TCP
	CertFile  string
	KeyFile   string
	Handler   http.Handler
	MCPServer *server.MCPServer // nil disables MCP on the QUIC side
	Logger    *slog.Logger
}

// Server owns the bound listeners. New binds, Serve runs, Shutdown stops.
type Server struct {
	logger     *slog.Logger
	port       int
	tcpLn      net.Listener
	quicLn     *quic.Listener
	tcpServer  *http.Server
	h3Server   *http3.Server
	mcpHandler *mcpquic.Handler
}

// New binds the UDP listener first, then TCP on the same port number.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	base, err := mcpquic.ServerTLSConfig(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, err
	}
	if cfg.CertFile == "" {
		cfg.Logger.Warn("TLS: using a self-signed development certificate")
	}

	quicTLS := base.Clone()
	quicTLS.NextProtos = []string{http3.NextProtoH3}
	if cfg.MCPServer != nil {
		quicTLS.NextProtos = append(quicTLS.NextProtos, mcpquic.ALPNProtocolMCP)
	}
	quicLn, err := quic.ListenAddr(cfg.Addr, quicTLS, mcpquic.QUICConfig())
	if err != nil {
		return nil, fmt.Errorf("QUIC listen: %w", err)
	}
	port := quicLn.Addr().(*net.UDPAddr).Port

	host, _, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		quicLn.Close()
		return nil, fmt.Errorf("parse addr %q: %w", cfg.Addr, err)
	}
	tcpTLS := base.Clone()
	tcpTLS.NextProtos = []string{"h2", "http/1.1"}
	tcpLn, err := tls.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)), tcpTLS)
	if err != nil {
		quicLn.Close()
		return nil, fmt.Errorf("TCP listen: %w", err)
	}

	handler := securityHeaders(altSvc(port, cfg.Handler))
	s := &Server{
		logger:    cfg.Logger,
		port:      port,
		tcpLn:     tcpLn,
		quicLn:    quicLn,
		tcpServer: &http.Server{Handler: handler},
		h3Server:  &http3.Server{Handler: handler},
	}
	if cfg.MCPServer != nil {
		s.mcpHandler = mcpquic.NewHandler(cfg.MCPServer, cfg.Logger)
	}
	return s, nil
}

// Addr is the shared TCP/UDP address.
func (s *Server) Addr() string {
	return s.tcpLn.Addr().String()
}

// Serve runs both listeners until ctx is done or one of them fails.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("chassis listening", "addr", s.Addr(), "mcp", s.mcpHandler != nil)

	errCh := make(chan error, 2)
	go func() {
		if err := s.tcpServer.Serve(s.tcpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("TCP: %w", err)
		}
	}()
	go func() {
		if err := s.acceptQUIC(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) acceptQUIC(ctx context.Context) error {
	for {
		conn, err := s.quicLn.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, quic.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("QUIC accept: %w", err)
		}

		switch alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn {
		case http3.NextProtoH3:
			go func() {
				if err := s.h3Server.ServeQUICConn(conn); err != nil {
					s.logger.Debug("HTTP/3 conn done", "remote", conn.RemoteAddr(), "error", err)
				}
			}()
		case mcpquic.ALPNProtocolMCP:
			go s.mcpHandler.ServeConn(ctx, conn)
		default:
			s.logger.Warn("unknown ALPN, closing", "alpn", alpn, "remote", conn.RemoteAddr())
			conn.CloseWithError(mcpquic.ConnErrorUnsupportedALPN, "unsupported ALPN: "+alpn)
		}
	}
}

// Shutdown stops both listeners. In-flight HTTP/1 and HTTP/2 requests drain
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.tcpServer.Shutdown(ctx)
	if qerr := s.quicLn.Close(); err == nil {
		err = qerr
	}
	if herr := s.h3Server.Close(); err == nil {
		err = herr
	}
	return err
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func altSvc(port int, next http.Handler) http.Handler {
	value := fmt.Sprintf(`h3=":%d"; ma=86400`, port)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", value)
		next.ServeHTTP(w, r)
	})
}
