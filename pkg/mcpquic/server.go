// Package mcpquic serves MCP sessions over QUIC streams and dials them.
//
// Each QUIC connection carries one bidirectional stream: the client sends
// MagicBytesMCP, then newline-delimited JSON-RPC messages flow both ways.
package mcpquic

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"

	"github.com/hazyhaar/namecanon/pkg/kit"
)

// Handler serves individual MCP-over-QUIC connections without owning a listener.
type Handler struct {
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewHandler creates an MCP connection handler.
func NewHandler(mcpSrv *server.MCPServer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{mcpServer: mcpSrv, logger: logger}
}

// ServeConn handles a single QUIC connection as an MCP session.
func (h *Handler) ServeConn(ctx context.Context, conn *quic.Conn) {
	remote := conn.RemoteAddr().String()
	h.logger.Debug("MCP connection accepted", "remote", remote)

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		h.logger.Warn("MCP accept stream failed", "remote", remote, "error", err)
		conn.CloseWithError(ConnErrorProtocolViolation, "stream accept failed")
		return
	}

	if err := ValidateMagicBytes(stream); err != nil {
		h.logger.Warn("MCP magic bytes invalid", "remote", remote, "error", err)
		stream.CancelWrite(StreamErrorProtocolConfusion)
		stream.CancelRead(StreamErrorProtocolConfusion)
		conn.CloseWithError(ConnErrorProtocolViolation, "invalid magic bytes")
		return
	}

	sessionID := "quic_" + uuid.NewString()
	sess := newSession(sessionID, stream)
	if err := h.mcpServer.RegisterSession(ctx, sess); err != nil {
		h.logger.Error("session register failed", "session", sessionID, "error", err)
		stream.Close()
		return
	}
	defer h.mcpServer.UnregisterSession(ctx, sessionID)
	h.logger.Info("MCP session started", "session", sessionID, "remote", remote)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = kit.WithTransport(ctx, "mcp_quic")
	ctx = h.mcpServer.WithContext(ctx, sess)

	go sess.writeNotifications(ctx)

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxMessageSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		msg := append(json.RawMessage(nil), line...)
		response := h.mcpServer.HandleMessage(ctx, msg)
		if response == nil {
			continue
		}

		data, err := json.Marshal(response)
		if err != nil {
			h.logger.Error("MCP marshal failed", "session", sessionID, "error", err)
			continue
		}
		if err := sess.write(data); err != nil {
			h.logger.Warn("MCP write error", "session", sessionID, "error", err)
			break
		}
	}
	switch err := scanner.Err(); {
	case errors.Is(err, bufio.ErrTooLong):
		h.logger.Warn("MCP message too large", "session", sessionID, "limit", MaxMessageSize)
		stream.CancelRead(StreamErrorMessageTooLarge)
		stream.CancelWrite(StreamErrorMessageTooLarge)
	case err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil:
		h.logger.Warn("MCP read error", "session", sessionID, "error", err)
	}

	h.logger.Info("MCP session ended", "session", sessionID, "remote", remote)
}

// Listener accepts MCP-over-QUIC connections and dispatches them to a shared MCPServer.
type Listener struct {
	listener *quic.Listener
	handler  *Handler
	logger   *slog.Logger
}

func NewListener(addr string, tlsCfg *tls.Config, mcpSrv *server.MCPServer, logger *slog.Logger) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l, err := quic.ListenAddr(addr, tlsCfg, QUICConfig())
	if err != nil {
		return nil, err
	}
	logger.Info("MCP QUIC listener ready", "addr", l.Addr().String())
	return &Listener{
		listener: l,
		handler:  NewHandler(mcpSrv, logger),
		logger:   logger,
	}, nil
}

// Addr is the bound UDP address.
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Serve accepts connections until ctx is done.
func (l *Listener) Serve(ctx context.Context) error {
	for {
		conn, err := l.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, quic.ErrServerClosed) {
				return err
			}
			l.logger.Error("QUIC accept error", "error", err)
			continue
		}

		alpn := conn.ConnectionState().TLS.NegotiatedProtocol
		if alpn != ALPNProtocolMCP {
			conn.CloseWithError(ConnErrorUnsupportedALPN, "unsupported ALPN: "+alpn)
			continue
		}

		go l.handler.ServeConn(ctx, conn)
	}
}

func (l *Listener) Close() error {
	return l.listener.Close()
}

// session implements server.ClientSession for a single QUIC connection.
// Responses and notifications share the stream, so writes are serialized.
type session struct {
	id            string
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool
	writer        io.Writer
	mu            sync.Mutex
}

func newSession(id string, writer io.Writer) *session {
	return &session{
		id:            id,
		notifications: make(chan mcp.JSONRPCNotification, 100),
		writer:        writer,
	}
}

func (s *session) SessionID() string                                   { return s.id }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

// write sends one newline-terminated message.
func (s *session) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.writer.Write(append(data, '\n'))
	return err
}

func (s *session) writeNotifications(ctx context.Context) {
	for {
		select {
		case notif := <-s.notifications:
			data, err := json.Marshal(notif)
			if err != nil {
				continue
			}
			_ = s.write(data)
		case <-ctx.Done():
			return
		}
	}
}
