package mcpquic

import (
	"errors"
	"fmt"

	"github.com/quic-go/quic-go"
)

// QUIC stream-level error codes
const (
	StreamErrorNoError           quic.StreamErrorCode = 0x00
	StreamErrorProtocolConfusion quic.StreamErrorCode = 0x02
	StreamErrorMessageTooLarge   quic.StreamErrorCode = 0x03
)

// QUIC connection-level error codes
const (
	ConnErrorNoError           quic.ApplicationErrorCode = 0x00
	ConnErrorUnsupportedALPN   quic.ApplicationErrorCode = 0x01
	ConnErrorProtocolViolation quic.ApplicationErrorCode = 0x03
)

var (
	ErrInvalidMagicBytes = errors.New("invalid magic bytes: expected " + MagicBytesMCP)
	ErrUnsupportedALPN   = errors.New("ALPN negotiation failed: " + ALPNProtocolMCP + " not selected")
	ErrMessageTooLarge   = errors.New("MCP message exceeds size limit")
	ErrNotConnected      = errors.New("client not connected")
)

// ToolError is a tool call the server answered with isError.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %s", e.Tool, e.Message)
}
