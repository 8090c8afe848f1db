package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"github.com/hazyhaar/namecanon/pkg/normalize"
)

func mcpCall(t *testing.T, srv *server.MCPServer, tool string, args map[string]any) string {
	t.Helper()
	msg, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": tool, "arguments": args},
	})
	resp := srv.HandleMessage(context.Background(), msg)
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestMCPTools(t *testing.T) {
	reg := lexicon.NewRegistry("")
	if err := reg.Load(); err != nil {
		t.Fatal(err)
	}
	srv := server.NewMCPServer("namecanon", "test", server.WithToolCapabilities(false))
	RegisterMCPTools(srv, normalize.NewEngine(reg, nil), normalize.DefaultConfig(), nil)

	out := mcpCall(t, srv, "normalize_name", map[string]any{"text": "Вове Петрову", "language": "ru"})
	if !strings.Contains(out, "Владимир Петров") {
		t.Errorf("normalize_name = %s", out)
	}

	out = mcpCall(t, srv, "normalize_name", map[string]any{"text": "Иван", "language": "de"})
	if !strings.Contains(out, "unsupported language") || !strings.Contains(out, `"isError":true`) {
		t.Errorf("normalize_name with bad language = %s", out)
	}

	out = mcpCall(t, srv, "classify_token", map[string]any{"token": "Юрьевной", "language": "ru"})
	if !strings.Contains(out, "patronymic") {
		t.Errorf("classify_token = %s", out)
	}

	out = mcpCall(t, srv, "list_lexicons", nil)
	if !strings.Contains(out, "given-names-uk") {
		t.Errorf("list_lexicons = %s", out)
	}
}
