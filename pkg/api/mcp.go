package api

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/namecanon/pkg/kit"
	"github.com/hazyhaar/namecanon/pkg/normalize"
)

// RegisterMCPTools registers the namecanon MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, eng *normalize.Engine, defaults normalize.Config, logger *slog.Logger) {
	eps := NewEndpoints(eng, logger)
	registerNormalizeName(srv, eps, defaults)
	registerClassifyToken(srv, eps)
	registerListLexicons(srv, eps)
}

func registerNormalizeName(srv *server.MCPServer, eps *Endpoints, defaults normalize.Config) {
	tool := mcp.NewTool("normalize_name",
		mcp.WithDescription("Normalize Russian, Ukrainian or English person names to the nominative case, resolving diminutives and keeping organizations apart. Returns the normalized text and a per-token trace."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The text to normalize (e.g. \"Дарьи Павловой\")")),
		mcp.WithString("language", mcp.Description("ru, uk, en or auto (default auto)")),
		mcp.WithBoolean("strict_stopwords", mcp.Description("Treat single-letter function words as stopwords, not initials")),
		mcp.WithBoolean("preserve_feminine_suffix", mcp.Description("Keep feminine endings when no gender context is known")),
		mcp.WithBoolean("enable_morphology", mcp.Description("Restore surnames and patronymics to the nominative (default true)")),
		mcp.WithBoolean("remove_stop_words", mcp.Description("Drop stopwords from the output")),
		mcp.WithBoolean("preserve_names", mcp.Description("Keep the letter case of names (default true)")),
		mcp.WithBoolean("enable_advanced_features", mcp.Description("Use recognizer hints for unknown words (default true)")),
	)

	kit.RegisterMCPTool(srv, tool, eps.Normalize, func(args map[string]any) (any, error) {
		cfg := defaults
		if v := kit.StringArg(args, "language"); v != "" {
			cfg.Language = v
		}
		kit.BoolArg(args, "strict_stopwords", &cfg.StrictStopwords)
		kit.BoolArg(args, "preserve_feminine_suffix", &cfg.PreserveFeminineSuffix)
		kit.BoolArg(args, "enable_morphology", &cfg.EnableMorphology)
		kit.BoolArg(args, "remove_stop_words", &cfg.RemoveStopWords)
		kit.BoolArg(args, "preserve_names", &cfg.PreserveNames)
		kit.BoolArg(args, "enable_advanced_features", &cfg.EnableAdvancedFeatures)
		return &normalizeReq{Text: kit.StringArg(args, "text"), Config: cfg}, nil
	})
}

func registerClassifyToken(srv *server.MCPServer, eps *Endpoints) {
	tool := mcp.NewTool("classify_token",
		mcp.WithDescription("Classify a single word as given name, surname, patronymic, initial or unknown, with the evidence for the decision."),
		mcp.WithString("token", mcp.Required(), mcp.Description("The word to classify")),
		mcp.WithString("language", mcp.Description("ru, uk, en or auto (default auto)")),
	)

	kit.RegisterMCPTool(srv, tool, eps.Classify, func(args map[string]any) (any, error) {
		return &classifyReq{
			Token:    kit.StringArg(args, "token"),
			Language: kit.StringArg(args, "language"),
		}, nil
	})
}

func registerListLexicons(srv *server.MCPServer, eps *Endpoints) {
	tool := mcp.NewTool("list_lexicons",
		mcp.WithDescription("List the loaded lexicons (given names, surnames, diminutives, stopwords, declension rules) and per-language table sizes."),
	)

	kit.RegisterMCPTool(srv, tool, eps.ListLexicons, func(map[string]any) (any, error) {
		return nil, nil
	})
}
