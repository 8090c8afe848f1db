package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"github.com/hazyhaar/namecanon/pkg/mcpquic"
	"github.com/hazyhaar/namecanon/pkg/normalize"
)

// cmdNormalize normalizes the arguments joined by spaces, or every stdin
// line when no argument is given.
func cmdNormalize(args []string) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	lexDir := fs.String("lexicons-dir", "", "directory of lexicon overlays")
	lang := fs.String("lang", normalize.LanguageAuto, "ru, uk, en or auto")
	strict := fs.Bool("strict-stopwords", false, "treat single-letter function words as stopwords")
	feminine := fs.Bool("preserve-feminine", false, "keep feminine endings without gender context")
	noMorph := fs.Bool("no-morphology", false, "leave surnames and patronymics as written")
	removeStop := fs.Bool("remove-stopwords", false, "drop stopwords from the output")
	lower := fs.Bool("lowercase", false, "lowercase person names")
	noAdvanced := fs.Bool("no-advanced", false, "disable recognizer hints")
	trace := fs.Bool("trace", false, "print the full result with trace as JSON")
	fs.Parse(args)

	cfg := normalize.DefaultConfig()
	cfg.Language = *lang
	cfg.StrictStopwords = *strict
	cfg.PreserveFeminineSuffix = *feminine
	cfg.EnableMorphology = !*noMorph
	cfg.RemoveStopWords = *removeStop
	cfg.PreserveNames = !*lower
	cfg.EnableAdvancedFeatures = !*noAdvanced

	reg := lexicon.NewRegistry(*lexDir)
	if err := reg.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "load lexicons: %v\n", err)
		os.Exit(1)
	}
	eng := normalize.NewEngine(reg, newLogger("warn"))

	var lines []string
	if fs.NArg() > 0 {
		lines = []string{strings.Join(fs.Args(), " ")}
	}
	if err := run(context.Background(), eng, cfg, lines, os.Stdin, os.Stdout, *trace); err != nil {
		fmt.Fprintf(os.Stderr, "normalize: %v\n", err)
		os.Exit(1)
	}
}

// run normalizes lines, or each line of in when lines is empty, and writes one
// output line per input line.
func run(ctx context.Context, eng *normalize.Engine, cfg normalize.Config, lines []string, in io.Reader, out io.Writer, trace bool) error {
	emit := func(text string) error {
		res, err := eng.Normalize(ctx, text, cfg)
		if err != nil {
			return err
		}
		if !trace {
			_, err = fmt.Fprintln(out, res.Normalized)
			return err
		}
		return json.NewEncoder(out).Encode(res)
	}

	if len(lines) > 0 {
		for _, l := range lines {
			if err := emit(l); err != nil {
				return err
			}
		}
		return nil
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), mcpquic.MaxMessageSize)
	for sc.Scan() {
		if err := emit(sc.Text()); err != nil {
			return err
		}
	}
	return sc.Err()
}

// cmdCall runs one MCP tool on a serve instance over QUIC and prints the text
// result.
func cmdCall(args []string) {
	fs := flag.NewFlagSet("call", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:8421", "MCP QUIC address of a running server")
	tool := fs.String("tool", "normalize_name", "normalize_name, classify_token or list_lexicons")
	lang := fs.String("lang", "", "language passed to the tool")
	verify := fs.Bool("verify", false, "verify the server certificate")
	timeout := fs.Duration("timeout", 30*time.Second, "call timeout")
	fs.Parse(args)

	toolArgs, err := callArgs(*tool, strings.Join(fs.Args(), " "), *lang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "call: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := mcpquic.NewClient(*addr, mcpquic.ClientTLSConfig(!*verify))
	if err := c.Connect(ctx, version); err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer c.Close()

	text, err := c.CallText(ctx, *tool, toolArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "call %s: %v\n", *tool, err)
		os.Exit(1)
	}
	fmt.Println(text)
}

func callArgs(tool, text, lang string) (map[string]any, error) {
	args := make(map[string]any)
	if lang != "" {
		args["language"] = lang
	}
	switch tool {
	case "normalize_name":
		if text == "" {
			return nil, fmt.Errorf("%s needs text", tool)
		}
		args["text"] = text
	case "classify_token":
		if text == "" || strings.ContainsAny(text, " \t") {
			return nil, fmt.Errorf("%s needs exactly one word", tool)
		}
		args["token"] = text
	case "list_lexicons":
	default:
		return nil, fmt.Errorf("unknown tool %q", tool)
	}
	return args, nil
}
