package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/namecanon/pkg/importer"
	"github.com/hazyhaar/namecanon/pkg/lexicon"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	source := fs.String("source", "", "adapter ID to import (e.g. mirror-given-names-uk)")
	lang := fs.String("lang", "", "import every lexicon of this language")
	all := fs.Bool("all", false, "import all available sources")
	setURL := fs.String("set-url", "", "override a source URL: <adapter-id>=<url>")
	outputDir := fs.String("output-dir", "lexicons", "lexicons directory to write into")
	fs.Parse(args)

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *outputDir, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	sdb, err := importer.OpenSourceDB(filepath.Join(*outputDir, "sources.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "open sources.db: %v\n", err)
		os.Exit(1)
	}
	defer sdb.Close()

	if err := sdb.Seed(ctx, importer.All()); err != nil {
		fmt.Fprintf(os.Stderr, "seed sources: %v\n", err)
		os.Exit(1)
	}

	if *setURL != "" {
		id, url, ok := strings.Cut(*setURL, "=")
		if !ok || url == "" {
			fmt.Fprintln(os.Stderr, "-set-url expects <adapter-id>=<url>")
			os.Exit(2)
		}
		if err := sdb.SetURL(ctx, id, url); err != nil {
			fmt.Fprintf(os.Stderr, "set url: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("[%s] source -> %s\n", id, url)
		return
	}

	var selected []importer.Adapter
	switch {
	case *all:
		selected = importer.All()
	case *lang != "":
		selected = importer.ForLanguage(*lang)
		if len(selected) == 0 {
			fmt.Fprintf(os.Stderr, "no sources for language %q\n", *lang)
			os.Exit(1)
		}
	case *source != "":
		a, err := importer.Get(*source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			listSources(ctx, sdb, os.Stderr)
			os.Exit(1)
		}
		selected = []importer.Adapter{a}
	default:
		listSources(ctx, sdb, os.Stdout)
		fmt.Print(`
Usage:
  namecanon import -source <id> [-output-dir <dir>]
  namecanon import -lang <ru|uk|en> [-output-dir <dir>]
  namecanon import -all [-output-dir <dir>]
  namecanon import -set-url <id>=<url> [-output-dir <dir>]
`)
		return
	}

	failed := importAll(ctx, sdb, selected, *outputDir)
	if failed > 0 {
		os.Exit(1)
	}

	// A freshly written overlay must still build every language set.
	reg := lexicon.NewRegistry(*outputDir)
	if err := reg.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "imported lexicons do not load: %v\n", err)
		os.Exit(1)
	}
	for _, l := range []string{"ru", "uk", "en"} {
		if _, err := reg.Set(l); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
}

// importAll runs the adapters in order and returns how many failed.
func importAll(ctx context.Context, sdb *importer.SourceDB, selected []importer.Adapter, outputDir string) int {
	var failed int
	for _, a := range selected {
		url, err := sdb.GetURL(ctx, a.ID())
		if err != nil {
			fmt.Fprintf(os.Stderr, "[%s] ERROR (url): %v\n", a.ID(), err)
			failed++
			continue
		}
		fmt.Printf("[%s] importing %s...\n", a.ID(), url)
		n, err := a.Import(ctx, url, outputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[%s] ERROR: %v\n", a.ID(), err)
			failed++
			continue
		}
		if err := sdb.RecordImport(ctx, a.ID(), n); err != nil {
			fmt.Fprintf(os.Stderr, "[%s] record import: %v\n", a.ID(), err)
		}
		fmt.Printf("[%s] OK, %d entries -> %s/\n", a.ID(), n, filepath.Join(outputDir, a.DictID()))
	}
	return failed
}

func listSources(ctx context.Context, sdb *importer.SourceDB, w io.Writer) {
	sources, err := sdb.ListSources(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list sources: %v\n", err)
		return
	}
	fmt.Fprintln(w, "Available sources:")
	for _, src := range sources {
		status := ""
		if src.LastStatus != nil {
			status = fmt.Sprintf("  [%d]", *src.LastStatus)
		}
		if src.Entries != nil {
			status += fmt.Sprintf("  %d entries", *src.Entries)
		}
		fmt.Fprintf(w, "  %-28s  %s  (-> %s)%s\n", src.AdapterID, src.Description, src.DictID, status)
	}
}
