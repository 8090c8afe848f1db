package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/namecanon/pkg/api"
	"github.com/hazyhaar/namecanon/pkg/cache"
	"github.com/hazyhaar/namecanon/pkg/chassis"
	"github.com/hazyhaar/namecanon/pkg/importer"
	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"github.com/hazyhaar/namecanon/pkg/mcpquic"
	"github.com/hazyhaar/namecanon/pkg/normalize"
)

const version = "0.3.0"

type cacheConfig struct {
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"`
	MaxEntries int    `yaml:"max_entries"`
}

type config struct {
	Addr            string           `yaml:"addr"`
	TLSAddr         string           `yaml:"tls_addr"`
	MCPQUICAddr     string           `yaml:"mcp_quic_addr"`
	TLSCert         string           `yaml:"tls_cert"`
	TLSKey          string           `yaml:"tls_key"`
	LexiconsDir     string           `yaml:"lexicons_dir"`
	DefaultLanguage string           `yaml:"default_language"`
	LogLevel        string           `yaml:"log_level"`
	Cache           cacheConfig      `yaml:"cache"`
	SourcesDB       string           `yaml:"sources_db"`
	CheckInterval   time.Duration    `yaml:"check_interval"`
	Normalize       normalize.Config `yaml:"normalize"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "normalize":
		cmdNormalize(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "call":
		cmdCall(os.Args[2:])
	case "version":
		fmt.Println(version)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: namecanon <command> [flags]

Commands:
  serve       Start the HTTP API (and optional TLS/QUIC/MCP listeners)
  normalize   Normalize names given as arguments or on stdin
  import      Download lexicons into a lexicons directory
  call        Call an MCP tool on a running server over QUIC
  version     Print the version
`)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	reg := lexicon.NewRegistry(cfg.LexiconsDir)
	if err := reg.Load(); err != nil {
		logger.Error("failed to load lexicons", "error", err)
		os.Exit(1)
	}
	logger.Info("lexicons loaded", "languages", reg.Languages(), "count", reg.DictCount(), "entries", reg.TotalEntries())

	eng := normalize.NewEngine(reg, logger)
	eng.DefaultLanguage = cfg.DefaultLanguage

	c, err := cache.Open(cfg.Cache.Backend, cfg.Cache.Path, cfg.Cache.MaxEntries)
	if err != nil {
		logger.Error("failed to open cache", "error", err)
		os.Exit(1)
	}
	if c != nil {
		eng.Cache = c
		if closer, ok := c.(io.Closer); ok {
			defer closer.Close()
		}
		logger.Info("result cache enabled", "backend", cfg.Cache.Backend, "per_request", cfg.Normalize.EnableCache)
	}

	router := api.NewRouter(eng, cfg.Normalize, logger)
	mcpSrv := server.NewMCPServer("namecanon", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(mcpSrv, eng, cfg.Normalize, logger)

	// SIGHUP: hot reload lexicons.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading lexicons")
			if err := reg.Reload(); err != nil {
				logger.Error("reload failed", "error", err)
			} else {
				logger.Info("lexicons reloaded", "count", reg.DictCount(), "entries", reg.TotalEntries())
			}
		}
	}()

	if cfg.TLSAddr != "" {
		front, err := chassis.New(chassis.Config{
			Addr:      cfg.TLSAddr,
			CertFile:  cfg.TLSCert,
			KeyFile:   cfg.TLSKey,
			Handler:   router,
			MCPServer: mcpSrv,
			Logger:    logger,
		})
		if err != nil {
			logger.Error("TLS listeners", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := front.Serve(ctx); err != nil {
				logger.Error("TLS listeners stopped", "error", err)
				stop()
			}
		}()
		defer shutdown(front.Shutdown)
	}

	if cfg.MCPQUICAddr != "" {
		tlsCfg, err := mcpquic.ServerTLSConfig(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			logger.Error("MCP TLS config", "error", err)
			os.Exit(1)
		}
		l, err := mcpquic.NewListener(cfg.MCPQUICAddr, tlsCfg, mcpSrv, logger)
		if err != nil {
			logger.Error("MCP QUIC listen", "error", err)
			os.Exit(1)
		}
		defer l.Close()
		go l.Serve(ctx)
	}

	if cfg.SourcesDB != "" && cfg.CheckInterval > 0 {
		sdb, err := importer.OpenSourceDB(cfg.SourcesDB)
		if err != nil {
			logger.Error("open sources db", "error", err)
			os.Exit(1)
		}
		defer sdb.Close()
		if err := sdb.Seed(ctx, importer.All()); err != nil {
			logger.Error("seed sources", "error", err)
			os.Exit(1)
		}
		go importer.NewChecker(sdb, logger, cfg.CheckInterval).Start(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("namecanon listening", "addr", cfg.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdown(srv.Shutdown)
}

func shutdown(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		slog.Warn("shutdown", "error", err)
	}
}

func defaultConfig() config {
	return config{
		Addr:            ":8420",
		DefaultLanguage: normalize.LanguageRussian,
		LogLevel:        "info",
		Cache:           cacheConfig{Backend: "none"},
		Normalize:       normalize.DefaultConfig(),
	}
}

// loadConfig reads path over the defaults. A missing file yields the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	switch cfg.DefaultLanguage {
	case normalize.LanguageRussian, normalize.LanguageUkrainian, normalize.LanguageEnglish:
	default:
		return cfg, fmt.Errorf("config %s: default_language %q is not ru, uk or en", path, cfg.DefaultLanguage)
	}
	if err := cfg.Normalize.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: normalize: %w", path, err)
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
