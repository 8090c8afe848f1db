package importer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Checker periodically probes every lexicon source URL and stores the outcome
// in the source database.
type Checker struct {
	sources  *SourceDB
	logger   *slog.Logger
	interval time.Duration
	client   *http.Client
}

// NewChecker creates a Checker that probes the sources every interval.
func NewChecker(sources *SourceDB, logger *slog.Logger, interval time.Duration) *Checker {
	return &Checker{
		sources:  sources,
		logger:   logger,
		interval: interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Start checks immediately, then every interval until ctx is cancelled.
func (c *Checker) Start(ctx context.Context) {
	c.CheckAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

// CheckAll probes every source once. 2xx and 3xx count as available.
func (c *Checker) CheckAll(ctx context.Context) {
	sources, err := c.sources.ListSources(ctx)
	if err != nil {
		c.logger.Error("source check: list sources", "error", err)
		return
	}
	if len(sources) == 0 {
		return
	}

	var ok, failed int
	for _, src := range sources {
		if ctx.Err() != nil {
			return
		}

		status, checkErr := c.probe(ctx, src.SourceURL)
		errMsg := ""
		if checkErr != nil {
			errMsg = checkErr.Error()
		}
		if err := c.sources.UpdateCheck(ctx, src.AdapterID, status, errMsg); err != nil {
			c.logger.Error("source check: store result", "adapter", src.AdapterID, "error", err)
		}

		if status >= 200 && status < 400 {
			ok++
			continue
		}
		failed++
		c.logger.Warn("lexicon source unavailable",
			"adapter", src.AdapterID,
			"dict", src.DictID,
			"url", src.SourceURL,
			"status", status,
			"error", errMsg,
		)
	}

	c.logger.Info("source check complete", "total", ok+failed, "ok", ok, "failed", failed)
}

// probe sends a HEAD request and falls back to a GET when the server does not
// allow HEAD. Network errors report status 0.
func (c *Checker) probe(ctx context.Context, url string) (int, error) {
	status, err := c.do(ctx, http.MethodHead, url)
	if err == nil && status == http.StatusMethodNotAllowed {
		return c.do(ctx, http.MethodGet, url)
	}
	return status, err
}

func (c *Checker) do(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, url, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
