// Package crawler implements the Crawler module: should_enqueue filtering,
// the N-worker fetch/classify/persist/extract/enqueue loop, and the
// bag-of-tasks termination protocol built on the frontier package.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"falcon-crawler/internal/config"
	"falcon-crawler/internal/fetcher"
	"falcon-crawler/internal/frontier"
	"falcon-crawler/internal/linkextract"
	"falcon-crawler/internal/store"
	"falcon-crawler/internal/urlutil"
	"falcon-crawler/pkg/types"
)

// Engine orchestrates fetching, extraction, and persistence across a pool of
// workers sharing one FrontierSet.
type Engine struct {
	cfg config.Config

	fetcher   fetcher.Fetcher
	extractor linkextract.Extractor
	store     store.Store

	frontier *frontier.Set
	pacer    *pacer

	allowed     map[string]struct{}
	allowedExts map[string]struct{}

	maxPages        int64
	pagesDownloaded atomic.Int64

	logger *slog.Logger
}

// New builds a crawler Engine from configuration and its three collaborator
// capabilities.
func New(cfg config.Config, f fetcher.Fetcher, ex linkextract.Extractor, st store.Store, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		var err error
		logger, err = buildLogger(cfg.Logging)
		if err != nil {
			return nil, err
		}
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedDomains))
	for _, d := range cfg.AllowedDomains {
		allowed[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	allowedExts := make(map[string]struct{}, len(cfg.AllowedExts))
	for _, e := range cfg.AllowedExts {
		allowedExts[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}

	return &Engine{
		cfg:         cfg,
		fetcher:     f,
		extractor:   ex,
		store:       st,
		frontier:    frontier.New(),
		pacer:       newPacer(cfg.RequestDelay.Duration),
		allowed:     allowed,
		allowedExts: allowedExts,
		maxPages:    int64(cfg.MaxPages),
		logger:      logger,
	}, nil
}

// PagesDownloaded returns the number of pages persisted so far.
func (e *Engine) PagesDownloaded() int64 {
	return e.pagesDownloaded.Load()
}

// shouldEnqueue implements should_enqueue: strip_fragment + reject empty,
// parse + reject invalid, domain allowlist, extension allowlist with an
// extension-less URL always accepted.
func (e *Engine) shouldEnqueue(rawURL string) bool {
	stripped := urlutil.StripFragment(rawURL)
	if strings.TrimSpace(stripped) == "" {
		return false
	}

	parts, ok := urlutil.Parse(stripped)
	if !ok {
		return false
	}

	if _, ok := e.allowed[parts.Host]; !ok {
		return false
	}

	ext := urlutil.ExtensionOf(stripped)
	if ext == "" {
		return true
	}
	_, ok = e.allowedExts[ext]
	return ok
}

// Run seeds the frontier with the start URL and runs crawler_threads workers
// to quiescence (or until ctx is cancelled).
func (e *Engine) Run(ctx context.Context) error {
	if !e.shouldEnqueue(e.cfg.StartURL) {
		stripped := urlutil.StripFragment(e.cfg.StartURL)
		if stripped == "" {
			return fmt.Errorf("crawler: start_url %q is empty after stripping its fragment", e.cfg.StartURL)
		}
		if _, ok := urlutil.Parse(stripped); !ok {
			return fmt.Errorf("crawler: start_url %q does not parse", e.cfg.StartURL)
		}
		// start_url is otherwise exempt from domain/extension filtering: it
		// defines the crawl's scope rather than being subject to it.
		e.frontier.Offer(stripped)
	} else {
		e.frontier.Offer(e.cfg.StartURL)
	}

	threads := e.cfg.CrawlerThreads
	if threads <= 0 {
		threads = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			e.worker(ctx, id)
		}(i)
	}
	wg.Wait()

	e.logger.Info("crawl complete", "pages_downloaded", e.pagesDownloaded.Load())
	return nil
}

func (e *Engine) worker(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			e.frontier.Stop()
			return
		}

		rawURL, ok := e.frontier.Claim()
		if !ok {
			return
		}
		req := types.CrawlRequest{URL: rawURL, EnqueuedAt: time.Now()}

		if e.maxPages >= 0 && e.pagesDownloaded.Load() >= e.maxPages {
			e.frontier.Stop()
			e.frontier.Release()
			continue
		}

		e.processOne(ctx, req)
	}
}

func (e *Engine) processOne(ctx context.Context, req types.CrawlRequest) {
	defer e.frontier.Release()

	body, contentType, ok := e.fetcher.Fetch(ctx, req.URL, e.cfg.Timeout.Duration)
	if !ok {
		return
	}

	path, isHTML, err := e.store.Persist(req.URL, body, contentType)
	if err != nil {
		e.logger.Error("persist failed", "url", req.URL, "error", err)
		return
	}

	artifact := types.Artifact{Path: path, URL: req.URL, ContentType: contentType, Kind: types.ArtifactFile}
	if isHTML {
		artifact.Kind = types.ArtifactHTML
	}

	newCount := e.pagesDownloaded.Add(1)
	e.logger.Debug("persisted artifact",
		"url", artifact.URL,
		"path", artifact.Path,
		"kind", artifact.Kind.String(),
		"since_claim", time.Since(req.EnqueuedAt),
	)

	if isHTML {
		base, baseOK := urlutil.Parse(req.URL)
		if baseOK {
			for _, link := range e.extractor.Extract(body, base) {
				if e.shouldEnqueue(link) {
					e.frontier.Offer(link)
				}
			}
		}
	}

	if err := e.pacer.Wait(ctx); err != nil {
		e.logger.Debug("pacer wait interrupted", "error", err)
	}

	if e.maxPages >= 0 && newCount >= e.maxPages {
		e.frontier.Stop()
	}
}

func buildLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unsupported log level %q", cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Structured {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler), nil
}
