package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"falcon-crawler/internal/config"
	"falcon-crawler/internal/crawler"
	"falcon-crawler/internal/fetcher"
	"falcon-crawler/internal/linkextract"
	"falcon-crawler/internal/store"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "Path to crawler configuration file")
	startURL := flag.String("start-url", "", "Override start_url from the config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config missing or invalid, proceeding with defaults: %v\n", err)
		defaults := config.Default()
		cfg = &defaults
	}
	if *startURL != "" {
		cfg.StartURL = *startURL
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	httpFetcher, err := fetcher.New(fetcher.Options{}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise fetcher: %v\n", err)
		os.Exit(1)
	}
	extractor := linkextract.New(logger)

	fileStore, err := store.New(cfg.RawOutput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise store: %v\n", err)
		os.Exit(1)
	}
	defer fileStore.Close()

	engine, err := crawler.New(*cfg, httpFetcher, extractor, fileStore, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise engine: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := engine.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "crawler stopped with error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("crawl complete: %d pages downloaded\n", engine.PagesDownloaded())
}
