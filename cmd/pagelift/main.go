package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/pagelift/api"
	"github.com/use-agent/pagelift/browser"
	"github.com/use-agent/pagelift/config"
	"github.com/use-agent/pagelift/extractor"

	// Site extractors self-register on import.
	_ "github.com/use-agent/pagelift/sites/amazon"
	_ "github.com/use-agent/pagelift/sites/article"
)

var version = "0.1.0"

var (
	flagStealth bool
	flagHeaded  bool
	flagCDPURL  string
	flagTimeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "pagelift",
		Short:   "Load web pages in a real browser and extract named fields",
		Version: version,
		Long: `pagelift drives a headless browser to load a page, runs the selected
site's extraction routines, and reports the extracted fields together
with the failure list of any routine that could not complete.`,
		SilenceUsage: true,
	}

	extractCmd := &cobra.Command{
		Use:   "extract <site> <url>",
		Short: "Extract fields from a single page",
		Example: `  # Extract title, cover url and authors from an amazon book page
  pagelift extract amazon.book https://www.amazon.com/dp/0470743042/

  # Extract readable article content as Markdown
  pagelift extract article https://blog.example.com/post

  # Reuse an already-running browser over CDP
  pagelift extract article https://blog.example.com/post --cdp ws://127.0.0.1:9222`,
		Args: cobra.ExactArgs(2),
		RunE: runExtract,
	}
	extractCmd.Flags().BoolVar(&flagStealth, "stealth", false, "inject anti-bot-detection JS")
	extractCmd.Flags().BoolVar(&flagHeaded, "headed", false, "show the browser window")
	extractCmd.Flags().StringVar(&flagCDPURL, "cdp", "", "connect to an existing browser over CDP instead of launching one")
	extractCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "navigation timeout (default from PAGELIFT_NAV_TIMEOUT)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP extraction API",
		RunE:  runServe,
	}

	rootCmd.AddCommand(extractCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	site, url := args[0], args[1]

	cfg := config.Load()
	initLogger(cfg.Log)

	builder, ok := extractor.Lookup(site)
	if !ok {
		return fmt.Errorf("unknown site %q (registered: %s)",
			site, strings.Join(extractor.Names(), ", "))
	}

	if flagHeaded {
		cfg.Browser.Headless = false
	}
	cfg.Browser.Stealth = cfg.Browser.Stealth || flagStealth
	if flagTimeout > 0 {
		cfg.Extractor.NavigationTimeout = flagTimeout
	}

	cdpURL := flagCDPURL
	if cdpURL == "" {
		cdpURL = cfg.Browser.CDPURL
	}

	var factory browser.Factory
	if cdpURL != "" {
		factory = browser.Remote(cdpURL, cfg.Browser, cfg.Extractor)
	} else {
		factory = browser.Local(cfg.Browser, cfg.Extractor)
	}

	e := builder(factory)
	defer func() { _ = e.Close() }()

	if err := e.Extract(url); err != nil {
		return err
	}

	out := struct {
		Site     string            `json:"site"`
		URL      string            `json:"url"`
		Fields   map[string]string `json:"fields"`
		Failures []string          `json:"failures,omitempty"`
	}{
		Site:     site,
		URL:      url,
		Fields:   e.Data(),
		Failures: e.Failures(),
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	initLogger(cfg.Log)
	slog.Info("pagelift starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"sites", extractor.Names(),
	)

	startTime := time.Now()
	router := api.NewRouter(cfg, startTime)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}
	slog.Info("pagelift stopped")
	return nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
