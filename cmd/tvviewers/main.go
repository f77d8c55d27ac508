package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/tv-viewership/charts"
	"github.com/aluiziolira/tv-viewership/config"
	"github.com/aluiziolira/tv-viewership/dataset"
	"github.com/aluiziolira/tv-viewership/models"
	"github.com/aluiziolira/tv-viewership/scraper"
	"github.com/aluiziolira/tv-viewership/stats"
)

func main() {
	cfg := config.DefaultConfig()
	if value, ok := config.EnvString("TVVIEWERS_METRICS_ADDR"); ok {
		cfg.MetricsAddr = value
	}
	if _, ok := config.EnvString("TVVIEWERS_VERBOSE"); ok {
		cfg.Verbose = true
	}
	if value, ok, err := config.EnvInt("TVVIEWERS_CACHE_SIZE"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid TVVIEWERS_CACHE_SIZE: %v\n", err)
		os.Exit(1)
	} else if ok {
		cfg.PageCacheSize = value
	}

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	result, err := run(cfg, s)
	if err != nil {
		slog.Error("pipeline failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	fmt.Printf("All data has now been saved to %s\n", cfg.CanonicalCSV())
	printSummary(result, cfg)
}

// run drives the pipeline sequentially: scrape every configured show, clean
// the concatenated records into the canonical table, write the CSV
// artifacts, then render the charts.
func run(cfg *config.Config, fetcher scraper.TableFetcher) (*models.RunResult, error) {
	result := &models.RunResult{StartTime: time.Now(), Shows: len(cfg.Shows)}

	var raw []models.RawEpisode
	for _, show := range cfg.Shows {
		episodes, seasonResults := dataset.ScrapeShow(fetcher, show.Name, show.Seasons)
		raw = append(raw, episodes...)
		for _, sr := range seasonResults {
			if sr.Failed() {
				result.SeasonsSkipped++
			} else {
				result.SeasonsScraped++
			}
		}
	}
	result.RowsScraped = len(raw)

	episodes, err := dataset.Clean(raw)
	if err != nil {
		return nil, fmt.Errorf("clean dataset: %w", err)
	}
	result.Episodes = len(episodes)

	if err := dataset.WriteFrame(dataset.Frame(episodes), cfg.CanonicalCSV()); err != nil {
		return nil, err
	}
	if err := stats.WriteAll(episodes, cfg); err != nil {
		return nil, err
	}
	if err := charts.RenderAll(episodes, cfg); err != nil {
		return nil, err
	}

	result.EndTime = time.Now()
	return result, nil
}

func printSummary(result *models.RunResult, cfg *config.Config) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Run complete")
	fmt.Printf("  Shows:            %d\n", result.Shows)
	fmt.Printf("  Seasons scraped:  %d\n", result.SeasonsScraped)
	fmt.Printf("  Seasons skipped:  %d\n", result.SeasonsSkipped)
	fmt.Printf("  Rows scraped:     %d\n", result.RowsScraped)
	fmt.Printf("  Episodes:         %d\n", result.Episodes)
	fmt.Printf("  Duration:         %v\n", result.EndTime.Sub(result.StartTime))
	fmt.Printf("  Data directory:   %s\n", cfg.DataDir)
	fmt.Printf("  Charts directory: %s\n", cfg.ChartsDir)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
