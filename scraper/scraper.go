package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/tv-viewership/config"
)

// TableFetcher is the seam between the scrape layer and the frame builder.
// Tests inject failing implementations through it.
type TableFetcher interface {
	SeasonTable(show string, season int) ([][]string, error)
}

// Scraper fetches episode-list pages and extracts season tables. Fetched
// pages are cached per URL so every season of a show hits the network once.
type Scraper struct {
	cfg       *config.Config
	collector *colly.Collector
	cache     *lru.Cache[string, *goquery.Document]
	Metrics   *Metrics

	// Guards the per-fetch response state below. The pipeline is
	// sequential; the lock only keeps the colly callbacks honest.
	mu       sync.Mutex
	lastBody []byte
	lastErr  error
}

// NewScraper builds a scraper configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	host, err := cfg.Host()
	if err != nil {
		return nil, err
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(host),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	cache, err := lru.New[string, *goquery.Document](cfg.PageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}

	s := &Scraper{
		cfg:       cfg,
		collector: collector,
		cache:     cache,
		Metrics:   NewMetrics(),
	}
	s.configureHandlers()
	return s, nil
}

// WithTransport swaps the HTTP transport; tests use it to install fixtures.
func (s *Scraper) WithTransport(rt http.RoundTripper) {
	s.collector.WithTransport(rt)
}

func (s *Scraper) configureHandlers() {
	s.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		slog.Debug("fetching page", slog.String("url", r.URL.String()))
	})

	s.collector.OnResponse(func(r *colly.Response) {
		s.mu.Lock()
		s.lastBody = r.Body
		s.mu.Unlock()

		if s.Metrics != nil {
			s.Metrics.IncPage("ok")
			if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
				s.Metrics.ObserveFetchDuration(time.Since(start))
			}
		}
	})

	s.collector.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}

		s.mu.Lock()
		s.lastErr = classifyError(err, statusCode)
		s.mu.Unlock()

		if s.Metrics != nil {
			s.Metrics.IncPage("error")
		}
	})
}

// SeasonTable loads the episode-list page for show and extracts the season's
// table rows as trimmed non-empty cell texts. By page convention the table
// at index season is the season table (index 0 is front matter). The header
// row is included; season and show are appended to every row. No retry is
// performed; the caller owns skip-and-continue.
func (s *Scraper) SeasonTable(show string, season int) ([][]string, error) {
	if season < 1 {
		return nil, fmt.Errorf("season must be >= 1, got %d", season)
	}

	url := s.cfg.PageURL(show)
	doc, err := s.document(url)
	if err != nil {
		if s.Metrics != nil {
			s.Metrics.IncError(errorTypeLabel(err))
		}
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	tables := doc.Find("table")
	if season >= tables.Length() {
		err := ErrTableIndex{Show: show, Season: season, Tables: tables.Length()}
		if s.Metrics != nil {
			s.Metrics.IncError(errorTypeLabel(err))
		}
		return nil, err
	}

	var rows [][]string
	tables.Eq(season).Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			if text := strings.TrimSpace(cell.Text()); text != "" {
				cells = append(cells, text)
			}
		})
		if len(cells) == 0 {
			return
		}
		cells = append(cells, strconv.Itoa(season), show)
		rows = append(rows, cells)
	})

	if s.Metrics != nil {
		s.Metrics.IncTables()
		s.Metrics.AddRows(len(rows))
	}
	return rows, nil
}

// document returns the parsed page for url, fetching it on a cache miss.
func (s *Scraper) document(url string) (*goquery.Document, error) {
	if doc, ok := s.cache.Get(url); ok {
		if s.Metrics != nil {
			s.Metrics.IncCache("hit")
		}
		return doc, nil
	}
	if s.Metrics != nil {
		s.Metrics.IncCache("miss")
	}

	s.mu.Lock()
	s.lastBody = nil
	s.lastErr = nil
	s.mu.Unlock()

	visitErr := s.collector.Visit(url)

	s.mu.Lock()
	body := s.lastBody
	fetchErr := s.lastErr
	s.mu.Unlock()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if visitErr != nil {
		return nil, classifyError(visitErr, 0)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	s.cache.Add(url, doc)
	return doc, nil
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		}
	}

	return err
}
