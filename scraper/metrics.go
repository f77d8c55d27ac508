package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry             *prometheus.Registry
	PagesFetchedTotal    *prometheus.CounterVec
	FetchDuration        prometheus.Histogram
	TablesExtractedTotal prometheus.Counter
	RowsExtractedTotal   prometheus.Counter
	CacheTotal           *prometheus.CounterVec
	ErrorsTotal          *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tvviewers_pages_fetched_total",
			Help: "Total episode-list pages fetched, by result.",
		},
		[]string{"result"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tvviewers_fetch_duration_seconds",
			Help:    "Page fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	tables := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tvviewers_tables_extracted_total",
			Help: "Total season tables extracted.",
		},
	)
	rows := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tvviewers_rows_extracted_total",
			Help: "Total table rows extracted, header rows included.",
		},
	)
	cache := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tvviewers_page_cache_total",
			Help: "Page cache lookups, by result.",
		},
		[]string{"result"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tvviewers_scrape_errors_total",
			Help: "Total season scrape failures by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(pages, fetchDuration, tables, rows, cache, errorsTotal)

	return &Metrics{
		Registry:             registry,
		PagesFetchedTotal:    pages,
		FetchDuration:        fetchDuration,
		TablesExtractedTotal: tables,
		RowsExtractedTotal:   rows,
		CacheTotal:           cache,
		ErrorsTotal:          errorsTotal,
	}
}

// IncPage increments the pages fetched counter.
func (m *Metrics) IncPage(result string) {
	if m == nil {
		return
	}
	m.PagesFetchedTotal.WithLabelValues(result).Inc()
}

// ObserveFetchDuration records one page fetch duration.
func (m *Metrics) ObserveFetchDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncTables increments the season tables counter.
func (m *Metrics) IncTables() {
	if m == nil {
		return
	}
	m.TablesExtractedTotal.Inc()
}

// AddRows adds to the extracted rows counter.
func (m *Metrics) AddRows(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsExtractedTotal.Add(float64(n))
}

// IncCache increments the cache lookup counter for hit or miss.
func (m *Metrics) IncCache(result string) {
	if m == nil {
		return
	}
	m.CacheTotal.WithLabelValues(result).Inc()
}

// IncError increments the scrape errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
