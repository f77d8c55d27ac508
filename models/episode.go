// Package models defines data structures for the viewership pipeline.
package models

import (
	"math"
	"time"
)

// Canonical column names, in the order the cleaned table is written.
const (
	ColShow       = "Show"
	ColOverall    = "Overall number"
	ColSeason     = "Season"
	ColNoInSeason = "No in Season"
	ColTitle      = "Title"
	ColDirectedBy = "Directed by"
	ColWrittenBy  = "Written by"
	ColAirDate    = "Original air date"
	ColViewers    = "US viewers (millions)"
)

// CanonicalColumns returns the fixed column order of the canonical table.
func CanonicalColumns() []string {
	return []string{
		ColShow,
		ColOverall,
		ColSeason,
		ColNoInSeason,
		ColTitle,
		ColDirectedBy,
		ColWrittenBy,
		ColAirDate,
		ColViewers,
	}
}

// RawEpisode holds one scraped table row before type coercion. All fields
// are the trimmed cell texts as they appeared on the page.
type RawEpisode struct {
	Overall    string
	NoInSeason string
	Title      string
	DirectedBy string
	WrittenBy  string
	AirDate    string
	Viewers    string
	Season     int
	Show       string
}

// Episode is one row of the canonical table after cleaning. Viewers is NaN
// when the page reported no figure.
type Episode struct {
	Show       string
	Overall    int
	Season     int
	NoInSeason int
	Title      string
	DirectedBy string
	WrittenBy  string
	AirDate    time.Time
	Viewers    float64
}

// HasViewers reports whether the episode carries a real viewership figure.
func (e Episode) HasViewers() bool {
	return !math.IsNaN(e.Viewers)
}

// SeasonResult is the outcome of scraping one season of one show. Err is set
// when the season was skipped; Episodes is nil in that case.
type SeasonResult struct {
	Show     string
	Season   int
	Episodes []RawEpisode
	Err      error
}

// Failed reports whether the season was skipped.
func (r SeasonResult) Failed() bool {
	return r.Err != nil
}

// RunResult holds the overall outcome of a pipeline run for the final
// summary block.
type RunResult struct {
	StartTime      time.Time
	EndTime        time.Time
	SeasonsScraped int
	SeasonsSkipped int
	RowsScraped    int
	Episodes       int
	Shows          int
}
