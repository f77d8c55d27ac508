package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ShowSeasons names one show and the ordered seasons to scrape for it.
type ShowSeasons struct {
	// Name is the page identifier, underscores included, e.g. "The_Sopranos".
	Name    string
	Seasons []int
}

// Config holds the full run configuration. It is built once at startup and
// passed into the pipeline; nothing reads it through package-level state.
type Config struct {
	// URLTemplate expands a show name into its episode-list page URL.
	URLTemplate string
	Shows       []ShowSeasons

	Timeout       time.Duration
	UserAgent     string
	PageCacheSize int

	DataDir   string
	ChartsDir string

	MetricsAddr string
	Verbose     bool
}

// DefaultConfig returns the fixed show list and conservative HTTP defaults.
func DefaultConfig() *Config {
	return &Config{
		URLTemplate: "https://en.wikipedia.org/wiki/List_of_%s_episodes",
		Shows: []ShowSeasons{
			{Name: "The_Sopranos", Seasons: []int{1, 2, 3, 4, 5, 6}},
			{Name: "Game_of_Thrones", Seasons: []int{1, 2, 3, 4, 5, 6, 7, 8}},
			{Name: "Breaking_Bad", Seasons: []int{1, 2, 3, 4, 5}},
		},
		Timeout:       30 * time.Second,
		UserAgent:     "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		PageCacheSize: 16,
		DataDir:       filepath.Join("output", "dataframes"),
		ChartsDir:     filepath.Join("output", "visualisations"),
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if !strings.Contains(c.URLTemplate, "%s") {
		return fmt.Errorf("url template must contain a %%s show placeholder")
	}
	sample := fmt.Sprintf(c.URLTemplate, "Show_Name")
	parsed, err := url.Parse(sample)
	if err != nil {
		return fmt.Errorf("invalid url template: %w", err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("url template must include a host")
	}

	if len(c.Shows) == 0 {
		return fmt.Errorf("show list cannot be empty")
	}
	for _, show := range c.Shows {
		if strings.TrimSpace(show.Name) == "" {
			return fmt.Errorf("show name cannot be empty")
		}
		if len(show.Seasons) == 0 {
			return fmt.Errorf("show %s has no seasons configured", show.Name)
		}
		for _, season := range show.Seasons {
			if season < 1 {
				return fmt.Errorf("show %s has invalid season %d", show.Name, season)
			}
		}
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.PageCacheSize <= 0 {
		return fmt.Errorf("page cache size must be positive")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if c.ChartsDir == "" {
		return fmt.Errorf("charts directory cannot be empty")
	}
	return nil
}

// PageURL returns the episode-list page URL for a show.
func (c *Config) PageURL(show string) string {
	return fmt.Sprintf(c.URLTemplate, show)
}

// Host returns the host of the configured endpoint.
func (c *Config) Host() (string, error) {
	parsed, err := url.Parse(fmt.Sprintf(c.URLTemplate, "Show_Name"))
	if err != nil {
		return "", fmt.Errorf("parse url template: %w", err)
	}
	return parsed.Host, nil
}

// Fixed artifact paths under DataDir and ChartsDir.

func (c *Config) CanonicalCSV() string {
	return filepath.Join(c.DataDir, "tv-show-viewers.csv")
}

func (c *Config) MeanByShowCSV() string {
	return filepath.Join(c.DataDir, "average-viewership-byshow.csv")
}

func (c *Config) MeanBySeasonCSV() string {
	return filepath.Join(c.DataDir, "average-viewership-byseason.csv")
}

func (c *Config) MaxByShowCSV() string {
	return filepath.Join(c.DataDir, "max-viewership-byshow.csv")
}

func (c *Config) MinByShowCSV() string {
	return filepath.Join(c.DataDir, "min-viewership-byshow.csv")
}

func (c *Config) HeatmapPNG(slug string) string {
	return filepath.Join(c.ChartsDir, slug+"-heatmap.png")
}

func (c *Config) MeanBySeasonPNG() string {
	return filepath.Join(c.ChartsDir, "average-viewership-byseason.png")
}

func (c *Config) MaxMeanMinPNG() string {
	return filepath.Join(c.ChartsDir, "average-max-min-viewership-byshow.png")
}

// EnvString reads a non-empty environment variable.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment variable.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, true, nil
}
