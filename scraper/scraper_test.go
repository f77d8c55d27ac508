package scraper

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/tv-viewership/config"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.URLTemplate = "http://example.test/wiki/List_of_%s_episodes"
	return cfg
}

func htmlResponder(body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(200, body)
	resp.Header.Set("Content-Type", "text/html")
	return httpmock.ResponderFromResponse(resp)
}

// episodePage builds a page in the episode-list layout: one front-matter
// table followed by one table per season.
func episodePage(seasons int) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString("<table><tr><th>Series overview</th></tr></table>")

	for s := 1; s <= seasons; s++ {
		b.WriteString("<table>")
		b.WriteString("<tr><th>No. overall</th><th>No. in season</th><th>Title</th><th>Directed by</th><th>Written by</th><th>Original air date</th><th>US viewers (millions)</th></tr>")
		for ep := 1; ep <= 2; ep++ {
			overall := (s-1)*2 + ep
			fmt.Fprintf(&b, "<tr><th>%d</th><td>%d</td><td>\"Episode %d\"</td><td>A Director</td><td>A Writer</td><td>January %d, 2008 (2008-01-%02d)</td><td>1.%d[1]</td></tr>",
				overall, ep, overall, ep, ep, ep)
		}
		b.WriteString("<tr><td>   </td></tr>")
		b.WriteString("</table>")
	}

	b.WriteString("</body></html>")
	return b.String()
}

func TestSeasonTableExtractsRows(t *testing.T) {
	cfg := testConfig()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", cfg.PageURL("Test_Show"), htmlResponder(episodePage(2)))

	s, err := NewScraper(cfg)
	if err != nil {
		t.Fatalf("new scraper: %v", err)
	}
	s.WithTransport(transport)

	rows, err := s.SeasonTable("Test_Show", 2)
	if err != nil {
		t.Fatalf("season table: %v", err)
	}

	// Header plus two episode rows; the whitespace-only row is dropped.
	if len(rows) != 3 {
		t.Fatalf("rows=%d, want 3: %v", len(rows), rows)
	}
	if rows[0][0] != "No. overall" {
		t.Fatalf("header row missing, got %v", rows[0])
	}

	episode := rows[1]
	if len(episode) != 9 {
		t.Fatalf("episode row has %d cells, want 9: %v", len(episode), episode)
	}
	if episode[0] != "3" {
		t.Fatalf("overall number = %q, want 3", episode[0])
	}
	if episode[5] != "January 1, 2008 (2008-01-01)" {
		t.Fatalf("air date = %q", episode[5])
	}
	if episode[7] != "2" || episode[8] != "Test_Show" {
		t.Fatalf("season/show suffix = %q/%q, want 2/Test_Show", episode[7], episode[8])
	}
}

func TestSeasonTablePageCachedAcrossSeasons(t *testing.T) {
	cfg := testConfig()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", cfg.PageURL("Test_Show"), htmlResponder(episodePage(3)))

	s, err := NewScraper(cfg)
	if err != nil {
		t.Fatalf("new scraper: %v", err)
	}
	s.WithTransport(transport)

	for season := 1; season <= 3; season++ {
		if _, err := s.SeasonTable("Test_Show", season); err != nil {
			t.Fatalf("season %d: %v", season, err)
		}
	}

	if calls := transport.GetTotalCallCount(); calls != 1 {
		t.Fatalf("page fetched %d times, want 1", calls)
	}
}

func TestSeasonTableMissingTableIndex(t *testing.T) {
	cfg := testConfig()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", cfg.PageURL("Test_Show"), htmlResponder(episodePage(2)))

	s, err := NewScraper(cfg)
	if err != nil {
		t.Fatalf("new scraper: %v", err)
	}
	s.WithTransport(transport)

	_, err = s.SeasonTable("Test_Show", 7)
	if err == nil {
		t.Fatalf("expected missing-table error")
	}
	var tableErr ErrTableIndex
	if !errors.As(err, &tableErr) {
		t.Fatalf("error = %v, want ErrTableIndex", err)
	}
	if tableErr.Season != 7 || tableErr.Tables != 3 {
		t.Fatalf("table error = %+v", tableErr)
	}
}

func TestSeasonTableHTTPStatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{status: http.StatusNotFound, expected: "not_found"},
		{status: http.StatusForbidden, expected: "forbidden"},
		{status: http.StatusTooManyRequests, expected: "rate_limited"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			cfg := testConfig()

			transport := httpmock.NewMockTransport()
			transport.RegisterResponder("GET", cfg.PageURL("Test_Show"), httpmock.NewStringResponder(tt.status, ""))

			s, err := NewScraper(cfg)
			if err != nil {
				t.Fatalf("new scraper: %v", err)
			}
			s.WithTransport(transport)

			_, err = s.SeasonTable("Test_Show", 1)
			if err == nil {
				t.Fatalf("expected fetch error for status %d", tt.status)
			}
			if got := errorTypeLabel(err); got != tt.expected {
				t.Fatalf("error label = %q, want %q (err: %v)", got, tt.expected, err)
			}
		})
	}
}

func TestSeasonTableRejectsInvalidSeason(t *testing.T) {
	s, err := NewScraper(testConfig())
	if err != nil {
		t.Fatalf("new scraper: %v", err)
	}
	if _, err := s.SeasonTable("Test_Show", 0); err == nil {
		t.Fatalf("expected error for season 0")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   string
	}{
		{name: "forbidden", err: nil, statusCode: http.StatusForbidden, expected: "forbidden"},
		{name: "not found", err: nil, statusCode: http.StatusNotFound, expected: "not_found"},
		{name: "rate limited", err: nil, statusCode: http.StatusTooManyRequests, expected: "rate_limited"},
		{name: "other", err: errors.New("boom"), statusCode: 0, expected: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorTypeLabel(classifyError(tt.err, tt.statusCode)); got != tt.expected {
				t.Fatalf("classifyError(%v, %d) = %q, want %q", tt.err, tt.statusCode, got, tt.expected)
			}
		})
	}
}
