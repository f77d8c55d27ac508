package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
)

// fakeFetcher serves canned season tables and injected failures.
type fakeFetcher struct {
	pages map[string][][]string
	fail  map[string]error
}

func fetchKey(show string, season int) string {
	return fmt.Sprintf("%s/%d", show, season)
}

func (f *fakeFetcher) SeasonTable(show string, season int) ([][]string, error) {
	key := fetchKey(show, season)
	if err, ok := f.fail[key]; ok {
		return nil, err
	}
	rows, ok := f.pages[key]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", key)
	}
	return rows, nil
}

// seasonRows builds extractor output: a header row plus episodes episode
// rows, each with the season and show appended the way the extractor does.
func seasonRows(show string, season, episodes int) [][]string {
	header := []string{"No. overall", "No. in season", "Title", "Directed by", "Written by", "Original air date", "US viewers (millions)", strconv.Itoa(season), show}
	rows := [][]string{header}
	for ep := 1; ep <= episodes; ep++ {
		overall := (season-1)*10 + ep
		rows = append(rows, []string{
			strconv.Itoa(overall),
			strconv.Itoa(ep),
			fmt.Sprintf("Episode %d", overall),
			"A Director",
			"A Writer",
			fmt.Sprintf("January %d, 2008 (2008-01-%02d)", ep, ep),
			fmt.Sprintf("1.%d[1]", ep),
			strconv.Itoa(season),
			show,
		})
	}
	return rows
}

func TestBuildSeasonSkipsHeaderAndDropsIncompleteRows(t *testing.T) {
	rows := seasonRows("Test_Show", 1, 2)
	// A row without its air date cell: the scrape was incomplete.
	rows = append(rows, []string{"3", "3", "Episode 3", "A Director", "A Writer", "1", "Test_Show"})

	episodes, err := BuildSeason(rows, "Test_Show", 1)
	if err != nil {
		t.Fatalf("build season: %v", err)
	}
	if len(episodes) != 2 {
		t.Fatalf("episodes=%d, want 2: %v", len(episodes), episodes)
	}
	for _, e := range episodes {
		if e.AirDate == "" {
			t.Fatalf("episode retained without air date: %+v", e)
		}
		if e.Season != 1 || e.Show != "Test_Show" {
			t.Fatalf("episode tagged %d/%q, want 1/Test_Show", e.Season, e.Show)
		}
	}
}

func TestBuildSeasonRejectsOverWideRows(t *testing.T) {
	rows := seasonRows("Test_Show", 1, 1)
	wide := append([]string{}, rows[1]...)
	wide = append(wide, "extra cell")
	rows = append(rows, wide)

	if _, err := BuildSeason(rows, "Test_Show", 1); err == nil {
		t.Fatalf("expected error for row wider than the schema")
	}
}

func TestBuildSeasonEmptyInput(t *testing.T) {
	episodes, err := BuildSeason(nil, "Test_Show", 1)
	if err != nil {
		t.Fatalf("build season: %v", err)
	}
	if len(episodes) != 0 {
		t.Fatalf("episodes=%d, want 0", len(episodes))
	}
}

func TestScrapeShowSkipsFailedSeasons(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string][][]string{},
		fail: map[string]error{
			fetchKey("Breaking_Bad", 3): errors.New("connection reset"),
		},
	}
	for _, season := range []int{1, 2, 4, 5} {
		fetcher.pages[fetchKey("Breaking_Bad", season)] = seasonRows("Breaking_Bad", season, 2)
	}

	episodes, results := ScrapeShow(fetcher, "Breaking_Bad", []int{1, 2, 3, 4, 5})

	seasons := map[int]int{}
	for _, e := range episodes {
		seasons[e.Season]++
	}
	if len(seasons) != 4 {
		t.Fatalf("got seasons %v, want {1,2,4,5}", seasons)
	}
	for _, want := range []int{1, 2, 4, 5} {
		if seasons[want] != 2 {
			t.Fatalf("season %d has %d episodes, want 2", want, seasons[want])
		}
	}
	if seasons[3] != 0 {
		t.Fatalf("failed season 3 leaked %d episodes", seasons[3])
	}

	if len(results) != 5 {
		t.Fatalf("results=%d, want 5", len(results))
	}
	for _, r := range results {
		failed := r.Season == 3
		if r.Failed() != failed {
			t.Fatalf("season %d failed=%v, want %v", r.Season, r.Failed(), failed)
		}
	}
}

func TestScrapeShowAllSeasonsFailing(t *testing.T) {
	fetcher := &fakeFetcher{
		fail: map[string]error{
			fetchKey("Test_Show", 1): errors.New("boom"),
			fetchKey("Test_Show", 2): errors.New("boom"),
		},
	}

	episodes, results := ScrapeShow(fetcher, "Test_Show", []int{1, 2})
	if len(episodes) != 0 {
		t.Fatalf("episodes=%d, want 0", len(episodes))
	}
	for _, r := range results {
		if !r.Failed() {
			t.Fatalf("season %d should have failed", r.Season)
		}
	}
}
