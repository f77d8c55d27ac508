// Package dataset turns scraped season tables into the canonical episode
// dataset.
package dataset

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aluiziolira/tv-viewership/models"
	"github.com/aluiziolira/tv-viewership/scraper"
)

// schemaWidth is the fixed row width: seven content cells plus the season
// and show values the extractor appends.
const schemaWidth = 9

// airDateCell is the position of the original-air-date cell in a row.
const airDateCell = 5

// BuildSeason converts extracted rows for one season into raw episode
// records. The first row is the table header and is skipped. Rows with
// fewer cells than the schema are missing their air date and are dropped;
// rows with more cells mean the season table does not match the schema and
// fail the whole season.
func BuildSeason(rows [][]string, show string, season int) ([]models.RawEpisode, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	var episodes []models.RawEpisode
	for _, cells := range rows[1:] {
		if len(cells) > schemaWidth {
			return nil, fmt.Errorf("%s season %d: row has %d cells, schema has %d", show, season, len(cells), schemaWidth)
		}
		if len(cells) < schemaWidth || strings.TrimSpace(cells[airDateCell]) == "" {
			continue
		}
		episodes = append(episodes, models.RawEpisode{
			Overall:    cells[0],
			NoInSeason: cells[1],
			Title:      cells[2],
			DirectedBy: cells[3],
			WrittenBy:  cells[4],
			AirDate:    cells[5],
			Viewers:    cells[6],
			Season:     season,
			Show:       show,
		})
	}
	return episodes, nil
}

// ScrapeShow runs the extractor and builder across a show's configured
// seasons. A failed season is reported and skipped; the remaining seasons
// still contribute, so partial data for a show is acceptable and one bad
// season never aborts the run. The concatenated records may be empty.
func ScrapeShow(fetcher scraper.TableFetcher, show string, seasons []int) ([]models.RawEpisode, []models.SeasonResult) {
	var episodes []models.RawEpisode
	results := make([]models.SeasonResult, 0, len(seasons))

	for _, season := range seasons {
		fmt.Printf("Getting data for %s Season %d\n", show, season)

		rows, err := fetcher.SeasonTable(show, season)
		var built []models.RawEpisode
		if err == nil {
			built, err = BuildSeason(rows, show, season)
		}
		if err != nil {
			fmt.Printf("An error occurred while processing %s season %d: %v\n", show, season, err)
			slog.Error("season scrape failed",
				slog.String("show", show),
				slog.Int("season", season),
				slog.Any("error", err),
			)
			results = append(results, models.SeasonResult{Show: show, Season: season, Err: err})
			continue
		}

		episodes = append(episodes, built...)
		results = append(results, models.SeasonResult{Show: show, Season: season, Episodes: built})
	}
	return episodes, results
}
