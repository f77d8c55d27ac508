package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/aluiziolira/tv-viewership/models"
	"github.com/aluiziolira/tv-viewership/parser"
)

// Clean applies the one-time coercion pass over the concatenated raw
// records: show names lose their underscores, citation markers are stripped
// from the viewers field, "N/A" becomes null, counters become integers and
// air dates become dates. A value that survives cleaning but still fails
// coercion is a data-quality error and fails the run.
func Clean(raw []models.RawEpisode) ([]models.Episode, error) {
	episodes := make([]models.Episode, 0, len(raw))
	for _, r := range raw {
		overall, err := parser.ParseCount("overall number", r.Overall)
		if err != nil {
			return nil, fmt.Errorf("%s season %d: %w", r.Show, r.Season, err)
		}
		noInSeason, err := parser.ParseCount("no in season", r.NoInSeason)
		if err != nil {
			return nil, fmt.Errorf("%s season %d: %w", r.Show, r.Season, err)
		}
		viewers, err := parser.ParseViewers(r.Viewers)
		if err != nil {
			return nil, fmt.Errorf("%s season %d: %w", r.Show, r.Season, err)
		}
		airDate, err := parser.ParseAirDate(r.AirDate)
		if err != nil {
			return nil, fmt.Errorf("%s season %d: %w", r.Show, r.Season, err)
		}

		episodes = append(episodes, models.Episode{
			Show:       parser.NormalizeShowName(r.Show),
			Overall:    overall,
			Season:     r.Season,
			NoInSeason: noInSeason,
			Title:      r.Title,
			DirectedBy: r.DirectedBy,
			WrittenBy:  r.WrittenBy,
			AirDate:    airDate,
			Viewers:    viewers,
		})
	}
	return episodes, nil
}

// Frame materializes episodes as a dataframe in the canonical column order.
func Frame(episodes []models.Episode) dataframe.DataFrame {
	n := len(episodes)
	shows := make([]string, n)
	overall := make([]int, n)
	seasons := make([]int, n)
	noInSeason := make([]int, n)
	titles := make([]string, n)
	directedBy := make([]string, n)
	writtenBy := make([]string, n)
	airDates := make([]string, n)
	viewers := make([]float64, n)

	for i, e := range episodes {
		shows[i] = e.Show
		overall[i] = e.Overall
		seasons[i] = e.Season
		noInSeason[i] = e.NoInSeason
		titles[i] = e.Title
		directedBy[i] = e.DirectedBy
		writtenBy[i] = e.WrittenBy
		airDates[i] = e.AirDate.Format("2006-01-02")
		viewers[i] = e.Viewers
	}

	return dataframe.New(
		series.New(shows, series.String, models.ColShow),
		series.New(overall, series.Int, models.ColOverall),
		series.New(seasons, series.Int, models.ColSeason),
		series.New(noInSeason, series.Int, models.ColNoInSeason),
		series.New(titles, series.String, models.ColTitle),
		series.New(directedBy, series.String, models.ColDirectedBy),
		series.New(writtenBy, series.String, models.ColWrittenBy),
		series.New(airDates, series.String, models.ColAirDate),
		series.New(viewers, series.Float, models.ColViewers),
	)
}

// WriteFrame writes a dataframe as a headed CSV artifact, creating parent
// directories as needed.
func WriteFrame(df dataframe.DataFrame, path string) error {
	if df.Err != nil {
		return fmt.Errorf("invalid dataframe for %s: %w", path, df.Err)
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(df.Names()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, record := range frameRecords(df) {
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// frameRecords renders the frame row by row. Float columns keep the minimal
// decimal form of the in-memory value, with NaN for missing entries, instead
// of gota's fixed six-decimal formatting.
func frameRecords(df dataframe.DataFrame) [][]string {
	names := df.Names()
	columns := make([][]string, len(names))
	for j, name := range names {
		col := df.Col(name)
		if col.Type() == series.Float {
			rendered := make([]string, col.Len())
			for i, v := range col.Float() {
				rendered[i] = strconv.FormatFloat(v, 'f', -1, 64)
			}
			columns[j] = rendered
			continue
		}
		columns[j] = col.Records()
	}

	records := make([][]string, df.Nrow())
	for i := range records {
		record := make([]string, len(names))
		for j := range names {
			record[j] = columns[j][i]
		}
		records[i] = record
	}
	return records
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
