// Package stats derives the grouped viewership artifacts from the canonical
// dataset.
package stats

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/aluiziolira/tv-viewership/config"
	"github.com/aluiziolira/tv-viewership/dataset"
	"github.com/aluiziolira/tv-viewership/models"
)

// WriteAll computes the four aggregate tables and writes each to its fixed
// CSV path. Every aggregate is a pure function of the canonical episodes;
// re-running on unchanged input produces byte-identical artifacts.
func WriteAll(episodes []models.Episode, cfg *config.Config) error {
	rated := ratedFrame(episodes)

	artifacts := []struct {
		agg   dataframe.AggregationType
		group []string
		path  string
	}{
		{dataframe.Aggregation_MEAN, []string{models.ColShow}, cfg.MeanByShowCSV()},
		{dataframe.Aggregation_MEAN, []string{models.ColShow, models.ColSeason}, cfg.MeanBySeasonCSV()},
		{dataframe.Aggregation_MAX, []string{models.ColShow}, cfg.MaxByShowCSV()},
		{dataframe.Aggregation_MIN, []string{models.ColShow}, cfg.MinByShowCSV()},
	}

	for _, a := range artifacts {
		df, err := aggregate(rated, a.agg, a.group...)
		if err != nil {
			return fmt.Errorf("aggregate %s: %w", a.path, err)
		}
		if err := dataset.WriteFrame(df, a.path); err != nil {
			return err
		}
	}
	return nil
}

// MeanByShow returns mean viewership grouped by show.
func MeanByShow(episodes []models.Episode) (dataframe.DataFrame, error) {
	return aggregate(ratedFrame(episodes), dataframe.Aggregation_MEAN, models.ColShow)
}

// MeanByShowSeason returns mean viewership grouped by show and season.
func MeanByShowSeason(episodes []models.Episode) (dataframe.DataFrame, error) {
	return aggregate(ratedFrame(episodes), dataframe.Aggregation_MEAN, models.ColShow, models.ColSeason)
}

// MaxByShow returns the highest episode viewership per show.
func MaxByShow(episodes []models.Episode) (dataframe.DataFrame, error) {
	return aggregate(ratedFrame(episodes), dataframe.Aggregation_MAX, models.ColShow)
}

// MinByShow returns the lowest episode viewership per show.
func MinByShow(episodes []models.Episode) (dataframe.DataFrame, error) {
	return aggregate(ratedFrame(episodes), dataframe.Aggregation_MIN, models.ColShow)
}

// ratedFrame projects episodes with a real viewership figure onto the three
// columns the aggregates need. Null viewership never enters a statistic.
func ratedFrame(episodes []models.Episode) dataframe.DataFrame {
	var shows []string
	var seasons []int
	var viewers []float64
	for _, e := range episodes {
		if !e.HasViewers() {
			continue
		}
		shows = append(shows, e.Show)
		seasons = append(seasons, e.Season)
		viewers = append(viewers, e.Viewers)
	}

	return dataframe.New(
		series.New(shows, series.String, models.ColShow),
		series.New(seasons, series.Int, models.ColSeason),
		series.New(viewers, series.Float, models.ColViewers),
	)
}

// aggregate groups the rated frame, applies one statistic to the viewers
// column, restores the canonical column naming and order, and sorts by the
// group keys so output is deterministic.
func aggregate(rated dataframe.DataFrame, agg dataframe.AggregationType, groupCols ...string) (dataframe.DataFrame, error) {
	outCols := append(append([]string{}, groupCols...), models.ColViewers)
	if rated.Nrow() == 0 {
		return emptyFrame(outCols), nil
	}

	groups := rated.GroupBy(groupCols...)
	if groups.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("group by %v: %w", groupCols, groups.Err)
	}

	out := groups.Aggregation([]dataframe.AggregationType{agg}, []string{models.ColViewers})
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("aggregation: %w", out.Err)
	}

	out = out.Rename(models.ColViewers, fmt.Sprintf("%s_%s", models.ColViewers, agg.String()))
	out = out.Select(outCols)

	orders := make([]dataframe.Order, len(groupCols))
	for i, col := range groupCols {
		orders[i] = dataframe.Sort(col)
	}
	out = out.Arrange(orders...)
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("order aggregation: %w", out.Err)
	}
	return out, nil
}

func emptyFrame(cols []string) dataframe.DataFrame {
	ss := make([]series.Series, len(cols))
	for i, col := range cols {
		switch col {
		case models.ColSeason:
			ss[i] = series.New([]int{}, series.Int, col)
		case models.ColViewers:
			ss[i] = series.New([]float64{}, series.Float, col)
		default:
			ss[i] = series.New([]string{}, series.String, col)
		}
	}
	return dataframe.New(ss...)
}
