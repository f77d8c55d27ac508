// Package charts renders the viewership visualizations to PNG files.
package charts

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/aluiziolira/tv-viewership/config"
	"github.com/aluiziolira/tv-viewership/models"
	"github.com/aluiziolira/tv-viewership/parser"
)

// RenderAll renders every chart: one heatmap per show from the in-memory
// canonical episodes, and the line and bar charts from the aggregate CSV
// artifacts on disk. Any failure is fatal to the run.
func RenderAll(episodes []models.Episode, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.ChartsDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", cfg.ChartsDir, err)
	}

	for _, show := range showOrder(episodes) {
		path := cfg.HeatmapPNG(parser.ShowSlug(show))
		if err := RenderHeatmap(episodes, show, path); err != nil {
			return err
		}
	}

	if err := RenderMeanBySeasonLines(cfg.MeanBySeasonCSV(), cfg.MeanBySeasonPNG()); err != nil {
		return err
	}
	return RenderMaxMeanMinBars(cfg.MaxByShowCSV(), cfg.MeanByShowCSV(), cfg.MinByShowCSV(), cfg.MaxMeanMinPNG())
}

// viewerGrid pivots one show's episodes to a season-by-episode grid of
// viewership values. Missing combinations are NaN and render as empty
// cells.
type viewerGrid struct {
	seasons []int
	maxEp   int
	values  map[[2]int]float64
}

func (g *viewerGrid) Dims() (c, r int) { return g.maxEp, len(g.seasons) }

func (g *viewerGrid) Z(c, r int) float64 {
	v, ok := g.values[[2]int{g.seasons[r], c + 1}]
	if !ok {
		return math.NaN()
	}
	return v
}

func (g *viewerGrid) X(c int) float64 { return float64(c + 1) }

func (g *viewerGrid) Y(r int) float64 { return float64(g.seasons[r]) }

// RenderHeatmap renders one show's season-by-episode viewership heatmap.
func RenderHeatmap(episodes []models.Episode, show, path string) error {
	grid := buildGrid(episodes, show)
	if len(grid.seasons) == 0 {
		return fmt.Errorf("heatmap %s: no episodes for show %q", path, show)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: US viewers (millions)", show)
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Season"

	h := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	p.Add(h)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save heatmap %s: %w", path, err)
	}
	return nil
}

func buildGrid(episodes []models.Episode, show string) *viewerGrid {
	grid := &viewerGrid{values: make(map[[2]int]float64)}
	seen := make(map[int]bool)
	for _, e := range episodes {
		if e.Show != show {
			continue
		}
		if !seen[e.Season] {
			seen[e.Season] = true
			grid.seasons = append(grid.seasons, e.Season)
		}
		if e.NoInSeason > grid.maxEp {
			grid.maxEp = e.NoInSeason
		}
		if e.HasViewers() {
			grid.values[[2]int{e.Season, e.NoInSeason}] = e.Viewers
		}
	}
	sort.Ints(grid.seasons)
	return grid
}

// RenderMeanBySeasonLines renders one line per show of mean viewership by
// season, reading the by-season aggregate CSV back from disk.
func RenderMeanBySeasonLines(csvPath, path string) error {
	df, err := readFrame(csvPath)
	if err != nil {
		return err
	}

	shows := df.Col(models.ColShow).Records()
	seasons := df.Col(models.ColSeason).Float()
	viewers := df.Col(models.ColViewers).Float()

	var order []string
	points := make(map[string]plotter.XYs)
	for i, show := range shows {
		if _, ok := points[show]; !ok {
			order = append(order, show)
		}
		points[show] = append(points[show], plotter.XY{X: seasons[i], Y: viewers[i]})
	}

	p := plot.New()
	p.Title.Text = "Average viewership by season"
	p.X.Label.Text = "Season"
	p.Y.Label.Text = "US viewers (millions)"

	args := make([]interface{}, 0, 2*len(order))
	for _, show := range order {
		args = append(args, show, points[show])
	}
	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return fmt.Errorf("plot season lines: %w", err)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save line chart %s: %w", path, err)
	}
	return nil
}

// RenderMaxMeanMinBars overlays per-show max, mean and min viewership bars,
// reading the three by-show aggregate CSVs back from disk.
func RenderMaxMeanMinBars(maxCSV, meanCSV, minCSV, path string) error {
	maxDF, err := readFrame(maxCSV)
	if err != nil {
		return err
	}
	meanDF, err := readFrame(meanCSV)
	if err != nil {
		return err
	}
	minDF, err := readFrame(minCSV)
	if err != nil {
		return err
	}

	shows := meanDF.Col(models.ColShow).Records()
	overlays := []struct {
		name   string
		values plotter.Values
		offset vg.Length
	}{
		{"Max", byShowValues(maxDF, shows), -vg.Points(20)},
		{"Mean", byShowValues(meanDF, shows), 0},
		{"Min", byShowValues(minDF, shows), vg.Points(20)},
	}

	p := plot.New()
	p.Title.Text = "Viewership by show"
	p.Y.Label.Text = "US viewers (millions)"
	p.Legend.Top = true

	for i, s := range overlays {
		bars, err := plotter.NewBarChart(s.values, vg.Points(20))
		if err != nil {
			return fmt.Errorf("plot %s bars: %w", s.name, err)
		}
		bars.LineStyle.Width = 0
		bars.Color = plotutil.Color(i)
		bars.Offset = s.offset
		p.Add(bars)
		p.Legend.Add(s.name, bars)
	}
	p.NominalX(shows...)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save bar chart %s: %w", path, err)
	}
	return nil
}

// byShowValues orders a two-column by-show frame's values to match shows.
func byShowValues(df dataframe.DataFrame, shows []string) plotter.Values {
	names := df.Col(models.ColShow).Records()
	viewers := df.Col(models.ColViewers).Float()
	byShow := make(map[string]float64, len(names))
	for i, name := range names {
		byShow[name] = viewers[i]
	}

	values := make(plotter.Values, len(shows))
	for i, show := range shows {
		values[i] = byShow[show]
	}
	return values
}

func readFrame(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", filepath.Base(path), df.Err)
	}
	return df, nil
}

func showOrder(episodes []models.Episode) []string {
	var order []string
	seen := make(map[string]bool)
	for _, e := range episodes {
		if !seen[e.Show] {
			seen[e.Show] = true
			order = append(order, e.Show)
		}
	}
	return order
}
