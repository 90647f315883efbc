package site

import (
	"bytes"
	"io"
	"net/http"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/okian/diamond/internal/domain/scoring"
	"github.com/okian/diamond/internal/domain/types"
	"github.com/okian/diamond/pkg/logger"
	"golang.org/x/text/message"
)

// chartColumns are the score columns plotted; velocity uses a different
// scale and is left to the table.
func chartColumns() []scoring.SortField {
	return []scoring.SortField{
		scoring.FieldPitching, scoring.FieldInfield, scoring.FieldOutfield,
		scoring.FieldBatting, scoring.FieldCatching, scoring.FieldSpeed,
		scoring.FieldOverall,
	}
}

// HandleHeatmapChart handles GET /charts/heatmap.
func (s *Site) HandleHeatmapChart(w http.ResponseWriter, r *http.Request) {
	h := s.deps.Heatmap(r.Context(), scoring.FieldName, scoring.DirAsc)

	var buf bytes.Buffer
	if err := renderHeatmapChart(&buf, s.team, h, s.printer()); err != nil {
		s.logger.Error(r.Context(), "failed to render chart", logger.Error(err))
		http.Error(w, ErrRender.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// renderHeatmapChart plots players against score columns. Missing values
// are emitted as "-" so echarts leaves the cell empty.
func renderHeatmapChart(out io.Writer, team string, h types.Heatmap, p *message.Printer) error {
	cols := chartColumns()
	xLabels := make([]string, len(cols))
	for i, f := range cols {
		xLabels[i] = columnTitles[f]
	}

	// echarts draws the first category at the bottom; reverse so the
	// alphabetical order reads top-down.
	rows := slices.Clone(h.Rows)
	slices.Reverse(rows)
	yLabels := make([]string, len(rows))
	data := make([]opts.HeatMapData, 0, len(rows)*len(cols))
	for y := range rows {
		row := &rows[y]
		yLabels[y] = row.Name
		for x, f := range cols {
			c := cellFor(row, f)
			var v any = c.Value
			if c.Missing() {
				v = missingText
			}
			data = append(data, opts.HeatMapData{Value: [3]any{x, y, v}})
		}
	}

	colors := make([]string, 0, len(scoring.Buckets()))
	for _, b := range scoring.Buckets() {
		colors = append(colors, b.Color())
	}
	slices.Reverse(colors)

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: team + " Heatmap", Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: team + " Player Heatmap", Subtitle: p.Sprintf("colour range %.1f to %.1f", h.Ranges.Score.Min, h.Ranges.Score.Max)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xLabels, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: yLabels, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(h.Ranges.Score.Min),
			Max:        float32(h.Ranges.Score.Max),
			InRange:    &opts.VisualMapInRange{Color: colors},
		}),
	)
	hm.SetXAxis(xLabels).AddSeries("scores", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)
	return hm.Render(out)
}
