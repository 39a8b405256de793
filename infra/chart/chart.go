// Package chart renders a resolved schedule day as an HTML page.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/chargeplan/core/schedule"
)

// Renderer writes a visual timeline of one day.
type Renderer interface {
	Render(w io.Writer, date string, slots []schedule.Slot) error
}

// EChartsRenderer draws the timeline as a stacked bar chart. Setpoints are
// plotted in watts; net-zero modes are plotted at 0 W in their own series.
type EChartsRenderer struct {
	Title string
}

// empty is the echarts placeholder for a missing data point.
const empty = "-"

var series = []struct {
	name string
	kind schedule.Kind
}{
	{"setpoint (W)", schedule.KindSetpoint},
	{"netzero", schedule.KindNetZero},
	{"netzero+", schedule.KindNetZeroPlus},
}

// Render implements Renderer.
func (r EChartsRenderer) Render(w io.Writer, date string, slots []schedule.Slot) error {
	title := r.Title
	if title == "" {
		title = "Battery schedule"
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: formatDate(date)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Power (W)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	xAxis := make([]string, 0, len(slots))
	for _, sl := range slots {
		xAxis = append(xAxis, formatTime(sl.Time))
	}
	bar.SetXAxis(xAxis)
	for _, s := range series {
		data := make([]opts.BarData, 0, len(slots))
		for _, sl := range slots {
			if sl.Value.Kind != s.kind {
				data = append(data, opts.BarData{Value: empty})
				continue
			}
			data = append(data, opts.BarData{Value: sl.Value.Watts, Name: string(sl.Key)})
		}
		bar.AddSeries(s.name, data, charts.WithBarChartOpts(opts.BarChart{Stack: "value"}))
	}
	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func formatTime(tod string) string {
	if len(tod) != 4 {
		return tod
	}
	return tod[:2] + ":" + tod[2:]
}

func formatDate(date string) string {
	if len(date) != 8 {
		return date
	}
	return date[:4] + "-" + date[4:6] + "-" + date[6:]
}
