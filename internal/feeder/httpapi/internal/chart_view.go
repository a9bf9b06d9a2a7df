package internal

import (
	"fmt"
	"strings"

	"catfeeder-server/internal/feeder/domain"
)

const (
	ChartWidth  = 720
	ChartHeight = 260

	_chartPadLeft   = 36
	_chartPadRight  = 12
	_chartPadTop    = 16
	_chartPadBottom = 28
)

type ChartPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Hour  int     `json:"hour"`
	Count int     `json:"count"`
}

type ChartTick struct {
	Value int     `json:"value"`
	Y     float64 `json:"y"`
}

type ChartLabel struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
}

// ChartView is the hourly feed chart laid out in SVG user units.
type ChartView struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Baseline float64      `json:"baseline"`
	Points   []ChartPoint `json:"points"`
	Line     string       `json:"line"`
	Area     string       `json:"area"`
	YTicks   []ChartTick  `json:"y_ticks"`
	XLabels  []ChartLabel `json:"x_labels"`
}

func NewChartView(histogram domain.HourlyHistogram) ChartView {
	_, peak := histogram.Peak()
	top := max(peak, 1)

	plotWidth := float64(ChartWidth - _chartPadLeft - _chartPadRight)
	plotHeight := float64(ChartHeight - _chartPadTop - _chartPadBottom)
	baseline := float64(_chartPadTop) + plotHeight
	step := plotWidth / float64(domain.HoursPerDay-1)

	chart := ChartView{
		Width:    ChartWidth,
		Height:   ChartHeight,
		Baseline: baseline,
		Points:   make([]ChartPoint, domain.HoursPerDay),
	}

	coords := make([]string, domain.HoursPerDay)
	for hour, count := range histogram {
		x := float64(_chartPadLeft) + step*float64(hour)
		y := baseline - plotHeight*float64(count)/float64(top)
		chart.Points[hour] = ChartPoint{X: x, Y: y, Hour: hour, Count: count}
		coords[hour] = fmt.Sprintf("%.1f,%.1f", x, y)

		if hour%3 == 0 {
			chart.XLabels = append(chart.XLabels, ChartLabel{Text: fmt.Sprintf("%d:00", hour), X: x})
		}
	}

	chart.Line = "M" + strings.Join(coords, " L")
	chart.Area = fmt.Sprintf("%s L%.1f,%.1f L%.1f,%.1f Z",
		chart.Line,
		chart.Points[domain.HoursPerDay-1].X, baseline,
		chart.Points[0].X, baseline)

	tickStep := max(1, (top+4)/5)
	for value := 0; value <= top; value += tickStep {
		chart.YTicks = append(chart.YTicks, ChartTick{
			Value: value,
			Y:     baseline - plotHeight*float64(value)/float64(top),
		})
	}

	return chart
}
