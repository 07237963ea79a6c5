package chart

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"revcompare/internal/models"
)

const (
	captionBand = 30 // points reserved for the caption
	panelGap    = 24 // points between the two panels
	padDays     = 45 // x padding around the revenue series
)

var captionColor = color.NRGBA{R: 0, G: 0, B: 0, A: 178}

// Render draws the revenue panel above the valuation panel, at a 2:1
// height ratio, with the caption along the bottom edge. data is only read.
func Render(data *models.ChartData, style Style) (*vgimg.Canvas, error) {
	if data == nil {
		return nil, fmt.Errorf("render: no chart data")
	}

	revenue, err := revenuePlot(data, style)
	if err != nil {
		return nil, fmt.Errorf("revenue panel: %w", err)
	}
	valuation, err := valuationPlot(data, style)
	if err != nil {
		return nil, fmt.Errorf("valuation panel: %w", err)
	}

	img := vgimg.New(style.Width, style.Height)
	dc := draw.New(img)

	band := vg.Points(captionBand)
	gap := vg.Points(panelGap)
	usable := style.Height - band - gap
	bottomH := usable / 3

	// draw.Crop offsets: positive bottom raises the floor, negative top lowers the ceiling.
	bottom := draw.Crop(dc, 0, 0, band, -(style.Height - band - bottomH))
	top := draw.Crop(dc, 0, 0, band+bottomH+gap, 0)

	revenue.Draw(top)
	valuation.Draw(bottom)

	if style.Caption != "" {
		caption := text.Style{
			Color:   captionColor,
			Font:    style.face(vg.Points(10), xfont.WeightNormal, xfont.StyleItalic),
			XAlign:  draw.XCenter,
			YAlign:  draw.YCenter,
			Handler: plot.DefaultTextHandler,
		}
		dc.FillText(caption, vg.Point{X: style.Width / 2, Y: band / 2}, style.Caption)
	}

	return img, nil
}

func revenuePlot(data *models.ChartData, style Style) (*plot.Plot, error) {
	p := plot.New()
	names := entityNames(data.Entities)

	p.Title.Text = "Quarterly Revenue: " + strings.Join(names, " vs ")
	p.Title.TextStyle.Font = style.bold(style.TitleSize)
	p.Title.Padding = vg.Points(20)
	applyAxisStyle(p, style, "Quarter", "Revenue (Billions)")

	p.X.Tick.Marker = quarterTicks{Format: "Jan 06"}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Tick.Marker = billionsTicks{}

	p.Add(grid(style))

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Font = style.regular(style.TickSize)

	for _, e := range data.Entities {
		points := data.PointsFor(e.Name)
		if len(points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			xys[i].X = float64(pt.Date.Unix())
			xys[i].Y = pt.Value.InexactFloat64()
		}

		line, scatter, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("%s series: %w", e.Name, err)
		}
		c := style.ColorFor(e.Name)
		line.Color = c
		line.Width = vg.Points(3)
		scatter.Shape = draw.CircleGlyph{}
		scatter.Color = c
		scatter.Radius = vg.Points(4)

		p.Add(line, scatter)
		p.Legend.Add(e.Name, line, scatter)
	}

	if len(data.Window) > 0 {
		first := data.Window[0].Date.AddDate(0, 0, -padDays)
		last := data.Window[len(data.Window)-1].Date.AddDate(0, 0, padDays)
		p.X.Min = float64(first.Unix())
		p.X.Max = float64(last.Unix())
	}
	p.Y.Min = math.Min(p.Y.Min, 0)

	return p, nil
}

func valuationPlot(data *models.ChartData, style Style) (*plot.Plot, error) {
	p := plot.New()

	p.Title.Text = "P/E Ratio Comparison"
	p.Title.TextStyle.Font = style.bold(style.TitleSize)
	p.Title.Padding = vg.Points(20)
	applyAxisStyle(p, style, "Company", "P/E Ratio")
	p.Add(grid(style))

	rows := data.Valuations
	heights := barHeights(rows)
	barWidth := style.Width / 6

	for i, r := range rows {
		bar, err := plotter.NewBarChart(plotter.Values{heights[i]}, barWidth)
		if err != nil {
			return nil, fmt.Errorf("%s bar: %w", r.Entity, err)
		}
		bar.XMin = float64(i)
		bar.Color = style.ColorFor(r.Entity)
		bar.LineStyle.Width = 0
		p.Add(bar)
	}

	labels, err := annotationLabels(rows, style)
	if err != nil {
		return nil, err
	}
	if labels != nil {
		p.Add(labels)
	}

	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Entity
	}
	if len(names) > 0 {
		p.NominalX(names...)
	}
	p.X.Min = -0.5
	p.X.Max = float64(len(rows)) - 0.5

	lo, hi := 0.0, 0.0
	for _, h := range heights {
		lo = math.Min(lo, h)
		hi = math.Max(hi, h)
	}
	if hi == 0 && lo == 0 {
		hi = 1
	}
	p.Y.Min = lo * 1.15
	p.Y.Max = hi * 1.15

	return p, nil
}

func annotationLabels(rows []models.ValuationRow, style Style) (*plotter.Labels, error) {
	ann := Annotations(rows)
	if len(ann) == 0 {
		return nil, nil
	}

	xyl := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(ann)),
		Labels: make([]string, len(ann)),
	}
	for i, a := range ann {
		xyl.XYs[i] = plotter.XY{X: a.X, Y: a.Y}
		xyl.Labels[i] = a.Text
	}

	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, fmt.Errorf("bar annotations: %w", err)
	}
	labels.Offset = vg.Point{Y: vg.Points(6)}
	for i, a := range ann {
		labels.TextStyle[i].XAlign = draw.XCenter
		if a.Missing {
			labels.TextStyle[i].Font = style.regular(style.TickSize)
		} else {
			labels.TextStyle[i].Font = style.bold(style.LabelSize)
		}
	}
	return labels, nil
}

func applyAxisStyle(p *plot.Plot, style Style, xLabel, yLabel string) {
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Label.TextStyle.Font = style.bold(style.LabelSize)
	p.Y.Label.TextStyle.Font = style.bold(style.LabelSize)
	p.X.Tick.Label.Font = style.regular(style.TickSize)
	p.Y.Tick.Label.Font = style.regular(style.TickSize)
}

func grid(style Style) *plotter.Grid {
	g := plotter.NewGrid()
	dashes := []vg.Length{vg.Points(4), vg.Points(2)}
	g.Vertical.Color = style.GridColor
	g.Vertical.Dashes = dashes
	g.Horizontal.Color = style.GridColor
	g.Horizontal.Dashes = dashes
	return g
}

func entityNames(entities []models.Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return names
}
