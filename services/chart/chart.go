// Package chart draws the price trend image from the history log.
package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"sjsage522/cardwatch/internal/model"

	"github.com/shopspring/decimal"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrEmptyHistory is returned when there is nothing to draw
var ErrEmptyHistory = errors.New("no history to plot")

var (
	dashed = []vg.Length{vg.Points(5), vg.Points(3)}
	dotted = []vg.Length{vg.Points(1), vg.Points(3)}
)

// Renderer turns history records into an image file
type Renderer interface {
	Render(records []model.HistoryRecord) (string, error)
}

// Chart renders a PNG to a fixed path
type Chart struct {
	path   string
	width  vg.Length
	height vg.Length
}

// New creates a chart written to path
func New(path string) *Chart {
	return &Chart{path: path, width: 16 * vg.Inch, height: 8 * vg.Inch}
}

// series is the history of one article in time order
type series struct {
	article   string
	times     []time.Time
	lowest    []model.Price
	reference []model.Price
	target    decimal.Decimal
}

// groupByArticle keeps articles in order of first appearance
func groupByArticle(records []model.HistoryRecord) []*series {
	var out []*series
	index := make(map[string]*series)
	for _, r := range records {
		s, ok := index[r.Article]
		if !ok {
			s = &series{article: r.Article}
			index[r.Article] = s
			out = append(out, s)
		}
		s.times = append(s.times, r.Timestamp)
		s.lowest = append(s.lowest, r.LowestOffer)
		s.reference = append(s.reference, r.Reference)
		s.target = r.Target
	}

	for _, s := range out {
		sort.Sort(byTime{s})
	}
	return out
}

type byTime struct{ *series }

func (b byTime) Len() int           { return len(b.times) }
func (b byTime) Less(i, j int) bool { return b.times[i].Before(b.times[j]) }
func (b byTime) Swap(i, j int) {
	b.times[i], b.times[j] = b.times[j], b.times[i]
	b.lowest[i], b.lowest[j] = b.lowest[j], b.lowest[i]
	b.reference[i], b.reference[j] = b.reference[j], b.reference[i]
}

// points skips absent prices
func points(times []time.Time, prices []model.Price) plotter.XYs {
	var xys plotter.XYs
	for i, p := range prices {
		if !p.Valid {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(times[i].Unix()), Y: p.Amount.InexactFloat64()})
	}
	return xys
}

// Render draws every article: a solid line for the lowest offer, a dashed
// line for the reference price and a dotted line at the target price
func (c *Chart) Render(records []model.HistoryRecord) (string, error) {
	if len(records) == 0 {
		return "", ErrEmptyHistory
	}

	p := plot.New()
	p.Title.Text = "Price trend"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Price (€)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	first, last := records[0].Timestamp, records[0].Timestamp
	for _, r := range records {
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}

	for i, s := range groupByArticle(records) {
		color := plotutil.Color(i)

		if xys := points(s.times, s.lowest); len(xys) > 0 {
			line, pts, err := plotter.NewLinePoints(xys)
			if err != nil {
				return "", fmt.Errorf("plot %s offers: %w", s.article, err)
			}
			line.Color, line.Width = color, vg.Points(1)
			pts.Color, pts.Shape = color, draw.CircleGlyph{}
			p.Add(line, pts)
			p.Legend.Add(s.article+" CM", line, pts)
		}

		if xys := points(s.times, s.reference); len(xys) > 0 {
			line, pts, err := plotter.NewLinePoints(xys)
			if err != nil {
				return "", fmt.Errorf("plot %s reference: %w", s.article, err)
			}
			line.Color, line.Width, line.Dashes = color, vg.Points(1), dashed
			pts.Color, pts.Shape = color, draw.BoxGlyph{}
			p.Add(line, pts)
			p.Legend.Add(s.article+" CT", line, pts)
		}

		target := s.target.InexactFloat64()
		line, err := plotter.NewLine(plotter.XYs{
			{X: float64(first.Unix()), Y: target},
			{X: float64(last.Unix()), Y: target},
		})
		if err != nil {
			return "", fmt.Errorf("plot %s target: %w", s.article, err)
		}
		line.Color, line.Width, line.Dashes = color, vg.Points(1), dotted
		p.Add(line)
		p.Legend.Add(s.article+" target", line)
	}

	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create chart directory: %w", err)
		}
	}
	if err := p.Save(c.width, c.height, c.path); err != nil {
		return "", fmt.Errorf("save chart %s: %w", c.path, err)
	}
	return c.path, nil
}
