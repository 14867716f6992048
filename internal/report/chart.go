package report

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/dvloznov/nutrition-ranker/internal/logger"
)

// Bar chart layout, in pixels.
const (
	DefaultChartWidth  = 700
	DefaultChartHeight = 500

	chartLeft      = 220 // start of the bar area; labels live to its left
	chartRightPad  = 40
	chartTop       = 40
	chartBottomPad = 30
	barHeight      = 18
	rowPitch       = 38
	scoreLabelRoom = 80 // kept free right of the longest bar for its score

	maxLabelRunes = 28
	fontSize      = 12
)

var barColor = color.RGBA{R: 60, G: 120, B: 80, A: 255}

// ChartOptions configures a ChartPresenter.
type ChartOptions struct {
	Width    int    // canvas width; DefaultChartWidth when zero
	FontPath string // TrueType font; the bundled Go font when empty
}

// ChartPresenter draws the top-N view as a horizontal bar chart and saves
// it as a PNG file.
type ChartPresenter struct {
	Path  string
	width int
	face  font.Face
}

// NewChartPresenter creates a ChartPresenter that writes to path.
func NewChartPresenter(path string, opts ChartOptions) (*ChartPresenter, error) {
	width := opts.Width
	if width <= 0 {
		width = DefaultChartWidth
	}

	face, err := loadFontFace(opts.FontPath, fontSize)
	if err != nil {
		return nil, fmt.Errorf("NewChartPresenter: %w", err)
	}

	return &ChartPresenter{Path: path, width: width, face: face}, nil
}

func (p *ChartPresenter) Present(ctx context.Context, r Report) error {
	log := logger.FromContext(ctx)

	if r.IsEmpty() {
		log.Warn().Str("path", p.Path).Msg("Nothing to chart, skipping")
		return nil
	}

	f, err := os.Create(p.Path)
	if err != nil {
		return fmt.Errorf("ChartPresenter: create %q: %w", p.Path, err)
	}

	if err := p.Render(f, r); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("ChartPresenter: close %q: %w", p.Path, err)
	}

	log.Info().Str("path", p.Path).Int("bars", len(r.Top)).Msg("Chart written")
	return nil
}

// Render draws the chart for r and encodes it as PNG into w.
func (p *ChartPresenter) Render(w io.Writer, r Report) error {
	height := chartHeight(len(r.Top))
	dc := gg.NewContext(p.width, height)

	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(p.face)

	right := float64(p.width - chartRightPad)
	bottom := float64(height - chartBottomPad)
	chartW := right - chartLeft

	maxScore := 0.0
	for _, e := range r.Top {
		if e.Score > maxScore {
			maxScore = e.Score
		}
	}

	dc.SetColor(color.Gray16{Y: 0x4040})
	dc.DrawString("Health score (higher = healthier)", chartLeft+chartW/2-80, chartTop-10)

	for i, e := range r.Top {
		barLen := 0.0
		if maxScore > 0 {
			barLen = e.Score / maxScore * (chartW - scoreLabelRoom)
		}
		y := float64(chartTop + 25 + i*rowPitch)
		barY := y - 8

		dc.SetColor(color.Black)
		dc.DrawString(truncateLabel(e.Name), 10, y+4)

		dc.DrawRectangle(chartLeft, barY, barLen, barHeight)
		dc.SetColor(barColor)
		dc.FillPreserve()
		dc.SetColor(color.Black)
		dc.SetLineWidth(1)
		dc.Stroke()

		dc.DrawString(fmt.Sprintf("%.1f", e.Score), chartLeft+barLen+5, y+4)
	}

	dc.SetColor(color.Gray16{Y: 0x8080})
	dc.DrawString(fmt.Sprintf("Top %d healthiest foods (by protein, fiber; lower sodium, sugar, cholesterol)", len(r.Top)), 10, bottom+20)

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// chartHeight grows the default canvas when more rows are drawn than fit.
func chartHeight(rows int) int {
	need := chartTop + 25 + rows*rowPitch + chartBottomPad + 10
	if need < DefaultChartHeight {
		return DefaultChartHeight
	}
	return need
}

// truncateLabel shortens long food names so they fit left of the bars.
func truncateLabel(name string) string {
	runes := []rune(name)
	if len(runes) <= maxLabelRunes {
		return name
	}
	return string(runes[:maxLabelRunes-3]) + "..."
}
