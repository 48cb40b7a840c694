package summary

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"ledgerbot/domain/entities"
	"ledgerbot/domain/utils"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

// maxCategoryBars limits the breakdown drawn on a card
const maxCategoryBars = 8

// CardStyle defines the visual style of a summary card
type CardStyle struct {
	Width     int
	Padding   int
	RowHeight int
	BarHeight int
	Palette   [][3]float64
}

// CardGenerator renders monthly summaries as PNG cards
type CardGenerator struct {
	style   CardStyle
	regular []byte
	bold    []byte
}

// NewCardGenerator creates a generator using the Go fonts
func NewCardGenerator() *CardGenerator {
	return &CardGenerator{
		style: CardStyle{
			Width:     420,
			Padding:   18,
			RowHeight: 24,
			BarHeight: 10,
			Palette: [][3]float64{
				{0.36, 0.68, 0.96},
				{0.98, 0.62, 0.36},
				{0.46, 0.84, 0.56},
				{0.93, 0.43, 0.52},
				{0.72, 0.56, 0.95},
				{0.98, 0.84, 0.36},
			},
		},
		regular: gomono.TTF,
		bold:    gobold.TTF,
	}
}

// NewCardGeneratorWithFont uses a TrueType file for all text, e.g. a CJK font so categories
// such as 早餐 render instead of boxes
func NewCardGeneratorWithFont(path string) (*CardGenerator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	if _, err := truetype.Parse(data); err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}

	g := NewCardGenerator()
	g.regular = data
	g.bold = data
	return g, nil
}

// Generate renders summary to PNG bytes
func (g *CardGenerator) Generate(summary *entities.LedgerSummary) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("categories", len(summary.CategoryTotals)).
			Debug("Summary card generation completed")
	}()

	categories := summary.CategoryTotals
	if len(categories) > maxCategoryBars {
		categories = categories[:maxCategoryBars]
	}

	pad := float64(g.style.Padding)
	width := float64(g.style.Width)
	height := g.style.Padding*2 + 40 + 4*g.style.RowHeight + 20 + len(categories)*(g.style.RowHeight+g.style.BarHeight)
	if summary.Budget.IsPositive() {
		height += 30
	}

	dc := gg.NewContext(g.style.Width, height)

	// background
	for i := 0; i < height; i++ {
		t := float64(i) / float64(height)
		dc.SetRGB(0.05+t*0.03, 0.06+t*0.04, 0.10+t*0.08)
		dc.DrawLine(0, float64(i), width, float64(i))
		dc.Stroke()
	}

	titleFace, err := loadFont(g.bold, 18)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	face, err := loadFont(g.regular, 13)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	y := pad + 18
	dc.SetFontFace(titleFace)
	dc.SetRGB(1, 1, 1)
	drawSharpText(dc, summary.Title, pad, y)

	y += 14
	dc.SetRGBA(0.6, 0.6, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(pad, y, width-pad, y)
	dc.Stroke()

	dc.SetFontFace(face)
	y += 26
	stats := [][2]string{
		{"Total", "NT$ " + utils.FormatAmount(summary.Total)},
		{"Count", fmt.Sprintf("%d", summary.Count)},
		{"Budget", "NT$ " + utils.FormatAmount(summary.Budget)},
		{"Remaining", "NT$ " + utils.FormatAmount(summary.Remaining())},
	}
	for i, stat := range stats {
		dc.SetRGB(0.75, 0.75, 0.85)
		drawSharpText(dc, stat[0], pad, y)

		switch {
		case i == 3 && summary.OverBudget():
			dc.SetRGB(1.0, 0.4, 0.4)
		case i == 3:
			dc.SetRGB(0.4, 1.0, 0.4)
		default:
			dc.SetRGB(1, 1, 1)
		}
		dc.DrawStringAnchored(stat[1], width-pad, y, 1, 0)
		y += float64(g.style.RowHeight)
	}

	if summary.Budget.IsPositive() {
		g.drawBudgetBar(dc, summary, pad, y-6, width-2*pad)
		y += 30
	}

	y += 10
	maxTotal := decimal.Zero
	for _, c := range categories {
		if c.Total.GreaterThan(maxTotal) {
			maxTotal = c.Total
		}
	}
	for i, c := range categories {
		color := g.style.Palette[i%len(g.style.Palette)]

		dc.SetRGB(1, 1, 1)
		drawSharpText(dc, c.Category, pad, y)
		dc.SetRGB(0.85, 0.85, 0.9)
		dc.DrawStringAnchored(utils.FormatShortAmount(c.Total), width-pad, y, 1, 0)

		ratio := 0.0
		if maxTotal.IsPositive() {
			ratio = c.Total.Div(maxTotal).InexactFloat64()
		}
		barY := y + 6
		dc.SetRGBA(1, 1, 1, 0.08)
		dc.DrawRoundedRectangle(pad, barY, width-2*pad, float64(g.style.BarHeight), 4)
		dc.Fill()
		dc.SetRGB(color[0], color[1], color[2])
		dc.DrawRoundedRectangle(pad, barY, (width-2*pad)*ratio, float64(g.style.BarHeight), 4)
		dc.Fill()

		y += float64(g.style.RowHeight + g.style.BarHeight)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBudgetBar draws spending against the budget, red once exceeded
func (g *CardGenerator) drawBudgetBar(dc *gg.Context, summary *entities.LedgerSummary, x, y, w float64) {
	ratio := summary.Total.Div(summary.Budget).InexactFloat64()
	if ratio > 1 {
		ratio = 1
	}

	dc.SetRGBA(1, 1, 1, 0.1)
	dc.DrawRoundedRectangle(x, y, w, 12, 6)
	dc.Fill()

	if summary.OverBudget() {
		dc.SetRGB(0.93, 0.33, 0.33)
	} else {
		dc.SetRGB(0.36, 0.78, 0.52)
	}
	dc.DrawRoundedRectangle(x, y, w*ratio, 12, 6)
	dc.Fill()
}

func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()

	dc.DrawString(text, x, y)
}

// loadFont loads a font from byte data
func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:       size,
		DPI:        72,
		Hinting:    font.HintingFull,
		SubPixelsX: 4,
		SubPixelsY: 4,
	}), nil
}
