package printing

import "fmt"

// Paper names a sheet format. Sizes are kept in millimetres.
type Paper string

const (
	PaperA4     Paper = "A4"
	PaperA5     Paper = "A5"
	PaperLetter Paper = "LETTER"
)

var paperSizes = map[Paper][2]float64{
	PaperA4:     {210, 297},
	PaperA5:     {148, 210},
	PaperLetter: {215.9, 279.4},
}

// Size returns width and height in millimetres for a portrait sheet.
// ok is false for formats the renderer does not know.
func (p Paper) Size() (width, height float64, ok bool) {
	wh, ok := paperSizes[p]
	return wh[0], wh[1], ok
}

// Margin is the blank border around printed content, in millimetres
type Margin struct {
	Top, Right, Bottom, Left float64
}

// DocumentMargin suits invoices and audit reports printed on A4
var DocumentMargin = Margin{Top: 15, Right: 15, Bottom: 15, Left: 15}

// Even returns the same margin on all four sides
func Even(mm float64) Margin {
	return Margin{Top: mm, Right: mm, Bottom: mm, Left: mm}
}

// Check rejects negative margins and margins wider than a third of an A5 sheet
func (m Margin) Check() error {
	for _, v := range [...]float64{m.Top, m.Right, m.Bottom, m.Left} {
		if v < 0 || v > 50 {
			return fmt.Errorf("margin %.1fmm outside 0-50mm", v)
		}
	}
	return nil
}

// headerClearance is the band Chrome needs to draw a header or footer template
const headerClearance = 10.0

const mmPerInch = 25.4

func inches(mm float64) float64 { return mm / mmPerInch }
