package shoppinglist

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Page geometry in points on A4 (595 x 842), origin at the top left.
const (
	titleX        = 200.0
	titleY        = 42.0
	titleSize     = 24.0
	lineX         = 75.0
	firstLineY    = 92.0
	lineStep      = 25.0
	lineSize      = 14.0
	bottomLimit   = 792.0
	continuationY = 50.0
)

const utf8Family = "ListFont"

// Renderer draws shopping lists as PDF documents.
type Renderer struct {
	title    string
	fontPath string
}

// NewRenderer returns a Renderer. When fontPath names a TrueType font it is
// embedded and any script it covers can be printed; otherwise the core
// Helvetica font with the cp1252 code page is used.
func NewRenderer(title, fontPath string) *Renderer {
	if title == "" {
		title = "Shopping list"
	}
	return &Renderer{title: title, fontPath: fontPath}
}

// Render writes a document with the title followed by one line per entry,
// moving to a new page whenever the next line would cross the bottom limit.
func (r *Renderer) Render(w io.Writer, lines []string) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(r.title, true)
	pdf.SetCreator("foodgram", false)

	family := "Helvetica"
	translate := func(s string) string { return s }
	if r.fontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", r.fontPath)
		family = utf8Family
	} else {
		translate = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AddPage()
	pdf.SetFont(family, "", titleSize)
	pdf.Text(titleX, titleY, translate(r.title))

	pdf.SetFont(family, "", lineSize)
	y := firstLineY
	for _, line := range lines {
		if y > bottomLimit {
			pdf.AddPage()
			pdf.SetFont(family, "", lineSize)
			y = continuationY
		}
		pdf.Text(lineX, y, translate(line))
		y += lineStep
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render shopping list: %w", err)
	}
	return pdf.Output(w)
}
