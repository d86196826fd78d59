package pdfexport

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	margin       = 20.0
	pageBreakAt  = 270.0
	bodyLineStep = 4.5
)

// Record holds the text fragments rendered into one lab record document.
type Record struct {
	Title       string
	Description string
	Algorithm   string
	Code        string
	Language    string
	Output      string
}

// Renderer produces paginated record documents with a fixed section order:
// title, description, algorithm, source code, output.
type Renderer struct {
	now func() time.Time
}

// NewRenderer constructs a renderer.
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render lays out the record and returns the document bytes.
func (r *Renderer) Render(record Record) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	lineWidth := pageWidth - margin*2
	y := margin

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Text(pageWidth/2-pdf.GetStringWidth("Digital Record")/2, y, "Digital Record")
	y += 12

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(pageWidth/2-pdf.GetStringWidth(record.Title)/2, y, record.Title)
	y += 8

	pdf.SetFont("Helvetica", "", 9)
	meta := fmt.Sprintf("Language: %s | Date: %s", strings.ToUpper(record.Language), r.now().Format("2006-01-02"))
	pdf.Text(pageWidth/2-pdf.GetStringWidth(meta)/2, y, meta)
	y += 12

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(margin, y, pageWidth-margin, y)
	y += 10

	if record.Description != "" {
		y = r.heading(pdf, "Problem Description", y)
		pdf.SetFont("Helvetica", "", 10)
		for _, line := range pdf.SplitText(record.Description, lineWidth) {
			y = r.bodyLine(pdf, line, y, 5)
		}
		y += 8
	}

	y = r.heading(pdf, "Algorithm", y)
	pdf.SetFont("Courier", "", 9)
	for _, line := range pdf.SplitText(record.Algorithm, lineWidth) {
		y = r.bodyLine(pdf, line, y, bodyLineStep)
	}
	y += 8

	if y > 250 {
		pdf.AddPage()
		y = margin
	}
	y = r.heading(pdf, fmt.Sprintf("Source Code (%s)", strings.ToUpper(record.Language)), y)
	pdf.SetFont("Courier", "", 9)
	for _, line := range pdf.SplitText(record.Code, lineWidth) {
		y = r.bodyLine(pdf, line, y, bodyLineStep)
	}
	y += 8

	if record.Output != "" {
		if y > 250 {
			pdf.AddPage()
			y = margin
		}
		y = r.heading(pdf, "Output", y)
		pdf.SetFont("Courier", "", 9)
		for _, line := range pdf.SplitText(record.Output, lineWidth) {
			y = r.bodyLine(pdf, line, y, bodyLineStep)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render record pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func (r *Renderer) heading(pdf *gofpdf.Fpdf, text string, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(margin, y, text)
	return y + 7
}

func (r *Renderer) bodyLine(pdf *gofpdf.Fpdf, line string, y, step float64) float64 {
	if y > pageBreakAt {
		pdf.AddPage()
		y = margin
	}
	pdf.Text(margin, y, line)
	return y + step
}

var whitespace = regexp.MustCompile(`\s+`)

// Filename derives the download name from the record title: lower-cased,
// whitespace collapsed to hyphens.
func Filename(title string) string {
	slug := whitespace.ReplaceAllString(strings.TrimSpace(title), "-")
	return fmt.Sprintf("digital-record-%s.pdf", strings.ToLower(slug))
}
