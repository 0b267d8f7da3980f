package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/uca-platform/uca-api/internal/models"
)

// missingChartNote is written for a chart section whose image bytes were not
// supplied and whose section carries no note of its own.
const missingChartNote = "chart unavailable - static rendering engine not present"

// PDFExporter renders an assembled report document into a PDF. Chart sections
// embed the referenced PNG artifacts; when a chart only exists in its fallback
// representation the assembler substitutes a placeholder section and the PDF
// carries the note text instead of an image.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderDocument creates the PDF for a report document. Chart images are
// supplied keyed by the artifact storage path; a chart section whose image is
// absent from the map degrades to its note text.
func (e *PDFExporter) RenderDocument(doc models.ReportDocument, images map[string][]byte) ([]byte, error) {
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("pdf requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, doc.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, "Generated "+doc.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for i, section := range doc.Sections {
		switch section.Kind {
		case models.ReportSectionSummary:
			e.writeSummary(pdf, section)
		case models.ReportSectionTable:
			e.writeTable(pdf, section)
		case models.ReportSectionChart:
			e.writeChart(pdf, section, images, i)
		case models.ReportSectionPlaceholder:
			e.writePlaceholder(pdf, section)
		default:
			return nil, fmt.Errorf("unknown report section kind %q", section.Kind)
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) writeSummary(pdf *gofpdf.Fpdf, section models.ReportSection) {
	e.writeSectionTitle(pdf, section.Title)
	pdf.SetFont("Arial", "", 10)
	for _, line := range section.Lines {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
}

func (e *PDFExporter) writeTable(pdf *gofpdf.Fpdf, section models.ReportSection) {
	if section.Table == nil || len(section.Table.Headers) == 0 {
		return
	}
	e.writeSectionTitle(pdf, section.Title)

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(section.Table.Headers))
	for _, header := range section.Table.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range section.Table.Rows {
		for col := 0; col < len(section.Table.Headers); col++ {
			value := ""
			if col < len(row) {
				value = row[col]
			}
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (e *PDFExporter) writeChart(pdf *gofpdf.Fpdf, section models.ReportSection, images map[string][]byte, idx int) {
	e.writeSectionTitle(pdf, section.Title)

	var img []byte
	if section.Artifact != nil {
		img = images[section.Artifact.StoragePath]
	}
	if len(img) == 0 {
		note := section.Note
		if note == "" {
			note = missingChartNote
		}
		e.writeNote(pdf, note)
		return
	}

	name := fmt.Sprintf("chart-%d", idx)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
	pdf.ImageOptions(name, 10, 0, 190, 0, true, opts, 0, "")
}

func (e *PDFExporter) writePlaceholder(pdf *gofpdf.Fpdf, section models.ReportSection) {
	e.writeSectionTitle(pdf, section.Title)
	e.writeNote(pdf, section.Note)
}

func (e *PDFExporter) writeSectionTitle(pdf *gofpdf.Fpdf, title string) {
	if title == "" {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 9, strings.ToUpper(title), "", 1, "L", false, 0, "")
}

func (e *PDFExporter) writeNote(pdf *gofpdf.Fpdf, note string) {
	if note == "" {
		note = "chart unavailable"
	}
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 6, note, "", "L", false)
}
