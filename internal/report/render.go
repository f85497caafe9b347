package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres.
const (
	marginMM   = 20.0
	lineMM     = 6.0
	rowMM      = 7.0
	labelMM    = 55.0
	footerMM   = 15.0
	fontFamily = "Helvetica"
)

var (
	titleColor   = [3]int{0, 0, 139}
	stationColor = [3]int{0, 100, 0}
	headerFill   = [3]int{0, 0, 139}
	connFill     = [3]int{0, 100, 0}
	labelFill    = [3]int{211, 211, 211}
	stripeFill   = [3]int{240, 240, 240}
)

type column[T any] struct {
	title string
	width float64
	value func(T) string
}

var summaryColumns = []column[SummaryRow]{
	{"#", 10, func(v SummaryRow) string { return strconv.Itoa(v.Index) }},
	{"Station Name", 55, func(v SummaryRow) string { return v.Name }},
	{"Distance (km)", 22, func(v SummaryRow) string { return v.Distance }},
	{"Operator", 35, func(v SummaryRow) string { return v.Operator }},
	{"Status", 28, func(v SummaryRow) string { return v.Status }},
	{"Points", 20, func(v SummaryRow) string { return v.Points }},
}

var connectionColumns = []column[ConnectionRow]{
	{"Type", 44, func(v ConnectionRow) string { return v.Type }},
	{"Level", 24, func(v ConnectionRow) string { return v.Level }},
	{"Power (kW)", 22, func(v ConnectionRow) string { return v.Power }},
	{"Current", 24, func(v ConnectionRow) string { return v.Current }},
	{"Quantity", 18, func(v ConnectionRow) string { return v.Quantity }},
	{"Status", 38, func(v ConnectionRow) string { return v.Status }},
}

// renderer lays a Document out on A4 pages.
type renderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// render writes doc as PDF to w.
func render(doc Document, w io.Writer, compress bool) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	pdf.AliasNbPages("")
	pdf.SetTitle(doc.Title, true)
	pdf.SetSubject("Report "+doc.ID, true)
	pdf.SetCreator("ChargeSpot", true)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetModificationDate(doc.GeneratedAt)

	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-footerMM)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	r.titlePage(doc)
	r.summary(doc.Summary)
	for _, b := range doc.Blocks {
		r.block(b)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return nil
}

func (r *renderer) titlePage(doc Document) {
	pdf := r.pdf
	pdf.AddPage()

	pdf.Ln(30)
	pdf.SetFont(fontFamily, "B", 22)
	r.color(titleColor)
	pdf.MultiCell(0, 11, r.tr(doc.Title), "", "C", false)
	pdf.Ln(12)

	pdf.SetFont(fontFamily, "", 11)
	pdf.SetTextColor(0, 0, 0)
	lines := []string{
		"Generated on: " + doc.GeneratedAt.Format(timestampLayout),
		"Total Stations: " + strconv.Itoa(doc.StationCount),
		"Data source: " + doc.DataSource,
	}
	for _, p := range doc.Parameters {
		lines = append(lines, p.Label+": "+p.Value)
	}
	for _, line := range lines {
		pdf.CellFormat(0, lineMM+2, r.tr(line), "", 1, "L", false, 0, "")
	}

	pdf.Ln(16)
	pdf.MultiCell(0, lineMM, r.tr("This report contains detailed information about electric vehicle "+
		"charging stations found in your selected area. Each station entry includes location details, "+
		"operator information, connection types, and availability status."), "", "L", false)
}

func (r *renderer) summary(rows []SummaryRow) {
	pdf := r.pdf
	pdf.AddPage()
	r.heading("Summary of Charging Stations", titleColor)

	table(r, summaryColumns, rows, headerFill)
}

func (r *renderer) block(b Block) {
	pdf := r.pdf
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 13)
	r.color(stationColor)
	pdf.MultiCell(0, lineMM+1, r.tr(b.Heading), "", "L", false)
	pdf.Ln(4)

	r.fields(b.Basic)
	pdf.Ln(6)

	r.heading("Connection Details", titleColor)
	if b.Placeholder != "" {
		pdf.SetFont(fontFamily, "I", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, lineMM, r.tr(b.Placeholder), "", 1, "L", false, 0, "")
	} else {
		table(r, connectionColumns, b.Connections, connFill)
	}

	if len(b.Contact) > 0 {
		pdf.Ln(6)
		r.heading("Contact Information", titleColor)
		r.fields(b.Contact)
	}

	if len(b.Additional) > 0 {
		pdf.Ln(6)
		r.heading("Additional Information", titleColor)
		r.fields(b.Additional)
	}
}

func (r *renderer) heading(text string, c [3]int) {
	r.pdf.SetFont(fontFamily, "B", 13)
	r.color(c)
	r.pdf.CellFormat(0, lineMM+2, r.tr(text), "", 1, "L", false, 0, "")
	r.pdf.Ln(2)
}

// fields draws a two-column label/value list; long values wrap.
func (r *renderer) fields(fields []Field) {
	pdf := r.pdf
	pdf.SetTextColor(0, 0, 0)
	for _, f := range fields {
		pdf.SetFont(fontFamily, "B", 10)
		pdf.SetFillColor(labelFill[0], labelFill[1], labelFill[2])
		pdf.CellFormat(labelMM, lineMM, r.tr(f.Label+":"), "", 0, "R", true, 0, "")
		pdf.SetFont(fontFamily, "", 10)
		pdf.MultiCell(0, lineMM, " "+r.tr(f.Value), "", "L", false)
	}
}

// table draws a header row followed by striped data rows, repeating the header
// after each page break.
func table[T any](r *renderer, cols []column[T], rows []T, fill [3]int) {
	pdf := r.pdf
	_, pageHeight := pdf.GetPageSize()

	header := func() {
		pdf.SetFont(fontFamily, "B", 9)
		pdf.SetTextColor(245, 245, 245)
		pdf.SetFillColor(fill[0], fill[1], fill[2])
		for _, c := range cols {
			pdf.CellFormat(c.width, rowMM, c.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	header()
	pdf.SetFont(fontFamily, "", 8)
	pdf.SetTextColor(0, 0, 0)
	for i, row := range rows {
		if pdf.GetY()+rowMM > pageHeight-marginMM {
			pdf.AddPage()
			header()
			pdf.SetFont(fontFamily, "", 8)
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.SetFillColor(stripeFill[0], stripeFill[1], stripeFill[2])
		for _, c := range cols {
			pdf.CellFormat(c.width, rowMM, r.fit(c.value(row), c.width-2), "1", 0, "C", i%2 == 1, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fit shortens s until it fits width, marking the cut with an ellipsis.
func (r *renderer) fit(s string, width float64) string {
	s = r.tr(s)
	if r.pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && r.pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func (r *renderer) color(c [3]int) {
	r.pdf.SetTextColor(c[0], c[1], c[2])
}
