package services

import (
	"fmt"
	"io"
	"strconv"

	"github.com/courtdesk/causelist/internal/models"
	"github.com/go-pdf/fpdf"
)

const (
	pdfLineHeight   = 5.0
	pdfBottomMargin = 15.0
)

var (
	pdfColumns = []struct {
		title string
		width float64
	}{
		{"Sr. No.", 18},
		{"Case No.", 48},
		{"Party Name", 76},
		{"Purpose", 48},
	}

	headerFill = [3]int{0x1a, 0x23, 0x7e}
	headerText = [3]int{245, 245, 245}
	stripeFill = [3]int{211, 211, 211}
)

// writeCauseListPDF renders list as an A4 document: a title, the court, date
// and case count, then either the case table or a "no cases" note.
func writeCauseListPDF(w io.Writer, list *models.CauseList) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, pdfBottomMargin)
	pdf.SetTitle("Cause List", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.CellFormat(0, 10, "Cause List", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	date := list.Date
	if date == "" {
		date = "N/A"
	}
	pdf.SetTextColor(0, 0, 0)
	infoLine(pdf, tr, "Court:", list.DisplayName())
	infoLine(pdf, tr, "Date:", date)
	infoLine(pdf, tr, "Total Cases:", strconv.Itoa(len(list.Cases)))
	pdf.Ln(6)

	if len(list.Cases) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 6, "No cases found for this date.", "", 1, "L", false, 0, "")
	} else {
		tableHeader(pdf)
		for i, c := range list.Cases {
			tableRow(pdf, tr, i, []string{c.SrNo, c.CaseNo, c.PartyName, c.Purpose})
		}
	}

	if pdf.Err() {
		return fmt.Errorf("failed to render PDF: %w", pdf.Error())
	}
	return pdf.Output(w)
}

func infoLine(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(pdf.GetStringWidth(label)+2, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

func tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.SetTextColor(headerText[0], headerText[1], headerText[2])
	pdf.SetDrawColor(0, 0, 0)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 9, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8)
}

// tableRow draws one wrapped row, breaking to a new page (with a repeated
// header) when it would not fit above the bottom margin.
func tableRow(pdf *fpdf.Fpdf, tr func(string) string, index int, cells []string) {
	lines := make([][]string, len(cells))
	maxLines := 1
	for i, text := range cells {
		lines[i] = pdf.SplitText(tr(text), pdfColumns[i].width-2)
		if len(lines[i]) > maxLines {
			maxLines = len(lines[i])
		}
	}
	height := float64(maxLines)*pdfLineHeight + 2

	_, pageHeight := pdf.GetPageSize()
	if pdf.GetY()+height > pageHeight-pdfBottomMargin {
		pdf.AddPage()
		tableHeader(pdf)
	}

	style := "D"
	if index%2 == 1 {
		pdf.SetFillColor(stripeFill[0], stripeFill[1], stripeFill[2])
		style = "FD"
	}

	left, y := pdf.GetX(), pdf.GetY()
	x := left
	for i, col := range pdfColumns {
		pdf.Rect(x, y, col.width, height, style)
		for j, line := range lines[i] {
			pdf.Text(x+1, y+1+float64(j+1)*pdfLineHeight-1.2, line)
		}
		x += col.width
	}
	pdf.SetXY(left, y+height)
}
