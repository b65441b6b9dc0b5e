// Package certificate renders completion certificates as PDF documents.
package certificate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

var ErrIncompleteData = errors.New("certificate data incomplete")

// Data is everything printed on a certificate.
type Data struct {
	Serial      string
	LearnerName string
	LearnerPIN  string
	CourseTitle string
	ExamDate    time.Time
	TotalScore  int
	IssuedAt    time.Time
}

type Renderer interface {
	Render(ctx context.Context, data Data) ([]byte, error)
}

type PDFRenderer struct {
	issuer string
}

func NewPDFRenderer(issuer string) *PDFRenderer {
	if issuer == "" {
		issuer = "CourseHub"
	}
	return &PDFRenderer{issuer: issuer}
}

func (r *PDFRenderer) Render(ctx context.Context, data Data) ([]byte, error) {
	if data.LearnerName == "" || data.CourseTitle == "" {
		return nil, ErrIncompleteData
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle("Certificate of Completion", true)
	pdf.SetAuthor(r.issuer, true)
	pdf.SetCreationDate(data.IssuedAt)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	width, height := pdf.GetPageSize()
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, width-20, height-20, "D")

	pdf.SetY(40)
	pdf.SetFont("Helvetica", "B", 30)
	pdf.CellFormat(0, 14, "Certificate of Completion", "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, tr(data.LearnerName), "", 1, "C", false, 0, "")

	if data.LearnerPIN != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 6, tr("Identifier: "+data.LearnerPIN), "", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, "has successfully passed the final exam of", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(data.CourseTitle), "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("Exam date: %s    Score: %d", data.ExamDate.Format("2 January 2006"), data.TotalScore), "", 1, "C", false, 0, "")

	pdf.SetY(height - 40)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Issued by %s on %s", r.issuer, data.IssuedAt.Format("2006-01-02"))), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Serial "+data.Serial, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}
