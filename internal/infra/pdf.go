package infra

// pdf.go: application receipt ("constancia de postulación") using go-pdf/fpdf.
// A4 single page with:
//   - Careguard header
//   - Reference number in large type
//   - Applicant data and submission date
//   - Terms acceptance line
//
// The output file is saved to storagePath/constancia_{reference}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/careguardpe-bit/careguard-backend/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateConstanciaPDF writes the receipt for a submission and returns its path.
// storagePath is created if needed.
func GenerateConstanciaPDF(p *model.Postulacion, u *model.Usuario, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("constancia_%s.pdf", p.ReferenceNumber))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 40

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(contentW, 10, "Careguard", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, tr("Constancia de postulación"), "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.Line(20, pdf.GetY(), pageW-20, pdf.GetY())
	pdf.Ln(8)

	// ── Reference ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Número de referencia"), "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "B", 22)
	pdf.CellFormat(contentW, 12, p.ReferenceNumber, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	// ── Applicant ────────────────────────────────────────────────────────────
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW*0.35, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(contentW*0.65, 7, tr(value), "", 1, "L", false, 0, "")
	}
	row("Postulante", deref(u.Nombre))
	row("Email", u.Email)
	row("Teléfono", deref(u.Telefono))
	row("Fecha", p.SubmissionDate.Format("02/01/2006 15:04"))
	row("Estado", p.Status)
	terms := "No"
	if p.TermsAccepted {
		terms = "Sí"
	}
	row("Términos aceptados", terms)

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(contentW, 4, tr("Conserve este número de referencia para consultar el estado de su postulación."), "", "C", false)

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
