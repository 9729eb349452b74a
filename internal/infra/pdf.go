package infra

// pdf.go — Closing report generation using go-pdf/fpdf.
// One A5 page per CorteCaja with:
//   - Business header and fecha
//   - Responsable and timestamp
//   - Counts of completed and cancelled sales, units sold
//   - Bold total revenue
//
// The output file is saved to storagePath/corte_{fecha}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabrilr/ferreteria-sistema/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarCortePDF renders the closing report for corte.
// storagePath is the directory where the PDF will be written (created if needed).
// Returns the path to the generated file.
func GenerarCortePDF(corte *model.CorteCaja, negocio, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("corte_%s.pdf", corte.Fecha))

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Corte de caja del "+corte.Fecha), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Datos del corte ──────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Responsable: "+corte.Responsable), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Realizado: "+corte.CreatedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(3)

	labelW := contentW * 0.65
	valueW := contentW - labelW
	fila := func(label, valor string) {
		pdf.CellFormat(labelW, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 6, valor, "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 10)
	fila("Ventas completadas", strconv.Itoa(corte.VentasCompletadas))
	fila("Ventas canceladas", strconv.Itoa(corte.VentasCanceladas))
	fila("Productos vendidos", strconv.Itoa(corte.ProductosVendidos))

	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	fila("TOTAL INGRESOS", "$"+corte.TotalIngresos.StringFixed(2))

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, tr("Documento generado automáticamente al cerrar la caja."), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
