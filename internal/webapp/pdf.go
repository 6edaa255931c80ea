package webapp

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/adrianhv34-code/inventario-app/internal/db"
	"github.com/adrianhv34-code/inventario-app/internal/report"
)

// newReportPDF starts a landscape A4 document with the shared title style.
func newReportPDF(title string) (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(title), false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, time.Now().UTC().Format("2006-01-02 15:04 UTC"), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	return pdf, tr
}

func pdfTableHeader(pdf *fpdf.Fpdf, tr func(string) string, widths []float64, labels []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, label := range labels {
		pdf.CellFormat(widths[i], 8, tr(label), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
}

// inventoryReportPDF renders the per-material summary table.
func inventoryReportPDF(rows []report.Row) ([]byte, error) {
	pdf, tr := newReportPDF("Reporte de Inventario")

	widths := []float64{60, 30, 45, 35, 45, 40}
	pdfTableHeader(pdf, tr, widths, []string{
		"Grado de Acero", "Diámetro", "Proveedor", "Total Rollos", "Peso (kg)", "Origen del Peso",
	})
	for _, row := range rows {
		pdf.CellFormat(widths[0], 7, tr(row.Grade), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%g", row.Diameter), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(row.Supplier), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%d", row.TotalRolls), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, fmt.Sprintf("%.2f", row.Weight), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 7, tr(tagLabel(row.Tag)), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.CellFormat(0, 7, tr("Sin datos registrados."), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// machineReportPDF renders the machine-run table, newest first.
func machineReportPDF(recs []db.MachineRecord) ([]byte, error) {
	pdf, tr := newReportPDF("Reporte de Máquinas")

	widths := []float64{35, 30, 45, 25, 25, 25, 25, 25, 25, 35}
	pdfTableHeader(pdf, tr, widths, []string{
		"Máquina", "Usuario", "Grado", "Diámetro",
		"Peso 1", "Peso 2", "Peso 3", "Peso 4", "Peso 5", "Fecha",
	})
	for _, m := range recs {
		pdf.CellFormat(widths[0], 7, tr(m.Machine), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, tr(m.Username), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(m.Grade), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%g", m.Diameter), "1", 0, "R", false, 0, "")
		for i := 0; i < 5; i++ {
			pdf.CellFormat(widths[4+i], 7, fmt.Sprintf("%.2f", m.Weights[i]), "1", 0, "R", false, 0, "")
		}
		pdf.CellFormat(widths[9], 7, time.Unix(m.CreatedAt, 0).UTC().Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	if len(recs) == 0 {
		pdf.CellFormat(0, 7, tr("Sin registros de máquinas."), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
