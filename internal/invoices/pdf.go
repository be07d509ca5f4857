package invoices

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/wiibec/donations-backend/pkg/db/models"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

const (
	pdfMarginX = 15.0
	pdfMarginY = 20.0
)

// RenderPDF produces the printable tax receipt for an issued invoice.
func RenderPDF(invoice *models.Invoice) ([]byte, error) {
	if invoice == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "invoice is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetMargins(pdfMarginX, pdfMarginY, pdfMarginX)
	pdf.SetAutoPageBreak(true, pdfMarginY)

	// Organization header, snapshotted at issuance.
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(pdfMarginX, pdfMarginY)
	pdf.Cell(0, 10, invoice.OrgName)
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	if invoice.OrgNumber != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Numero d'enregistrement : %s", invoice.OrgNumber))
		pdf.Ln(6)
	}
	if invoice.OrgAddress != "" {
		pdf.Cell(0, 6, invoice.OrgAddress)
		pdf.Ln(6)
	}
	if invoice.OrgEmail != "" {
		pdf.Cell(0, 6, invoice.OrgEmail)
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "RECU DE DON")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Recu no : %s", invoice.InvoiceNumber))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Date d'emission : %s", invoice.IssueDate.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "DONATEUR")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, invoice.DonorName)
	pdf.Ln(6)
	pdf.Cell(0, 6, invoice.DonorEmail)
	pdf.Ln(6)
	if invoice.DonorAddress != nil && *invoice.DonorAddress != "" {
		pdf.Cell(0, 6, *invoice.DonorAddress)
		pdf.Ln(6)
	}
	pdf.Ln(6)

	// Single-line amount table.
	colWidths := []float64{130.0, 50.0}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(colWidths[0], 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colWidths[1], 8, "Montant", "1", 0, "R", true, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)
	pdf.CellFormat(colWidths[0], 8, "Don", "1", 0, "L", false, 0, "")
	pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%s $ CAD", invoice.Amount.StringFixed(2)), "1", 0, "R", false, 0, "")
	pdf.Ln(14)

	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 5, "Ce recu atteste du don recu par l'organisme. Conservez-le pour vos dossiers fiscaux.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice pdf")
	}
	return buf.Bytes(), nil
}
