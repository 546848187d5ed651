// Package pdf renders the printable form of each report variant. The layout
// follows the paper forms the plant used before this system: a boxed document
// header, the variant's business fields, the structured tables, and the
// sign-off block.
package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"inspection-backend/internal/models"
	"inspection-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

const pageWidth = 190.0 // A4 portrait minus 10mm margins

func newDoc() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	return pdf
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return timeutil.FormatIST(*t, "02-Jan-2006")
}

func fmtDateTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return timeutil.FormatIST(*t, "02-Jan-2006 03:04 PM")
}

func fmtValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// docHeader draws the boxed document-identity header shared by all variants.
func docHeader(pdf *gofpdf.Fpdf, h *models.Header) {
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(pageWidth, 9, h.Unit, "1", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(pageWidth, 8, h.Title, "LRB", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(63, 6, fmt.Sprintf("Document No: %s", h.DocumentNo), "1", 0, "L", false, 0, "")
	pdf.CellFormat(63, 6, fmt.Sprintf("Revision: %s", h.Revision), "1", 0, "L", false, 0, "")
	pdf.CellFormat(64, 6, fmt.Sprintf("Effective Date: %s", fmtDate(h.EffectiveDate)), "1", 1, "L", false, 0, "")
	pdf.CellFormat(63, 6, fmt.Sprintf("Scope: %s", h.Scope), "1", 0, "L", false, 0, "")
	pdf.CellFormat(63, 6, fmt.Sprintf("Prepared By: %s", h.PreparedBy), "1", 0, "L", false, 0, "")
	pdf.CellFormat(64, 6, fmt.Sprintf("Approved By: %s", h.ApprovedBy), "1", 1, "L", false, 0, "")
	pdf.Ln(4)
}

// fieldRows draws label/value pairs two to a line.
func fieldRows(pdf *gofpdf.Fpdf, pairs [][2]string) {
	pdf.SetFont("Arial", "", 10)
	for i := 0; i < len(pairs); i += 2 {
		pdf.CellFormat(95, 7, fmt.Sprintf("%s: %s", pairs[i][0], pairs[i][1]), "1", 0, "L", false, 0, "")
		if i+1 < len(pairs) {
			pdf.CellFormat(95, 7, fmt.Sprintf("%s: %s", pairs[i+1][0], pairs[i+1][1]), "1", 1, "L", false, 0, "")
		} else {
			pdf.CellFormat(95, 7, "", "1", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)
}

// payloadTable draws one structured table. Columns come from the sorted key
// set of the first row; rows missing a key render blank.
func payloadTable(pdf *gofpdf.Fpdf, title string, rows []models.PayloadRow) {
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(pageWidth, 7, title, "1", 1, "L", true, 0, "")

	if len(rows) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(pageWidth, 6, "No entries recorded", "1", 1, "C", false, 0, "")
		pdf.Ln(4)
		return
	}

	var cols []string
	for k := range rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	colWidth := pageWidth / float64(len(cols))
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	for _, c := range cols {
		pdf.CellFormat(colWidth, 6, c, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		for _, c := range cols {
			val := fmtValue(row[c])
			if len(val) > 30 {
				val = val[:27] + "..."
			}
			pdf.CellFormat(colWidth, 6, val, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

// workflowBlock draws the review trail at the bottom of the form.
func workflowBlock(pdf *gofpdf.Fpdf, w *models.Workflow) {
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(pageWidth, 7, fmt.Sprintf("Status: %s", w.Status), "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, fmt.Sprintf("Submitted By: %s", w.SubmittedBy), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Submitted At: %s", fmtDateTime(w.SubmittedAt)), "1", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Reviewed By: %s", w.ReviewedBy), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Reviewed At: %s", fmtDateTime(w.ReviewedAt)), "1", 1, "L", false, 0, "")
	if w.Comments != "" {
		pdf.CellFormat(pageWidth, 7, fmt.Sprintf("Comments: %s", w.Comments), "1", 1, "L", false, 0, "")
	}
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderInspectionForm renders a first article inspection form (coating or
// printing) to PDF bytes.
func RenderInspectionForm(f *models.InspectionForm) ([]byte, error) {
	pdf := newDoc()
	docHeader(pdf, &f.Header)

	fieldRows(pdf, [][2]string{
		{"Inspection Date", fmtDate(f.InspectionDate)},
		{"Shift", f.Shift},
		{"Product", f.Product},
		{"Variant", f.Variant},
		{"Size No", f.SizeNo},
		{"Line No", f.LineNo},
		{"Customer", f.Customer},
		{"Sample Size", f.SampleSize},
		{"Machine No", f.McNo},
	})

	tableTitle := "Lacquers"
	if f.FormType == models.FormTypePrinting {
		tableTitle = "Inks"
	}
	payloadTable(pdf, tableTitle, f.TableData)
	payloadTable(pdf, "Characteristics", f.Characteristics)

	fieldRows(pdf, [][2]string{
		{"QA Executive", f.QAExecutive},
		{"Production Operator", f.ProductionOperator},
		{"Final Approval Time", f.FinalApprovalTime},
	})

	workflowBlock(pdf, &f.Workflow)
	return output(pdf)
}

// RenderIncomingQuality renders an IQC report to PDF bytes.
func RenderIncomingQuality(rep *models.IncomingQualityReport) ([]byte, error) {
	pdf := newDoc()
	docHeader(pdf, &rep.Header)

	receivedQty, auditedQty := "-", "-"
	if rep.ProductReceivedQuantity != nil {
		receivedQty = fmt.Sprintf("%d", *rep.ProductReceivedQuantity)
	}
	if rep.QuantityAudited != nil {
		auditedQty = fmt.Sprintf("%d", *rep.QuantityAudited)
	}

	fieldRows(pdf, [][2]string{
		{"IQC Date", fmtDate(rep.IQCDate)},
		{"Shift", rep.Shift},
		{"Product / Variant", rep.ProductVariantName},
		{"Received From", rep.ProductReceivedFrom},
		{"Supplier Shift", rep.SupplierShift},
		{"Received Date", fmtDate(rep.ProductReceivedDate)},
		{"Received Quantity", receivedQty},
		{"Quantity Audited", auditedQty},
		{"Batch Number", rep.BatchNumber},
	})

	payloadTable(pdf, "Audit Results", rep.AuditResults)
	payloadTable(pdf, "Test Results", rep.TestResults)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(pageWidth, 9, fmt.Sprintf("Quality Decision: %s", rep.QualityDecision), "1", 1, "C", false, 0, "")
	pdf.Ln(2)

	fieldRows(pdf, [][2]string{
		{"Quality Manager", rep.QualityManagerName},
		{"Signed On", fmtDate(rep.SignatureDate)},
	})

	workflowBlock(pdf, &rep.Workflow)
	return output(pdf)
}

// RenderLineClearance renders a line clearance report to PDF bytes.
func RenderLineClearance(rep *models.LineClearanceReport) ([]byte, error) {
	pdf := newDoc()
	docHeader(pdf, &rep.Header)

	fieldRows(pdf, [][2]string{
		{"Report Date", fmtDate(rep.ReportDate)},
		{"Shift", rep.Shift},
		{"Line", rep.Line},
		{"Product", rep.ProductName},
		{"Production Area", string(rep.ProductionArea)},
		{"Existing Variant", rep.ExistingVariantName},
		{"New Variant", rep.NewVariantName},
		{"Variant Stop Time", fmtDateTime(rep.ExistingVariantStopTime)},
		{"Variant Start Time", fmtDateTime(rep.NewVariantStartTime)},
	})

	payloadTable(pdf, "Check Points", rep.CheckPoints)

	fieldRows(pdf, [][2]string{
		{"Responsible", rep.ResponsibleName},
		{"Production", rep.ProductionName},
		{"Quality", rep.QualityName},
	})

	workflowBlock(pdf, &rep.Workflow)
	return output(pdf)
}
