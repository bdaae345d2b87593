// Package pdf renders the printable invoice and delivery challan documents.
package pdf

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// Company is the letterhead block shared by both documents.
type Company struct {
	Name      string
	Address1  string
	Address2  string
	GSTIN     string
	PAN       string
	Mobile    string
	BankName  string
	IFSC      string
	AccountNo string
	Branch    string
	UPIID     string
}

// Line is one printed item row.
type Line struct {
	No     int
	Name   string
	Qty    int
	Rate   float64
	Amount float64
}

// InvoiceDoc is everything the tax-invoice layout needs.
type InvoiceDoc struct {
	Company       Company
	InvoiceNo     string
	InvoiceDate   string
	ClientName    string
	ClientAddress string
	ClientGSTIN   string
	ClientState   string
	Lines         []Line
	TaxEnabled    bool
	TaxableAmount float64
	CGST          float64
	SGST          float64
	Freight       float64
	TotalAmount   float64
	AmountInWords string
}

// ChallanDoc is the delivery-challan layout input; quantities only, no money.
type ChallanDoc struct {
	Company       Company
	ChallanNo     string
	Date          string
	ClientName    string
	ClientMobile  string
	ClientAddress string
	ClientGSTIN   string
	ClientState   string
	Lines         []Line
	TotalQuantity int
}

func newDoc() *gofpdf.Fpdf {
	f := gofpdf.New("P", "mm", "A4", "")
	f.SetMargins(12, 12, 12)
	f.AddPage()
	return f
}

func letterhead(f *gofpdf.Fpdf, c Company, title string) {
	f.SetFont("Helvetica", "B", 16)
	f.CellFormat(120, 8, c.Name, "", 0, "L", false, 0, "")
	f.SetFont("Helvetica", "B", 13)
	f.CellFormat(0, 8, title, "", 1, "R", false, 0, "")
	f.SetFont("Helvetica", "", 9)
	for _, line := range []string{c.Address1, c.Address2, "GSTIN: " + c.GSTIN, "Mobile: " + c.Mobile, "PAN: " + c.PAN} {
		f.CellFormat(0, 4.5, line, "", 1, "L", false, 0, "")
	}
	f.Ln(3)
}

func billTo(f *gofpdf.Fpdf, rows []string) {
	f.SetFillColor(253, 219, 194)
	f.SetFont("Helvetica", "B", 10)
	f.CellFormat(0, 6, "BILL TO", "", 1, "L", true, 0, "")
	f.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		f.CellFormat(0, 5, r, "", 1, "L", false, 0, "")
	}
	f.Ln(3)
}

// upiQR encodes a upi://pay deep link for the payable amount. Returns nil
// when no UPI id is configured; the layout just omits the QR block.
func upiQR(c Company, amount float64) []byte {
	if c.UPIID == "" {
		return nil
	}
	q := url.Values{}
	q.Set("pa", c.UPIID)
	q.Set("pn", c.Name)
	if amount > 0 {
		q.Set("am", fmt.Sprintf("%.2f", amount))
	}
	png, err := qrcode.Encode("upi://pay?"+q.Encode(), qrcode.Medium, 256)
	if err != nil {
		return nil
	}
	return png
}

func embedQR(f *gofpdf.Fpdf, png []byte, x, y float64) {
	if png == nil {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	f.RegisterImageOptionsReader("upi-qr", opts, bytes.NewReader(png))
	f.ImageOptions("upi-qr", x, y, 30, 30, false, opts, 0, "")
}

// RenderInvoice produces the printable tax invoice as PDF bytes.
func RenderInvoice(doc InvoiceDoc) ([]byte, error) {
	f := newDoc()
	letterhead(f, doc.Company, "TAX INVOICE")

	f.SetFont("Helvetica", "", 9)
	f.CellFormat(0, 5, "Invoice No.: "+doc.InvoiceNo, "", 1, "R", false, 0, "")
	f.CellFormat(0, 5, "Invoice Date: "+doc.InvoiceDate, "", 1, "R", false, 0, "")
	f.Ln(2)

	billTo(f, []string{
		"Name: " + doc.ClientName,
		"Address: " + doc.ClientAddress,
		"GSTIN: " + doc.ClientGSTIN,
		"State: " + doc.ClientState,
	})

	// Items table
	widths := []float64{15, 85, 25, 30, 31}
	headers := []string{"S.NO.", "ITEMS", "QTY", "RATE", "AMOUNT"}
	f.SetFillColor(253, 219, 194)
	f.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		f.CellFormat(widths[i], 6, h, "1", 0, "C", true, 0, "")
	}
	f.Ln(-1)
	f.SetFont("Helvetica", "", 9)
	totalQty := 0
	for _, l := range doc.Lines {
		totalQty += l.Qty
		f.CellFormat(widths[0], 6, fmt.Sprintf("%d", l.No), "1", 0, "L", false, 0, "")
		f.CellFormat(widths[1], 6, l.Name, "1", 0, "L", false, 0, "")
		f.CellFormat(widths[2], 6, fmt.Sprintf("%d", l.Qty), "1", 0, "R", false, 0, "")
		f.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", l.Rate), "1", 0, "R", false, 0, "")
		f.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", l.Amount), "1", 1, "R", false, 0, "")
	}
	f.SetFont("Helvetica", "B", 9)
	f.CellFormat(widths[0]+widths[1], 6, "SUBTOTAL", "1", 0, "L", true, 0, "")
	f.CellFormat(widths[2], 6, fmt.Sprintf("%d", totalQty), "1", 0, "R", true, 0, "")
	f.CellFormat(widths[3], 6, "", "1", 0, "R", true, 0, "")
	f.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", doc.TaxableAmount), "1", 1, "R", true, 0, "")
	f.Ln(4)

	// Bank details on the left, totals on the right.
	startY := f.GetY()
	f.SetFont("Helvetica", "B", 9)
	f.CellFormat(90, 5, "BANK DETAILS", "", 1, "L", false, 0, "")
	f.SetFont("Helvetica", "", 9)
	for _, r := range []string{
		"Bank Name: " + doc.Company.BankName,
		"IFSC: " + doc.Company.IFSC,
		"Account No: " + doc.Company.AccountNo,
		"Branch: " + doc.Company.Branch,
		"UPI ID: " + doc.Company.UPIID,
	} {
		f.CellFormat(90, 5, r, "", 1, "L", false, 0, "")
	}
	embedQR(f, upiQR(doc.Company, doc.TotalAmount), 12, f.GetY()+2)

	f.SetY(startY)
	totals := [][2]string{
		{"TAXABLE AMOUNT", fmt.Sprintf("%.2f", doc.TaxableAmount)},
		{"CGST @9%", fmt.Sprintf("%.2f", doc.CGST)},
		{"SGST @9%", fmt.Sprintf("%.2f", doc.SGST)},
		{"Freight", fmt.Sprintf("%.2f", doc.Freight)},
		{"TOTAL AMOUNT", fmt.Sprintf("%.2f", doc.TotalAmount)},
	}
	for i, row := range totals {
		style := ""
		if i == len(totals)-1 {
			style = "B"
		}
		f.SetFont("Helvetica", style, 9)
		f.SetX(110)
		f.CellFormat(50, 6, row[0], "", 0, "R", false, 0, "")
		f.CellFormat(36, 6, row[1], "", 1, "R", false, 0, "")
	}
	f.Ln(4)
	f.SetX(110)
	f.SetFont("Helvetica", "I", 9)
	f.MultiCell(86, 5, "Total Amount (in words): "+doc.AmountInWords, "", "R", false)
	f.Ln(10)
	f.SetX(110)
	f.SetFont("Helvetica", "", 9)
	f.MultiCell(86, 5, "Authorised Signature for\n"+doc.Company.Name, "", "R", false)

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderChallan produces the printable delivery challan as PDF bytes.
func RenderChallan(doc ChallanDoc) ([]byte, error) {
	f := newDoc()
	letterhead(f, doc.Company, "DELIVERY CHALLAN")

	f.SetFont("Helvetica", "", 9)
	f.CellFormat(0, 5, "Challan No.: "+doc.ChallanNo, "", 1, "R", false, 0, "")
	f.CellFormat(0, 5, "Date: "+doc.Date, "", 1, "R", false, 0, "")
	f.Ln(2)

	billTo(f, []string{
		"Name: " + doc.ClientName,
		"Mobile: " + doc.ClientMobile,
		"Address: " + doc.ClientAddress,
		"GSTIN: " + doc.ClientGSTIN,
		"State: " + doc.ClientState,
	})

	widths := []float64{20, 131, 35}
	headers := []string{"S.NO.", "ITEMS", "QTY"}
	f.SetFillColor(229, 250, 255)
	f.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		f.CellFormat(widths[i], 6, h, "1", 0, "C", true, 0, "")
	}
	f.Ln(-1)
	f.SetFont("Helvetica", "", 9)
	for _, l := range doc.Lines {
		f.CellFormat(widths[0], 6, fmt.Sprintf("%d", l.No), "1", 0, "L", false, 0, "")
		f.CellFormat(widths[1], 6, l.Name, "1", 0, "L", false, 0, "")
		f.CellFormat(widths[2], 6, fmt.Sprintf("%d", l.Qty), "1", 1, "R", false, 0, "")
	}
	f.SetFont("Helvetica", "B", 9)
	f.CellFormat(widths[0]+widths[1], 6, "TOTAL", "1", 0, "L", true, 0, "")
	f.CellFormat(widths[2], 6, fmt.Sprintf("%d", doc.TotalQuantity), "1", 1, "R", true, 0, "")
	f.Ln(8)

	embedQR(f, upiQR(doc.Company, 0), 12, f.GetY())
	f.SetFont("Helvetica", "", 9)
	f.SetY(f.GetY() + 34)
	f.MultiCell(0, 5, "Authorised Signature for\n"+doc.Company.Name, "", "R", false)

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("render challan pdf: %w", err)
	}
	return buf.Bytes(), nil
}
