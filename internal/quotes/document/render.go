// Package document renders quotes as PDF offers and publishes them to S3.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/wolfman30/sports-travel-platform/internal/money"
	"github.com/wolfman30/sports-travel-platform/internal/quotes"
)

// QuoteDocument is a quote plus the display names the PDF needs.
type QuoteDocument struct {
	Quote         *quotes.Quote
	CustomerName  string
	CustomerEmail string
	EventName     string
	EventLocation string
	PackageName   string
	Tier          string
	IssuedAt      time.Time
}

// Filename is the suggested name of the rendered PDF.
func (d QuoteDocument) Filename() string {
	id := "draft"
	if d.Quote != nil && d.Quote.ID != "" {
		id = d.Quote.ID
	}
	return "quote-" + id + ".pdf"
}

// Render lays out the quote with its price breakdown.
func Render(d QuoteDocument) ([]byte, error) {
	if d.Quote == nil {
		return nil, fmt.Errorf("document: quote required")
	}
	q := d.Quote
	issued := d.IssuedAt
	if issued.IsZero() {
		issued = time.Now().UTC()
	}
	breakdown := q.Breakdown()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Quote "+q.ID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "SportsTravel Quote")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		"Quote No    : " + safe(q.ID, "-"),
		"Issued      : " + issued.Format("02 Jan 2006"),
		"Valid until : " + q.ValidUntil.Format("02 Jan 2006"),
		"Status      : " + string(q.EffectiveStatus(issued)),
	}
	for _, s := range lines {
		pdf.Cell(0, 6, s)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Prepared for")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, safe(d.CustomerName, "-"))
	pdf.Ln(6)
	if d.CustomerEmail != "" {
		pdf.Cell(0, 6, d.CustomerEmail)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Trip")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	trip := []string{
		"Event       : " + safe(d.EventName, q.EventID),
		"Location    : " + safe(d.EventLocation, "-"),
		"Package     : " + packageLabel(d),
		"Travel date : " + formatDate(q.TravelDate),
		fmt.Sprintf("Travellers  : %d", q.NumberOfTravelers),
	}
	for _, s := range trip {
		pdf.Cell(0, 6, s)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Price")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	row(pdf, fmt.Sprintf("Base price x %d", breakdown.Travelers), money.FormatINRCode(breakdown.Subtotal))
	for _, line := range breakdown.Lines {
		row(pdf, adjustmentLabel(line), money.FormatINRCode(line.Delta))
	}
	pdf.SetFont("Helvetica", "B", 12)
	row(pdf, "Total", money.FormatINRCode(breakdown.FinalPrice))

	if q.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, q.Notes, "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("document: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func row(pdf *gofpdf.Fpdf, label, amount string) {
	pdf.CellFormat(130, 7, label, "B", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, amount, "B", 1, "R", false, 0, "")
}

func adjustmentLabel(line quotes.PriceLine) string {
	var parts []string
	if !line.Percentage.IsZero() {
		parts = append(parts, line.Percentage.String()+"%")
	}
	if !line.Value.IsZero() {
		parts = append(parts, money.FormatINRCode(line.Value))
	}
	if len(parts) == 0 {
		return line.Name
	}
	return fmt.Sprintf("%s (%s)", line.Name, strings.Join(parts, ", "))
}

func packageLabel(d QuoteDocument) string {
	name := safe(d.PackageName, d.Quote.PackageID)
	if d.Tier != "" {
		return name + " [" + d.Tier + "]"
	}
	return name
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
