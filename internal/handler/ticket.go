package handler

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"

	"github.com/joestump/joe-events/internal/store"
)

// WriteTicket renders a one-page PDF ticket for the order to w.
func WriteTicket(w io.Writer, o *store.OrderLine) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // core fonts are cp1252
	pdf.SetTitle("Ticket "+o.ID, true)
	pdf.SetCreator("joe-events", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, tr(o.EventTitle), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, tr(o.EventStartsAt.UTC().Format("Monday, January 2 2006 at 15:04 MST")), "", 1, "L", false, 0, "")
	if o.EventVenue != "" {
		pdf.CellFormat(0, 7, tr(o.EventVenue), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	rows := [][2]string{
		{"Name", o.BuyerName},
		{"Email", o.BuyerEmail},
		{"Tickets", fmt.Sprintf("%d", o.Quantity)},
		{"Total", formatMoney(o.TotalCents)},
		{"Order", o.ID},
		{"Placed", o.CreatedAt.UTC().Format("2006-01-02 15:04 MST")},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(30, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(row[1]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Show this ticket at the door. One admission per ticket.", "", "", false)

	return pdf.Output(w)
}
