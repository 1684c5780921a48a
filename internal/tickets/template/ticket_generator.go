package template

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"ms-edarshan/internal/models"
	"ms-edarshan/internal/pricing"
)

// gopdf works in points; layout constants are written in millimetres.
const mm = 72.0 / 25.4

const (
	fontRegular = "go"
	fontBold    = "go-bold"
)

var instructions = []string{
	"Please arrive 30 minutes before your scheduled time",
	"Carry a valid photo ID for verification",
	"This ticket is non-transferable and valid only for the specified date and time",
	"Photography may be restricted in certain areas",
	"Follow temple guidelines and maintain decorum",
	"In case of emergency, contact temple authorities immediately",
}

// TicketDocument is everything printed on an entry pass.
type TicketDocument struct {
	BookingID      string
	TempleName     string
	TempleLocation string
	TempleContact  string
	IssuedAt       time.Time
	Devotees       []models.Devotee
	Tickets        models.TicketCounts
	UnitPrices     models.PriceTable
	Total          float64
	Currency       string
	Status         models.BookingStatus
	QRPNG          []byte
}

func DocumentFor(b models.Booking, t models.Temple, qrPNG []byte) TicketDocument {
	return TicketDocument{
		BookingID:      b.ID,
		TempleName:     t.Name,
		TempleLocation: t.Location,
		TempleContact:  t.Contact,
		IssuedAt:       b.CreatedAt,
		Devotees:       b.Roster(),
		Tickets:        b.Tickets,
		UnitPrices:     b.UnitPrices,
		Total:          b.TotalPrice,
		Currency:       b.Currency,
		Status:         b.PaymentStatus,
		QRPNG:          qrPNG,
	}
}

type TicketPDFGenerator struct {
	BackgroundPath string
}

func NewTicketPDFGenerator(backgroundPath string) *TicketPDFGenerator {
	return &TicketPDFGenerator{BackgroundPath: backgroundPath}
}

// Generate renders one A4 entry pass. A missing background image or QR code
// degrades the page instead of failing it.
func (g *TicketPDFGenerator) Generate(doc TicketDocument) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.SetInfo(gopdf.PdfInfo{
		Title:   "E-Darshan Entry Pass " + doc.BookingID,
		Subject: doc.TempleName,
		Creator: "Temple Analytics Platform",
	})
	pdf.AddPage()

	if err := pdf.AddTTFFontData(fontRegular, goregular.TTF); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	if err := pdf.AddTTFFontData(fontBold, gobold.TTF); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	pageW, pageH := gopdf.PageSizeA4.W, gopdf.PageSizeA4.H

	g.addBackground(pdf, pageW, pageH)
	addHeader(pdf, pageW)

	y := 60 * mm
	y = addBookingDetails(pdf, doc, y)
	addQRCode(pdf, doc, pageW)

	y += 10 * mm
	y = addDevotees(pdf, doc.Devotees, y, pageH)

	y += 8 * mm
	y = addTierSummary(pdf, doc, y)

	y += 10 * mm
	if y > pageH-70*mm {
		pdf.AddPage()
		y = 30 * mm
	}
	addInstructions(pdf, y)
	addFooter(pdf, doc, pageW, pageH)

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *TicketPDFGenerator) addBackground(pdf *gopdf.GoPdf, pageW, pageH float64) {
	if g.BackgroundPath != "" {
		if _, err := os.Stat(g.BackgroundPath); err == nil {
			if err := pdf.Image(g.BackgroundPath, 0, 0, &gopdf.Rect{W: pageW, H: pageH}); err == nil {
				return
			}
		}
	}
	pdf.SetFillColor(255, 255, 255)
	pdf.RectFromUpperLeftWithStyle(0, 0, pageW, pageH, "F")
}

func addHeader(pdf *gopdf.GoPdf, pageW float64) {
	pdf.SetFillColor(139, 69, 19)
	pdf.RectFromUpperLeftWithStyle(0, 0, pageW, 45*mm, "F")
	pdf.SetFillColor(255, 140, 0)
	pdf.RectFromUpperLeftWithStyle(0, 0, pageW, 3*mm, "F")

	pdf.SetTextColor(255, 255, 255)
	setFont(pdf, fontBold, 20)
	centered(pdf, "E-DARSHAN ENTRY PASS", pageW, 20*mm)
	setFont(pdf, fontRegular, 11)
	centered(pdf, "Sacred Temple Analytics Platform", pageW, 32*mm)
}

func addBookingDetails(pdf *gopdf.GoPdf, doc TicketDocument, y float64) float64 {
	y = sectionHeading(pdf, "BOOKING DETAILS", y)

	details := [][2]string{
		{"Booking ID:", doc.BookingID},
		{"Temple:", orNA(doc.TempleName)},
		{"Location:", orNA(doc.TempleLocation)},
		{"Date:", formatDate(doc.IssuedAt)},
		{"Ticket Type:", ticketTypes(doc.Tickets)},
		{"Number of Tickets:", fmt.Sprintf("%d", doc.Tickets.Total())},
		{"Total Amount:", formatAmount(doc.Currency, doc.Total)},
		{"Status:", strings.ToUpper(string(doc.Status))},
	}
	if doc.TempleContact != "" {
		details = append(details, [2]string{"Contact:", doc.TempleContact})
	}

	pdf.SetTextColor(0, 0, 0)
	for _, d := range details {
		setFont(pdf, fontBold, 11)
		pdf.SetXY(20*mm, y)
		pdf.Cell(nil, d[0])
		setFont(pdf, fontRegular, 11)
		pdf.SetXY(60*mm, y)
		pdf.Cell(nil, d[1])
		y += 8 * mm
	}
	return y
}

func addQRCode(pdf *gopdf.GoPdf, doc TicketDocument, pageW float64) {
	x, y, size := pageW-80*mm, 80*mm, 50*mm

	pdf.SetTextColor(0, 0, 0)
	setFont(pdf, fontBold, 10)
	pdf.SetXY(x, y-6*mm)
	pdf.Cell(nil, "SCAN FOR ENTRY")

	drawn := false
	if len(doc.QRPNG) > 0 {
		if img, err := png.Decode(bytes.NewReader(doc.QRPNG)); err == nil {
			drawn = pdf.ImageFrom(img, x, y, &gopdf.Rect{W: size, H: size}) == nil
		}
	}
	if !drawn {
		pdf.SetStrokeColor(0, 0, 0)
		pdf.SetLineWidth(1)
		pdf.RectFromUpperLeftWithStyle(x, y, size, size, "D")
		setFont(pdf, fontRegular, 9)
		pdf.SetXY(x+8*mm, y+size/2)
		pdf.Cell(nil, "QR UNAVAILABLE")
	}

	setFont(pdf, fontRegular, 8)
	pdf.SetXY(x, y+size+4*mm)
	pdf.Cell(nil, "ID: "+shortID(doc.BookingID))
}

func addDevotees(pdf *gopdf.GoPdf, devotees []models.Devotee, y, pageH float64) float64 {
	y = sectionHeading(pdf, "DEVOTEE DETAILS", y)

	setFont(pdf, fontBold, 11)
	pdf.SetXY(25*mm, y)
	pdf.Cell(nil, "Name")
	pdf.SetXY(120*mm, y)
	pdf.Cell(nil, "Age")
	y += 9 * mm

	setFont(pdf, fontRegular, 11)
	for _, d := range devotees {
		pdf.SetXY(25*mm, y)
		pdf.Cell(nil, orNA(d.Name))
		pdf.SetXY(120*mm, y)
		if d.Age > 0 {
			pdf.Cell(nil, fmt.Sprintf("%d", d.Age))
		} else {
			pdf.Cell(nil, "N/A")
		}
		y += 8 * mm

		if y > pageH-50*mm {
			pdf.AddPage()
			y = 30 * mm
			setFont(pdf, fontRegular, 11)
		}
	}
	return y
}

func addTierSummary(pdf *gopdf.GoPdf, doc TicketDocument, y float64) float64 {
	y = sectionHeading(pdf, "TICKET SUMMARY", y)

	setFont(pdf, fontRegular, 11)
	for _, line := range pricing.Breakdown(doc.Tickets, doc.UnitPrices) {
		pdf.SetXY(25*mm, y)
		pdf.Cell(nil, fmt.Sprintf("%s  %d x %s = %s", line.Tier, line.Count,
			formatAmount(doc.Currency, line.UnitPrice), formatAmount(doc.Currency, line.Subtotal)))
		y += 7 * mm
	}
	return y
}

func addInstructions(pdf *gopdf.GoPdf, y float64) {
	y = sectionHeading(pdf, "IMPORTANT INSTRUCTIONS", y)

	setFont(pdf, fontRegular, 10)
	for _, line := range instructions {
		pdf.SetXY(22*mm, y)
		pdf.Cell(nil, "- "+line)
		y += 6 * mm
	}
}

func addFooter(pdf *gopdf.GoPdf, doc TicketDocument, pageW, pageH float64) {
	pdf.SetTextColor(100, 100, 100)
	setFont(pdf, fontRegular, 8)
	centered(pdf, "Generated by Temple Analytics Platform", pageW, pageH-15*mm)
	centered(pdf, "Issued "+formatDate(doc.IssuedAt), pageW, pageH-10*mm)
}

func sectionHeading(pdf *gopdf.GoPdf, title string, y float64) float64 {
	pdf.SetTextColor(0, 0, 0)
	setFont(pdf, fontBold, 15)
	pdf.SetXY(20*mm, y)
	pdf.Cell(nil, title)

	pdf.SetStrokeColor(0, 0, 0)
	pdf.SetLineWidth(2)
	pdf.Line(20*mm, y+8*mm, 80*mm, y+8*mm)
	return y + 14*mm
}

func setFont(pdf *gopdf.GoPdf, family string, size float64) {
	// Both families are registered in Generate, so SetFont cannot fail here.
	_ = pdf.SetFont(family, "", size)
}

func centered(pdf *gopdf.GoPdf, text string, pageW, y float64) {
	width, err := pdf.MeasureTextWidth(text)
	if err != nil {
		width = 0
	}
	pdf.SetXY((pageW-width)/2, y)
	pdf.Cell(nil, text)
}

func ticketTypes(c models.TicketCounts) string {
	var parts []string
	if c.Regular > 0 {
		parts = append(parts, fmt.Sprintf("%d Regular", c.Regular))
	}
	if c.VIP > 0 {
		parts = append(parts, fmt.Sprintf("%d VIP", c.VIP))
	}
	if c.Senior > 0 {
		parts = append(parts, fmt.Sprintf("%d Senior", c.Senior))
	}
	if len(parts) == 0 {
		return "N/A"
	}
	return strings.Join(parts, ", ")
}

func formatAmount(currency string, amount float64) string {
	if currency == "" {
		currency = "inr"
	}
	return fmt.Sprintf("%s %.2f", strings.ToUpper(currency), amount)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("02 Jan 2006")
}

func shortID(id string) string {
	if len(id) > 13 {
		return id[:13]
	}
	return id
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
