package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"ms-edarshan/internal/models"
	"ms-edarshan/internal/pricing"
)

const confirmationHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>E-Darshan Booking Confirmation</title>
</head>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background: #f8f9fa;">
<div style="background: #764ba2; border-radius: 15px; padding: 30px; color: white;">
  <div style="text-align: center;">
    <h1>E-Darshan Booking Confirmed!</h1>
    <div style="background: #4caf50; padding: 8px 16px; border-radius: 20px; display: inline-block;">Payment Successful</div>
    <p>Your digital ticket PDF is attached to this email. Download and save it for temple entry.</p>
  </div>
  <div style="background: white; color: #333; border-radius: 10px; padding: 25px; margin: 20px 0;">
    <h2 style="color: #1976d2; text-align: center;">Digital Ticket</h2>
    <div style="background: #e3f2fd; color: #1976d2; padding: 10px; border-radius: 8px; font-weight: bold; text-align: center;">Booking ID: {{.BookingID}}</div>
    <table style="width: 100%; margin-top: 20px;">
      <tr><td><strong>Devotee Name:</strong></td><td>{{.DevoteeName}}</td></tr>
      <tr><td><strong>Age:</strong></td><td>{{if .Age}}{{.Age}}{{else}}Not specified{{end}}</td></tr>
      <tr><td><strong>Temple:</strong></td><td>{{.TempleName}}</td></tr>
      <tr><td><strong>Location:</strong></td><td>{{.TempleLocation}}</td></tr>
      <tr><td><strong>Tickets:</strong></td><td>{{.TicketSummary}}</td></tr>
      {{range .Companions}}<tr><td><strong>Companion:</strong></td><td>{{.Name}}{{if .Age}} ({{.Age}}){{end}}</td></tr>
      {{end}}<tr><td><strong>Total Amount:</strong></td><td style="font-weight: bold; color: #4caf50;">{{.Total}}</td></tr>
    </table>
    {{if .QRCode}}<div style="text-align: center; margin: 25px 0; padding: 20px; background: #f8f9fa; border-radius: 8px;">
      <h4>QR Code for Entry</h4>
      <img src="{{.QRCode}}" alt="QR Code" style="max-width: 200px; border: 3px solid #ddd; border-radius: 8px;">
      <p style="font-size: 12px; color: #666;">Show this QR code at the temple entrance for verification</p>
    </div>{{end}}
  </div>
  <div style="background: #fff3cd; border-radius: 8px; padding: 15px; color: #856404;">
    <h4>Important Information</h4>
    <ul>
      <li>Please arrive 15 minutes before your scheduled time</li>
      <li>Carry a valid photo ID for verification</li>
      <li>Names must match exactly with the ID</li>
      <li>Keep this email as your digital ticket</li>
      <li>In case of any issues, contact temple administration</li>
    </ul>
  </div>
  <div style="text-align: center; margin-top: 30px; color: rgba(255,255,255,0.8);">
    <p>Thank you for choosing our E-Darshan service!</p>
    <p style="font-size: 12px;">This is an automated email. Please do not reply to this email.</p>
  </div>
</div>
</body>
</html>`

const testHTML = `<h2>Test Email</h2>
<p>This is a test email from the E-Darshan booking system.</p>
<p>If you received this email, the email service is working correctly!</p>
<p style="font-size: 12px; color: #666;">Sent to {{.}}</p>`

var (
	confirmationTmpl = template.Must(template.New("confirmation").Parse(confirmationHTML))
	testTmpl         = template.Must(template.New("test").Parse(testHTML))
)

type confirmationView struct {
	BookingID      string
	DevoteeName    string
	Age            int
	TempleName     string
	TempleLocation string
	TicketSummary  string
	Companions     []models.Devotee
	Total          string
	QRCode         template.URL
}

// ConfirmationSubject is the subject line of the booking confirmation.
func ConfirmationSubject(templeName string) string {
	return "🎫 E-Darshan Booking Confirmed - " + templeName
}

// TicketFilename names the PDF attachment.
func TicketFilename(bookingID string) string {
	return fmt.Sprintf("E-Darshan-Ticket-%s.pdf", bookingID)
}

func RenderConfirmation(b models.Booking, t models.Temple) (string, error) {
	view := confirmationView{
		BookingID:      b.ID,
		DevoteeName:    b.DevoteeName,
		Age:            b.Age,
		TempleName:     t.Name,
		TempleLocation: t.Location,
		TicketSummary:  TierSummary(b.Tickets, b.UnitPrices),
		Companions:     b.AdditionalDevotees,
		Total:          fmt.Sprintf("₹%.2f", b.TotalPrice),
	}
	// The stored QR is always a data URL produced by this service.
	if strings.HasPrefix(b.QRCode, "data:image/png;base64,") {
		view.QRCode = template.URL(b.QRCode)
	}

	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return buf.String(), nil
}

func RenderTest(to string) (string, error) {
	var buf bytes.Buffer
	if err := testTmpl.Execute(&buf, to); err != nil {
		return "", fmt.Errorf("render test email: %w", err)
	}
	return buf.String(), nil
}

// TierSummary renders "2 Regular (₹50 each), 1 VIP (₹200 each)".
func TierSummary(counts models.TicketCounts, prices models.PriceTable) string {
	var parts []string
	for _, line := range pricing.Breakdown(counts, prices) {
		parts = append(parts, fmt.Sprintf("%d %s (₹%s each)", line.Count, line.Tier, trimAmount(line.UnitPrice)))
	}
	return strings.Join(parts, ", ")
}

func trimAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	return strings.TrimSuffix(s, ".00")
}
