package notification

import (
	"context"
	"fmt"

	"ms-edarshan/internal/apperr"
	"ms-edarshan/internal/models"
	"ms-edarshan/internal/notification/email"
	qr "ms-edarshan/internal/tickets/qr_generator"
	"ms-edarshan/internal/tickets/template"
)

// TicketRenderer produces the PDF attached to confirmation mails.
type TicketRenderer interface {
	Generate(doc template.TicketDocument) ([]byte, error)
}

// Composer builds confirmation mails for paid bookings and hands them to the
// mail transport.
type Composer struct {
	Mailer   email.Mailer
	Renderer TicketRenderer
}

func NewComposer(mailer email.Mailer, renderer TicketRenderer) *Composer {
	return &Composer{Mailer: mailer, Renderer: renderer}
}

func (c *Composer) SendConfirmation(ctx context.Context, b models.Booking, t models.Temple) error {
	if b.Email == "" {
		return apperr.DeliveryFailure("booking has no e-mail address", nil)
	}

	html, err := email.RenderConfirmation(b, t)
	if err != nil {
		return apperr.DeliveryFailure("failed to render confirmation", err)
	}

	// A broken QR only degrades the PDF.
	png, _ := qr.DecodeDataURL(b.QRCode)
	pdf, err := c.Renderer.Generate(template.DocumentFor(b, t, png))
	if err != nil {
		return apperr.DeliveryFailure("failed to render ticket PDF", err)
	}

	msg := email.Message{
		FromName: t.Name,
		To:       b.Email,
		Subject:  email.ConfirmationSubject(t.Name),
		HTML:     html,
		Attachments: []email.Attachment{{
			Filename:    email.TicketFilename(b.ID),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}

	if err := c.Mailer.Send(ctx, msg); err != nil {
		return apperr.DeliveryFailure(fmt.Sprintf("failed to deliver confirmation to %s", b.Email), err)
	}
	return nil
}

func (c *Composer) SendTestEmail(ctx context.Context, to string) error {
	html, err := email.RenderTest(to)
	if err != nil {
		return apperr.DeliveryFailure("failed to render test email", err)
	}

	err = c.Mailer.Send(ctx, email.Message{
		FromName: "E-Darshan System",
		To:       to,
		Subject:  "Test Email - E-Darshan System",
		HTML:     html,
	})
	if err != nil {
		return apperr.DeliveryFailure("failed to send test email", err)
	}
	return nil
}
