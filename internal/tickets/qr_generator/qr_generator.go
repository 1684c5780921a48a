package qr

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"ms-edarshan/internal/models"
)

const dataURLPrefix = "data:image/png;base64,"

var (
	ErrMalformedPayload = errors.New("malformed QR payload")
	ErrInvalidSignature = errors.New("QR signature mismatch")
)

// Payload is the content scanned at the temple gate. Field order is fixed so
// the encoded text is identical for identical bookings.
type Payload struct {
	BookingID   string               `json:"bookingId"`
	Temple      string               `json:"temple"`
	DevoteeName string               `json:"devoteeName"`
	Tickets     models.TicketCounts  `json:"tickets"`
	Status      models.BookingStatus `json:"status"`
	Signature   string               `json:"sig,omitempty"`
}

// Code is an encoded payload in the forms the rest of the service needs.
type Code struct {
	Payload string
	PNG     []byte
	DataURL string
}

type QRGenerator struct {
	secret []byte
	size   int
}

func NewQRGenerator(secret string) *QRGenerator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &QRGenerator{secret: hashed[:], size: 256}
}

func PayloadFor(b models.Booking, templeName string, status models.BookingStatus) Payload {
	return Payload{
		BookingID:   b.ID,
		Temple:      templeName,
		DevoteeName: b.DevoteeName,
		Tickets:     b.Tickets,
		Status:      status,
	}
}

// Generate signs p and renders it. The output depends only on p and the secret.
func (q *QRGenerator) Generate(p Payload) (*Code, error) {
	p.Signature = ""
	sig, err := q.sign(p)
	if err != nil {
		return nil, err
	}
	p.Signature = sig

	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, q.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	return &Code{
		Payload: string(data),
		PNG:     png,
		DataURL: dataURLPrefix + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Verify parses a scanned payload and checks it was issued by this service.
func (q *QRGenerator) Verify(raw string) (*Payload, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.BookingID == "" || p.Signature == "" {
		return nil, ErrMalformedPayload
	}

	got, err := hex.DecodeString(p.Signature)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	unsigned := p
	unsigned.Signature = ""
	want, err := q.mac(unsigned)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal(got, want) {
		return nil, ErrInvalidSignature
	}

	return &p, nil
}

func (q *QRGenerator) sign(p Payload) (string, error) {
	sum, err := q.mac(p)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

func (q *QRGenerator) mac(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	h := hmac.New(sha256.New, q.secret)
	h.Write(data)
	return h.Sum(nil), nil
}

// DecodeDataURL returns the PNG bytes stored on a booking.
func DecodeDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, dataURLPrefix) {
		return nil, errors.New("not a PNG data URL")
	}
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, dataURLPrefix))
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		return nil, errors.New("data URL is not a PNG")
	}
	return png, nil
}
