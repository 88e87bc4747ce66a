package booking

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"carebook/db"
	"carebook/globals"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

func hmacSecret() []byte {
	if s := os.Getenv("CONFIRMATION_SECRET"); s != "" {
		return []byte(s)
	}
	return globals.JwtSecret
}

// GenerateQRPayload returns a signed payload string:
// bookingID|treatment|date|slot|timestamp|signature
func GenerateQRPayload(b Booking) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d", b.ID, b.Treatment, b.AppointmentDate, b.Slot, time.Now().Unix())

	h := hmac.New(sha256.New, hmacSecret())
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

func renderConfirmationPDF(b Booking, qrPNG []byte) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Appointment Confirmation")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Treatment: %s", b.Treatment))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Date: %s", b.AppointmentDate))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Slot: %s", b.Slot))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Patient: %s", b.PatientName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Booking ID: %s", b.ID))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PrintConfirmation renders a PDF confirmation for a booking, stamped with a
// signed QR payload. Only the booking's patient may fetch it.
func PrintConfirmation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	user, _ := r.Context().Value(globals.UserKey).(string)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var b Booking
	if err := db.BookingsCollection.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		http.Error(w, "booking not found", http.StatusNotFound)
		return
	}
	if b.PatientEmail != user {
		http.Error(w, "Forbidden access", http.StatusForbidden)
		return
	}

	qrPNG, err := qrcode.Encode(GenerateQRPayload(b), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	out, err := renderConfirmationPDF(b, qrPNG)
	if err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=booking-"+b.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
