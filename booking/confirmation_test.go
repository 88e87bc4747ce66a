package booking

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
)

func TestGenerateQRPayloadSignature(t *testing.T) {
	b := Booking{
		ID:              "123",
		Treatment:       "Teeth Cleaning",
		AppointmentDate: "2026-08-28",
		Slot:            "09:00",
	}

	payload := GenerateQRPayload(b)
	parts := strings.Split(payload, "|")
	assert.Len(t, parts, 6)
	assert.Equal(t, "123", parts[0])
	assert.Equal(t, "Teeth Cleaning", parts[1])

	data := strings.Join(parts[:5], "|")
	h := hmac.New(sha256.New, hmacSecret())
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	assert.Equal(t, want, parts[5])
}

func TestRenderConfirmationPDF(t *testing.T) {
	b := Booking{
		ID:              "123",
		Treatment:       "Teeth Cleaning",
		AppointmentDate: "2026-08-28",
		Slot:            "09:00",
		PatientName:     "Jo Patient",
	}
	qrPNG, err := qrcode.Encode(GenerateQRPayload(b), qrcode.Medium, 256)
	assert.NoError(t, err)

	out, err := renderConfirmationPDF(b, qrPNG)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}
