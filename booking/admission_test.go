package booking

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"carebook/db"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

type admissionResponse struct {
	Success bool    `json:"success"`
	Booking Booking `json:"booking"`
}

func submit(t *testing.T, body Booking) (*httptest.ResponseRecorder, admissionResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	assert.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	CreateBooking(w, r, nil)

	var resp admissionResponse
	if w.Code == http.StatusOK {
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	}
	return w, resp
}

func TestCreateBookingAdmits(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("fresh booking", func(mt *mtest.T) {
		db.BookingsCollection = mt.Coll
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		w, resp := submit(mt.T, Booking{
			Treatment:       "Teeth Cleaning",
			AppointmentDate: "2026-8-5",
			Slot:            "09:00",
			PatientEmail:    "jo@example.com",
		})

		assert.Equal(mt, http.StatusOK, w.Code)
		assert.True(mt, resp.Success)
		assert.NotEmpty(mt, resp.Booking.ID)
		// write side stores the canonical date form
		assert.Equal(mt, "2026-08-05", resp.Booking.AppointmentDate)
	})
}

func TestCreateBookingDuplicateReturnsExisting(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate identity", func(mt *mtest.T) {
		db.BookingsCollection = mt.Coll
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error",
			}),
			mtest.CreateCursorResponse(1, "doctors_portal.bookings", mtest.FirstBatch, bson.D{
				{Key: "id", Value: "111"},
				{Key: "treatment", Value: "Teeth Cleaning"},
				{Key: "appointmentDate", Value: "2026-08-05"},
				{Key: "slot", Value: "09:00"},
				{Key: "patientEmail", Value: "jo@example.com"},
				{Key: "createdAt", Value: int64(1756000000)},
			}),
		)

		w, resp := submit(mt.T, Booking{
			Treatment:       "Teeth Cleaning",
			AppointmentDate: "2026-08-05",
			Slot:            "10:00",
			PatientEmail:    "jo@example.com",
		})

		// a duplicate is a normal outcome carrying the surviving booking
		assert.Equal(mt, http.StatusOK, w.Code)
		assert.False(mt, resp.Success)
		assert.Equal(mt, "111", resp.Booking.ID)
		assert.Equal(mt, "09:00", resp.Booking.Slot)
		assert.Equal(mt, int64(1756000000), resp.Booking.CreatedAt)
	})
}

func TestCreateBookingResubmissionAcceptedOnce(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("idempotent resubmission", func(mt *mtest.T) {
		db.BookingsCollection = mt.Coll

		req := Booking{
			Treatment:       "Teeth Cleaning",
			AppointmentDate: "2026-08-05",
			Slot:            "09:00",
			PatientEmail:    "jo@example.com",
		}

		mt.AddMockResponses(mtest.CreateSuccessResponse())
		_, first := submit(mt.T, req)
		assert.True(mt, first.Success)

		// second submission hits the unique index; the store hands back the
		// first booking unchanged
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error",
			}),
			mtest.CreateCursorResponse(1, "doctors_portal.bookings", mtest.FirstBatch, bson.D{
				{Key: "id", Value: first.Booking.ID},
				{Key: "treatment", Value: first.Booking.Treatment},
				{Key: "appointmentDate", Value: first.Booking.AppointmentDate},
				{Key: "slot", Value: first.Booking.Slot},
				{Key: "patientEmail", Value: first.Booking.PatientEmail},
				{Key: "createdAt", Value: first.Booking.CreatedAt},
			}),
		)
		_, second := submit(mt.T, req)

		assert.False(mt, second.Success)
		assert.Equal(mt, first.Booking, second.Booking)
	})
}

func TestCreateBookingStoreFailure(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert failure is fatal to the request", func(mt *mtest.T) {
		db.BookingsCollection = mt.Coll
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11600,
			Message: "interrupted",
			Name:    "InterruptedAtShutdown",
		}))

		w, _ := submit(mt.T, Booking{
			Treatment:       "Teeth Cleaning",
			AppointmentDate: "2026-08-05",
			Slot:            "09:00",
			PatientEmail:    "jo@example.com",
		})

		assert.Equal(mt, http.StatusInternalServerError, w.Code)
	})
}
