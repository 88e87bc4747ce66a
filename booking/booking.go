package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"carebook/db"
	"carebook/globals"
	"carebook/services"
	"carebook/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func genID() string {
	return utils.GenerateRandomDigitString(22)
}

// ---------- Models ----------
type Booking struct {
	ID              string `json:"id" bson:"id"`
	Treatment       string `json:"treatment" bson:"treatment"`
	AppointmentDate string `json:"appointmentDate" bson:"appointmentDate"`
	Slot            string `json:"slot" bson:"slot"`
	PatientName     string `json:"patientName,omitempty" bson:"patientName,omitempty"`
	PatientEmail    string `json:"patientEmail" bson:"patientEmail"`
	Phone           string `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt       int64  `json:"createdAt" bson:"createdAt"`
}

// identityFilter is the dedup key: one booking per treatment, date and
// patient. Mirrors the unique index in db.EnsureIndexes.
func identityFilter(b Booking) bson.M {
	return bson.M{
		"treatment":       b.Treatment,
		"appointmentDate": b.AppointmentDate,
		"patientEmail":    b.PatientEmail,
	}
}

func validate(b Booking) string {
	switch {
	case b.Treatment == "":
		return "missing treatment"
	case b.AppointmentDate == "":
		return "missing appointmentDate"
	case b.Slot == "":
		return "missing slot"
	case b.PatientEmail == "":
		return "missing patientEmail"
	}
	return ""
}

// ---------- Handlers ----------

// CreateBooking admits a booking or reports it as a duplicate. Admission is a
// single conditional insert: the unique index decides, so concurrent
// submissions with the same identity cannot both win. A duplicate is a normal
// outcome (success=false with the surviving booking), not an error.
func CreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var b Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if msg := validate(b); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	b.ID = genID()
	b.CreatedAt = time.Now().Unix()
	// canonical date on the write side so availability queries line up
	b.AppointmentDate = services.NormalizeDate(b.AppointmentDate)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, err := db.BookingsCollection.InsertOne(ctx, b)
	if mongo.IsDuplicateKeyError(err) {
		var existing Booking
		if err := db.BookingsCollection.FindOne(ctx, identityFilter(b)).Decode(&existing); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": false, "booking": existing})
		return
	}
	if err != nil {
		http.Error(w, "db insert failed", http.StatusInternalServerError)
		return
	}

	services.InvalidateAvailability(ctx, b.AppointmentDate)
	broadcastSlotTaken(b)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "booking": b})
}

// GetBookings lists the caller's bookings. The patient query parameter must
// match the verified identity; asking for someone else's bookings is
// Forbidden.
func GetBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	patient := r.URL.Query().Get("patient")
	user, _ := r.Context().Value(globals.UserKey).(string)

	if patient == "" || patient != user {
		http.Error(w, "Forbidden access", http.StatusForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.BookingsCollection.Find(ctx, bson.M{"patientEmail": patient})
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	bookings := []Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, bookings)
}
