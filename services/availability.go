package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"carebook/db"
	"carebook/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const availabilityCacheTTL = 30 * time.Second

// bookedSlot is the slice of a booking the availability partition cares about.
type bookedSlot struct {
	Treatment string `bson:"treatment"`
	Slot      string `bson:"slot"`
}

// available returns a derived copy of the services with every slot removed
// that a booking on the queried date has claimed for that service. Matching
// is by service name, case-sensitive. Inputs are not mutated.
func available(list []Service, booked []bookedSlot) []Service {
	out := make([]Service, 0, len(list))
	for _, svc := range list {
		taken := make(map[string]bool, len(booked))
		for _, b := range booked {
			if b.Treatment == svc.Name {
				taken[b.Slot] = true
			}
		}

		free := make([]string, 0, len(svc.Slots))
		for _, s := range svc.Slots {
			if !taken[s] {
				free = append(free, s)
			}
		}
		svc.Slots = free
		out = append(out, svc)
	}
	return out
}

// NormalizeDate canonicalizes calendar dates to zero-padded YYYY-MM-DD.
// The lenient layout accepts unpadded month/day (2026-1-5, 2026-01-5) so
// producer and consumer formatting quirks compare equal. Admission applies
// the same normalization on the write side, so stored and queried dates meet
// in canonical form. Anything unparseable is matched verbatim.
func NormalizeDate(date string) string {
	t, err := time.Parse("2006-1-2", date)
	if err != nil {
		return date
	}
	return t.Format("2006-01-02")
}

func cacheKey(date string) string {
	return "available:" + date
}

// InvalidateAvailability drops the cached availability view for a date.
// Called by booking admission; a missing cache is not an error.
func InvalidateAvailability(ctx context.Context, date string) {
	if db.Redis == nil {
		return
	}
	if err := db.Redis.Del(ctx, cacheKey(NormalizeDate(date))).Err(); err != nil {
		log.Printf("availability cache invalidate failed for %s: %v", date, err)
	}
}

// GetAvailable computes, for the queried date, every service with only its
// unbooked slots. A date with no bookings returns every service untouched.
func GetAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "missing date", http.StatusBadRequest)
		return
	}
	date = NormalizeDate(date)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if db.Redis != nil {
		if cached, err := db.Redis.Get(ctx, cacheKey(date)).Bytes(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	cur, err := db.ServicesCollection.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	allServices := []Service{}
	if err := cur.All(ctx, &allServices); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	bcur, err := db.BookingsCollection.Find(ctx, bson.M{"appointmentDate": date})
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	booked := []bookedSlot{}
	if err := bcur.All(ctx, &booked); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	result := available(allServices, booked)

	if db.Redis != nil {
		if payload, err := json.Marshal(result); err == nil {
			if err := db.Redis.Set(ctx, cacheKey(date), payload, availabilityCacheTTL).Err(); err != nil {
				log.Printf("availability cache write failed for %s: %v", date, err)
			}
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}
