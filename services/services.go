package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"carebook/db"
	"carebook/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

func genID() string {
	return utils.GenerateRandomDigitString(22)
}

// ---------- Models ----------
type Service struct {
	ID    string   `json:"id" bson:"id"`
	Name  string   `json:"name" bson:"name"`
	Price float64  `json:"price" bson:"price"`
	Slots []string `json:"slots" bson:"slots"`
}

// ---------- Handlers ----------

// GetServices returns every service with its full slot list, in store order.
func GetServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.ServicesCollection.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	services := []Service{}
	if err := cur.All(ctx, &services); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, services)
}

func CreateService(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var svc Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if svc.Name == "" || len(svc.Slots) == 0 {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	svc.ID = genID()

	if _, err := db.ServicesCollection.InsertOne(r.Context(), svc); err != nil {
		http.Error(w, "db insert failed", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"service": svc})
}

func UpdateService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	var svc Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	update := bson.M{"$set": bson.M{
		"name":  svc.Name,
		"price": svc.Price,
		"slots": svc.Slots,
	}}
	res, err := db.ServicesCollection.UpdateOne(r.Context(), bson.M{"id": id}, update)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "service not found", http.StatusNotFound)
		return
	}
	svc.ID = id
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"service": svc})
}

func DeleteService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.ServicesCollection.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
