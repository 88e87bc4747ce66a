package users

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"carebook/db"
	"carebook/globals"
	"carebook/middleware"
	"carebook/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const accessTokenTTL = 24 * time.Hour

// User is keyed by email. Role is always stored explicitly; new users get
// "user" so no document ever lacks the field.
type User struct {
	User string `json:"user" bson:"user"`
	Role string `json:"role" bson:"role"`
}

// MintToken issues the access token for an identity. Upsert is the only
// caller; there is no other issuance path.
func MintToken(email string) (string, error) {
	claims := &middleware.Claims{
		User: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

// UpsertUser creates or refreshes the User record for an email and returns a
// fresh access token. Calling it twice leaves exactly one record.
func UpsertUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		User string `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.User == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"user": body.User},
		bson.M{
			"$set":         bson.M{"user": body.User},
			"$setOnInsert": bson.M{"role": "user"},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	accessToken, err := MintToken(body.User)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"user":        body.User,
		"created":     res.UpsertedCount == 1,
		"accessToken": accessToken,
	})
}

// GetUsers lists every user. Authenticated.
func GetUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.UserCollection.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	users := []User{}
	if err := cur.All(ctx, &users); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}

// SetRole overwrites the target's role. Admin-gated at the route; the role
// field is never removed, only rewritten.
func SetRole(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		User    string `json:"user"`
		IsAdmin bool   `json:"isAdmin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.User == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	role := "user"
	if body.IsAdmin {
		role = "admin"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"user": body.User},
		bson.M{"$set": bson.M{"role": role}},
	)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, User{User: body.User, Role: role})
}

// CheckAdmin reports whether an email belongs to an admin. An unknown user is
// simply not an admin.
func CheckAdmin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	email := ps.ByName("email")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var u User
	err := db.UserCollection.FindOne(ctx, bson.M{"user": email}).Decode(&u)
	if err != nil && err != mongo.ErrNoDocuments {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"admin": u.Role == "admin"})
}
