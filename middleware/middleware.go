package middleware

import (
	"context"
	"fmt"
	"net/http"

	"carebook/db"
	"carebook/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// JWT claims
type Claims struct {
	User string `json:"user"`
	jwt.RegisteredClaims
}

// Authenticate resolves the bearer credential into a verified identity and
// stores it on the request context. Missing and invalid credentials are
// rejected with distinct messages so clients can tell the cases apart.
func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
			http.Error(w, "Invalid token format", http.StatusUnauthorized)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
			return globals.JwtSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), globals.UserKey, claims.User)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireAdmin gates a route on the verified identity holding the admin role.
// Must wrap inside Authenticate; an unknown requester is Forbidden, not an
// error. The check is read-only.
func RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		email, _ := r.Context().Value(globals.UserKey).(string)
		if email == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		var u struct {
			Role string `bson:"role"`
		}
		err := db.UserCollection.FindOne(r.Context(), bson.M{"user": email}).Decode(&u)
		if err != nil && err != mongo.ErrNoDocuments {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if u.Role != "admin" {
			http.Error(w, "Only an admin can perform this action", http.StatusForbidden)
			return
		}

		next(w, r, ps)
	}
}

func ValidateJWT(tokenString string) (*Claims, error) {
	if tokenString == "" || len(tokenString) < 8 {
		return nil, fmt.Errorf("invalid token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
		return globals.JwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	return claims, nil
}
