package db

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	Client *mongo.Client
	Redis  *redis.Client

	ServicesCollection *mongo.Collection
	BookingsCollection *mongo.Collection
	UserCollection     *mongo.Collection
	DoctorsCollection  *mongo.Collection
)

// Connect dials MongoDB (and Redis, when configured) and binds the
// collection handles. Call once from main before serving.
func Connect(ctx context.Context) error {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return err
	}
	Client = client

	database := client.Database("doctors_portal")
	ServicesCollection = database.Collection("services")
	BookingsCollection = database.Collection("bookings")
	UserCollection = database.Collection("users")
	DoctorsCollection = database.Collection("doctors")

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		Redis = redis.NewClient(&redis.Options{
			Addr:     redisURL,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		})
		if err := Redis.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unavailable, availability cache disabled: %v", err)
			Redis = nil
		}
	}

	return EnsureIndexes(ctx)
}

// EnsureIndexes creates the unique booking identity index. The index is what
// makes admission atomic: two concurrent submissions with the same
// (treatment, appointmentDate, patientEmail) cannot both insert.
func EnsureIndexes(ctx context.Context) error {
	_, err := BookingsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "treatment", Value: 1},
			{Key: "appointmentDate", Value: 1},
			{Key: "patientEmail", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("booking_identity"),
	})
	return err
}

// Close releases the store handles. Safe to call with a short deadline ctx
// during shutdown.
func Close(ctx context.Context) error {
	if Redis != nil {
		if err := Redis.Close(); err != nil {
			log.Printf("Redis close error: %v", err)
		}
	}
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}
