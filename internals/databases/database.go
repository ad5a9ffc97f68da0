package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/configs"
)

var (
	Client *mongo.Client
	DB     *mongo.Database
)

// Collection names used across features.
const (
	ColMarksheets    = "marksheets"
	ColUsers         = "users"
	ColNotifications = "notifications"
	ColSubscriptions = "push_subscriptions"
)

func ConnectDB() {
	uri := configs.GetEnv("MONGODB_URI", "mongodb://localhost:27017")
	dbName := configs.GetEnv("MONGODB_DATABASE", "msec_academics")

	log.Println("🔌 Connecting to MongoDB...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(uint64(configs.GetEnvInt("MONGODB_MAX_POOL", 20))).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Fatalf("❌ Mongo connect failed: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("❌ Mongo ping failed: %v", err)
	}

	Client = client
	DB = client.Database(dbName)
	log.Printf("✅ MongoDB connected (db=%s)", dbName)
}

// EnsureIndexes creates the indexes the dispatch queries lean on. Safe to run
// on every boot; Mongo treats existing identical indexes as a no-op.
func EnsureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	marksheets := DB.Collection(ColMarksheets)
	_, err := marksheets.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// One marksheet per (student, examination).
		{
			Keys: bson.D{
				{Key: "student.registerNumber", Value: 1},
				{Key: "examName", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{
			{Key: "dispatchRequest.status", Value: 1},
			{Key: "dispatchRequest.scheduledDispatchDate", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "staff.id", Value: 1},
			{Key: "student.department", Value: 1},
			{Key: "student.year", Value: 1},
		}},
	})
	if err != nil {
		log.Printf("⚠️ Marksheet index build failed: %v", err)
	}

	users := DB.Collection(ColUsers)
	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("⚠️ User index build failed: %v", err)
	}
}

func Disconnect() {
	if Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = Client.Disconnect(ctx)
}
