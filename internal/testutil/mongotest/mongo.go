// Package mongotest connects tests to a live MongoDB given by MONGO_URI.
package mongotest

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	hotelsrepo "travelbook/internal/hotels/repository"
	migrations "travelbook/internal/migrations/mongo"
	"travelbook/pkg/client"
	"travelbook/pkg/config"
	"travelbook/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	EnvMongoURI       = "MONGO_URI"
	ConnectionTimeout = 10 * time.Second
	OperationTimeout  = 10 * time.Second
)

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
	Config   *config.Config
}

// NewMongoHelper migrates a fresh database and drops it when the test ends.
// The test is skipped when MONGO_URI is unset or the server cannot run transactions.
func NewMongoHelper(t *testing.T) *MongoHelper {
	t.Helper()

	mongoURI := os.Getenv(EnvMongoURI)
	if mongoURI == "" {
		t.Skipf("%s not set", EnvMongoURI)
	}

	log := logger.Discard()
	c := client.NewClient()
	c.SetMongo(log, mongoURI, ConnectionTimeout)

	dbName := "travelbook_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	m := &MongoHelper{
		Client:   c.Mongo,
		Database: c.Mongo.Database(dbName),
		DBName:   dbName,
		Config: &config.Config{
			MongoURI:          mongoURI,
			MongoDatabaseName: dbName,
			ReadTimeout:       OperationTimeout,
			WriteTimeout:      OperationTimeout,
			Log:               log,
			Client:            c,
		},
	}
	t.Cleanup(func() { m.Close(t) })

	if !m.supportsTransactions(t) {
		t.Skip("MongoDB at MONGO_URI is standalone; transactions need a replica set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()
	if err := migrations.RunMigration(ctx, m.Client, dbName, log); err != nil {
		t.Fatalf("failed to migrate %s: %v", dbName, err)
	}
	return m
}

func (m *MongoHelper) supportsTransactions(t *testing.T) bool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	if err := m.Client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		t.Fatalf("hello failed: %v", err)
	}
	return hello.SetName != "" || hello.Msg == "isdbgrid"
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	if err := m.Database.Drop(ctx); err != nil {
		t.Logf("warning: failed to drop %s: %v", m.DBName, err)
	}
	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string, filter any) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

// Insert stores doc with a fresh ObjectID and returns the id as hex.
func (m *MongoHelper) Insert(t *testing.T, collectionName string, doc bson.M) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	id := primitive.NewObjectID()
	doc["_id"] = id
	if _, err := m.Database.Collection(collectionName).InsertOne(ctx, doc); err != nil {
		t.Fatalf("failed to insert into %s: %v", collectionName, err)
	}
	return id.Hex()
}

// SeedRoomType inserts a hotel listing one room type with countInStock rooms.
func (m *MongoHelper) SeedRoomType(t *testing.T, countInStock int) (hotelID, roomTypeID string) {
	t.Helper()

	hotelOID := primitive.NewObjectID()
	roomTypeID = m.Insert(t, hotelsrepo.RoomTypesCollection, bson.M{
		"hotel":           hotelOID.Hex(),
		"name":            "Deluxe",
		"price_per_night": 120.0,
		"count_in_stock":  countInStock,
		"capacity":        3,
		"booking_seq":     int64(0),
		"created_at":      time.Now().UTC(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()
	_, err := m.Database.Collection(hotelsrepo.HotelsCollection).InsertOne(ctx, bson.M{
		"_id":        hotelOID,
		"name":       "Harbour View",
		"city":       "Lisbon",
		"room_types": []string{roomTypeID},
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to insert hotel: %v", err)
	}
	return hotelOID.Hex(), roomTypeID
}
