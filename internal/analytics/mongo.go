// mongo.go - MongoDB sink for match decision analytics

package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/teklifware/product_match_api/internal/matcher"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "match_analytics"

// MongoSink persists match decisions for offline review. Record never
// blocks or fails the matching request; write errors are only logged.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSink connects to MongoDB and verifies connectivity
func NewMongoSink(uri, dbName string) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Println("✅ Connected to MongoDB successfully!")
	return &MongoSink{
		client: client,
		coll:   client.Database(dbName).Collection(collectionName),
	}, nil
}

// Close closes the MongoDB connection
func (s *MongoSink) Close() {
	if s.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.client.Disconnect(ctx)
		log.Println("MongoDB connection closed")
	}
}

// decisionDoc is the stored shape of one match decision
type decisionDoc struct {
	RequestID       string    `bson:"request_id" json:"request_id"`
	CustomerRequest string    `bson:"customer_request" json:"customer_request"`
	ProductID       string    `bson:"product_id,omitempty" json:"product_id,omitempty"`
	Strategy        string    `bson:"strategy" json:"strategy"`
	Confidence      float64   `bson:"confidence" json:"confidence"`
	ElapsedMS       int64     `bson:"elapsed_ms" json:"elapsed_ms"`
	TokensUsed      int       `bson:"tokens_used" json:"tokens_used"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}

// Record writes one decision. Runs on the engine's goroutine with its own
// detached context so a slow Mongo cannot hold a finished request open.
func (s *MongoSink) Record(rec matcher.MatchRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doc := decisionDoc{
		RequestID:       rec.RequestID,
		CustomerRequest: rec.CustomerRequest,
		ProductID:       rec.ProductID,
		Strategy:        rec.Strategy,
		Confidence:      rec.Confidence,
		ElapsedMS:       rec.ElapsedMS,
		TokensUsed:      rec.TokensUsed,
		CreatedAt:       time.Now(),
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		log.Printf("⚠️ Analitik kaydı yazılamadı [%s]: %v", rec.RequestID, err)
	}
}

// RecentDecisions returns the latest recorded decisions, newest first
func (s *MongoSink) RecentDecisions(ctx context.Context, limit int) ([]bson.M, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics: %w", err)
	}
	defer cursor.Close(ctx)

	var decisions []bson.M
	if err := cursor.All(ctx, &decisions); err != nil {
		return nil, fmt.Errorf("failed to decode analytics: %w", err)
	}
	return decisions, nil
}
