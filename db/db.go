package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	jobsCollection  = "jobs"
)

// Mongo holds the client and the collections the stores read and write.
type Mongo struct {
	Client         *mongo.Client
	UserCollection *mongo.Collection
	JobCollection  *mongo.Collection
}

// Connect dials MongoDB, pings it and ensures the indexes exist.
func Connect(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	m, err := open(ctx, client, database)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to MongoDB database %q", database)
	return m, nil
}

// open binds the collections and builds the indexes. The client is
// disconnected if index creation fails.
func open(ctx context.Context, client *mongo.Client, database string) (*Mongo, error) {
	m := &Mongo{
		Client:         client,
		UserCollection: client.Database(database).Collection(usersCollection),
		JobCollection:  client.Database(database).Collection(jobsCollection),
	}
	if err := m.CreateIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

// CreateIndexes sets up the unique email index and the job lookup indexes.
func (m *Mongo) CreateIndexes(ctx context.Context) error {
	_, err := m.UserCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	_, err = m.JobCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "postedBy", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "skills", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "applicants.userId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create job indexes: %w", err)
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// Store returns the mongo-backed implementation of Store.
func (m *Mongo) Store() Store {
	return struct {
		*MongoUsers
		*MongoJobs
	}{
		MongoUsers: NewMongoUsers(m.UserCollection),
		MongoJobs:  NewMongoJobs(m.JobCollection, m.UserCollection),
	}
}
