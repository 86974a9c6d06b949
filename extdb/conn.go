package extdb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNoDocument is returned by Database lookups that match nothing.
var ErrNoDocument = mongo.ErrNoDocuments

// Database is the subset of a document database the catalog needs.
// Every collection is schema-less; documents are plain bson.M values.
type Database interface {
	Name() string
	ListCollectionNames(ctx context.Context) ([]string, error)
	FindAll(ctx context.Context, collection string) ([]bson.M, error)
	FindByID(ctx context.Context, collection string, id interface{}) (bson.M, error)
	InsertOne(ctx context.Context, collection string, doc bson.M) (interface{}, error)
	UpdateByID(ctx context.Context, collection string, id interface{}, set bson.M) (bson.M, error)
	DeleteByID(ctx context.Context, collection string, id interface{}) (int64, error)
}

// Conn is a pooled, live handle to one external database.
type Conn interface {
	Database
	Ping(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// DialOptions are the driver settings applied to every external connection.
type DialOptions struct {
	ConnectTimeoutMS int64
	MaxPoolSize      uint64
	MinPoolSize      uint64
}

// Dialer opens a connection to the database named dbName at uri.
type Dialer func(ctx context.Context, uri, dbName string) (Conn, error)

// MongoDialer returns a Dialer backed by the official MongoDB driver.
func MongoDialer(opts DialOptions) Dialer {
	return func(ctx context.Context, uri, dbName string) (Conn, error) {
		timeout := msDuration(opts.ConnectTimeoutMS)
		clientOptions := options.Client().ApplyURI(uri).
			SetConnectTimeout(timeout).
			SetServerSelectionTimeout(timeout).
			SetMaxPoolSize(opts.MaxPoolSize).
			SetMinPoolSize(opts.MinPoolSize)

		client, err := mongo.Connect(ctx, clientOptions)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping: %w", err)
		}
		return &mongoConn{client: client, db: client.Database(dbName)}, nil
	}
}

type mongoConn struct {
	client *mongo.Client
	db     *mongo.Database
}

func (c *mongoConn) Name() string { return c.db.Name() }

func (c *mongoConn) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *mongoConn) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *mongoConn) ListCollectionNames(ctx context.Context) ([]string, error) {
	return c.db.ListCollectionNames(ctx, bson.D{})
}

func (c *mongoConn) FindAll(ctx context.Context, collection string) ([]bson.M, error) {
	cur, err := c.db.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *mongoConn) FindByID(ctx context.Context, collection string, id interface{}) (bson.M, error) {
	var doc bson.M
	err := c.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *mongoConn) InsertOne(ctx context.Context, collection string, doc bson.M) (interface{}, error) {
	res, err := c.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

func (c *mongoConn) UpdateByID(ctx context.Context, collection string, id interface{}, set bson.M) (bson.M, error) {
	var doc bson.M
	err := c.db.Collection(collection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *mongoConn) DeleteByID(ctx context.Context, collection string, id interface{}) (int64, error) {
	res, err := c.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DocumentID converts an API identifier into the value stored in _id.
// Hex strings become ObjectIDs; anything else is matched as a plain string.
func DocumentID(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// IDString renders a raw _id value as an API identifier.
func IDString(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

func isNoDocument(err error) bool {
	return errors.Is(err, ErrNoDocument)
}
