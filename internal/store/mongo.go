// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pdiddy/pmid-pdf/pkg/types"
)

const articlesCollection = "articles"

// flagDefaults are written on insert for flags the update does not set,
// so new documents match the SQL schema defaults.
var flagDefaults = []string{
	"has_pdf", "has_abstract", "full_text_available",
	"commercial_use_allowed", "download_attempted",
}

// Mongo stores articles in a MongoDB collection with a unique pmid index.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// OpenMongo connects to uri and prepares the articles collection in
// database.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is not set")
	}
	if database == "" {
		database = "pmid_pdf"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	m := &Mongo{
		client: client,
		coll:   client.Database(database).Collection(articlesCollection),
		now:    func() time.Time { return time.Now().UTC() },
	}
	if err := m.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pmid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "doi", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if _, err := m.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// Find returns the record for pmid, or nil if none exists.
func (m *Mongo) Find(ctx context.Context, pmid string) (*types.ArticleRecord, error) {
	if pmid == "" {
		return nil, ErrEmptyPMID
	}
	var rec types.ArticleRecord
	err := m.coll.FindOne(ctx, bson.M{"pmid": pmid}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding article %s: %w", pmid, err)
	}
	return &rec, nil
}

// Upsert applies u with a single FindOneAndUpdate. Two racing inserts of
// the same pmid can trip the unique index; the loser retries once as an
// update.
func (m *Mongo) Upsert(ctx context.Context, pmid string, u types.ArticleUpdate) (*types.ArticleRecord, error) {
	if pmid == "" {
		return nil, ErrEmptyPMID
	}

	now := m.now()
	set := bson.M{"updated_at": now}
	for col, v := range u.Fields() {
		set[col] = v
	}
	onInsert := bson.M{"pmid": pmid, "created_at": now}
	for _, flag := range flagDefaults {
		if _, ok := set[flag]; !ok {
			onInsert[flag] = false
		}
	}
	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var rec types.ArticleRecord
	err := m.coll.FindOneAndUpdate(ctx, bson.M{"pmid": pmid}, update, opts).Decode(&rec)
	if mongo.IsDuplicateKeyError(err) {
		err = m.coll.FindOneAndUpdate(ctx, bson.M{"pmid": pmid}, update, opts).Decode(&rec)
	}
	if err != nil {
		return nil, fmt.Errorf("upserting article %s: %w", pmid, err)
	}
	return &rec, nil
}
