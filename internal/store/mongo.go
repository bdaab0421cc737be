package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"academy/internal/apperr"
)

// Mongo keeps one mongo collection per named collection, keyed by string _id.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects and pings the server.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &Mongo{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) ListAll(ctx context.Context, collection string) ([]Record, error) {
	cur, err := m.db.Collection(collection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_created", Value: 1}}))
	if err != nil {
		return nil, apperr.Unavailable("list "+collection, err)
	}
	defer cur.Close(ctx)

	var res []Record
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, apperr.Unavailable("decode "+collection, err)
		}
		rec, err := fromBSON(raw)
		if err != nil {
			return nil, apperr.Unavailable("decode "+collection, err)
		}
		res = append(res, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Unavailable("list "+collection, err)
	}
	return res, nil
}

func (m *Mongo) Get(ctx context.Context, collection, id string) (Record, error) {
	var raw bson.M
	if err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Record{}, apperr.NotFound(collection, id)
		}
		return Record{}, apperr.Unavailable("get "+collection, err)
	}
	rec, err := fromBSON(raw)
	if err != nil {
		return Record{}, apperr.Unavailable("decode "+collection+"/"+id, err)
	}
	return rec, nil
}

func (m *Mongo) Create(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	body := toBSON(doc)
	body["_id"] = id
	body["_created"] = time.Now().UTC()
	if _, err := m.db.Collection(collection).InsertOne(ctx, body); err != nil {
		return "", apperr.Unavailable("create "+collection, err)
	}
	return id, nil
}

func (m *Mongo) Update(ctx context.Context, collection, id string, doc Document) error {
	set := toBSON(doc)
	delete(set, "_id")
	delete(set, "_created")
	res, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return apperr.Unavailable("update "+collection, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(collection, id)
	}
	return nil
}

func (m *Mongo) Upsert(ctx context.Context, collection, id string, doc Document) error {
	if id == "" {
		return apperr.Invalid("upsert into %s needs an id", collection)
	}
	coll := m.db.Collection(collection)
	created := time.Now().UTC()
	var prev struct {
		Created time.Time `bson:"_created"`
	}
	err := coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"_created": 1})).Decode(&prev)
	switch {
	case err == nil && !prev.Created.IsZero():
		created = prev.Created
	case err != nil && !errors.Is(err, mongo.ErrNoDocuments):
		return apperr.Unavailable("upsert "+collection, err)
	}

	body := toBSON(doc)
	body["_id"] = id
	body["_created"] = created
	_, err = coll.ReplaceOne(ctx, bson.M{"_id": id}, body, options.Replace().SetUpsert(true))
	if err != nil {
		return apperr.Unavailable("upsert "+collection, err)
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	res, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Unavailable("delete "+collection, err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(collection, id)
	}
	return nil
}

func toBSON(doc Document) bson.M {
	out := make(bson.M, len(doc)+2)
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// fromBSON strips the storage fields and normalises driver types through JSON.
func fromBSON(raw bson.M) (Record, error) {
	id, _ := raw["_id"].(string)
	delete(raw, "_id")
	delete(raw, "_created")
	doc, err := Clone(Document(raw))
	if err != nil {
		return Record{}, err
	}
	return Record{ID: id, Doc: doc}, nil
}
