package durability

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mahjong3p/internal/engine"
	"mahjong3p/internal/logging"
)

// ColdStore is the engine.RecordStore implementation: an append-only mongo
// collection of completed GameRecords, written once per settlement.
type ColdStore struct {
	coll *mongo.Collection
}

// NewColdStore wraps a mongo database's "gameRecords" collection. db may be
// nil, in which case SaveRecord is a logged no-op (mongo-less dev/test
// mode).
func NewColdStore(db *mongo.Database) *ColdStore {
	if db == nil {
		return &ColdStore{}
	}
	coll := db.Collection("gameRecords")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "roomid", Value: 1}, {Key: "createdatms", Value: -1}}},
		{Keys: bson.D{{Key: "winnerseat", Value: 1}}},
		{Keys: bson.D{{Key: "createdatms", Value: -1}}},
	})
	if err != nil {
		logging.Warn("durability: cold store index creation failed: %v", err)
	}
	return &ColdStore{coll: coll}
}

// RecordsForRoom returns the most recent completed-game records for a
// room, newest first, for post-game queries (a mid-game snapshot can never
// be reconstructed from cold data; that is the hot store's job).
func (cs *ColdStore) RecordsForRoom(roomId string, limit int64) ([]engine.GameRecord, error) {
	if cs.coll == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "createdatms", Value: -1}}).SetLimit(limit)
	cur, err := cs.coll.Find(ctx, bson.M{"roomid": roomId}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var records []engine.GameRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

var _ engine.RecordStore = (*ColdStore)(nil)

// SaveRecord implements engine.RecordStore. An insert failure is logged and
// also returned to the caller; with no collection configured the record is
// dropped and nil is returned.
func (cs *ColdStore) SaveRecord(record engine.GameRecord) error {
	if cs.coll == nil {
		logging.Debug("durability: cold store disabled, dropping record %s", record.GameId)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cs.coll.InsertOne(ctx, record); err != nil {
		logging.Warn("durability: cold store insert failed for game %s: %v", record.GameId, err)
		return err
	}
	return nil
}
