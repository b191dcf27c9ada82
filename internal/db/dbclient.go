package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/channelguard/channel-guard/internal/config"
	"github.com/channelguard/channel-guard/internal/db/model"
	"github.com/channelguard/channel-guard/internal/types"
)

// Database is the MongoDB state backend. Each channel is its own document,
// so a save never touches entries of other guard processes.
type Database struct {
	dbName string
	client *mongo.Client
	now    func() time.Time
}

func New(ctx context.Context, cfg config.DbConfig) (*Database, error) {
	clientOpts := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" {
		clientOpts.SetAuth(options.Credential{Username: cfg.Username, Password: cfg.Password})
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}

	return &Database{
		dbName: cfg.DbName,
		client: client,
		now:    time.Now,
	}, nil
}

func (db *Database) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, nil)
}

func (db *Database) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

func (db *Database) collection() *mongo.Collection {
	return db.client.Database(db.dbName).Collection(model.ChannelStateCollection)
}

func (db *Database) Load(ctx context.Context) (map[string]types.ChannelState, error) {
	cursor, err := db.collection().Find(ctx, bson.M{})
	if err != nil {
		return nil, types.NewConnectivityError("failed to query channel states", err)
	}
	defer cursor.Close(ctx)

	states := make(map[string]types.ChannelState)
	for cursor.Next(ctx) {
		var doc model.ChannelStateDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Ctx(ctx).Warn().
				Err(types.NewStateCorruptionError("undecodable channel state document", err)).
				Msg("skipping channel state document")
			continue
		}
		states[doc.ChannelID] = doc.ToChannelState()
	}
	if err := cursor.Err(); err != nil {
		return nil, types.NewConnectivityError("failed to iterate channel states", err)
	}

	return states, nil
}

func (db *Database) Save(ctx context.Context, channelID string, state types.ChannelState) error {
	doc := model.FromChannelState(channelID, state, db.now())
	opts := options.Replace().SetUpsert(true)
	_, err := db.collection().ReplaceOne(ctx, bson.M{"_id": channelID}, doc, opts)
	if err != nil {
		return wrapMongoError(fmt.Sprintf("failed to save state of channel %s", channelID), err)
	}
	return nil
}

func (db *Database) Delete(ctx context.Context, channelID string) error {
	res, err := db.collection().DeleteOne(ctx, bson.M{"_id": channelID})
	if err != nil {
		return wrapMongoError(fmt.Sprintf("failed to delete state of channel %s", channelID), err)
	}
	if res.DeletedCount == 0 {
		return &NotFoundError{
			Key:     channelID,
			Message: fmt.Sprintf("channel %s has no stored state", channelID),
		}
	}
	return nil
}

// IsMongoConnectivityError reports errors caused by the database being unreachable.
func IsMongoConnectivityError(err error) bool {
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected)
}

// wrapMongoError classifies an unreachable database as a ConnectivityError so
// the poll loop backs off instead of hammering it.
func wrapMongoError(msg string, err error) error {
	if IsMongoConnectivityError(err) {
		return types.NewConnectivityError(msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
