package model

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/channelguard/channel-guard/internal/config"
)

var collections = map[string][]mongo.IndexModel{
	ChannelStateCollection: {
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	},
}

// Setup creates the collections and indexes used by the guard.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	clientOpts := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" {
		clientOpts.SetAuth(options.Credential{Username: cfg.Username, Password: cfg.Password})
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to disconnect setup client")
		}
	}()

	database := client.Database(cfg.DbName)

	existing, err := database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[name] = true
	}

	for name, indexes := range collections {
		if !present[name] {
			if err := database.CreateCollection(ctx, name); err != nil {
				return fmt.Errorf("failed to create collection %s: %w", name, err)
			}
		}
		if len(indexes) == 0 {
			continue
		}
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", name, err)
		}
	}

	log.Ctx(ctx).Info().Msg("collections and indexes created")
	return nil
}
