package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/channelguard/channel-guard/internal/config"
	"github.com/channelguard/channel-guard/internal/db"
	dbmodel "github.com/channelguard/channel-guard/internal/db/model"
)

// openStateStore opens the configured state backend. The returned function
// releases it.
func openStateStore(ctx context.Context, cfg *config.StateConfig) (db.StateStore, func(), error) {
	switch cfg.Backend {
	case config.StateBackendMongo:
		if err := dbmodel.Setup(ctx, &cfg.Db); err != nil {
			return nil, nil, fmt.Errorf("error while setting up state db model: %w", err)
		}

		database, err := db.New(ctx, cfg.Db)
		if err != nil {
			return nil, nil, fmt.Errorf("error while creating db client: %w", err)
		}
		closeFn := func() {
			if err := database.Close(context.WithoutCancel(ctx)); err != nil {
				log.Ctx(ctx).Warn().Err(err).Msg("failed to disconnect from state db")
			}
		}
		return database, closeFn, nil
	default:
		return db.NewFileStore(cfg.Path), func() {}, nil
	}
}
