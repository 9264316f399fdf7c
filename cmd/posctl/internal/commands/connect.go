package commands

import (
	"context"
	"errors"

	"github.com/appetiteclub/apt"
	"go.mongodb.org/mongo-driver/mongo"

	posmongo "github.com/appetiteclub/pos/internal/mongo"
)

// connect opens the POS database. The returned func disconnects.
func connect(ctx context.Context, config *apt.Config, logger apt.Logger) (*mongo.Database, func(), error) {
	base := posmongo.NewBaseRepo(config, logger)
	if err := base.Start(ctx); err != nil {
		return nil, nil, err
	}

	db := base.GetDatabase()
	if db == nil {
		_ = base.Stop(ctx)
		return nil, nil, errors.New("repository database is nil")
	}

	return db, func() { _ = base.Stop(context.Background()) }, nil
}
