package commands

import (
	"context"

	"github.com/appetiteclub/apt"

	posmongo "github.com/appetiteclub/pos/internal/mongo"
)

// ResetDB drops every collection of the POS database - USE WITH CAUTION
func ResetDB(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	logger.Info("Dropping all POS collections, this cannot be undone")

	db, disconnect, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer disconnect()

	if err := posmongo.Reset(ctx, db); err != nil {
		return err
	}

	logger.Info("All collections have been dropped", "database", db.Name())
	return nil
}
