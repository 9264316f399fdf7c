package commands

import (
	"context"

	"github.com/appetiteclub/apt"

	posmongo "github.com/appetiteclub/pos/internal/mongo"
	"github.com/appetiteclub/pos/internal/seeds"
)

// Seed applies the bundled table and menu seeds.
func Seed(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	db, disconnect, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer disconnect()

	return seeds.Apply(ctx, posmongo.NewTableRepo(db), posmongo.NewMenuRepo(db), db, logger)
}
