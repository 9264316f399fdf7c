// Package seeds carries the bootstrap data of a fresh installation: the
// floor plan and the menu.
package seeds

import (
	"context"
	"embed"
	"fmt"

	"github.com/appetiteclub/apt"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/appetiteclub/pos/internal/menu"
	"github.com/appetiteclub/pos/internal/tables"
)

//go:embed seed.json
var FS embed.FS

const Path = "seed.json"

// Apply runs the table and menu seeds. Both are tracked per seed id, so
// running it again only creates what is missing.
func Apply(ctx context.Context, tableRepo tables.TableRepo, menuRepo menu.Repo, db *mongo.Database, logger apt.Logger) error {
	if err := tables.ApplySeeds(ctx, tableRepo, db, FS, Path, logger); err != nil {
		return fmt.Errorf("seed tables: %w", err)
	}
	if err := menu.ApplySeeds(ctx, menuRepo, db, FS, Path, logger); err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	return nil
}
