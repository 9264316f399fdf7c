package menu

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"go.mongodb.org/mongo-driver/mongo"
)

const menuSeedApplication = "menu"

type seedDocument struct {
	Items []itemSeed `json:"menu_items"`
}

type itemSeed struct {
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Price            float64 `json:"price"`
	SupportsHalfHalf bool    `json:"supports_half_half"`
}

func loadItemSeeds(seedFS embed.FS, path string) ([]itemSeed, error) {
	raw, err := seedFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc seedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode menu seed file: %w", err)
	}

	if len(doc.Items) == 0 {
		return nil, errors.New("menu seed file does not contain items")
	}

	return doc.Items, nil
}

// ApplySeeds ensures the catalog entries of the seed file exist.
func ApplySeeds(ctx context.Context, repo Repo, db *mongo.Database, seedFS embed.FS, path string, logger apt.Logger) error {
	if repo == nil {
		return errors.New("menu repository is required")
	}
	if db == nil {
		return errors.New("menu seeding requires a database")
	}
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	raw, err := loadItemSeeds(seedFS, path)
	if err != nil {
		return err
	}

	var defs []seed.Seed
	for _, s := range raw {
		entry := s
		if strings.TrimSpace(entry.Name) == "" {
			logger.Info("Skipping menu seed with empty name")
			continue
		}
		defs = append(defs, seed.Seed{
			ID:          fmt.Sprintf("2025-01-15_menu_%s", seedIdentifier(entry.Name)),
			Description: fmt.Sprintf("Ensure menu item %s exists", entry.Name),
			Run: func(ctx context.Context) error {
				return entry.ensure(ctx, repo, logger)
			},
		})
	}

	logger.Info("Applying menu seeds", "count", len(defs))
	return seed.Apply(ctx, seed.NewMongoTracker(db), defs, menuSeedApplication)
}

func (s itemSeed) ensure(ctx context.Context, repo Repo, logger apt.Logger) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list existing menu items: %w", err)
	}

	for _, item := range existing {
		if strings.EqualFold(item.Name, s.Name) {
			logger.Info("Seed menu item already exists", "name", s.Name)
			return nil
		}
	}

	item := NewItem()
	item.Name = strings.TrimSpace(s.Name)
	item.Category = s.Category
	item.Price = s.Price
	item.SupportsHalfHalf = s.SupportsHalfHalf
	item.BeforeCreate()

	if err := repo.Create(ctx, item); err != nil {
		return fmt.Errorf("create seed menu item %s: %w", s.Name, err)
	}

	logger.Info("Seed menu item created", "name", item.Name, "id", item.ID.String())
	return nil
}

func seedIdentifier(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))

	var builder strings.Builder
	for _, r := range value {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			builder.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '/':
			builder.WriteRune('_')
		}
	}

	if builder.Len() == 0 {
		return "seed"
	}
	return builder.String()
}
