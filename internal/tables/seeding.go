package tables

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

const tableSeedApplication = "table"

type bootstrapSeedDocument struct {
	Tables []tableSeed `json:"tables"`
}

type tableSeed struct {
	Number   string `json:"number"`
	Floor    int    `json:"floor"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`
}

func loadTableSeeds(seedFS embed.FS, path string) ([]tableSeed, error) {
	seedBytes, err := seedFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc bootstrapSeedDocument
	if err := json.Unmarshal(seedBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode table seed file: %w", err)
	}

	if len(doc.Tables) == 0 {
		return nil, errors.New("table seed file does not contain tables")
	}

	return doc.Tables, nil
}

// ApplySeeds ensures all predefined tables exist.
func ApplySeeds(ctx context.Context, repo TableRepo, db *mongo.Database, seedFS embed.FS, path string, logger apt.Logger) error {
	if repo == nil {
		return errors.New("table repository is required")
	}
	if db == nil {
		return errors.New("table seeding requires a database")
	}
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	raw, err := loadTableSeeds(seedFS, path)
	if err != nil {
		return err
	}

	defs := buildSeedDefinitions(raw, repo, logger)
	if len(defs) == 0 {
		logger.Info("No table seeds to apply")
		return nil
	}

	logger.Info("Applying table seeds", "count", len(defs))
	if err := seed.Apply(ctx, seed.NewMongoTracker(db), defs, tableSeedApplication); err != nil {
		return err
	}
	logger.Info("Table seeds applied successfully")
	return nil
}

func buildSeedDefinitions(raw []tableSeed, repo TableRepo, logger apt.Logger) []seed.Seed {
	var defs []seed.Seed

	for _, s := range raw {
		seedData := s
		if strings.TrimSpace(seedData.Number) == "" {
			logger.Info("Skipping seed table with empty number")
			continue
		}

		defs = append(defs, seed.Seed{
			ID:          fmt.Sprintf("2025-01-15_table_%s_%d", seedIdentifier(seedData.Number), seedData.floor()),
			Description: fmt.Sprintf("Ensure table %s on floor %d exists", seedData.Number, seedData.floor()),
			Run: func(ctx context.Context) error {
				return seedData.ensureTable(ctx, repo, logger)
			},
		})
	}

	return defs
}

func (s tableSeed) floor() int {
	if s.Floor < 1 {
		return 1
	}
	return s.Floor
}

func (s tableSeed) ensureTable(ctx context.Context, repo TableRepo, logger apt.Logger) error {
	number := strings.TrimSpace(s.Number)

	existing, err := repo.List(ctx, Filter{Floor: s.floor()})
	if err != nil {
		return fmt.Errorf("list existing tables: %w", err)
	}

	for _, table := range existing {
		if strings.EqualFold(table.Number, number) {
			logger.Info("Seed table already exists", "number", number, "floor", s.floor())
			return nil
		}
	}

	table := NewTable()
	table.Number = number
	table.Floor = s.floor()
	table.Capacity = s.Capacity
	if s.Type != "" {
		table.Type = s.Type
	}
	table.CreatedBy = "seed"
	table.UpdatedBy = "seed"
	table.BeforeCreate()

	if err := repo.Create(ctx, table); err != nil {
		return fmt.Errorf("create seed table %s: %w", number, err)
	}

	logger.Info("Seed table created", "number", number, "id", table.ID.String())
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
