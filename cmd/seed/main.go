// Command seed loads the reference tags and ingredients. Running it again
// leaves existing rows untouched.
package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/model"
)

//go:embed data/*.json
var data embed.FS

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	db, err := database.Open(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	tags, ingredients, err := seed(context.Background(), db)
	if err != nil {
		logging.Fatal().Err(err).Msg("seeding failed")
	}
	logging.Info().Int("tags", tags).Int("ingredients", ingredients).Msg("seeding complete")
}

// seed inserts missing reference rows and reports how many were created.
func seed(ctx context.Context, db *gorm.DB) (int, int, error) {
	var tags []model.Tag
	if err := readJSON("data/tags.json", &tags); err != nil {
		return 0, 0, err
	}
	var ingredients []model.Ingredient
	if err := readJSON("data/ingredients.json", &ingredients); err != nil {
		return 0, 0, err
	}

	var createdTags, createdIngredients int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range tags {
			tag := t
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag)
			if res.Error != nil {
				return fmt.Errorf("failed to seed tag %s: %w", t.Slug, res.Error)
			}
			createdTags += int(res.RowsAffected)
		}
		for _, i := range ingredients {
			ing := i
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ing)
			if res.Error != nil {
				return fmt.Errorf("failed to seed ingredient %s: %w", i.Name, res.Error)
			}
			createdIngredients += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return createdTags, createdIngredients, nil
}

func readJSON(name string, dst interface{}) error {
	raw, err := data.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}
