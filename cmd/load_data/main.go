package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/service"
)

const (
	ingredientsFile = "ingredients.csv"
	tagsFile        = "tags.csv"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:   "load_data",
	Short: "Load the ingredient and tag catalog from CSV files",
	Long: `load_data reads ingredients.csv (name,measurement_unit) and tags.csv
(name,color,slug) from the data directory and inserts the rows that do not
exist yet. Each file is loaded in its own transaction.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger.Init(logger.Config{Level: cfg.LogLevel, JSON: cfg.LogFormat == "json", Output: os.Stdout})

		db, err := database.New(cfg)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		return load(cmd, service.NewCatalogService(db), dataDir)
	},
}

func init() {
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "data", "directory containing ingredients.csv and tags.csv")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func load(cmd *cobra.Command, catalog catalogLoader, dir string) error {
	log := logger.WithComponent("load_data")
	ctx := cmd.Context()

	ingredients, err := readIngredients(filepath.Join(dir, ingredientsFile))
	if err != nil {
		return err
	}
	created, err := catalog.LoadIngredients(ctx, ingredients)
	if err != nil {
		return err
	}
	log.Info().Str("file", ingredientsFile).Int("rows", len(ingredients)).Int("created", created).Msg("ingredients loaded")

	tags, err := readTags(filepath.Join(dir, tagsFile))
	if err != nil {
		return err
	}
	created, err = catalog.LoadTags(ctx, tags)
	if err != nil {
		return err
	}
	log.Info().Str("file", tagsFile).Int("rows", len(tags)).Int("created", created).Msg("tags loaded")
	return nil
}
