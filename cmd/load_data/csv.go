package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
)

type catalogLoader interface {
	LoadIngredients(ctx context.Context, ingredients []models.Ingredient) (int, error)
	LoadTags(ctx context.Context, tags []models.Tag) (int, error)
}

// readRecords returns every row of a headerless CSV file, requiring exactly
// fields columns per row.
func readRecords(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return parseRecords(f, path, fields)
}

func parseRecords(r io.Reader, name string, fields int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = fields
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return records, nil
}

func readIngredients(path string) ([]models.Ingredient, error) {
	records, err := readRecords(path, 2)
	if err != nil {
		return nil, err
	}
	return ingredientsFromRecords(records), nil
}

func ingredientsFromRecords(records [][]string) []models.Ingredient {
	out := make([]models.Ingredient, 0, len(records))
	for _, rec := range records {
		out = append(out, models.Ingredient{
			Name:            strings.TrimSpace(rec[0]),
			MeasurementUnit: strings.TrimSpace(rec[1]),
		})
	}
	return out
}

func readTags(path string) ([]models.Tag, error) {
	records, err := readRecords(path, 3)
	if err != nil {
		return nil, err
	}
	return tagsFromRecords(records), nil
}

func tagsFromRecords(records [][]string) []models.Tag {
	out := make([]models.Tag, 0, len(records))
	for _, rec := range records {
		tag := models.Tag{Name: strings.TrimSpace(rec[0]), Slug: strings.TrimSpace(rec[2])}
		if color := strings.TrimSpace(rec[1]); color != "" {
			tag.Color = &color
		}
		out = append(out, tag)
	}
	return out
}
