package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestParseRecords(t *testing.T) {
	records, err := parseRecords(strings.NewReader("абрикосовое варенье,г\n\"соль, морская\",щепотка\n"), "ingredients.csv", 2)
	require.NoError(t, err)
	ingredients := ingredientsFromRecords(records)
	require.Len(t, ingredients, 2)
	assert.Equal(t, "соль, морская", ingredients[1].Name)
	assert.Equal(t, "щепотка", ingredients[1].MeasurementUnit)

	_, err = parseRecords(strings.NewReader("only-one-column\n"), "ingredients.csv", 2)
	assert.ErrorContains(t, err, "ingredients.csv")
}

func TestTagsFromRecords(t *testing.T) {
	tags := tagsFromRecords([][]string{{"Завтрак", "#E26C2D", "breakfast"}, {"Ужин", "", "dinner"}})
	require.Len(t, tags, 2)
	require.NotNil(t, tags[0].Color)
	assert.Equal(t, "#E26C2D", *tags[0].Color)
	assert.Nil(t, tags[1].Color)
}

func TestLoad(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	dir := t.TempDir()
	writeFile(t, dir, ingredientsFile, "мука,г\nяйца,шт\nмука,г\n")
	writeFile(t, dir, tagsFile, "Завтрак,#E26C2D,breakfast\nОбед,#49B64E,lunch\n")

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	catalog := service.NewCatalogService(db)

	require.NoError(t, load(cmd, catalog, dir))
	// Loading again creates nothing new
	require.NoError(t, load(cmd, catalog, dir))

	var ingredients, tags int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&ingredients).Error)
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	assert.Equal(t, int64(2), ingredients)
	assert.Equal(t, int64(2), tags)
}

func TestLoadMissingFile(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	err := load(cmd, service.NewCatalogService(db), t.TempDir())
	assert.ErrorContains(t, err, ingredientsFile)
}
