package dataio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/internal/logging"
	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/service"
)

// ingredientLine is a row of an ingredient file: "ingredient,unit".
type ingredientLine struct {
	Name string `csv:"ingredient" validate:"required,max=200"`
	Unit string `csv:"unit" validate:"required,max=200"`
}

// tagLine is a row of a tag file, CSV or JSON.
type tagLine struct {
	Name  string `csv:"name" json:"name" validate:"required,max=200"`
	Color string `csv:"color" json:"color" validate:"omitempty,hexcolor,len=7"`
	Slug  string `csv:"slug" json:"slug" validate:"required,max=200,slug"`
}

// LoadIngredients reads ingredient,unit rows from r. Units are created on
// demand.
func LoadIngredients(ctx context.Context, db *gorm.DB, r io.Reader, mode Mode) (Report, error) {
	report := Report{Table: "ingredient"}
	lines, bad, err := readRows[ingredientLine](r)
	if err != nil {
		return report, err
	}

	v := newValidator()
	for i := range lines {
		if _, ok := bad[i]; ok {
			continue
		}
		if err := v.Struct(&lines[i]); err != nil {
			bad[i] = err
		}
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proceed, err := prepare(tx, mode, &report, &models.Ingredient{}, &models.RecipeIngredient{})
		if err != nil || !proceed {
			return err
		}
		for i := range lines {
			if rowErr, ok := bad[i]; ok {
				report.reject(i, rowErr)
				continue
			}
			inserted, err := insertIngredient(tx, &lines[i])
			if err != nil {
				report.reject(i, err)
				continue
			}
			if inserted {
				report.Loaded++
			}
		}
		return nil
	})
	return report, err
}

func insertIngredient(tx *gorm.DB, line *ingredientLine) (bool, error) {
	var inserted bool
	err := tx.Transaction(func(row *gorm.DB) error {
		unit, err := service.EnsureUnit(row, line.Unit)
		if err != nil {
			return err
		}
		inserted, err = insert(row, &models.Ingredient{Name: strings.TrimSpace(line.Name), UnitID: unit.ID})
		return err
	})
	return inserted, err
}

// LoadTagsFile loads tags from path, choosing JSON or CSV by extension.
func LoadTagsFile(ctx context.Context, db *gorm.DB, path string, mode Mode) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{Table: "tag"}, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadTagsJSON(ctx, db, f, mode)
	}
	return LoadTagsCSV(ctx, db, f, mode)
}

// LoadTagsCSV reads name,color,slug rows.
func LoadTagsCSV(ctx context.Context, db *gorm.DB, r io.Reader, mode Mode) (Report, error) {
	rows, bad, err := readRows[tagLine](r)
	if err != nil {
		return Report{Table: "tag"}, err
	}
	report := Report{Table: "tag"}
	lines := make([]*tagLine, len(rows))
	for i := range rows {
		if rowErr, ok := bad[i]; ok {
			report.reject(i, rowErr)
			continue
		}
		lines[i] = &rows[i]
	}
	return loadTags(ctx, db, lines, mode, report)
}

// LoadTagsJSON reads an array of {"name", "color", "slug"} objects.
func LoadTagsJSON(ctx context.Context, db *gorm.DB, r io.Reader, mode Mode) (Report, error) {
	var entries []tagLine
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return Report{Table: "tag"}, fmt.Errorf("failed to decode tags: %w", err)
	}
	lines := make([]*tagLine, len(entries))
	for i := range entries {
		lines[i] = &entries[i]
	}
	return loadTags(ctx, db, lines, mode, Report{Table: "tag"})
}

func loadTags(ctx context.Context, db *gorm.DB, lines []*tagLine, mode Mode, report Report) (Report, error) {
	v := newValidator()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proceed, err := prepare(tx, mode, &report, &models.Tag{}, &models.RecipeTag{})
		if err != nil || !proceed {
			return err
		}
		for i, line := range lines {
			if line == nil {
				// Already rejected while parsing.
				continue
			}
			if err := v.Struct(line); err != nil {
				report.reject(i, err)
				continue
			}
			inserted, err := insert(tx, &models.Tag{
				Name:  line.Name,
				Color: strings.ToUpper(line.Color),
				Slug:  line.Slug,
			})
			if err != nil {
				report.reject(i, err)
				continue
			}
			if inserted {
				report.Loaded++
			}
		}
		return nil
	})
	return report, err
}

// prepare applies mode to the target table. dependents are emptied
// together with the table in Replace mode. It reports whether loading
// should go ahead.
func prepare(tx *gorm.DB, mode Mode, report *Report, model interface{}, dependents ...interface{}) (bool, error) {
	switch mode {
	case Replace:
		for _, dep := range dependents {
			if err := deleteAll(tx, dep); err != nil {
				return false, err
			}
		}
		if err := deleteAll(tx, model); err != nil {
			return false, err
		}
	case Skip:
		var count int64
		if err := tx.Model(model).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			logging.Info().Str("table", report.Table).Msg("table is not empty, leaving it unchanged")
			report.Skipped = true
			return false, nil
		}
	}
	return true, nil
}
