package dataio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipedia/backend/internal/logging"
)

// Export writes one <table>.csv per table into dir, creating dir when
// needed. Foreign keys are written as ids.
func Export(ctx context.Context, db *gorm.DB, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	for _, t := range tables {
		logging.Info().Str("table", t.name).Msg("exporting table")
		n, err := exportTable(ctx, db, t, filepath.Join(dir, t.name+".csv"))
		if err != nil {
			return fmt.Errorf("failed to export table %s: %w", t.name, err)
		}
		logging.Info().Str("table", t.name).Int("records", n).Msg("export finished")
	}
	return nil
}

func exportTable(ctx context.Context, db *gorm.DB, t table, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := t.export(ctx, db, f)
	if err != nil {
		return 0, err
	}
	return n, f.Close()
}

// Import loads every <table>.csv found in dir. Tables without a file are
// skipped. In Replace mode all tables are emptied, in reverse dependency
// order, before anything is loaded.
func Import(ctx context.Context, db *gorm.DB, dir string, mode Mode) ([]Report, error) {
	db = db.WithContext(ctx)

	if mode == Replace {
		if err := db.Transaction(func(tx *gorm.DB) error {
			for i := len(tables) - 1; i >= 0; i-- {
				if err := deleteAll(tx, tables[i].model); err != nil {
					return fmt.Errorf("failed to clear table %s: %w", tables[i].name, err)
				}
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	v := newValidator()
	reports := make([]Report, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(dir, t.name+".csv")
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			logging.Warn().Str("table", t.name).Str("file", path).Msg("no file for table, skipping")
			reports = append(reports, Report{Table: t.name, Skipped: true})
			continue
		}
		if err != nil {
			return reports, err
		}

		logging.Info().Str("table", t.name).Msg("importing table")
		report, err := importTable(db, v, t, f, mode)
		f.Close()
		if err != nil {
			return reports, fmt.Errorf("failed to import table %s: %w", t.name, err)
		}
		logging.Info().Str("table", t.name).Int("records", report.Loaded).Int("invalid", report.Invalid).
			Bool("skipped", report.Skipped).Msg("import finished")
		reports = append(reports, report)
	}
	return reports, nil
}

func importTable(db *gorm.DB, v *validator.Validate, t table, r io.Reader, mode Mode) (Report, error) {
	report := Report{Table: t.name}

	records, bad, err := t.parse(r, v)
	if err != nil {
		return report, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Replace already emptied every table.
		if mode == Skip {
			proceed, err := prepare(tx, mode, &report, t.model)
			if err != nil || !proceed {
				return err
			}
		}

		for i, record := range records {
			if rowErr, ok := bad[i]; ok {
				report.reject(i, rowErr)
				continue
			}
			inserted, err := insert(tx, record)
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

// insert adds value unless it collides with an existing row. Each insert
// runs in its own savepoint so a failing row leaves the table transaction
// usable.
func insert(tx *gorm.DB, value interface{}) (bool, error) {
	var inserted bool
	err := tx.Transaction(func(row *gorm.DB) error {
		result := row.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(value)
		if result.Error != nil {
			return result.Error
		}
		inserted = result.RowsAffected > 0
		return nil
	})
	return inserted, err
}

func deleteAll(tx *gorm.DB, model interface{}) error {
	return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error
}

func (r *Report) reject(index int, err error) {
	r.Invalid++
	// Line numbers count the header row.
	logging.Warn().Str("table", r.Table).Int("line", index+2).Err(err).Msg("skipping invalid row")
}
