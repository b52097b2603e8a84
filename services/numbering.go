package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// formatDocumentNumber constructs the human-readable document number.
// Example: SUN-AN-2026-0042.
func formatDocumentNumber(prefix string, year, sequence int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, sequence)
}

// NextDocumentNumber atomically increments the named counter in the
// sequences collection and returns the formatted document number. The
// increment runs inside a store transaction so no two documents are ever
// issued the same number, even under concurrent creation.
func NextDocumentNumber(app core.App, sequence, prefix string, now time.Time) (string, error) {
	var number string

	err := app.RunInTransaction(func(tx core.App) error {
		rec, err := tx.FindFirstRecordByFilter(
			"sequences",
			"name = {:name}",
			map[string]any{"name": sequence},
		)
		if err != nil {
			col, err := tx.FindCollectionByNameOrId("sequences")
			if err != nil {
				return fmt.Errorf("sequences collection missing: %w", err)
			}
			rec = core.NewRecord(col)
			rec.Set("name", sequence)
			rec.Set("prefix", prefix)
			rec.Set("last_value", 0)
		}

		next := rec.GetInt("last_value") + 1
		rec.Set("last_value", next)
		if err := tx.Save(rec); err != nil {
			return fmt.Errorf("increment sequence %q: %w", sequence, err)
		}

		number = formatDocumentNumber(prefix, now.Year(), next)
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}
