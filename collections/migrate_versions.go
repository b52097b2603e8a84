package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"

	"solarmanager/services"
)

// MigrateDocumentVersions backfills version and history on quotations and
// invoices imported before versioning existed. Safe to call on every
// startup -- documents that already carry a history are left untouched.
func MigrateDocumentVersions(app *pocketbase.PocketBase) error {
	for _, collection := range []string{"quotations", "invoices"} {
		if err := backfillVersions(app, collection); err != nil {
			return err
		}
	}
	return nil
}

func backfillVersions(app *pocketbase.PocketBase, collection string) error {
	records, err := app.FindRecordsByFilter(
		collection,
		"version = 0 || version = ''",
		"",
		0,
		0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query %s: %w", collection, err)
	}
	if len(records) == 0 {
		return nil
	}

	log.Printf("migrate: backfilling version on %d %s record(s)...\n", len(records), collection)

	for _, rec := range records {
		history, err := services.DocumentHistory(rec)
		if err != nil {
			log.Printf("migrate: %s %s has unreadable history, resetting: %v\n", collection, rec.Id, err)
			history = nil
		}

		if len(history) > 0 {
			rec.Set("version", len(history))
		} else if err := services.AppendHistory(rec, "system", "imported without history"); err != nil {
			log.Printf("migrate: could not backfill history on %s %s: %v\n", collection, rec.Id, err)
			continue
		}

		if err := app.Save(rec); err != nil {
			log.Printf("migrate: could not save %s %s: %v\n", collection, rec.Id, err)
		}
	}

	log.Printf("migrate: %s version backfill complete.\n", collection)
	return nil
}
