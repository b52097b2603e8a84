package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// HistoryEntry is one line of a document's append-only audit trail.
type HistoryEntry struct {
	Version     int       `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	Actor       string    `json:"actor"`
	Description string    `json:"description"`
}

// DocumentHistory reads the history array of a quotation or invoice record.
func DocumentHistory(rec *core.Record) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	raw := rec.GetString("history")
	if raw == "" || raw == "null" {
		return nil, nil
	}
	if err := rec.UnmarshalJSONField("history", &entries); err != nil {
		return nil, fmt.Errorf("document %s: invalid history: %w", rec.Id, err)
	}
	return entries, nil
}

// AppendHistory appends a new entry to the record's history and sets the
// version field to the new history length. Prior entries are never
// rewritten or removed; the history is the sole audit trail.
func AppendHistory(rec *core.Record, actor, description string) error {
	entries, err := DocumentHistory(rec)
	if err != nil {
		return err
	}

	entries = append(entries, HistoryEntry{
		Version:     len(entries) + 1,
		Timestamp:   time.Now().UTC(),
		Actor:       actor,
		Description: description,
	})

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("document %s: marshal history: %w", rec.Id, err)
	}
	rec.Set("history", types.JSONRaw(raw))
	rec.Set("version", len(entries))
	return nil
}
