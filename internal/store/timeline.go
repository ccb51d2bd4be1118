package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"atelier/internal/workflow"
)

// AppendTimeline records an audit entry against an item. The timeline is
// append-only; there is no update or delete path.
func (s *Store) AppendTimeline(ctx context.Context, itemID int64, entry workflow.TimelineEntry) error {
	at := entry.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO item_timeline (item_id, stage, action, staff_id, staff_name, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		itemID,
		entry.Stage,
		entry.Action,
		nullableString(entry.StaffID),
		nullableString(entry.StaffName),
		at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append timeline: %w", err)
	}
	return nil
}

// Timeline returns an item's audit entries in append order.
func (s *Store) Timeline(ctx context.Context, itemID int64) ([]workflow.TimelineEntry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT stage, action, staff_id, staff_name, created_at
         FROM item_timeline WHERE item_id = ? ORDER BY id`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	var entries []workflow.TimelineEntry
	for rows.Next() {
		var (
			stageStr  string
			action    string
			staffID   sql.NullString
			staffName sql.NullString
			atRaw     string
		)
		if err := rows.Scan(&stageStr, &action, &staffID, &staffName, &atRaw); err != nil {
			return nil, err
		}
		entry := workflow.TimelineEntry{
			Stage:     workflow.Stage(stageStr),
			Action:    action,
			StaffID:   staffID.String,
			StaffName: staffName.String,
		}
		if at, err := parseTimeString(atRaw); err == nil {
			entry.At = at
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
