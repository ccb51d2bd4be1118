package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"atelier/internal/workflow"
)

// NewItem inserts a garment item at the intake stage and returns it.
func (s *Store) NewItem(ctx context.Context, orderRef, garmentType string, quantity int, dueDate time.Time) (*workflow.Item, error) {
	garmentType = strings.ToLower(strings.TrimSpace(garmentType))
	if garmentType == "" {
		return nil, errors.New("garment type is required")
	}
	if quantity < 1 {
		quantity = 1
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	var due any
	if !dueDate.IsZero() {
		due = dueDate.UTC().Format(time.RFC3339Nano)
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO items (
            order_ref, garment_type, quantity, due_date,
            current_stage, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(strings.TrimSpace(orderRef)),
		garmentType,
		quantity,
		due,
		workflow.StageIntake,
		workflow.ItemNotStarted,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetItem(ctx, id)
}

// GetItem fetches an item by identifier. A missing item returns nil, nil.
func (s *Store) GetItem(ctx context.Context, itemID int64) (*workflow.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, itemID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// SetItemStageAndStatus persists a stage move and the derived status.
func (s *Store) SetItemStageAndStatus(ctx context.Context, itemID int64, stage workflow.Stage, status workflow.ItemStatus) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE items SET current_stage = ?, status = ?, updated_at = ? WHERE id = ?`,
		stage,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		itemID,
	)
	if err != nil {
		return fmt.Errorf("update item stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return workflow.Wrap(workflow.ErrNotFound, "store", "set stage", fmt.Sprintf("item %d", itemID), nil)
	}
	return nil
}

// ListItems returns items filtered by status set (or all items when no
// status is provided), oldest first.
func (s *Store) ListItems(ctx context.Context, statuses ...workflow.ItemStatus) ([]*workflow.Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM items`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*workflow.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ItemStats returns a count of items grouped by current stage.
func (s *Store) ItemStats(ctx context.Context) (map[workflow.Stage]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT current_stage, COUNT(1) FROM items GROUP BY current_stage`)
	if err != nil {
		return nil, fmt.Errorf("item stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[workflow.Stage]int)
	for rows.Next() {
		var stage workflow.Stage
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return nil, err
		}
		stats[stage] = count
	}
	return stats, rows.Err()
}

// RemoveItem deletes an item; its tasks and timeline cascade with it.
func (s *Store) RemoveItem(ctx context.Context, itemID int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM items WHERE id = ?`, itemID)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

const itemColumns = "id, order_ref, garment_type, quantity, due_date, current_stage, status, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*workflow.Item, error) {
	var (
		id          int64
		orderRef    sql.NullString
		garmentType string
		quantity    int
		dueRaw      sql.NullString
		stageStr    string
		statusStr   string
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&orderRef,
		&garmentType,
		&quantity,
		&dueRaw,
		&stageStr,
		&statusStr,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &workflow.Item{
		ID:           id,
		OrderRef:     orderRef.String,
		GarmentType:  garmentType,
		Quantity:     quantity,
		CurrentStage: workflow.Stage(stageStr),
		Status:       workflow.ItemStatus(statusStr),
	}
	if dueRaw.Valid {
		if due, err := parseTimeString(dueRaw.String); err == nil {
			item.DueDate = due
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}
