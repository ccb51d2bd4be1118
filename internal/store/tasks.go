package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"atelier/internal/workflow"
)

// SaveTask inserts the task or overwrites all of its mutable fields.
func (s *Store) SaveTask(ctx context.Context, task *workflow.Task) error {
	if task == nil {
		return errors.New("task is nil")
	}
	task.UpdatedAt = time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = task.UpdatedAt
	}

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO tasks (
            task_id, item_id, stage, name, mandatory, task_order, status,
            assigned_staff_id, assigned_staff_name, assigned_at,
            approved_by_id, approved_by_name, approved_at,
            rework_reason, notes, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(task_id) DO UPDATE SET
            status = excluded.status,
            assigned_staff_id = excluded.assigned_staff_id,
            assigned_staff_name = excluded.assigned_staff_name,
            assigned_at = excluded.assigned_at,
            approved_by_id = excluded.approved_by_id,
            approved_by_name = excluded.approved_by_name,
            approved_at = excluded.approved_at,
            rework_reason = excluded.rework_reason,
            notes = excluded.notes,
            updated_at = excluded.updated_at`,
		task.ID,
		task.ItemID,
		task.Stage,
		task.Name,
		boolToInt(task.Mandatory),
		task.Order,
		task.Status,
		nullableString(task.AssignedStaffID),
		nullableString(task.AssignedStaffName),
		nullableTime(task.AssignedAt),
		nullableString(task.ApprovedByID),
		nullableString(task.ApprovedByName),
		nullableTime(task.ApprovedAt),
		nullableString(task.ReworkReason),
		nullableString(task.Notes),
		task.CreatedAt.Format(time.RFC3339Nano),
		task.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// SaveTaskTransition writes a task's transition result conditioned on the
// status the transition was computed from. When the stored status no longer
// matches, nothing is written and workflow.ErrConflict is returned.
func (s *Store) SaveTaskTransition(ctx context.Context, task *workflow.Task, expected workflow.TaskStatus) error {
	if task == nil {
		return errors.New("task is nil")
	}
	task.UpdatedAt = time.Now().UTC()

	res, err := s.execWithRetry(
		ctx,
		`UPDATE tasks SET
            status = ?,
            assigned_staff_id = ?, assigned_staff_name = ?, assigned_at = ?,
            approved_by_id = ?, approved_by_name = ?, approved_at = ?,
            rework_reason = ?, notes = ?, updated_at = ?
        WHERE task_id = ? AND status = ?`,
		task.Status,
		nullableString(task.AssignedStaffID),
		nullableString(task.AssignedStaffName),
		nullableTime(task.AssignedAt),
		nullableString(task.ApprovedByID),
		nullableString(task.ApprovedByName),
		nullableTime(task.ApprovedAt),
		nullableString(task.ReworkReason),
		nullableString(task.Notes),
		task.UpdatedAt.Format(time.RFC3339Nano),
		task.ID,
		expected,
	)
	if err != nil {
		return fmt.Errorf("save task transition: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return workflow.Wrap(workflow.ErrConflict, "store", "task transition",
			fmt.Sprintf("task %s no longer in status %s", task.ID, expected), nil)
	}
	return nil
}

// GetTask fetches a task by identifier. A missing task returns nil, nil.
func (s *Store) GetTask(ctx context.Context, taskID string) (*workflow.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE task_id = ?`, taskID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// FindTaskByPrefix resolves a task by full identifier or unique identifier
// prefix. Ambiguous prefixes fail; a missing task returns nil, nil.
func (s *Store) FindTaskByPrefix(ctx context.Context, prefix string) (*workflow.Task, error) {
	task, err := s.GetTask(ctx, prefix)
	if err != nil || task != nil {
		return task, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE task_id LIKE ? || '%' LIMIT 2`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("find task by prefix: %w", err)
	}
	defer rows.Close()

	matches, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("task id prefix %q is ambiguous", prefix)
	}
}

// TasksForItemStage returns the task set for one (item, stage) pair in
// display order.
func (s *Store) TasksForItemStage(ctx context.Context, itemID int64, stage workflow.Stage) ([]*workflow.Task, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE item_id = ? AND stage = ? ORDER BY task_order, created_at, task_id`,
		itemID,
		stage,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// TasksForItem returns every task on an item across all stages, in stage
// order then display order.
func (s *Store) TasksForItem(ctx context.Context, itemID int64) ([]*workflow.Task, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE item_id = ? ORDER BY created_at, task_order, task_id`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query item tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]*workflow.Task, error) {
	var tasks []*workflow.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

const taskColumns = "task_id, item_id, stage, name, mandatory, task_order, status, " +
	"assigned_staff_id, assigned_staff_name, assigned_at, " +
	"approved_by_id, approved_by_name, approved_at, " +
	"rework_reason, notes, created_at, updated_at"

func scanTask(scanner interface{ Scan(dest ...any) error }) (*workflow.Task, error) {
	var (
		taskID       string
		itemID       int64
		stageStr     string
		name         string
		mandatory    int
		taskOrder    int
		statusStr    string
		assignedID   sql.NullString
		assignedName sql.NullString
		assignedRaw  sql.NullString
		approvedID   sql.NullString
		approvedName sql.NullString
		approvedRaw  sql.NullString
		reworkReason sql.NullString
		notes        sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&taskID,
		&itemID,
		&stageStr,
		&name,
		&mandatory,
		&taskOrder,
		&statusStr,
		&assignedID,
		&assignedName,
		&assignedRaw,
		&approvedID,
		&approvedName,
		&approvedRaw,
		&reworkReason,
		&notes,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	task := &workflow.Task{
		ID:                taskID,
		ItemID:            itemID,
		Stage:             workflow.Stage(stageStr),
		Name:              name,
		Mandatory:         mandatory != 0,
		Order:             taskOrder,
		Status:            workflow.TaskStatus(statusStr),
		AssignedStaffID:   assignedID.String,
		AssignedStaffName: assignedName.String,
		ApprovedByID:      approvedID.String,
		ApprovedByName:    approvedName.String,
		ReworkReason:      reworkReason.String,
		Notes:             notes.String,
	}
	if assignedRaw.Valid {
		if at, err := parseTimeString(assignedRaw.String); err == nil {
			task.AssignedAt = &at
		}
	}
	if approvedRaw.Valid {
		if at, err := parseTimeString(approvedRaw.String); err == nil {
			task.ApprovedAt = &at
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		task.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		task.UpdatedAt = updated
	}
	return task, nil
}
