package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"atelier/internal/logging"
	"atelier/internal/staff"
)

// ItemStore is the item persistence boundary the controller drives.
type ItemStore interface {
	GetItem(ctx context.Context, itemID int64) (*Item, error)
	SetItemStageAndStatus(ctx context.Context, itemID int64, stage Stage, status ItemStatus) error
	AppendTimeline(ctx context.Context, itemID int64, entry TimelineEntry) error
}

// TaskStore is the task persistence boundary the controller drives.
// SaveTaskTransition must apply the write conditionally on the expected
// prior status and fail with ErrConflict when the stored status has moved,
// so concurrent transitions on the same task cannot silently overwrite each
// other.
type TaskStore interface {
	GetTask(ctx context.Context, taskID string) (*Task, error)
	TasksForItemStage(ctx context.Context, itemID int64, stage Stage) ([]*Task, error)
	SaveTask(ctx context.Context, task *Task) error
	SaveTaskTransition(ctx context.Context, task *Task, expected TaskStatus) error
}

// TemplateProvider supplies garment profiles and per-stage task templates.
// Template data is external and may change independently of the engine.
type TemplateProvider interface {
	Profile(garmentType string) (GarmentProfile, error)
	TaskTemplate(garmentType string, stage Stage) ([]TaskTemplateEntry, error)
}

// Controller orchestrates the workflow engine: task transitions, the stage
// completion gate, stage advancement, and timeline recording.
type Controller struct {
	items     ItemStore
	tasks     TaskStore
	templates TemplateProvider
	logger    *slog.Logger
}

// NewController constructs a workflow controller. A nil logger disables
// logging.
func NewController(items ItemStore, tasks TaskStore, templates TemplateProvider, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		items:     items,
		tasks:     tasks,
		templates: templates,
		logger:    logger,
	}
}

func (c *Controller) loadItem(ctx context.Context, itemID int64) (*Item, error) {
	item, err := c.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load item %d: %w", itemID, err)
	}
	if item == nil {
		return nil, Wrap(ErrNotFound, "controller", "load item", fmt.Sprintf("item %d", itemID), nil)
	}
	return item, nil
}

func (c *Controller) loadTask(ctx context.Context, taskID string) (*Task, error) {
	task, err := c.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", taskID, err)
	}
	if task == nil {
		return nil, Wrap(ErrNotFound, "controller", "load task", taskID, nil)
	}
	return task, nil
}

// EnsureTasksGenerated lazily seeds the task checklist for (item, stage)
// from the garment-type template. Idempotent: when tasks already exist for
// the pair it is a no-op, so it is safe to call on every read. The terminal
// sentinel never gets tasks.
func (c *Controller) EnsureTasksGenerated(ctx context.Context, itemID int64, stage Stage) error {
	if !stage.IsValid() {
		return Wrap(ErrInvalidStage, "controller", "generate tasks", string(stage), nil)
	}
	if stage.IsTerminal() {
		return nil
	}

	existing, err := c.tasks.TasksForItemStage(ctx, itemID, stage)
	if err != nil {
		return fmt.Errorf("load tasks for item %d stage %s: %w", itemID, stage, err)
	}
	if len(existing) > 0 {
		return nil
	}

	item, err := c.loadItem(ctx, itemID)
	if err != nil {
		return err
	}
	entries, err := c.templates.TaskTemplate(item.GarmentType, stage)
	if err != nil {
		return fmt.Errorf("task template for %s/%s: %w", item.GarmentType, stage, err)
	}

	now := time.Now().UTC()
	for _, entry := range entries {
		task := &Task{
			ID:        uuid.NewString(),
			ItemID:    itemID,
			Stage:     stage,
			Name:      entry.Name,
			Mandatory: entry.Mandatory,
			Order:     entry.Order,
			Status:    TaskNotStarted,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := c.tasks.SaveTask(ctx, task); err != nil {
			return fmt.Errorf("save generated task %q: %w", entry.Name, err)
		}
	}
	c.logger.Info("tasks generated",
		logging.Int64(logging.FieldItemID, itemID),
		logging.String(logging.FieldStage, string(stage)),
		logging.Int("task_count", len(entries)),
	)
	return nil
}

// Gate re-evaluates the stage completion gate for the item's current stage.
func (c *Controller) Gate(ctx context.Context, itemID int64) (bool, error) {
	item, err := c.loadItem(ctx, itemID)
	if err != nil {
		return false, err
	}
	tasks, err := c.tasks.TasksForItemStage(ctx, itemID, item.CurrentStage)
	if err != nil {
		return false, fmt.Errorf("load tasks for item %d stage %s: %w", itemID, item.CurrentStage, err)
	}
	return AllApproved(tasks), nil
}

// AdvanceStage moves the item out of its current stage once the completion
// gate passes: it persists the next stage and derived status, seeds the next
// stage's checklist, and appends a timeline entry for the stage just
// finished.
//
// The sequence is not atomic. If task generation fails after the stage flag
// has moved, the item sits in a stage with no tasks; the gate then blocks
// and the next EnsureTasksGenerated call repairs the checklist.
func (c *Controller) AdvanceStage(ctx context.Context, itemID int64, actor staff.Actor) (Stage, error) {
	if !actor.Can(staff.CapabilityAdvance) {
		return "", Wrap(ErrRoleNotAllowed, "controller", "advance",
			fmt.Sprintf("role %s may not advance items", actor.Role), nil)
	}

	item, err := c.loadItem(ctx, itemID)
	if err != nil {
		return "", err
	}
	if item.CurrentStage.IsTerminal() {
		return "", Wrap(ErrInvalidTransition, "controller", "advance", "item is already completed", nil)
	}

	tasks, err := c.tasks.TasksForItemStage(ctx, itemID, item.CurrentStage)
	if err != nil {
		return "", fmt.Errorf("load tasks for item %d stage %s: %w", itemID, item.CurrentStage, err)
	}
	if !AllApproved(tasks) {
		return "", Wrap(ErrStageIncomplete, "controller", "advance",
			fmt.Sprintf("%d mandatory task(s) not approved in %s", len(PendingMandatory(tasks)), item.CurrentStage), nil)
	}

	profile, err := c.templates.Profile(item.GarmentType)
	if err != nil {
		return "", fmt.Errorf("garment profile %s: %w", item.GarmentType, err)
	}
	next, err := NextStage(item.CurrentStage, profile)
	if err != nil {
		return "", err
	}

	if err := c.items.SetItemStageAndStatus(ctx, itemID, next, StatusForStage(next)); err != nil {
		return "", fmt.Errorf("persist stage advance for item %d: %w", itemID, err)
	}
	if err := c.EnsureTasksGenerated(ctx, itemID, next); err != nil {
		return "", fmt.Errorf("seed tasks after advance: %w", err)
	}
	if err := c.items.AppendTimeline(ctx, itemID, TimelineEntry{
		Stage:     item.CurrentStage,
		Action:    TimelineActionCompleted,
		StaffID:   actor.ID,
		StaffName: actor.Name,
		At:        time.Now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("append timeline for item %d: %w", itemID, err)
	}

	c.logger.Info("stage advanced",
		logging.Int64(logging.FieldItemID, itemID),
		logging.String(logging.FieldStage, string(item.CurrentStage)),
		logging.String("next_stage", string(next)),
		logging.String(logging.FieldStaff, actor.ID),
	)
	return next, nil
}

// Deliver hands the finished garment over to the customer. Only legal once
// the item has reached the terminal stage.
func (c *Controller) Deliver(ctx context.Context, itemID int64, actor staff.Actor) error {
	if !actor.Can(staff.CapabilityAdvance) {
		return Wrap(ErrRoleNotAllowed, "controller", "deliver",
			fmt.Sprintf("role %s may not deliver items", actor.Role), nil)
	}
	item, err := c.loadItem(ctx, itemID)
	if err != nil {
		return err
	}
	if !item.CurrentStage.IsTerminal() {
		return Wrap(ErrInvalidTransition, "controller", "deliver",
			fmt.Sprintf("item is still in %s", item.CurrentStage), nil)
	}
	if item.Status == ItemDelivered {
		return Wrap(ErrInvalidTransition, "controller", "deliver", "item already delivered", nil)
	}

	if err := c.items.SetItemStageAndStatus(ctx, itemID, item.CurrentStage, ItemDelivered); err != nil {
		return fmt.Errorf("persist delivery for item %d: %w", itemID, err)
	}
	if err := c.items.AppendTimeline(ctx, itemID, TimelineEntry{
		Stage:     item.CurrentStage,
		Action:    TimelineActionDelivered,
		StaffID:   actor.ID,
		StaffName: actor.Name,
		At:        time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("append timeline for item %d: %w", itemID, err)
	}
	c.logger.Info("item delivered",
		logging.Int64(logging.FieldItemID, itemID),
		logging.String(logging.FieldStaff, actor.ID),
	)
	return nil
}

// AssignTask binds a task to a staff member. Restricted to roles with the
// assign capability; the assignment itself never changes task status.
func (c *Controller) AssignTask(ctx context.Context, taskID string, actor staff.Actor, assigneeID, assigneeName string) error {
	if !actor.Can(staff.CapabilityAssign) {
		return Wrap(ErrRoleNotAllowed, "controller", "assign",
			fmt.Sprintf("role %s may not assign tasks", actor.Role), nil)
	}
	task, err := c.loadTask(ctx, taskID)
	if err != nil {
		return err
	}
	task.Assign(assigneeID, assigneeName)
	if err := c.tasks.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("persist assignment for task %s: %w", taskID, err)
	}
	c.logger.Info("task assigned",
		logging.String(logging.FieldTaskID, taskID),
		logging.String("assignee", assigneeID),
		logging.String(logging.FieldStaff, actor.ID),
	)
	return nil
}

// StartTask moves a task to in_progress on behalf of the actor.
func (c *Controller) StartTask(ctx context.Context, taskID string, actor staff.Actor) error {
	return c.transitionTask(ctx, taskID, "started", actor, func(task *Task) error {
		return task.Start(actor)
	})
}

// CompleteTask moves a task to completed with optional notes.
func (c *Controller) CompleteTask(ctx context.Context, taskID string, actor staff.Actor, notes string) error {
	return c.transitionTask(ctx, taskID, "completed", actor, func(task *Task) error {
		return task.Complete(notes)
	})
}

// ApproveTask moves a completed task to its terminal approved status.
// Restricted to roles with the approve capability.
func (c *Controller) ApproveTask(ctx context.Context, taskID string, actor staff.Actor) error {
	if !actor.Can(staff.CapabilityApprove) {
		return Wrap(ErrRoleNotAllowed, "controller", "approve",
			fmt.Sprintf("role %s may not approve tasks", actor.Role), nil)
	}
	return c.transitionTask(ctx, taskID, "approved", actor, func(task *Task) error {
		return task.Approve(actor)
	})
}

// RejectTask returns a completed task to needs_rework with a mandatory
// reason. Restricted to roles with the approve capability.
func (c *Controller) RejectTask(ctx context.Context, taskID string, actor staff.Actor, reason string) error {
	if !actor.Can(staff.CapabilityApprove) {
		return Wrap(ErrRoleNotAllowed, "controller", "reject",
			fmt.Sprintf("role %s may not reject tasks", actor.Role), nil)
	}
	return c.transitionTask(ctx, taskID, "rejected", actor, func(task *Task) error {
		return task.Reject(reason)
	})
}

// transitionTask loads the task, applies the lifecycle mutation, and writes
// it back conditioned on the status the mutation was computed from. A failed
// guard leaves the stored task untouched.
func (c *Controller) transitionTask(ctx context.Context, taskID, event string, actor staff.Actor, mutate func(*Task) error) error {
	task, err := c.loadTask(ctx, taskID)
	if err != nil {
		return err
	}
	prior := task.Status
	if err := mutate(task); err != nil {
		return err
	}
	if err := c.tasks.SaveTaskTransition(ctx, task, prior); err != nil {
		return fmt.Errorf("persist task %s transition: %w", taskID, err)
	}
	c.logger.Info("task "+event,
		logging.String(logging.FieldTaskID, taskID),
		logging.Int64(logging.FieldItemID, task.ItemID),
		logging.String(logging.FieldStage, string(task.Stage)),
		logging.String("status", string(task.Status)),
		logging.String(logging.FieldStaff, actor.ID),
	)
	return nil
}
