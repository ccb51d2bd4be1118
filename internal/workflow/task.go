package workflow

import "time"

// TaskStatus is the lifecycle state of a single checklist task.
type TaskStatus string

const (
	TaskNotStarted  TaskStatus = "not_started"
	TaskInProgress  TaskStatus = "in_progress"
	TaskCompleted   TaskStatus = "completed"
	TaskNeedsRework TaskStatus = "needs_rework"
	TaskApproved    TaskStatus = "approved"
)

var allTaskStatuses = []TaskStatus{
	TaskNotStarted,
	TaskInProgress,
	TaskCompleted,
	TaskNeedsRework,
	TaskApproved,
}

// ParseTaskStatus converts a string into a known TaskStatus.
func ParseTaskStatus(value string) (TaskStatus, bool) {
	for _, status := range allTaskStatuses {
		if string(status) == value {
			return status, true
		}
	}
	return "", false
}

// Task is the smallest unit of work inside one stage of one item. A task
// belongs to exactly one (item, stage) pair and is never shared or moved.
type Task struct {
	ID        string
	ItemID    int64
	Stage     Stage
	Name      string
	Mandatory bool
	Order     int
	Status    TaskStatus

	AssignedStaffID   string
	AssignedStaffName string
	AssignedAt        *time.Time

	ApprovedByID   string
	ApprovedByName string
	ApprovedAt     *time.Time

	ReworkReason string
	Notes        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Assigned reports whether the task is bound to a staff member.
func (t *Task) Assigned() bool {
	return t.AssignedStaffID != ""
}

// TaskTemplateEntry is one row of a garment-type task template.
type TaskTemplateEntry struct {
	Name      string
	Mandatory bool
	Order     int
}
