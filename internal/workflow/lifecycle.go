package workflow

import (
	"strings"
	"time"

	"atelier/internal/staff"
)

// validTaskTransitions defines the allowed task status transitions.
//
//	not_started  → in_progress
//	in_progress  → completed
//	completed    → approved, needs_rework
//	needs_rework → in_progress   (rework loop; assignment is preserved)
//
// approved is terminal.
var validTaskTransitions = map[TaskStatus][]TaskStatus{
	TaskNotStarted:  {TaskInProgress},
	TaskInProgress:  {TaskCompleted},
	TaskCompleted:   {TaskApproved, TaskNeedsRework},
	TaskNeedsRework: {TaskInProgress},
}

func transitionAllowed(from, to TaskStatus) bool {
	for _, allowed := range validTaskTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Assign binds the task to a staff member. Allowed in any status; never
// changes the status. Reassignment simply overwrites the previous assignee.
func (t *Task) Assign(staffID, staffName string) {
	now := time.Now().UTC()
	t.AssignedStaffID = staffID
	t.AssignedStaffName = staffName
	t.AssignedAt = &now
}

// Start moves the task to in_progress. Only legal from not_started or
// needs_rework. Starting an unassigned task implicitly claims it for the
// actor; starting a task assigned to someone else fails with ErrNotAssignable.
func (t *Task) Start(actor staff.Actor) error {
	if !transitionAllowed(t.Status, TaskInProgress) {
		return Wrap(ErrInvalidTransition, "task", "start",
			"cannot start from status "+string(t.Status), nil)
	}
	if t.Assigned() && t.AssignedStaffID != actor.ID {
		return Wrap(ErrNotAssignable, "task", "start",
			"task is assigned to "+t.AssignedStaffName, nil)
	}
	if !t.Assigned() {
		t.Assign(actor.ID, actor.Name)
	}
	t.Status = TaskInProgress
	return nil
}

// Complete moves the task to completed with optional notes. Only legal from
// in_progress.
func (t *Task) Complete(notes string) error {
	if !transitionAllowed(t.Status, TaskCompleted) {
		return Wrap(ErrInvalidTransition, "task", "complete",
			"cannot complete from status "+string(t.Status), nil)
	}
	t.Status = TaskCompleted
	if notes = strings.TrimSpace(notes); notes != "" {
		t.Notes = notes
	}
	return nil
}

// Approve moves the task to its terminal approved status, recording the
// approver. Only legal from completed.
func (t *Task) Approve(approver staff.Actor) error {
	if !transitionAllowed(t.Status, TaskApproved) {
		return Wrap(ErrInvalidTransition, "task", "approve",
			"cannot approve from status "+string(t.Status), nil)
	}
	now := time.Now().UTC()
	t.Status = TaskApproved
	t.ApprovedByID = approver.ID
	t.ApprovedByName = approver.Name
	t.ApprovedAt = &now
	return nil
}

// Reject returns a completed task to needs_rework with a mandatory reason.
// The assignee is preserved so the same staff member reworks their own task;
// any approver metadata from an earlier cycle is cleared.
func (t *Task) Reject(reason string) error {
	if !transitionAllowed(t.Status, TaskNeedsRework) {
		return Wrap(ErrInvalidTransition, "task", "reject",
			"cannot reject from status "+string(t.Status), nil)
	}
	if strings.TrimSpace(reason) == "" {
		return Wrap(ErrMissingReason, "task", "reject", "rework reason is required", nil)
	}
	t.Status = TaskNeedsRework
	t.ReworkReason = strings.TrimSpace(reason)
	t.ApprovedByID = ""
	t.ApprovedByName = ""
	t.ApprovedAt = nil
	return nil
}
