package workflow

// AllApproved is the stage completion gate: it reports whether a stage's
// task set is fully satisfied and the owning item may advance.
//
// An empty task set is explicitly not satisfied. A stage whose generation
// failed (or has not run yet) must block advancement rather than pass
// vacuously; callers recover by re-running task generation, which is
// idempotent.
//
// Non-mandatory tasks never block advancement regardless of their status.
func AllApproved(tasks []*Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, task := range tasks {
		if task.Mandatory && task.Status != TaskApproved {
			return false
		}
	}
	return true
}

// PendingMandatory returns the mandatory tasks still blocking the gate, in
// display order. Used for operator-facing diagnostics.
func PendingMandatory(tasks []*Task) []*Task {
	var pending []*Task
	for _, task := range tasks {
		if task.Mandatory && task.Status != TaskApproved {
			pending = append(pending, task)
		}
	}
	return pending
}
