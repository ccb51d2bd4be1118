package workflow_test

import (
	"testing"

	"atelier/internal/workflow"
)

func gateTask(name string, mandatory bool, status workflow.TaskStatus) *workflow.Task {
	return &workflow.Task{ID: name, Name: name, Mandatory: mandatory, Status: status}
}

func TestAllApprovedEmptySetBlocks(t *testing.T) {
	if workflow.AllApproved(nil) {
		t.Fatal("empty task set must not satisfy the gate")
	}
	if workflow.AllApproved([]*workflow.Task{}) {
		t.Fatal("empty task set must not satisfy the gate")
	}
}

func TestAllApprovedIgnoresOptionalTasks(t *testing.T) {
	tasks := []*workflow.Task{
		gateTask("mark front", true, workflow.TaskApproved),
		gateTask("mark back", true, workflow.TaskApproved),
		gateTask("photograph", false, workflow.TaskNotStarted),
	}
	if !workflow.AllApproved(tasks) {
		t.Fatal("optional tasks must not block the gate")
	}
}

func TestAllApprovedBlocksOnPendingMandatory(t *testing.T) {
	cases := []workflow.TaskStatus{
		workflow.TaskNotStarted,
		workflow.TaskInProgress,
		workflow.TaskCompleted,
		workflow.TaskNeedsRework,
	}
	for _, status := range cases {
		tasks := []*workflow.Task{
			gateTask("a", true, workflow.TaskApproved),
			gateTask("b", true, status),
		}
		if workflow.AllApproved(tasks) {
			t.Fatalf("gate passed with mandatory task in %s", status)
		}
	}
}

func TestPendingMandatory(t *testing.T) {
	tasks := []*workflow.Task{
		gateTask("a", true, workflow.TaskApproved),
		gateTask("b", true, workflow.TaskCompleted),
		gateTask("c", false, workflow.TaskNotStarted),
	}
	pending := workflow.PendingMandatory(tasks)
	if len(pending) != 1 || pending[0].Name != "b" {
		t.Fatalf("unexpected pending set: %#v", pending)
	}
}
