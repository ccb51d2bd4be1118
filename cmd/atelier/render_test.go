package main

import (
	"strings"
	"testing"
	"time"

	"atelier/internal/workflow"
)

func TestDisplayLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"cutting_check", "Cutting Check"},
		{"aari_work", "Aari Work"},
		{"intake", "Intake"},
		{"needs_rework", "Needs Rework"},
	}
	for _, tt := range tests {
		if got := displayLabel(tt.in); got != tt.want {
			t.Errorf("displayLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseItemID(t *testing.T) {
	id, err := parseItemID(" 12 ")
	if err != nil || id != 12 {
		t.Fatalf("parseItemID(12) = (%d, %v)", id, err)
	}
	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		if _, err := parseItemID(bad); err == nil {
			t.Errorf("parseItemID(%q) accepted invalid input", bad)
		}
	}
}

func TestShortTaskID(t *testing.T) {
	if got := shortTaskID("0f94d2ab-1d43-4f60-a1a4-d83d9a2a7f11"); got != "0f94d2ab" {
		t.Fatalf("shortTaskID = %q", got)
	}
	if got := shortTaskID("abc"); got != "abc" {
		t.Fatalf("shortTaskID short input = %q", got)
	}
}

func TestFormatAssignee(t *testing.T) {
	task := &workflow.Task{}
	if got := formatAssignee(task); got != "-" {
		t.Fatalf("unassigned = %q", got)
	}
	task.AssignedStaffID = "S1"
	if got := formatAssignee(task); got != "S1" {
		t.Fatalf("id only = %q", got)
	}
	task.AssignedStaffName = "Meena"
	if got := formatAssignee(task); got != "Meena" {
		t.Fatalf("named = %q", got)
	}
}

func TestFormatDateAndTimestamp(t *testing.T) {
	if got := formatDate(time.Time{}); got != "-" {
		t.Fatalf("zero date = %q", got)
	}
	if got := formatTimestamp(time.Time{}); got != "-" {
		t.Fatalf("zero timestamp = %q", got)
	}
	at := time.Date(2026, 3, 9, 14, 30, 0, 0, time.Local)
	if got := formatDate(at); got != "2026-03-09" {
		t.Fatalf("formatDate = %q", got)
	}
	if got := formatTimestamp(at); got != "2026-03-09 14:30" {
		t.Fatalf("formatTimestamp = %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"ID", "Stage"},
		[][]string{{"1", "Cutting"}, {"2", "Stitching"}},
		[]columnAlignment{alignRight, alignLeft},
	)
	for _, want := range []string{"ID", "STAGE", "Cutting", "Stitching"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("empty header should render nothing")
	}
}
