package workflow

import "time"

// ItemStatus is the derived lifecycle label for a garment item.
type ItemStatus string

const (
	ItemNotStarted ItemStatus = "not_started"
	ItemInProgress ItemStatus = "in_progress"
	ItemCompleted  ItemStatus = "completed"
	ItemDelivered  ItemStatus = "delivered"
)

// Item is one garment unit flowing through production. An Item is owned by
// the customer order that created it; tasks reference it by ID only.
type Item struct {
	ID           int64
	OrderRef     string
	GarmentType  string
	Quantity     int
	DueDate      time.Time
	CurrentStage Stage
	Status       ItemStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TimelineEntry is one append-only audit record on an item. Entries are
// never edited or deleted once written.
type TimelineEntry struct {
	Stage     Stage
	Action    string
	StaffID   string
	StaffName string
	At        time.Time
}

// Timeline actions recorded by the controller.
const (
	TimelineActionIntake    = "intake"
	TimelineActionCompleted = "completed"
	TimelineActionDelivered = "delivered"
)

// StatusForStage derives the item lifecycle label from its current stage.
// Delivered is never derived; it is set only by an explicit delivery action.
func StatusForStage(stage Stage) ItemStatus {
	switch {
	case stage == StageIntake:
		return ItemNotStarted
	case stage.IsTerminal():
		return ItemCompleted
	default:
		return ItemInProgress
	}
}
