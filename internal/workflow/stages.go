package workflow

import "strings"

// Stage is one step in the fixed production sequence.
type Stage string

const (
	StageIntake         Stage = "intake"
	StageMaterials      Stage = "materials"
	StageMarking        Stage = "marking"
	StageMarkingCheck   Stage = "marking_check"
	StageCutting        Stage = "cutting"
	StageCuttingCheck   Stage = "cutting_check"
	StageAariWork       Stage = "aari_work"
	StageStitching      Stage = "stitching"
	StageStitchingCheck Stage = "stitching_check"
	StageHooks          Stage = "hooks"
	StageIroning        Stage = "ironing"
	StageBilling        Stage = "billing"
	StageDelivery       Stage = "delivery"

	// StageCompleted is the terminal sentinel; it is a member of the
	// enumeration but no work happens in it and no tasks are generated.
	StageCompleted Stage = "completed"
)

// stageOrder is the authoritative production sequence. Conditional stages
// appear in their fixed position; the sequencer decides whether an item
// visits them.
var stageOrder = []Stage{
	StageIntake,
	StageMaterials,
	StageMarking,
	StageMarkingCheck,
	StageCutting,
	StageCuttingCheck,
	StageAariWork,
	StageStitching,
	StageStitchingCheck,
	StageHooks,
	StageIroning,
	StageBilling,
	StageDelivery,
	StageCompleted,
}

var stageOrdinal = func() map[Stage]int {
	m := make(map[Stage]int, len(stageOrder))
	for i, stage := range stageOrder {
		m[stage] = i
	}
	return m
}()

// conditionalStages are skipped for items whose garment profile does not
// require them. The skip is single-step: the sequencer never skips two
// consecutive conditional stages, and the current enumeration never places
// two conditional stages back to back.
var conditionalStages = map[Stage]struct{}{
	StageAariWork: {},
}

// Stages returns the ordered list of known stages.
func Stages() []Stage {
	cp := make([]Stage, len(stageOrder))
	copy(cp, stageOrder)
	return cp
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stageOrdinal[normalized]
	return normalized, ok
}

// IsValid reports whether the stage is a member of the enumeration.
func (s Stage) IsValid() bool {
	_, ok := stageOrdinal[s]
	return ok
}

// Ordinal returns the stage's position in the production sequence.
func (s Stage) Ordinal() (int, bool) {
	ord, ok := stageOrdinal[s]
	return ord, ok
}

// IsConditional reports whether the stage is only visited by eligible
// garment types.
func (s Stage) IsConditional() bool {
	_, ok := conditionalStages[s]
	return ok
}

// IsTerminal reports whether the stage is the terminal sentinel.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted
}
