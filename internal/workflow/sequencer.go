package workflow

// GarmentProfile captures the garment-type attributes the sequencer needs to
// route an item. Profiles come from the template provider; the engine never
// hard-codes garment types.
type GarmentProfile struct {
	Type        string
	DisplayName string
	AariWork    bool
}

// visits reports whether an item with this profile works the given stage.
func (p GarmentProfile) visits(stage Stage) bool {
	if !stage.IsConditional() {
		return true
	}
	switch stage {
	case StageAariWork:
		return p.AariWork
	default:
		return false
	}
}

// NextStage computes the stage that follows current for an item with the
// given garment profile. It returns StageCompleted when current is the last
// working stage. Calling it with a value outside the enumeration, or with
// the terminal sentinel itself, fails with ErrInvalidStage.
//
// The skip check is single-step: if the next stage is conditional and the
// profile does not visit it, the sequencer advances exactly one further
// position. The stage enumeration never places two conditional stages back
// to back, so a multi-skip case cannot arise today.
//
// Pure and deterministic; identical inputs always yield identical output.
func NextStage(current Stage, profile GarmentProfile) (Stage, error) {
	ord, ok := current.Ordinal()
	if !ok {
		return "", Wrap(ErrInvalidStage, "sequencer", "next", string(current), nil)
	}
	if current.IsTerminal() {
		return "", Wrap(ErrInvalidStage, "sequencer", "next", "item is already completed", nil)
	}

	candidate := stageOrder[ord+1]
	if !profile.visits(candidate) {
		candidate = stageOrder[ord+2]
	}
	return candidate, nil
}
